package position

import "testing"

func TestNewFromFENDefaultsToStartingPosition(t *testing.T) {
	tr, err := NewFromFEN("")
	if err != nil {
		t.Fatalf("NewFromFEN(\"\") error = %v", err)
	}
	if got := tr.FEN(); got != StartFEN {
		t.Errorf("FEN() = %q, want %q", got, StartFEN)
	}
	if !tr.WhiteToMove() {
		t.Error("WhiteToMove() = false at the starting position, want true")
	}
	if tr.PieceCount() != 32 {
		t.Errorf("PieceCount() = %d, want 32", tr.PieceCount())
	}
}

func TestNewFromFENRejectsMalformedInput(t *testing.T) {
	if _, err := NewFromFEN("not a fen"); err == nil {
		t.Error("NewFromFEN with a malformed string returned no error")
	}
}

func TestApplySimpleMove(t *testing.T) {
	tr, err := NewFromFEN("")
	if err != nil {
		t.Fatalf("NewFromFEN error = %v", err)
	}
	if err := tr.Apply("e2e4"); err != nil {
		t.Fatalf("Apply(e2e4) error = %v", err)
	}
	if tr.WhiteToMove() {
		t.Error("WhiteToMove() = true after White's move, want false")
	}
	if tr.HalfmoveClock() != 0 {
		t.Errorf("HalfmoveClock() = %d after a pawn push, want 0", tr.HalfmoveClock())
	}
}

func TestApplyRejectsEmptyOrigin(t *testing.T) {
	tr, _ := NewFromFEN("")
	if err := tr.Apply("e4e5"); err == nil {
		t.Error("Apply with no piece on the origin square returned no error")
	}
}

func TestApplyCastlingMovesRook(t *testing.T) {
	tr, err := NewFromFEN("rnbqk2r/pppp1ppp/5n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")
	if err != nil {
		t.Fatalf("NewFromFEN error = %v", err)
	}
	if err := tr.Apply("e1g1"); err != nil {
		t.Fatalf("Apply(e1g1) error = %v", err)
	}
	if tr.board[0][5] != 'R' || tr.board[0][7] != '.' {
		t.Errorf("rook not relocated by kingside castling: f1=%c h1=%c", tr.board[0][5], tr.board[0][7])
	}
	if tr.castleWK || tr.castleWQ {
		t.Errorf("White castling rights still set after castling: K=%v Q=%v", tr.castleWK, tr.castleWQ)
	}
}

func TestApplyEnPassantCapture(t *testing.T) {
	tr, err := NewFromFEN("rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	if err != nil {
		t.Fatalf("NewFromFEN error = %v", err)
	}
	if err := tr.Apply("e5d6"); err != nil {
		t.Fatalf("Apply(e5d6) error = %v", err)
	}
	// The captured black pawn on d5 must be gone.
	if tr.board[4][3] != '.' {
		t.Errorf("captured en-passant pawn still on board: %c", tr.board[4][3])
	}
}

func TestApplyPromotion(t *testing.T) {
	tr, err := NewFromFEN("8/P7/8/8/8/8/8/k6K w - - 0 1")
	if err != nil {
		t.Fatalf("NewFromFEN error = %v", err)
	}
	if err := tr.Apply("a7a8q"); err != nil {
		t.Fatalf("Apply(a7a8q) error = %v", err)
	}
	if tr.board[7][0] != 'Q' {
		t.Errorf("promoted square = %c, want Q", tr.board[7][0])
	}
}

func TestRepetitionCountIncrements(t *testing.T) {
	tr, err := NewFromFEN("")
	if err != nil {
		t.Fatalf("NewFromFEN error = %v", err)
	}
	key := tr.Key()
	if tr.RepetitionCount(key) != 1 {
		t.Errorf("RepetitionCount at start = %d, want 1", tr.RepetitionCount(key))
	}

	moves := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for _, m := range moves {
		if err := tr.Apply(m); err != nil {
			t.Fatalf("Apply(%s) error = %v", m, err)
		}
	}
	if tr.Key() != key {
		t.Fatalf("position after a round trip of knight moves does not match the start, got key %q want %q", tr.Key(), key)
	}
	if tr.RepetitionCount(key) != 2 {
		t.Errorf("RepetitionCount after returning to the start = %d, want 2", tr.RepetitionCount(key))
	}
}
