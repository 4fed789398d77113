// Package position tracks board state by applying trusted long-form moves,
// without performing any legality checking.
package position

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard starting position string.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Tracker holds one game's board state and repetition history.
type Tracker struct {
	board [8][8]byte // board[rank][file], rank 0 = rank1, '.' for empty
	white bool       // side to move is white

	castleWK, castleWQ, castleBK, castleBQ bool
	epFile, epRank                         int // -1,-1 if none

	halfmoveClock int
	fullmoveNo    int

	repetitions map[string]int
}

// NewFromFEN builds a Tracker from a 6-field position string. An empty fen
// means the standard starting position.
func NewFromFEN(fen string) (*Tracker, error) {
	if fen == "" {
		fen = StartFEN
	}
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, fmt.Errorf("position: fen %q: expected 6 fields, got %d", fen, len(fields))
	}

	t := &Tracker{repetitions: make(map[string]int), epFile: -1, epRank: -1}
	for i := range t.board {
		for j := range t.board[i] {
			t.board[i][j] = '.'
		}
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("position: fen %q: expected 8 ranks, got %d", fen, len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for _, c := range row {
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			if file > 7 {
				return nil, fmt.Errorf("position: fen %q: rank %d overflow", fen, rank)
			}
			t.board[rank][file] = byte(c)
			file++
		}
	}

	t.white = fields[1] == "w"

	rights := fields[2]
	t.castleWK = strings.Contains(rights, "K")
	t.castleWQ = strings.Contains(rights, "Q")
	t.castleBK = strings.Contains(rights, "k")
	t.castleBQ = strings.Contains(rights, "q")

	if fields[3] != "-" && len(fields[3]) == 2 {
		t.epFile = int(fields[3][0] - 'a')
		t.epRank = int(fields[3][1] - '1')
	}

	if v, err := strconv.Atoi(fields[4]); err == nil {
		t.halfmoveClock = v
	}
	if v, err := strconv.Atoi(fields[5]); err == nil {
		t.fullmoveNo = v
	} else {
		t.fullmoveNo = 1
	}

	t.repetitions[t.Key()] = 1
	return t, nil
}

// Apply applies one 4- or 5-character long-form move (e.g. "e2e4", "a7a8q").
func (t *Tracker) Apply(move string) error {
	if len(move) != 4 && len(move) != 5 {
		return fmt.Errorf("position: malformed move %q", move)
	}
	fromFile := int(move[0] - 'a')
	fromRank := int(move[1] - '1')
	toFile := int(move[2] - 'a')
	toRank := int(move[3] - '1')
	if fromFile < 0 || fromFile > 7 || toFile < 0 || toFile > 7 || fromRank < 0 || fromRank > 7 || toRank < 0 || toRank > 7 {
		return fmt.Errorf("position: move %q out of range", move)
	}

	piece := t.board[fromRank][fromFile]
	if piece == '.' {
		return fmt.Errorf("position: move %q: no piece on origin square", move)
	}

	isPawn := piece == 'P' || piece == 'p'
	isCapture := t.board[toRank][toFile] != '.'
	isEnPassantCapture := false

	if isPawn && toFile != fromFile && t.board[toRank][toFile] == '.' {
		// En-passant: pawn moved diagonally onto an empty square.
		isEnPassantCapture = true
		isCapture = true
		t.board[fromRank][toFile] = '.'
	}

	t.board[toRank][toFile] = piece
	t.board[fromRank][fromFile] = '.'

	if len(move) == 5 {
		promo := move[4]
		if piece == 'P' {
			t.board[toRank][toFile] = byte(strings.ToUpper(string(promo))[0])
		} else if piece == 'p' {
			t.board[toRank][toFile] = byte(strings.ToLower(string(promo))[0])
		}
	}

	// Castling rook relocation for the exact king squares.
	switch {
	case piece == 'K' && fromFile == 4 && fromRank == 0 && toFile == 6 && toRank == 0:
		t.board[0][5] = 'R'
		t.board[0][7] = '.'
	case piece == 'K' && fromFile == 4 && fromRank == 0 && toFile == 2 && toRank == 0:
		t.board[0][3] = 'R'
		t.board[0][0] = '.'
	case piece == 'k' && fromFile == 4 && fromRank == 7 && toFile == 6 && toRank == 7:
		t.board[7][5] = 'r'
		t.board[7][7] = '.'
	case piece == 'k' && fromFile == 4 && fromRank == 7 && toFile == 2 && toRank == 7:
		t.board[7][3] = 'r'
		t.board[7][0] = '.'
	}

	// Clear castling rights on king move, corner rook move, or corner capture.
	if piece == 'K' {
		t.castleWK, t.castleWQ = false, false
	}
	if piece == 'k' {
		t.castleBK, t.castleBQ = false, false
	}
	if fromRank == 0 && fromFile == 0 {
		t.castleWQ = false
	}
	if fromRank == 0 && fromFile == 7 {
		t.castleWK = false
	}
	if fromRank == 7 && fromFile == 0 {
		t.castleBQ = false
	}
	if fromRank == 7 && fromFile == 7 {
		t.castleBK = false
	}
	if (isCapture || isEnPassantCapture) && toFile == 0 && toRank == 0 {
		t.castleWQ = false
	}
	if (isCapture || isEnPassantCapture) && toFile == 7 && toRank == 0 {
		t.castleWK = false
	}
	if (isCapture || isEnPassantCapture) && toFile == 0 && toRank == 7 {
		t.castleBQ = false
	}
	if (isCapture || isEnPassantCapture) && toFile == 7 && toRank == 7 {
		t.castleBK = false
	}

	// En-passant target square: set only on a pawn double push.
	t.epFile, t.epRank = -1, -1
	if isPawn {
		delta := toRank - fromRank
		if delta == 2 || delta == -2 {
			t.epFile = fromFile
			t.epRank = (fromRank + toRank) / 2
		}
	}

	if isPawn || isCapture {
		t.halfmoveClock = 0
	} else {
		t.halfmoveClock++
	}

	if !t.white {
		t.fullmoveNo++
	}
	t.white = !t.white

	t.repetitions[t.Key()]++
	return nil
}

// PieceCount returns the number of occupied squares.
func (t *Tracker) PieceCount() int {
	n := 0
	for _, row := range t.board {
		for _, c := range row {
			if c != '.' {
				n++
			}
		}
	}
	return n
}

// Key returns the repetition key: placement + side + castling + en-passant,
// excluding halfmove clock and fullmove number.
func (t *Tracker) Key() string {
	var b strings.Builder
	b.WriteString(t.placement())
	b.WriteByte(' ')
	if t.white {
		b.WriteByte('w')
	} else {
		b.WriteByte('b')
	}
	b.WriteByte(' ')
	b.WriteString(t.castlingString())
	b.WriteByte(' ')
	b.WriteString(t.enPassantString())
	return b.String()
}

// FEN returns the full 6-field position string.
func (t *Tracker) FEN() string {
	return fmt.Sprintf("%s %d %d", t.Key(), t.halfmoveClock, t.fullmoveNo)
}

func (t *Tracker) placement() string {
	var b strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			c := t.board[rank][file]
			if c == '.' {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteByte(c)
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			b.WriteByte('/')
		}
	}
	return b.String()
}

func (t *Tracker) castlingString() string {
	var b strings.Builder
	if t.castleWK {
		b.WriteByte('K')
	}
	if t.castleWQ {
		b.WriteByte('Q')
	}
	if t.castleBK {
		b.WriteByte('k')
	}
	if t.castleBQ {
		b.WriteByte('q')
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func (t *Tracker) enPassantString() string {
	if t.epFile < 0 || t.epRank < 0 {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+t.epFile, t.epRank+1)
}

// RepetitionCount returns how many times key has been reached so far.
func (t *Tracker) RepetitionCount(key string) int { return t.repetitions[key] }

// HalfmoveClock returns the current halfmove clock.
func (t *Tracker) HalfmoveClock() int { return t.halfmoveClock }

// WhiteToMove reports whether it is White's turn.
func (t *Tracker) WhiteToMove() bool { return t.white }
