package termination

import (
	"testing"

	"tourney/internal/engine"
)

func baseState() GameState {
	return GameState{WTimeMS: 60000, BTimeMS: 60000, WhiteToMove: true}
}

func TestShouldEndManualStopTakesPriority(t *testing.T) {
	a := New(ScoreAdjudicationConfig{}, ResignConfig{}, Limits{})
	out := a.ShouldEnd(baseState(), EngineInfo{}, EngineInfo{}, ProbeInfo{}, true, 5, 0)
	if !out.ShouldEnd || out.Reason != ReasonManualStop || out.Result != "*" {
		t.Errorf("ShouldEnd with manualStop = %+v, want a manual-stop abort", out)
	}
}

func TestShouldEndCrashBeatsTimeout(t *testing.T) {
	a := New(ScoreAdjudicationConfig{}, ResignConfig{}, Limits{})
	white := EngineInfo{Crashed: true}
	black := EngineInfo{TimedOut: true}
	out := a.ShouldEnd(baseState(), white, black, ProbeInfo{}, false, 5, 0)
	if out.Reason != ReasonCrash {
		t.Errorf("Reason = %v, want ReasonCrash to take priority over a simultaneous timeout", out.Reason)
	}
	if out.Result != "0-1" {
		t.Errorf("Result = %q, want 0-1 (white crashed)", out.Result)
	}
}

func TestShouldEndCheckmate(t *testing.T) {
	a := New(ScoreAdjudicationConfig{}, ResignConfig{}, Limits{})
	state := baseState()
	white := EngineInfo{NoMove: true, Eval: engine.Eval{HasMate: true, MateIn: -1}}
	out := a.ShouldEnd(state, white, EngineInfo{}, ProbeInfo{}, false, 10, 0)
	if out.Reason != ReasonCheckmate || out.Result != "0-1" {
		t.Errorf("ShouldEnd on checkmate = %+v, want black to win by checkmate", out)
	}
}

func TestShouldEndStalemate(t *testing.T) {
	a := New(ScoreAdjudicationConfig{}, ResignConfig{}, Limits{})
	state := baseState()
	white := EngineInfo{NoMove: true}
	out := a.ShouldEnd(state, white, EngineInfo{}, ProbeInfo{}, false, 10, 0)
	if out.Reason != ReasonStalemate || out.Result != "1/2-1/2" {
		t.Errorf("ShouldEnd with no legal move and no mate score = %+v, want a stalemate draw", out)
	}
}

func TestShouldEndFlagFall(t *testing.T) {
	a := New(ScoreAdjudicationConfig{}, ResignConfig{}, Limits{})
	state := baseState()
	state.WTimeMS = 0
	out := a.ShouldEnd(state, EngineInfo{}, EngineInfo{}, ProbeInfo{}, false, 10, 0)
	if out.Reason != ReasonTimeout || out.Result != "0-1" {
		t.Errorf("ShouldEnd with White's clock at zero = %+v, want Black to win on time", out)
	}
}

func TestShouldEndTablebaseAdjudication(t *testing.T) {
	a := New(ScoreAdjudicationConfig{}, ResignConfig{}, Limits{})
	out := a.ShouldEnd(baseState(), EngineInfo{}, EngineInfo{}, ProbeInfo{TBUsed: true, Result: WDLWin}, false, 10, 0)
	if out.Reason != ReasonTBAdjudication || out.Result != "1-0" || !out.TablebaseUsed {
		t.Errorf("ShouldEnd on a tablebase win = %+v, want a tablebase-adjudicated White win", out)
	}
}

func TestShouldEndFiftyMoveRule(t *testing.T) {
	a := New(ScoreAdjudicationConfig{}, ResignConfig{}, Limits{})
	state := baseState()
	state.HalfmoveClock = 100
	out := a.ShouldEnd(state, EngineInfo{}, EngineInfo{}, ProbeInfo{}, false, 10, 0)
	if out.Reason != ReasonFiftyMove {
		t.Errorf("Reason = %v, want ReasonFiftyMove at a halfmove clock of 100", out.Reason)
	}
}

func TestShouldEndThreefoldRepetition(t *testing.T) {
	a := New(ScoreAdjudicationConfig{}, ResignConfig{}, Limits{DrawByRepetition: true})
	out := a.ShouldEnd(baseState(), EngineInfo{}, EngineInfo{}, ProbeInfo{}, false, 10, 3)
	if out.Reason != ReasonThreefold {
		t.Errorf("Reason = %v, want ReasonThreefold at a repetition count of 3", out.Reason)
	}
}

func TestShouldEndMaxPlies(t *testing.T) {
	a := New(ScoreAdjudicationConfig{}, ResignConfig{}, Limits{MaxPlies: 40})
	out := a.ShouldEnd(baseState(), EngineInfo{}, EngineInfo{}, ProbeInfo{}, false, 40, 0)
	if out.Reason != ReasonMaxPlies {
		t.Errorf("Reason = %v, want ReasonMaxPlies at the configured ply limit", out.Reason)
	}
}

func TestShouldEndNoRuleMatchesContinues(t *testing.T) {
	a := New(ScoreAdjudicationConfig{}, ResignConfig{}, Limits{})
	out := a.ShouldEnd(baseState(), EngineInfo{}, EngineInfo{}, ProbeInfo{}, false, 5, 0)
	if out.ShouldEnd {
		t.Errorf("ShouldEnd = %+v, want the game to continue when no rule matches", out)
	}
}

func TestScoreAdjudicationDrawStreak(t *testing.T) {
	cfg := ScoreAdjudicationConfig{Enabled: true, DrawCP: 20, DrawMoves: 2, MinDepth: 10}
	a := New(cfg, ResignConfig{}, Limits{})
	eval := engine.Eval{HasScore: true, ScoreCP: 5, Depth: 12}
	white, black := EngineInfo{Eval: eval}, EngineInfo{Eval: eval}

	first := a.ShouldEnd(baseState(), white, black, ProbeInfo{}, false, 10, 0)
	if first.ShouldEnd {
		t.Fatalf("draw adjudicated after only one qualifying move, want it to require DrawMoves consecutive moves")
	}
	second := a.ShouldEnd(baseState(), white, black, ProbeInfo{}, false, 11, 0)
	if !second.ShouldEnd || second.Reason != ReasonScoreAdjudication || second.Result != "1/2-1/2" {
		t.Errorf("ShouldEnd after the draw streak threshold = %+v, want a score-adjudicated draw", second)
	}
}

func TestScoreAdjudicationDrawStreakResetsOnBreak(t *testing.T) {
	cfg := ScoreAdjudicationConfig{Enabled: true, DrawCP: 20, DrawMoves: 2, MinDepth: 10}
	a := New(cfg, ResignConfig{}, Limits{})
	quiet := engine.Eval{HasScore: true, ScoreCP: 5, Depth: 12}
	sharp := engine.Eval{HasScore: true, ScoreCP: 500, Depth: 12}

	a.ShouldEnd(baseState(), EngineInfo{Eval: quiet}, EngineInfo{Eval: quiet}, ProbeInfo{}, false, 10, 0)
	a.ShouldEnd(baseState(), EngineInfo{Eval: sharp}, EngineInfo{Eval: quiet}, ProbeInfo{}, false, 11, 0)
	out := a.ShouldEnd(baseState(), EngineInfo{Eval: quiet}, EngineInfo{Eval: quiet}, ProbeInfo{}, false, 12, 0)
	if out.ShouldEnd {
		t.Errorf("ShouldEnd = %+v, want the draw streak to have been reset by the intervening sharp evaluation", out)
	}
}

func TestResignStreak(t *testing.T) {
	cfg := ResignConfig{Enabled: true, CP: 600, Moves: 2, MinDepth: 10}
	a := New(ScoreAdjudicationConfig{}, cfg, Limits{})
	losing := engine.Eval{HasScore: true, ScoreCP: -700, Depth: 12}
	white := EngineInfo{Eval: losing}

	first := a.ShouldEnd(baseState(), white, EngineInfo{}, ProbeInfo{}, false, 10, 0)
	if first.ShouldEnd {
		t.Fatalf("resign adjudicated after only one qualifying move, want it to require Moves consecutive moves")
	}
	second := a.ShouldEnd(baseState(), white, EngineInfo{}, ProbeInfo{}, false, 11, 0)
	if !second.ShouldEnd || second.Reason != ReasonResign || second.Result != "0-1" {
		t.Errorf("ShouldEnd after the resign streak threshold = %+v, want Black to win by resignation", second)
	}
}

func TestReasonStringAndTag(t *testing.T) {
	tests := []struct {
		reason   Reason
		wantStr  string
		wantTag  string
	}{
		{ReasonCheckmate, "checkmate", "normal"},
		{ReasonResign, "resign", "abandoned"},
		{ReasonCrash, "engine crash", "forfeit"},
		{ReasonManualStop, "manual stop", "aborted"},
		{ReasonScoreAdjudication, "score adjudication", "adjudication"},
	}
	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.wantStr {
			t.Errorf("Reason(%d).String() = %q, want %q", tt.reason, got, tt.wantStr)
		}
		if got := tt.reason.Tag(); got != tt.wantTag {
			t.Errorf("Reason(%d).Tag() = %q, want %q", tt.reason, got, tt.wantTag)
		}
	}
}
