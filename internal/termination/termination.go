// Package termination implements the per-game end-of-game arbiter: it
// consumes engine state and a position tracker and emits a verdict
// following a strict, first-match-wins rule order.
package termination

import "tourney/internal/engine"

// Reason identifies why a game ended.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonCheckmate
	ReasonStalemate
	ReasonResign
	ReasonTimeout
	ReasonCrash
	ReasonThreefold
	ReasonFiftyMove
	ReasonTBAdjudication
	ReasonScoreAdjudication
	ReasonMaxPlies
	ReasonManualStop
)

func (r Reason) String() string {
	switch r {
	case ReasonCheckmate:
		return "checkmate"
	case ReasonStalemate:
		return "stalemate"
	case ReasonResign:
		return "resign"
	case ReasonTimeout:
		return "timeout"
	case ReasonCrash:
		return "engine crash"
	case ReasonThreefold:
		return "threefold repetition"
	case ReasonFiftyMove:
		return "fifty-move"
	case ReasonTBAdjudication:
		return "tablebase adjudication"
	case ReasonScoreAdjudication:
		return "score adjudication"
	case ReasonMaxPlies:
		return "ply limit"
	case ReasonManualStop:
		return "manual stop"
	default:
		return "none"
	}
}

// Tag returns the PGN-style Termination tag family for a reason.
func (r Reason) Tag() string {
	switch r {
	case ReasonScoreAdjudication, ReasonTBAdjudication:
		return "adjudication"
	case ReasonManualStop:
		return "aborted"
	case ReasonCrash:
		return "forfeit"
	case ReasonTimeout:
		return "time forfeit"
	case ReasonCheckmate:
		return "normal"
	case ReasonStalemate, ReasonThreefold, ReasonFiftyMove, ReasonMaxPlies:
		return "normal"
	case ReasonResign:
		return "abandoned"
	default:
		return "unterminated"
	}
}

// EngineInfo carries one side's protocol/search state for one decision.
type EngineInfo struct {
	Eval     engine.Eval
	Running  bool
	Crashed  bool
	TimedOut bool
	NoMove   bool
}

// WDL is a tablebase probe verdict.
type WDL int

const (
	WDLUnknown WDL = iota
	WDLWin
	WDLDraw
	WDLLoss
)

// ProbeInfo is the tablebase hook's result. The core never resolves this
// itself; a caller-supplied prober fills it in.
type ProbeInfo struct {
	Result   WDL
	TBUsed   bool
	Detail   string
}

// ScoreAdjudicationConfig configures rule 7.
type ScoreAdjudicationConfig struct {
	Enabled       bool
	DrawCP        int
	DrawMoves     int
	WinCP         int
	WinMoves      int
	MinDepth      int
}

// ResignConfig configures rule 8.
type ResignConfig struct {
	Enabled  bool
	CP       int
	Moves    int
	MinDepth int
}

// Limits configures the threefold-repetition toggle (rule 9) and the ply
// limit (rule 11); the fifty-move rule (rule 10) has no setting.
type Limits struct {
	MaxPlies         int
	DrawByRepetition bool
}

// Outcome is the arbiter's verdict for one decision point.
type Outcome struct {
	ShouldEnd      bool
	Result         string // "*", "1-0", "0-1", "1/2-1/2"
	Reason         Reason
	TablebaseUsed  bool
	Detail         string
}

// GameState is the subset of live game state the arbiter needs.
type GameState struct {
	WTimeMS, BTimeMS int
	WhiteToMove      bool
	PositionKey      string
	HalfmoveClock    int
}

// Arbiter holds the streak counters private to one game.
type Arbiter struct {
	adjudication ScoreAdjudicationConfig
	resign       ResignConfig
	limits       Limits

	drawStreak       int
	winStreakWhite   int
	winStreakBlack   int
	resignStreakWhite int
	resignStreakBlack int
}

// New creates an arbiter for one game.
func New(adj ScoreAdjudicationConfig, resign ResignConfig, limits Limits) *Arbiter {
	return &Arbiter{adjudication: adj, resign: resign, limits: limits}
}

// opponentWins returns the result string for the side opposite toMove.
func opponentWins(whiteToMove bool) string {
	if whiteToMove {
		return "0-1"
	}
	return "1-0"
}

// ShouldEnd evaluates the decision order in section 4.5 and returns the
// first matching outcome. pliesPlayed is the number of moves applied so far.
func (a *Arbiter) ShouldEnd(state GameState, white, black EngineInfo, probe ProbeInfo, manualStop bool, pliesPlayed int, repetitionCount int) Outcome {
	if manualStop {
		return Outcome{ShouldEnd: true, Result: "*", Reason: ReasonManualStop}
	}

	if white.Crashed || black.Crashed {
		return Outcome{ShouldEnd: true, Result: opponentWins(white.Crashed), Reason: ReasonCrash}
	}

	if white.TimedOut || black.TimedOut {
		return Outcome{ShouldEnd: true, Result: opponentWins(white.TimedOut), Reason: ReasonTimeout}
	}

	toMove := white
	if !state.WhiteToMove {
		toMove = black
	}
	if toMove.NoMove {
		if toMove.Eval.HasMate && toMove.Eval.MateIn != 0 {
			return Outcome{ShouldEnd: true, Result: opponentWins(state.WhiteToMove), Reason: ReasonCheckmate}
		}
		return Outcome{ShouldEnd: true, Result: "1/2-1/2", Reason: ReasonStalemate}
	}

	if state.WTimeMS <= 0 || state.BTimeMS <= 0 {
		return Outcome{ShouldEnd: true, Result: opponentWins(state.WTimeMS <= 0), Reason: ReasonTimeout}
	}

	if probe.TBUsed {
		result := "1/2-1/2"
		switch probe.Result {
		case WDLWin:
			result = "1-0"
		case WDLLoss:
			result = "0-1"
		}
		return Outcome{ShouldEnd: true, Result: result, Reason: ReasonTBAdjudication, TablebaseUsed: true, Detail: probe.Detail}
	}

	if outcome, ok := a.scoreAdjudication(white, black); ok {
		return outcome
	}

	if outcome, ok := a.resignCheck(white, black, state.WhiteToMove); ok {
		return outcome
	}

	if a.limits.DrawByRepetition && repetitionCount >= 3 {
		return Outcome{ShouldEnd: true, Result: "1/2-1/2", Reason: ReasonThreefold}
	}

	if state.HalfmoveClock >= 100 {
		return Outcome{ShouldEnd: true, Result: "1/2-1/2", Reason: ReasonFiftyMove}
	}

	if a.limits.MaxPlies > 0 && pliesPlayed >= a.limits.MaxPlies {
		return Outcome{ShouldEnd: true, Result: "1/2-1/2", Reason: ReasonMaxPlies}
	}

	return Outcome{ShouldEnd: false, Result: "*"}
}

func (a *Arbiter) scoreAdjudication(white, black EngineInfo) (Outcome, bool) {
	if !a.adjudication.Enabled {
		a.drawStreak, a.winStreakWhite, a.winStreakBlack = 0, 0, 0
		return Outcome{}, false
	}

	evalOk := func(e EngineInfo) bool {
		return e.Eval.Depth >= a.adjudication.MinDepth
	}

	if evalOk(white) && evalOk(black) && !white.Eval.HasMate && !black.Eval.HasMate &&
		abs(white.Eval.ScoreCP) <= a.adjudication.DrawCP && abs(black.Eval.ScoreCP) <= a.adjudication.DrawCP {
		a.drawStreak++
	} else {
		a.drawStreak = 0
	}
	if a.drawStreak > 0 && a.drawStreak >= a.adjudication.DrawMoves {
		return Outcome{ShouldEnd: true, Result: "1/2-1/2", Reason: ReasonScoreAdjudication}, true
	}

	whiteSeesWin := evalOk(white) && (white.Eval.HasMate && white.Eval.MateIn > 0 || white.Eval.HasScore && white.Eval.ScoreCP >= a.adjudication.WinCP)
	blackAcknowledges := !evalOk(black) || black.Eval.HasScore && black.Eval.ScoreCP <= -a.adjudication.WinCP
	if whiteSeesWin && blackAcknowledges {
		a.winStreakWhite++
	} else {
		a.winStreakWhite = 0
	}
	if a.adjudication.WinMoves > 0 && a.winStreakWhite >= a.adjudication.WinMoves {
		return Outcome{ShouldEnd: true, Result: "1-0", Reason: ReasonScoreAdjudication}, true
	}

	blackSeesWin := evalOk(black) && (black.Eval.HasMate && black.Eval.MateIn > 0 || black.Eval.HasScore && black.Eval.ScoreCP >= a.adjudication.WinCP)
	whiteAcknowledges := !evalOk(white) || white.Eval.HasScore && white.Eval.ScoreCP <= -a.adjudication.WinCP
	if blackSeesWin && whiteAcknowledges {
		a.winStreakBlack++
	} else {
		a.winStreakBlack = 0
	}
	if a.adjudication.WinMoves > 0 && a.winStreakBlack >= a.adjudication.WinMoves {
		return Outcome{ShouldEnd: true, Result: "0-1", Reason: ReasonScoreAdjudication}, true
	}

	return Outcome{}, false
}

func (a *Arbiter) resignCheck(white, black EngineInfo, whiteToMove bool) (Outcome, bool) {
	if !a.resign.Enabled {
		a.resignStreakWhite, a.resignStreakBlack = 0, 0
		return Outcome{}, false
	}

	resigns := func(e EngineInfo) bool {
		return e.Eval.Depth >= a.resign.MinDepth && !e.Eval.HasMate && e.Eval.HasScore && e.Eval.ScoreCP <= -a.resign.CP
	}

	if resigns(white) {
		a.resignStreakWhite++
	} else {
		a.resignStreakWhite = 0
	}
	if a.resignStreakWhite >= a.resign.Moves {
		return Outcome{ShouldEnd: true, Result: "0-1", Reason: ReasonResign}, true
	}

	if resigns(black) {
		a.resignStreakBlack++
	} else {
		a.resignStreakBlack = 0
	}
	if a.resignStreakBlack >= a.resign.Moves {
		return Outcome{ShouldEnd: true, Result: "1-0", Reason: ReasonResign}, true
	}

	return Outcome{}, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
