// Package runner drives a pool of worker goroutines that each pull fixtures
// off a shared job list, lease the two engines a fixture names, and play one
// game at a time to a terminal outcome.
package runner

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tourney/internal/engine"
	"tourney/internal/pool"
	"tourney/internal/position"
	"tourney/internal/schedule"
	"tourney/internal/termination"
)

// TimeControl is the base time, increment, and optional fixed move time
// applied to both sides of every game a Runner plays.
type TimeControl struct {
	BaseMS     int
	IncMS      int
	MoveTimeMS int
}

// Limits bounds one game's length and the go-command timeout used to detect
// an unresponsive engine.
type Limits struct {
	MaxPlies    int
	GoTimeoutMS int
	AbortOnStop bool
}

// WatchdogConfig governs when a repeatedly failing engine pauses or stops
// the run rather than continuing to burn fixtures against it.
type WatchdogConfig struct {
	MaxFailures        int
	FailureWindowGames int
	PauseOnUnhealthy   bool
}

// Prober is the optional tablebase hook; a Runner with a nil Prober never
// reaches the tablebase-adjudication rule.
type Prober func(*position.Tracker) termination.ProbeInfo

// Job is one scheduled fixture plus its assigned opening and display labels.
// FixtureIndex is the dense index the scheduler assigned this fixture within
// its own fixture list (round-robin's whole schedule, or Swiss's current
// round); callers use it as the stable key for checkpoint completion
// tracking instead of re-deriving one from the fixture's contents.
type Job struct {
	Fixture      schedule.Fixture
	FixtureIndex int
	Opening      schedule.Opening
	Event        string
	Site         string
	RoundLabel   string
}

// MatchResult is the outcome of one played game, ready for the checkpoint
// writer, results archive, and standings table.
type MatchResult struct {
	Job           Job
	GameNo        int
	Result        string
	Reason        termination.Reason
	TablebaseUsed bool
	Moves         []string
	WhiteName     string
	BlackName     string
	StartFEN      string
}

// Sinks are the callbacks a Runner drives as games progress. Any field left
// nil is skipped.
type Sinks struct {
	OnLive     func(job Job, gameNo int, ply int, move string, whiteToMove bool)
	OnResult   func(MatchResult)
	OnJobEvent func(job Job, gameNo int, started bool)
}

// Runner owns the engine pool and the rules applied to every game it plays.
type Runner struct {
	pool         *pool.Pool
	tc           TimeControl
	limits       Limits
	watchdog     WatchdogConfig
	adjudication termination.ScoreAdjudicationConfig
	resign       termination.ResignConfig
	tlimits      termination.Limits
	prober       Prober
	sinks        Sinks
	log          zerolog.Logger

	failureMu      sync.Mutex
	failureHistory map[int][]int // engine id -> recent game numbers at which it failed
}

// New creates a Runner over an already-built engine pool.
func New(p *pool.Pool, tc TimeControl, limits Limits, watchdog WatchdogConfig,
	adjudication termination.ScoreAdjudicationConfig, resign termination.ResignConfig,
	tlimits termination.Limits, prober Prober, sinks Sinks, log zerolog.Logger) *Runner {
	return &Runner{
		pool:           p,
		tc:             tc,
		limits:         limits,
		watchdog:       watchdog,
		adjudication:   adjudication,
		resign:         resign,
		tlimits:        tlimits,
		prober:         prober,
		sinks:          sinks,
		log:            log,
		failureHistory: make(map[int][]int),
	}
}

// Run dispatches jobs across concurrency worker goroutines, starting the
// first game's number at startGameNo. It returns once every job has been
// claimed and played, or once control reports a stop.
func (r *Runner) Run(jobs []Job, concurrency int, startGameNo int, control *Control) error {
	if concurrency < 1 {
		concurrency = 1
	}
	var nextJob atomic.Int64
	var gameCounter atomic.Int64
	gameCounter.Store(int64(startGameNo) - 1)

	g := new(errgroup.Group)
	for w := 0; w < concurrency; w++ {
		g.Go(func() error {
			r.worker(jobs, &nextJob, &gameCounter, control)
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) worker(jobs []Job, nextJob, gameCounter *atomic.Int64, control *Control) {
	for {
		if control.Stopped() {
			return
		}
		control.WaitIfPaused()
		if control.Stopped() {
			return
		}

		idx := nextJob.Add(1) - 1
		if idx >= int64(len(jobs)) {
			return
		}
		job := jobs[idx]
		gameNo := int(gameCounter.Add(1))

		if r.sinks.OnJobEvent != nil {
			r.sinks.OnJobEvent(job, gameNo, true)
		}

		lease := r.pool.AcquirePair(job.Fixture.WhiteEngineID, job.Fixture.BlackEngineID)
		result, err := r.playGame(job, gameNo, lease.White(), lease.Black(), control)
		if err != nil {
			r.log.Error().Err(err).Int("game_no", gameNo).Msg("game aborted")
		}
		r.noteFailure(lease.WhiteID(), lease.White(), gameNo, control)
		r.noteFailure(lease.BlackID(), lease.Black(), gameNo, control)
		lease.Release()

		if r.sinks.OnJobEvent != nil {
			r.sinks.OnJobEvent(job, gameNo, false)
		}
		if err == nil && r.sinks.OnResult != nil {
			r.sinks.OnResult(result)
		}
	}
}

// playGame runs one fixture to completion, or to a manual-stop abort.
func (r *Runner) playGame(job Job, gameNo int, white, black *engine.Session, control *Control) (MatchResult, error) {
	tracker, err := position.NewFromFEN(job.Opening.FEN)
	if err != nil {
		return MatchResult{}, fmt.Errorf("runner: game %d: %w", gameNo, err)
	}

	white.NewGame()
	white.IsReady()
	black.NewGame()
	black.IsReady()

	moves := append([]string{}, job.Opening.Moves...)
	for _, mv := range job.Opening.Moves {
		if err := tracker.Apply(mv); err != nil {
			return MatchResult{}, fmt.Errorf("runner: game %d: opening move %q: %w", gameNo, mv, err)
		}
	}

	arbiter := termination.New(r.adjudication, r.resign, r.tlimits)
	wtime, btime := r.tc.BaseMS, r.tc.BaseMS

	timeoutMS := r.limits.GoTimeoutMS
	if timeoutMS <= 0 {
		timeoutMS = r.tc.MoveTimeMS + 5000
	}

	for {
		if !white.IsRunning() || !black.IsRunning() {
			// One side already died between games; report the crash
			// without issuing another go command.
			outcome := termination.Outcome{ShouldEnd: true, Result: "1/2-1/2", Reason: termination.ReasonCrash}
			if !white.IsRunning() {
				white.MarkCrashed()
				outcome.Result = "0-1"
			} else {
				outcome.Result = "1-0"
			}
			if !black.IsRunning() {
				black.MarkCrashed()
			}
			return r.finalize(job, gameNo, white, black, moves, tracker, outcome), nil
		}

		stopRequested := control.Stopped() && r.limits.AbortOnStop
		whiteToMove := tracker.WhiteToMove()
		mover, waiter := white, black
		if !whiteToMove {
			mover, waiter = black, white
		}
		_ = waiter

		var move string
		var goErr error
		moveStart := time.Now()
		if !stopRequested {
			if perr := mover.Position(job.Opening.FEN, moves); perr != nil {
				outcome := termination.Outcome{ShouldEnd: true, Reason: termination.ReasonCrash}
				if whiteToMove {
					outcome.Result = "0-1"
				} else {
					outcome.Result = "1-0"
				}
				return r.finalize(job, gameNo, white, black, moves, tracker, outcome), nil
			}
			move, goErr = mover.Go(engine.GoParams{
				WTimeMS: wtime, BTimeMS: btime,
				WIncMS: r.tc.IncMS, BIncMS: r.tc.IncMS,
				MoveTimeMS: r.tc.MoveTimeMS, TimeoutMS: timeoutMS,
			})
		}
		elapsed := time.Since(moveStart)

		whiteInfo := termination.EngineInfo{Running: white.IsRunning()}
		blackInfo := termination.EngineInfo{Running: black.IsRunning()}
		moverInfo := &whiteInfo
		if !whiteToMove {
			moverInfo = &blackInfo
		}
		moverInfo.Eval = mover.LastEval()
		switch mover.LastFailure() {
		case engine.FailureEngineExited, engine.FailureHandshakeFailed, engine.FailureHandshakeTimeout, engine.FailureWriteFailed:
			moverInfo.Crashed = true
		case engine.FailureTimeout:
			moverInfo.TimedOut = true
		case engine.FailureNoBestmove:
			moverInfo.NoMove = true
		}
		if goErr != nil && mover.LastFailure() == engine.FailureNone {
			moverInfo.Crashed = true
		}

		var probe termination.ProbeInfo
		if r.prober != nil {
			probe = r.prober(tracker)
		}

		state := termination.GameState{
			WTimeMS: wtime, BTimeMS: btime,
			WhiteToMove:   whiteToMove,
			PositionKey:   tracker.Key(),
			HalfmoveClock: tracker.HalfmoveClock(),
		}
		repCount := tracker.RepetitionCount(tracker.Key())
		outcome := arbiter.ShouldEnd(state, whiteInfo, blackInfo, probe, stopRequested, len(moves), repCount)
		if outcome.ShouldEnd {
			return r.finalize(job, gameNo, white, black, moves, tracker, outcome), nil
		}

		if err := tracker.Apply(move); err != nil {
			badMoveOutcome := termination.Outcome{ShouldEnd: true, Reason: termination.ReasonCrash}
			if whiteToMove {
				badMoveOutcome.Result = "0-1"
			} else {
				badMoveOutcome.Result = "1-0"
			}
			return r.finalize(job, gameNo, white, black, moves, tracker, badMoveOutcome), nil
		}
		moves = append(moves, move)

		if whiteToMove {
			wtime -= int(elapsed.Milliseconds())
			wtime += r.tc.IncMS
			if wtime < 0 {
				wtime = 0
			}
		} else {
			btime -= int(elapsed.Milliseconds())
			btime += r.tc.IncMS
			if btime < 0 {
				btime = 0
			}
		}

		if r.sinks.OnLive != nil {
			r.sinks.OnLive(job, gameNo, len(moves), move, !whiteToMove)
		}
	}
}

func (r *Runner) finalize(job Job, gameNo int, white, black *engine.Session, moves []string, tracker *position.Tracker, outcome termination.Outcome) MatchResult {
	return MatchResult{
		Job:           job,
		GameNo:        gameNo,
		Result:        outcome.Result,
		Reason:        outcome.Reason,
		TablebaseUsed: outcome.TablebaseUsed,
		Moves:         moves,
		WhiteName:     white.Name(),
		BlackName:     black.Name(),
		StartFEN:      job.Opening.FEN,
	}
}

// noteFailure restarts any engine that ended its last game in failure and
// records the game number against the watchdog's sliding window, escalating
// to a pause or stop once the window's failure count crosses the configured
// threshold. The restart itself is unconditional: the threshold only gates
// the pause/stop escalation, not the restart.
func (r *Runner) noteFailure(engineID int, session *engine.Session, gameNo int, control *Control) {
	failure := session.LastFailure()
	if failure == engine.FailureNone {
		return
	}

	r.log.Warn().
		Str("engine", session.Name()).
		Int("engine_id", engineID).
		Int("game_no", gameNo).
		Str("failure", failure.String()).
		Msgf("WATCHDOG: Engine %q unresponsive, restarting...", session.Name())

	if err := r.pool.RestartEngine(engineID); err != nil {
		r.log.Error().Err(err).Int("engine_id", engineID).Msg("WATCHDOG: engine restart failed, escalating")
		if r.watchdog.PauseOnUnhealthy {
			control.Pause()
		} else {
			control.RequestStop()
		}
		return
	}

	if r.watchdog.MaxFailures <= 0 {
		return
	}

	r.failureMu.Lock()
	hist := append(r.failureHistory[engineID], gameNo)
	windowStart := gameNo - r.watchdog.FailureWindowGames
	kept := hist[:0]
	for _, g := range hist {
		if r.watchdog.FailureWindowGames <= 0 || g > windowStart {
			kept = append(kept, g)
		}
	}
	r.failureHistory[engineID] = kept
	count := len(kept)
	r.failureMu.Unlock()

	if count <= r.watchdog.MaxFailures {
		return
	}

	r.log.Warn().Int("engine_id", engineID).Int("count", count).Msg("WATCHDOG: failure window exceeded, escalating")
	if r.watchdog.PauseOnUnhealthy {
		control.Pause()
	} else {
		control.RequestStop()
	}
}
