// Package orchestrator drives one tournament run end to end: it builds
// fixtures, owns the engine pool and standings table, runs the Match Runner
// for round-robin in one call or Swiss one round at a time, and keeps the
// checkpoint and metrics files current while the run is live.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tourney/internal/checkpoint"
	"tourney/internal/engine"
	"tourney/internal/pool"
	"tourney/internal/runner"
	"tourney/internal/schedule"
	"tourney/internal/standings"
	"tourney/internal/termination"
)

// Mode selects the pairing scheme for a run.
type Mode int

const (
	ModeRoundRobin Mode = iota
	ModeSwiss
)

// Config is everything the orchestrator needs to run or resume a tournament.
// It is the in-memory form of a decoded RunnerConfig (internal/config).
type Config struct {
	Mode Mode

	RunID string

	Engines []engine.Spec
	EngineCwd string

	Concurrency int

	TimeControl runner.TimeControl
	Limits      runner.Limits
	Watchdog    runner.WatchdogConfig

	Adjudication termination.ScoreAdjudicationConfig
	Resign       termination.ResignConfig
	GameLimits   termination.Limits

	DoubleRoundRobin bool
	GamesPerPairing  int
	RepeatCount      int
	MaxGames         int

	TotalRounds  int
	AvoidRepeats bool
	// ByePoints is the standings credit a Swiss bye receives; a bye is
	// recorded only when this is greater than zero, matching the
	// bye_points config gate.
	ByePoints float64

	Openings []schedule.Opening

	Event, Site string

	CheckpointPath         string
	CheckpointIntervalSecs int
	MetricsPath            string
	MetricsIntervalSecs    int

	ConfigHash string
}

// ArchiveSink persists one completed game's row; a nil sink is a no-op.
type ArchiveSink interface {
	Record(result runner.MatchResult) error
}

// BroadcastSink publishes one live-record update; a nil sink is a no-op.
type BroadcastSink interface {
	Publish(job runner.Job, gameNo, ply int, move string, whiteToMove bool)
}

// Metrics is the periodic snapshot written to the metrics file.
type Metrics struct {
	ActiveGames         int    `json:"active_games"`
	QueueRemaining       int    `json:"queue_remaining"`
	TotalGames           int    `json:"total_games"`
	EnginesRunning       int    `json:"engines_running"`
	LastGameEndTime      string `json:"last_game_end_time"`
	DiskWriteErrorsCount int64  `json:"disk_write_errors_count"`
}

// StateSnapshot is the control surface's GET /state payload.
type StateSnapshot struct {
	RunID            string `json:"run_id"`
	Mode             string `json:"mode"`
	CurrentRound     int    `json:"current_round"`
	TotalRounds      int    `json:"total_rounds"`
	GamesCompleted   int    `json:"games_completed"`
	TotalGames       int    `json:"total_games"`
	Paused           bool   `json:"paused"`
	Stopped          bool   `json:"stopped"`
	LastGameEndTime  string `json:"last_game_end_time"`
}

// Orchestrator owns one tournament run's engine pool, scheduler state,
// standings, and background checkpoint/metrics tasks.
type Orchestrator struct {
	cfg Config
	log zerolog.Logger

	pool  *pool.Pool
	table *standings.Table
	run   *runner.Runner

	control *runner.Control

	archive   ArchiveSink
	broadcast BroadcastSink

	mu                sync.Mutex
	state             checkpoint.State
	totalFixtures     int
	completedFixtures mapset.Set[int]

	standingsCache *xsync.MapOf[int, standings.Row]

	diskWriteErrors int64
	lastGameEndTime string

	queueRemaining int
	activeGames    int
	currentRound   int

	swissByeHistory   map[int]bool
	swissOpponents    map[int][]int
	swissColorHistory map[int]schedule.ColorHistory
	swissPairsPlayed  mapset.Set[int64]

	// swissRoundFixtures/swissRoundCompleted track which fixtures of the
	// Swiss round currently in flight have finished, so a checkpoint taken
	// mid-round can record the remainder as pending_pairings_current_round.
	swissRoundFixtures  []schedule.Fixture
	swissRoundCompleted map[int]bool

	// resumedPendingFixtures, when non-empty, replaces the next call to the
	// Swiss scheduler with the exact fixture list a crashed run had already
	// built for its in-flight round, rather than pairing a fresh one.
	resumedPendingFixtures []schedule.Fixture

	// rrFixtures/rrOpenings cache the round-robin schedule and its assigned
	// openings so a checkpoint can report next_fixture_index/next_game.
	rrFixtures []schedule.Fixture
	rrOpenings []schedule.Opening

	completedGameRows []checkpoint.CompletedGame
	activeGameRows    map[int]checkpoint.ActiveGame // keyed by game number
}

func (o *Orchestrator) engineName(id int) string {
	if id < 0 || id >= len(o.cfg.Engines) {
		return ""
	}
	return o.cfg.Engines[id].Name
}

// New builds an orchestrator ready to Run or Resume. It does not start the
// engine pool; call Run to do that.
func New(cfg Config, log zerolog.Logger, archive ArchiveSink, broadcast BroadcastSink) *Orchestrator {
	names := make([]string, len(cfg.Engines))
	for i, s := range cfg.Engines {
		names[i] = s.Name
	}

	o := &Orchestrator{
		cfg:               cfg,
		log:               log,
		pool:              pool.New(cfg.Engines, cfg.EngineCwd, log),
		table:             standings.New(names),
		control:           runner.NewControl(),
		archive:           archive,
		broadcast:         broadcast,
		completedFixtures: mapset.NewThreadUnsafeSet[int](),
		standingsCache:    xsync.NewMapOf[int, standings.Row](),
		swissByeHistory:   make(map[int]bool),
		swissOpponents:    make(map[int][]int),
		swissColorHistory: make(map[int]schedule.ColorHistory),
		swissPairsPlayed:  mapset.NewThreadUnsafeSet[int64](),
		activeGameRows:    make(map[int]checkpoint.ActiveGame),
	}
	for i, row := range o.table.Snapshot() {
		o.standingsCache.Store(i, row)
	}

	o.run = runner.New(o.pool, cfg.TimeControl, cfg.Limits, cfg.Watchdog,
		cfg.Adjudication, cfg.Resign, cfg.GameLimits, nil,
		runner.Sinks{
			OnResult:   o.onResult,
			OnLive:     o.onLive,
			OnJobEvent: o.onJobEvent,
		}, log)
	return o
}

// Control exposes the pause/resume/stop surface to the control HTTP server.
func (o *Orchestrator) Control() *runner.Control { return o.control }

// Resume loads a checkpoint file and, if its config hash matches the current
// configuration, seeds completed/standings state from it. A hash mismatch is
// logged and treated as starting fresh: the checkpoint is ignored rather
// than aborting the run.
func (o *Orchestrator) Resume(path string) error {
	state, err := checkpoint.Load(path)
	if err != nil {
		return fmt.Errorf("orchestrator: resume: %w", err)
	}
	if state.ConfigHash != o.cfg.ConfigHash {
		o.log.Warn().
			Str("checkpoint_hash", state.ConfigHash).
			Str("config_hash", o.cfg.ConfigHash).
			Msg("checkpoint config hash mismatch, starting fresh instead of resuming")
		return nil
	}

	o.mu.Lock()
	o.state = state
	for _, idx := range state.CompletedFixtureIndices {
		o.completedFixtures.Add(idx)
	}
	o.lastGameEndTime = state.LastGameEndTime
	o.currentRound = state.Swiss.CurrentRound
	for _, p := range state.Swiss.PairingsPlayed {
		o.swissPairsPlayed.Add(schedule.PairKey(p.WhiteEngineID, p.BlackEngineID))
	}
	for id, h := range state.Swiss.ColorHistory {
		o.swissColorHistory[id] = schedule.ColorHistory{LastColor: h.LastColor, Streak: h.Streak}
	}
	for _, id := range state.Swiss.ByeHistory {
		o.swissByeHistory[id] = true
	}
	if len(state.Swiss.PendingPairingsCurrentRound) > 0 {
		pending := make([]schedule.Fixture, len(state.Swiss.PendingPairingsCurrentRound))
		for i, pf := range state.Swiss.PendingPairingsCurrentRound {
			pending[i] = schedule.Fixture{
				RoundIndex:             pf.RoundIndex,
				WhiteEngineID:          pf.WhiteEngineID,
				BlackEngineID:          pf.BlackEngineID,
				GameIndexWithinPairing: pf.GameIndexWithinPairing,
				PairingID:              pf.PairingID,
			}
		}
		o.resumedPendingFixtures = pending
	}
	o.mu.Unlock()

	rows := make([]standings.Row, len(state.Standings))
	for i, r := range state.Standings {
		rows[i] = standings.Row{Name: r.Name, Games: r.Games, Wins: r.Wins, Draws: r.Draws, Losses: r.Losses, Points: r.Points}
	}
	if len(rows) > 0 {
		o.table.LoadSnapshot(rows)
		for i, r := range rows {
			o.standingsCache.Store(i, r)
		}
	}
	return nil
}

// Run starts the engine pool, runs the configured tournament to completion
// or to a requested stop, drains background tasks, and writes a final
// checkpoint.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.pool.StartAll(); err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	defer o.pool.StopAll()

	bgCtx, cancelBG := context.WithCancel(ctx)
	bg := new(errgroup.Group)
	bg.Go(func() error { return o.checkpointLoop(bgCtx) })
	bg.Go(func() error { return o.metricsLoop(bgCtx) })

	var runErr error
	switch o.cfg.Mode {
	case ModeSwiss:
		runErr = o.runSwiss(ctx)
	default:
		runErr = o.runRoundRobin(ctx)
	}

	cancelBG()
	_ = bg.Wait()

	o.writeCheckpoint()
	o.rotateCheckpoint()
	return runErr
}

// rotateCheckpoint archives a compressed snapshot of the just-written final
// checkpoint so a finished run's record survives the next run overwriting
// the live checkpoint file. Failures are logged, never fatal.
func (o *Orchestrator) rotateCheckpoint() {
	if o.cfg.CheckpointPath == "" {
		return
	}
	stamp := time.Now().UTC().Format("20060102T150405Z")
	if err := checkpoint.RotateCompressed(o.cfg.CheckpointPath, stamp); err != nil {
		o.log.Warn().Err(err).Msg("checkpoint rotation failed")
	}
}

func (o *Orchestrator) runRoundRobin(ctx context.Context) error {
	fixtures := schedule.BuildRoundRobin(schedule.RoundRobinParams{
		EngineCount:      len(o.cfg.Engines),
		DoubleRoundRobin: o.cfg.DoubleRoundRobin,
		GamesPerPairing:  o.cfg.GamesPerPairing,
		RepeatCount:      o.cfg.RepeatCount,
	})
	if o.cfg.MaxGames > 0 && o.cfg.MaxGames < len(fixtures) {
		fixtures = fixtures[:o.cfg.MaxGames]
	}
	o.totalFixtures = len(fixtures)

	openings := schedule.AssignRoundRobin(len(fixtures), o.cfg.Openings, o.cfg.GamesPerPairing)

	o.mu.Lock()
	o.rrFixtures = fixtures
	o.rrOpenings = openings
	o.mu.Unlock()

	var jobs []runner.Job
	for i, f := range fixtures {
		if o.completedFixtures.Contains(i) {
			continue
		}
		jobs = append(jobs, runner.Job{
			Fixture:      f,
			FixtureIndex: i,
			Opening:      openings[i],
			Event:        o.cfg.Event,
			Site:         o.cfg.Site,
			RoundLabel:   fmt.Sprintf("%d", f.RoundIndex+1),
		})
	}

	o.mu.Lock()
	o.queueRemaining = len(jobs)
	o.mu.Unlock()

	startGameNo := o.state.LastGameNo + 1
	return o.run.Run(jobs, o.cfg.Concurrency, startGameNo, o.control)
}

func (o *Orchestrator) runSwiss(ctx context.Context) error {
	standingsByID := func() []schedule.PlayerStanding {
		rows := o.table.Snapshot()
		out := make([]schedule.PlayerStanding, len(rows))
		for i, r := range rows {
			out[i] = schedule.PlayerStanding{EngineID: i, Points: r.Points}
		}
		return out
	}

	gameNo := o.state.LastGameNo
	for o.currentRound < o.cfg.TotalRounds && !o.control.Stopped() {
		o.mu.Lock()
		resumed := o.resumedPendingFixtures
		o.resumedPendingFixtures = nil
		o.mu.Unlock()

		var roundFixtures []schedule.Fixture
		if len(resumed) > 0 {
			// A crashed run already built this round and recorded its
			// pairing/color/bye bookkeeping before it died; replay exactly
			// the fixtures it had not yet completed rather than pairing a
			// fresh round on top of history that is already accounted for.
			roundFixtures = resumed
		} else {
			o.mu.Lock()
			pairingsPlayed := make(map[int64]bool, o.swissPairsPlayed.Cardinality())
			for _, k := range o.swissPairsPlayed.ToSlice() {
				pairingsPlayed[k] = true
			}
			byeHistory := make(map[int]bool, len(o.swissByeHistory))
			for k, v := range o.swissByeHistory {
				byeHistory[k] = v
			}
			colorHistory := make(map[int]schedule.ColorHistory, len(o.swissColorHistory))
			for k, v := range o.swissColorHistory {
				colorHistory[k] = v
			}
			o.mu.Unlock()

			round := schedule.BuildRound(schedule.SwissRoundInput{
				RoundIndex:      o.currentRound,
				Standings:       standingsByID(),
				OpponentsPlayed: o.swissOpponents,
				ByeHistory:      byeHistory,
				ColorHistory:    colorHistory,
				PairingsPlayed:  pairingsPlayed,
				GamesPerPairing: o.cfg.GamesPerPairing,
				AvoidRepeats:    o.cfg.AvoidRepeats,
			})

			o.mu.Lock()
			for _, pr := range round.Pairs {
				o.swissOpponents[pr[0]] = append(o.swissOpponents[pr[0]], pr[1])
				o.swissOpponents[pr[1]] = append(o.swissOpponents[pr[1]], pr[0])
				o.swissPairsPlayed.Add(schedule.PairKey(pr[0], pr[1]))
			}
			for _, f := range round.Fixtures {
				white, black := schedule.ColorHistory{}, schedule.ColorHistory{}
				if h, ok := o.swissColorHistory[f.WhiteEngineID]; ok {
					white = h
				}
				if h, ok := o.swissColorHistory[f.BlackEngineID]; ok {
					black = h
				}
				o.swissColorHistory[f.WhiteEngineID] = advanceColor(white, 1)
				o.swissColorHistory[f.BlackEngineID] = advanceColor(black, -1)
			}
			if round.ByeTo >= 0 {
				o.swissByeHistory[round.ByeTo] = true
			}
			o.mu.Unlock()

			if round.ByeTo >= 0 && o.cfg.ByePoints > 0 {
				o.table.RecordBye(round.ByeTo, o.cfg.ByePoints)
				row := o.table.Snapshot()[round.ByeTo]
				o.standingsCache.Store(round.ByeTo, row)
			}

			roundFixtures = round.Fixtures
		}

		var jobs []runner.Job
		globalIdx := 0
		for _, f := range roundFixtures {
			opening := schedule.AssignSwissForIndex(gameNo+globalIdx, o.cfg.Openings, o.cfg.GamesPerPairing)
			jobs = append(jobs, runner.Job{
				Fixture:      f,
				FixtureIndex: globalIdx,
				Opening:      opening,
				Event:        o.cfg.Event,
				Site:         o.cfg.Site,
				RoundLabel:   fmt.Sprintf("%d", o.currentRound+1),
			})
			globalIdx++
		}

		o.mu.Lock()
		o.queueRemaining = len(jobs)
		o.swissRoundFixtures = roundFixtures
		o.swissRoundCompleted = make(map[int]bool, len(roundFixtures))
		o.mu.Unlock()

		gameNo++
		if err := o.run.Run(jobs, o.cfg.Concurrency, gameNo, o.control); err != nil {
			return err
		}
		gameNo += len(jobs) - 1

		o.currentRound++
	}
	return nil
}

func advanceColor(h schedule.ColorHistory, color int) schedule.ColorHistory {
	if h.LastColor == color {
		return schedule.ColorHistory{LastColor: color, Streak: h.Streak + 1}
	}
	return schedule.ColorHistory{LastColor: color, Streak: 1}
}

func (o *Orchestrator) onResult(result runner.MatchResult) {
	o.table.RecordResult(result.Job.Fixture.WhiteEngineID, result.Job.Fixture.BlackEngineID, result.Result)

	o.mu.Lock()
	o.completedFixtures.Add(result.Job.FixtureIndex)
	if o.swissRoundCompleted != nil {
		o.swissRoundCompleted[result.Job.FixtureIndex] = true
	}
	o.lastGameEndTime = time.Now().UTC().Format(time.RFC3339)
	o.state.LastGameNo = result.GameNo
	o.state.LastGameEndTime = o.lastGameEndTime
	o.completedGameRows = append(o.completedGameRows, checkpoint.CompletedGame{
		GameNo:       result.GameNo,
		FixtureIndex: result.Job.FixtureIndex,
		White:        result.WhiteName,
		Black:        result.BlackName,
		OpeningID:    result.Job.Opening.ID,
		Result:       result.Result,
		Termination:  result.Reason.String(),
	})
	o.mu.Unlock()

	o.standingsCache.Store(result.Job.Fixture.WhiteEngineID, o.table.Snapshot()[result.Job.Fixture.WhiteEngineID])
	o.standingsCache.Store(result.Job.Fixture.BlackEngineID, o.table.Snapshot()[result.Job.Fixture.BlackEngineID])

	if o.archive != nil {
		if err := o.archive.Record(result); err != nil {
			o.mu.Lock()
			o.diskWriteErrors++
			o.mu.Unlock()
			o.log.Warn().Err(err).Msg("results archive write failed")
		}
	}
}

func (o *Orchestrator) onLive(job runner.Job, gameNo, ply int, move string, whiteToMove bool) {
	if o.broadcast != nil {
		o.broadcast.Publish(job, gameNo, ply, move, whiteToMove)
	}
}

func (o *Orchestrator) onJobEvent(job runner.Job, gameNo int, started bool) {
	o.mu.Lock()
	if started {
		o.activeGames++
		if o.queueRemaining > 0 {
			o.queueRemaining--
		}
		o.activeGameRows[gameNo] = checkpoint.ActiveGame{
			GameNo:       gameNo,
			FixtureIndex: job.FixtureIndex,
			White:        o.engineName(job.Fixture.WhiteEngineID),
			Black:        o.engineName(job.Fixture.BlackEngineID),
			OpeningID:    job.Opening.ID,
		}
	} else {
		o.activeGames--
		delete(o.activeGameRows, gameNo)
	}
	o.mu.Unlock()
}

func (o *Orchestrator) checkpointLoop(ctx context.Context) error {
	interval := time.Duration(o.cfg.CheckpointIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			o.writeCheckpoint()
		}
	}
}

func (o *Orchestrator) metricsLoop(ctx context.Context) error {
	interval := time.Duration(o.cfg.MetricsIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			o.writeMetrics()
		}
	}
}

func (o *Orchestrator) writeCheckpoint() {
	if o.cfg.CheckpointPath == "" {
		return
	}
	state := o.snapshotCheckpointState()
	if err := checkpoint.Save(o.cfg.CheckpointPath, state); err != nil {
		o.mu.Lock()
		o.diskWriteErrors++
		o.mu.Unlock()
		o.log.Warn().Err(err).Msg("checkpoint write failed")
	}
}

func (o *Orchestrator) snapshotCheckpointState() checkpoint.State {
	o.mu.Lock()
	defer o.mu.Unlock()

	completed := o.completedFixtures.ToSlice()

	rows := o.table.Snapshot()
	standingsOut := make([]checkpoint.StandingsRow, len(rows))
	for i, r := range rows {
		standingsOut[i] = checkpoint.StandingsRow{Name: r.Name, Games: r.Games, Wins: r.Wins, Draws: r.Draws, Losses: r.Losses, Points: r.Points}
	}

	byeHistory := make([]int, 0, len(o.swissByeHistory))
	for id := range o.swissByeHistory {
		byeHistory = append(byeHistory, id)
	}
	pairingsPlayed := make([]checkpoint.SwissPairing, 0, o.swissPairsPlayed.Cardinality())
	for _, key := range o.swissPairsPlayed.ToSlice() {
		pairingsPlayed = append(pairingsPlayed, checkpoint.SwissPairing{
			WhiteEngineID: int(key >> 32),
			BlackEngineID: int(key & 0xffffffff),
		})
	}
	colorHistory := make([]checkpoint.SwissColorSnapshot, len(o.cfg.Engines))
	for id, h := range o.swissColorHistory {
		if id >= 0 && id < len(colorHistory) {
			colorHistory[id] = checkpoint.SwissColorSnapshot{LastColor: h.LastColor, Streak: h.Streak}
		}
	}

	var pendingCurrentRound []checkpoint.SwissPendingFixture
	for i, f := range o.swissRoundFixtures {
		if o.swissRoundCompleted[i] {
			continue
		}
		pendingCurrentRound = append(pendingCurrentRound, checkpoint.SwissPendingFixture{
			FixtureIndex:           i,
			RoundIndex:             f.RoundIndex,
			WhiteEngineID:          f.WhiteEngineID,
			BlackEngineID:          f.BlackEngineID,
			GameIndexWithinPairing: f.GameIndexWithinPairing,
			PairingID:              f.PairingID,
		})
	}

	activeGames := make([]checkpoint.ActiveGame, 0, len(o.activeGameRows))
	for _, g := range o.activeGameRows {
		activeGames = append(activeGames, g)
	}
	sort.Slice(activeGames, func(i, j int) bool { return activeGames[i].GameNo < activeGames[j].GameNo })

	nextFixtureIndex := len(o.rrFixtures)
	var nextGame checkpoint.NextGame
	for i := range o.rrFixtures {
		if o.completedFixtures.Contains(i) {
			continue
		}
		nextFixtureIndex = i
		f := o.rrFixtures[i]
		nextGame = checkpoint.NextGame{
			FixtureIndex: i,
			White:        o.engineName(f.WhiteEngineID),
			Black:        o.engineName(f.BlackEngineID),
		}
		if i < len(o.rrOpenings) {
			nextGame.OpeningID = o.rrOpenings[i].ID
		}
		break
	}

	state := o.state
	state.Version = 1
	state.ConfigHash = o.cfg.ConfigHash
	state.TotalGames = o.totalFixtures
	state.NextFixtureIndex = nextFixtureIndex
	// OpeningIndex mirrors completed-fixture count: openings are assigned
	// deterministically from a fixture's own index (schedule.AssignRoundRobin
	// / AssignSwissForIndex), so the next opening to consult is the same
	// cursor as the next fixture to dispatch.
	state.OpeningIndex = o.completedFixtures.Cardinality()
	state.CompletedFixtureIndices = completed
	state.CompletedGames = o.completedGameRows
	state.Standings = standingsOut
	state.ActiveGames = activeGames
	state.NextGame = nextGame
	state.LastGameEndTime = o.lastGameEndTime
	state.Swiss = checkpoint.SwissState{
		CurrentRound:                o.currentRound,
		ByeHistory:                  byeHistory,
		PairingsPlayed:              pairingsPlayed,
		ColorHistory:                colorHistory,
		PendingPairingsCurrentRound: pendingCurrentRound,
	}
	return state
}

func (o *Orchestrator) writeMetrics() {
	if o.cfg.MetricsPath == "" {
		return
	}
	o.mu.Lock()
	m := Metrics{
		ActiveGames:          o.activeGames,
		QueueRemaining:       o.queueRemaining,
		TotalGames:           o.totalFixtures,
		EnginesRunning:       o.pool.RunningCount(),
		LastGameEndTime:      o.lastGameEndTime,
		DiskWriteErrorsCount: o.diskWriteErrors,
	}
	o.mu.Unlock()

	if err := writeMetricsFile(o.cfg.MetricsPath, m); err != nil {
		o.mu.Lock()
		o.diskWriteErrors++
		o.mu.Unlock()
		o.log.Warn().Err(err).Msg("metrics write failed")
	}
}

// StateSnapshot returns the control surface's current state view.
func (o *Orchestrator) StateSnapshot() StateSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	modeName := "round_robin"
	if o.cfg.Mode == ModeSwiss {
		modeName = "swiss"
	}
	return StateSnapshot{
		RunID:           o.cfg.RunID,
		Mode:            modeName,
		CurrentRound:    o.currentRound,
		TotalRounds:     o.cfg.TotalRounds,
		GamesCompleted:  o.completedFixtures.Cardinality(),
		TotalGames:      o.totalFixtures,
		Paused:          o.control.Paused(),
		Stopped:         o.control.Stopped(),
		LastGameEndTime: o.lastGameEndTime,
	}
}

// StandingsSnapshot returns the read-mostly standings cache contents in
// engine id order, read without taking the standings table's own mutex.
func (o *Orchestrator) StandingsSnapshot() []standings.Row {
	out := make([]standings.Row, len(o.cfg.Engines))
	o.standingsCache.Range(func(id int, row standings.Row) bool {
		if id >= 0 && id < len(out) {
			out[id] = row
		}
		return true
	})
	return out
}
