package config

import (
	"encoding/json"
	"fmt"

	"tourney/internal/checkpoint"
	"tourney/internal/engine"
	"tourney/internal/orchestrator"
	"tourney/internal/runner"
	"tourney/internal/schedule"
	"tourney/internal/termination"
)

// EngineSpecs translates the decoded engine entries into engine.Spec values.
func (c *RunnerConfig) EngineSpecs() []engine.Spec {
	specs := make([]engine.Spec, len(c.Engines))
	for i, e := range c.Engines {
		specs[i] = engine.Spec{
			Name:       e.Name,
			Command:    e.Command,
			Args:       e.Args,
			UCIOptions: e.Options,
		}
	}
	return specs
}

// OpeningSpecs translates the decoded opening entries into schedule.Opening values.
func (c *RunnerConfig) OpeningSpecs() []schedule.Opening {
	out := make([]schedule.Opening, len(c.Openings))
	for i, o := range c.Openings {
		out[i] = schedule.Opening{ID: o.ID, FEN: o.FEN, Moves: o.Moves}
	}
	return out
}

// ConfigHash returns the FNV-1a64 hash of the canonical JSON serialization
// of the whole runner configuration, used to gate resume.
func (c *RunnerConfig) ConfigHash() (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("config: hashing: %w", err)
	}
	return checkpoint.ComputeHash(payload), nil
}

// byePointsOrDefault returns the configured bye credit, or 1.0 if the
// config document never set one (e.g. it bypassed Load's applyDefaults).
func byePointsOrDefault(v *float64) float64 {
	if v == nil {
		return 1.0
	}
	return *v
}

// ToOrchestratorConfig builds an orchestrator.Config from the decoded
// document, computing the config hash along the way.
func (c *RunnerConfig) ToOrchestratorConfig() (orchestrator.Config, error) {
	hash, err := c.ConfigHash()
	if err != nil {
		return orchestrator.Config{}, err
	}

	mode := orchestrator.ModeRoundRobin
	if c.Mode == "swiss" {
		mode = orchestrator.ModeSwiss
	}

	return orchestrator.Config{
		Mode:        mode,
		Engines:     c.EngineSpecs(),
		EngineCwd:   c.EngineCwd,
		Concurrency: c.Concurrency,

		TimeControl: runner.TimeControl{
			BaseMS:     c.BaseTimeMS,
			IncMS:      c.IncrementMS,
			MoveTimeMS: c.MoveTimeMS,
		},
		Limits: runner.Limits{
			MaxPlies:    c.MaxPlies,
			GoTimeoutMS: c.GoTimeoutMS,
			AbortOnStop: c.AbortOnStop,
		},
		Watchdog: runner.WatchdogConfig{
			MaxFailures:        c.MaxFailures,
			FailureWindowGames: c.FailureWindowGames,
			PauseOnUnhealthy:   c.PauseOnUnhealthy,
		},

		Adjudication: termination.ScoreAdjudicationConfig{
			Enabled:   c.ScoreAdjudication.Enabled,
			DrawCP:    c.ScoreAdjudication.DrawCP,
			DrawMoves: c.ScoreAdjudication.DrawMoves,
			WinCP:     c.ScoreAdjudication.WinCP,
			WinMoves:  c.ScoreAdjudication.WinMoves,
			MinDepth:  c.ScoreAdjudication.MinDepth,
		},
		Resign: termination.ResignConfig{
			Enabled:  c.Resign.Enabled,
			CP:       c.Resign.CP,
			Moves:    c.Resign.Moves,
			MinDepth: c.Resign.MinDepth,
		},
		GameLimits: termination.Limits{
			MaxPlies:         c.MaxPlies,
			DrawByRepetition: c.DrawByRepetition,
		},

		DoubleRoundRobin: c.DoubleRoundRobin,
		GamesPerPairing:  c.GamesPerPairing,
		RepeatCount:      c.RepeatCount,
		MaxGames:         c.MaxGames,

		TotalRounds:  c.TotalRounds,
		AvoidRepeats: c.AvoidRepeats,
		ByePoints:    byePointsOrDefault(c.ByePoints),

		Openings: c.OpeningSpecs(),

		Event: c.Event,
		Site:  c.Site,

		CheckpointPath:         c.CheckpointPath,
		CheckpointIntervalSecs: c.CheckpointIntervalSecs,
		MetricsPath:            c.MetricsPath,
		MetricsIntervalSecs:    c.MetricsIntervalSecs,

		ConfigHash: hash,
	}, nil
}
