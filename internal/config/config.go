// Package config decodes the on-disk runner configuration (TOML; an optional
// .env file is loaded into the process environment first, but no field is
// read from the environment) and validates it with struct tags before it
// reaches the orchestrator.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// EngineConfig describes one engine entry in the config file.
type EngineConfig struct {
	Name    string            `toml:"name" validate:"required"`
	Command string            `toml:"command" validate:"required"`
	Args    []string          `toml:"args"`
	Options map[string]string `toml:"options"`
}

// ScoreAdjudicationConfig mirrors termination.ScoreAdjudicationConfig in the
// decoded document.
type ScoreAdjudicationConfig struct {
	Enabled   bool `toml:"enabled"`
	DrawCP    int  `toml:"draw_cp"`
	DrawMoves int  `toml:"draw_moves"`
	WinCP     int  `toml:"win_cp"`
	WinMoves  int  `toml:"win_moves"`
	MinDepth  int  `toml:"min_depth"`
}

// ResignConfig mirrors termination.ResignConfig in the decoded document.
type ResignConfig struct {
	Enabled  bool `toml:"enabled"`
	CP       int  `toml:"cp"`
	Moves    int  `toml:"moves"`
	MinDepth int  `toml:"min_depth"`
}

// OpeningConfig is one named opening entry.
type OpeningConfig struct {
	ID    string   `toml:"id"`
	FEN   string   `toml:"fen"`
	Moves []string `toml:"moves"`
}

// RunnerConfig is the full decoded configuration document.
type RunnerConfig struct {
	Mode        string `toml:"mode" validate:"required,oneof=round_robin swiss"`
	Concurrency int    `toml:"concurrency" validate:"required,min=1"`
	EngineCwd   string `toml:"engine_cwd"`

	Engines []EngineConfig `toml:"engines" validate:"required,min=2,dive"`

	BaseTimeMS int `toml:"base_time_ms" validate:"required,min=0"`
	IncrementMS int `toml:"increment_ms" validate:"min=0"`
	MoveTimeMS int `toml:"move_time_ms" validate:"min=0"`
	GoTimeoutMS int `toml:"go_timeout_ms" validate:"min=0"`

	MaxPlies         int  `toml:"max_plies" validate:"min=0"`
	DrawByRepetition bool `toml:"draw_by_repetition"`
	AbortOnStop      bool `toml:"abort_on_stop"`

	MaxFailures        int  `toml:"max_failures" validate:"min=0"`
	FailureWindowGames int  `toml:"failure_window_games" validate:"min=0"`
	PauseOnUnhealthy   bool `toml:"pause_on_unhealthy"`

	ScoreAdjudication ScoreAdjudicationConfig `toml:"score_adjudication"`
	Resign            ResignConfig            `toml:"resign"`

	DoubleRoundRobin bool `toml:"double_round_robin"`
	GamesPerPairing  int  `toml:"games_per_pairing" validate:"min=0"`
	RepeatCount      int  `toml:"repeat_count" validate:"min=0"`
	MaxGames         int  `toml:"max_games" validate:"min=0"`
	TotalRounds      int  `toml:"total_rounds" validate:"min=0"`
	AvoidRepeats     bool `toml:"avoid_repeats"`
	// ByePoints is nil when the config file omits bye_points entirely,
	// which defaults to 1.0; an explicit bye_points = 0 disables bye
	// credit rather than being indistinguishable from omission.
	ByePoints *float64 `toml:"bye_points" validate:"omitempty,min=0"`

	Openings []OpeningConfig `toml:"openings" validate:"dive"`

	Event string `toml:"event"`
	Site  string `toml:"site"`

	CheckpointPath         string `toml:"checkpoint_path" validate:"required"`
	CheckpointIntervalSecs int    `toml:"checkpoint_interval_seconds" validate:"min=0"`
	MetricsPath            string `toml:"metrics_path"`
	MetricsIntervalSecs    int    `toml:"metrics_interval_seconds" validate:"min=0"`

	ArchivePath      string `toml:"archive_path"`
	BroadcastURL     string `toml:"broadcast_url"`
	BroadcastSubject string `toml:"broadcast_subject"`

	OperatorToken string `toml:"operator_token"`
	ControlAddr   string `toml:"control_addr"`

	LogLevel string `toml:"log_level"`
	LogJSON  bool   `toml:"log_json"`
}

var validate = validator.New()

// Load reads envPath (if non-empty, via godotenv, silently skipped when the
// file does not exist) then decodes and validates the TOML document at path.
func Load(path, envPath string) (*RunnerConfig, error) {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("config: loading %q: %w", envPath, err)
			}
		}
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}

	var cfg RunnerConfig
	if err := toml.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *RunnerConfig) {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 1
	}
	if cfg.GamesPerPairing == 0 {
		cfg.GamesPerPairing = 1
	}
	if cfg.RepeatCount == 0 {
		cfg.RepeatCount = 1
	}
	if cfg.ByePoints == nil {
		def := 1.0
		cfg.ByePoints = &def
	}
	if cfg.CheckpointIntervalSecs == 0 {
		cfg.CheckpointIntervalSecs = 30
	}
	if cfg.MetricsIntervalSecs == 0 {
		cfg.MetricsIntervalSecs = 10
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}
