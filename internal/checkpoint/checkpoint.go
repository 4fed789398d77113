// Package checkpoint persists and restores tournament progress as a fixed
// JSON schema, written atomically so a reader never observes a partial file.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const fnvOffset64 uint64 = 14695981039346656037
const fnvPrime64 uint64 = 1099511628211

// ComputeHash returns the decimal string of the FNV-1a 64-bit hash of
// payload, the canonical serialization of the runtime configuration.
func ComputeHash(payload []byte) string {
	hash := fnvOffset64
	for _, b := range payload {
		hash ^= uint64(b)
		hash *= fnvPrime64
	}
	return fmt.Sprintf("%d", hash)
}

// CompletedGame is one finished game's checkpoint metadata.
type CompletedGame struct {
	GameNo       int    `json:"game_no"`
	FixtureIndex int    `json:"fixture_index"`
	White        string `json:"white"`
	Black        string `json:"black"`
	OpeningID    string `json:"opening_id"`
	Result       string `json:"result"`
	Termination  string `json:"termination"`
	PGNOffset    int64  `json:"pgn_offset"`
	PGNPath      string `json:"pgn_path"`
}

// ActiveGame is one in-flight game's checkpoint metadata (same as
// CompletedGame minus the result).
type ActiveGame struct {
	GameNo       int    `json:"game_no"`
	FixtureIndex int    `json:"fixture_index"`
	White        string `json:"white"`
	Black        string `json:"black"`
	OpeningID    string `json:"opening_id"`
}

// StandingsRow is one engine's persisted standing.
type StandingsRow struct {
	Name   string  `json:"name"`
	Games  int     `json:"games"`
	Wins   int     `json:"wins"`
	Draws  int     `json:"draws"`
	Losses int     `json:"losses"`
	Points float64 `json:"points"`
}

// NextGame points at the next fixture to be dispatched.
type NextGame struct {
	FixtureIndex int    `json:"fixture_index"`
	White        string `json:"white"`
	Black        string `json:"black"`
	OpeningID    string `json:"opening_id"`
}

// SwissPairing records one played pair for rematch avoidance.
type SwissPairing struct {
	WhiteEngineID int `json:"white_engine_id"`
	BlackEngineID int `json:"black_engine_id"`
}

// SwissColorSnapshot records one engine's color-streak state.
type SwissColorSnapshot struct {
	LastColor int `json:"last_color"`
	Streak    int `json:"streak"`
}

// SwissPendingFixture is one not-yet-played fixture of the current round.
type SwissPendingFixture struct {
	FixtureIndex           int    `json:"fixture_index"`
	RoundIndex             int    `json:"round_index"`
	WhiteEngineID          int    `json:"white_engine_id"`
	BlackEngineID          int    `json:"black_engine_id"`
	GameIndexWithinPairing int    `json:"game_index_within_pairing"`
	PairingID              string `json:"pairing_id"`
}

// SwissState is the Swiss scheduler's persisted substate.
type SwissState struct {
	CurrentRound                int                   `json:"current_round"`
	ByeHistory                  []int                 `json:"bye_history"`
	PairingsPlayed              []SwissPairing        `json:"pairings_played"`
	ColorHistory                []SwissColorSnapshot  `json:"color_history"`
	PendingPairingsCurrentRound []SwissPendingFixture  `json:"pending_pairings_current_round"`
}

// State is the full checkpoint document.
type State struct {
	Version                  int             `json:"version"`
	ConfigHash               string          `json:"config_hash"`
	TotalGames               int             `json:"total_games"`
	NextFixtureIndex         int             `json:"next_fixture_index"`
	OpeningIndex             int             `json:"opening_index"`
	CompletedFixtureIndices  []int           `json:"completed_fixture_indices"`
	CompletedGames           []CompletedGame `json:"completed_games"`
	Standings                []StandingsRow  `json:"standings"`
	ActiveGames              []ActiveGame    `json:"active_games"`
	NextGame                 NextGame        `json:"next_game"`
	RNGSeed                  int64           `json:"rng_seed"`
	LastGameNo               int             `json:"last_game_no"`
	LastGameEndTime          string          `json:"last_game_end_time"`
	Swiss                    SwissState      `json:"swiss"`
}

// Save serializes state to path, writing to a temp file in the same
// directory and renaming over any existing file so readers never see a
// truncated checkpoint.
func Save(path string, state State) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("checkpoint: mkdir: %w", err)
		}
	}

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("checkpoint: rename: %w", err)
	}
	return nil
}

// Load reads and parses a checkpoint, tolerating missing optional fields
// by leaving them at their zero values.
func Load(path string) (State, error) {
	var state State
	payload, err := os.ReadFile(path)
	if err != nil {
		return state, fmt.Errorf("checkpoint: read %q: %w", path, err)
	}
	if err := json.Unmarshal(payload, &state); err != nil {
		return state, fmt.Errorf("checkpoint: parse %q: %w", path, err)
	}
	return state, nil
}
