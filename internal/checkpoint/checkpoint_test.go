package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComputeHashDeterministic(t *testing.T) {
	a := ComputeHash([]byte(`{"mode":"swiss"}`))
	b := ComputeHash([]byte(`{"mode":"swiss"}`))
	if a != b {
		t.Errorf("ComputeHash is not deterministic: %q != %q", a, b)
	}
}

func TestComputeHashDiffersOnInput(t *testing.T) {
	a := ComputeHash([]byte(`{"mode":"swiss"}`))
	b := ComputeHash([]byte(`{"mode":"round_robin"}`))
	if a == b {
		t.Errorf("ComputeHash produced the same hash for different payloads")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.json")

	want := State{
		Version:                 1,
		ConfigHash:              "abc123",
		TotalGames:              10,
		CompletedFixtureIndices: []int{0, 1, 2},
		Standings: []StandingsRow{
			{Name: "engine-a", Games: 3, Wins: 2, Draws: 1, Points: 2.5},
		},
		LastGameNo: 3,
		Swiss: SwissState{
			CurrentRound:   1,
			PairingsPlayed: []SwissPairing{{WhiteEngineID: 0, BlackEngineID: 1}},
		},
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ConfigHash != want.ConfigHash || got.TotalGames != want.TotalGames {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
	if len(got.CompletedFixtureIndices) != 3 {
		t.Errorf("CompletedFixtureIndices = %v, want 3 entries", got.CompletedFixtureIndices)
	}
	if got.Swiss.CurrentRound != 1 || len(got.Swiss.PairingsPlayed) != 1 {
		t.Errorf("Swiss = %+v, want round 1 with one pairing played", got.Swiss)
	}
}

func TestSaveLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.json")
	if err := Save(path, State{Version: 1}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file still present after Save()")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("Load() on a missing file returned no error")
	}
}
