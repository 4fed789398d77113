package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validTOML = `
mode = "round_robin"
concurrency = 2
checkpoint_path = "/tmp/checkpoint.json"

[[engines]]
name = "engine-a"
command = "/usr/bin/engine-a"

[[engines]]
name = "engine-b"
command = "/usr/bin/engine-b"
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, "runner.toml", validTOML)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Engines) != 2 {
		t.Fatalf("len(Engines) = %d, want 2", len(cfg.Engines))
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTemp(t, "runner.toml", `
mode = "swiss"
checkpoint_path = "/tmp/checkpoint.json"

[[engines]]
name = "a"
command = "/bin/a"
[[engines]]
name = "b"
command = "/bin/b"
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency default = %d, want 1", cfg.Concurrency)
	}
	if cfg.GamesPerPairing != 1 {
		t.Errorf("GamesPerPairing default = %d, want 1", cfg.GamesPerPairing)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel default = %q, want info", cfg.LogLevel)
	}
	if cfg.CheckpointIntervalSecs != 30 {
		t.Errorf("CheckpointIntervalSecs default = %d, want 30", cfg.CheckpointIntervalSecs)
	}
	if cfg.ByePoints == nil || *cfg.ByePoints != 1.0 {
		t.Errorf("ByePoints default = %v, want 1.0", cfg.ByePoints)
	}
}

func TestLoadHonorsExplicitZeroByePoints(t *testing.T) {
	path := writeTemp(t, "runner.toml", `
mode = "swiss"
checkpoint_path = "/tmp/checkpoint.json"
bye_points = 0

[[engines]]
name = "a"
command = "/bin/a"
[[engines]]
name = "b"
command = "/bin/b"
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ByePoints == nil || *cfg.ByePoints != 0 {
		t.Errorf("ByePoints = %v, want an explicit 0 to survive applyDefaults", cfg.ByePoints)
	}
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	path := writeTemp(t, "runner.toml", `
mode = "elimination"
checkpoint_path = "/tmp/checkpoint.json"
[[engines]]
name = "a"
command = "/bin/a"
[[engines]]
name = "b"
command = "/bin/b"
`)
	if _, err := Load(path, ""); err == nil {
		t.Error("Load() with an invalid mode returned no error")
	}
}

func TestLoadRejectsTooFewEngines(t *testing.T) {
	path := writeTemp(t, "runner.toml", `
mode = "round_robin"
checkpoint_path = "/tmp/checkpoint.json"
[[engines]]
name = "a"
command = "/bin/a"
`)
	if _, err := Load(path, ""); err == nil {
		t.Error("Load() with a single engine returned no error, want a validation failure")
	}
}

func TestLoadRejectsMissingCheckpointPath(t *testing.T) {
	path := writeTemp(t, "runner.toml", `
mode = "round_robin"
[[engines]]
name = "a"
command = "/bin/a"
[[engines]]
name = "b"
command = "/bin/b"
`)
	if _, err := Load(path, ""); err == nil {
		t.Error("Load() with no checkpoint_path returned no error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml"), ""); err == nil {
		t.Error("Load() on a missing file returned no error")
	}
}
