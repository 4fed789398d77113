package config

import "testing"

func sampleConfig() *RunnerConfig {
	return &RunnerConfig{
		Mode:        "swiss",
		Concurrency: 4,
		Engines: []EngineConfig{
			{Name: "a", Command: "/bin/a"},
			{Name: "b", Command: "/bin/b"},
		},
		BaseTimeMS:    60000,
		TotalRounds:   5,
		CheckpointPath: "/tmp/checkpoint.json",
	}
}

func TestConfigHashIsDeterministic(t *testing.T) {
	a, err := sampleConfig().ConfigHash()
	if err != nil {
		t.Fatalf("ConfigHash() error = %v", err)
	}
	b, err := sampleConfig().ConfigHash()
	if err != nil {
		t.Fatalf("ConfigHash() error = %v", err)
	}
	if a != b {
		t.Errorf("ConfigHash() not deterministic across equal configs: %q != %q", a, b)
	}
}

func TestConfigHashChangesWithContent(t *testing.T) {
	base, err := sampleConfig().ConfigHash()
	if err != nil {
		t.Fatalf("ConfigHash() error = %v", err)
	}
	changed := sampleConfig()
	changed.TotalRounds = 6
	other, err := changed.ConfigHash()
	if err != nil {
		t.Fatalf("ConfigHash() error = %v", err)
	}
	if base == other {
		t.Errorf("ConfigHash() unchanged despite a different TotalRounds")
	}
}

func TestToOrchestratorConfigTranslatesMode(t *testing.T) {
	cfg := sampleConfig()
	out, err := cfg.ToOrchestratorConfig()
	if err != nil {
		t.Fatalf("ToOrchestratorConfig() error = %v", err)
	}
	if len(out.Engines) != 2 {
		t.Errorf("len(Engines) = %d, want 2", len(out.Engines))
	}
	if out.TimeControl.BaseMS != 60000 {
		t.Errorf("TimeControl.BaseMS = %d, want 60000", out.TimeControl.BaseMS)
	}
	if out.ConfigHash == "" {
		t.Error("ConfigHash is empty")
	}
}

func TestEngineSpecsCarriesOptions(t *testing.T) {
	cfg := sampleConfig()
	cfg.Engines[0].Options = map[string]string{"Hash": "128"}
	specs := cfg.EngineSpecs()
	if specs[0].UCIOptions["Hash"] != "128" {
		t.Errorf("EngineSpecs()[0].UCIOptions[\"Hash\"] = %q, want 128", specs[0].UCIOptions["Hash"])
	}
}

func TestOpeningsTranslation(t *testing.T) {
	cfg := sampleConfig()
	cfg.Openings = []OpeningConfig{{ID: "op1", FEN: "fen1", Moves: []string{"e2e4"}}}
	out := cfg.OpeningSpecs()
	if len(out) != 1 || out[0].ID != "op1" || out[0].FEN != "fen1" {
		t.Errorf("OpeningSpecs() = %+v, want one translated opening", out)
	}
}
