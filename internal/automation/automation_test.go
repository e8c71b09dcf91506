package automation

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/melter/internal/dynamo"
	"github.com/san-kum/melter/internal/storage"
)

const scenarioYAML = `name: quick
description: two short runs
steps:
  - name: calm
    preset: small
    duration: 0.5
    params:
      vibration: 0
  - preset: small
    duration: 0.5
    seed: 7
    params:
      diffusion_gain: 2
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "quick" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	cfg, err := sc.Steps[1].Config()
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.DiffusionGain != 2 || cfg.Seed != 7 || cfg.Duration != 0.5 || cfg.Lattice.CountW != 3 {
		t.Errorf("step config not applied: %+v", cfg)
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for a scenario without steps")
	}
}

func TestStepConfig_Errors(t *testing.T) {
	if _, err := (ScenarioStep{Preset: "nope"}).Config(); !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
	if _, err := (ScenarioStep{Params: map[string]float64{"timestep": -1}}).Config(); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(t.TempDir())

	results, err := RunScenario(context.Background(), sc, st, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "calm" || results[1].Name != "step-2" {
		t.Errorf("unexpected names %q, %q", results[0].Name, results[1].Name)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: %v", r.Name, r.Err)
		}
		if _, err := st.Load(r.RunID); err != nil {
			t.Errorf("%s not stored: %v", r.Name, err)
		}
	}
}
