// Package automation runs scripted sequences of melter runs from YAML.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/melter/internal/config"
	"github.com/san-kum/melter/internal/experiment"
	"github.com/san-kum/melter/internal/sim"
	"github.com/san-kum/melter/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a named list of runs executed in order.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (default when empty), applies params
// by name, then the non-zero overrides.
type ScenarioStep struct {
	Name        string             `yaml:"name"`
	Preset      string             `yaml:"preset"`
	Duration    float64            `yaml:"duration"`
	Seed        int64              `yaml:"seed"`
	Params      map[string]float64 `yaml:"params"`
	SampleEvery int                `yaml:"sample_every"`
}

// StepResult is the outcome of one scenario step. RunID is empty when the
// run was not stored.
type StepResult struct {
	Name  string
	RunID string
	Steps int
	Err   error
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Config builds the validated configuration for a step.
func (s ScenarioStep) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "default"
	}
	cfg, err := config.LookupPreset(name)
	if err != nil {
		return nil, err
	}
	for k, v := range s.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	return cfg, cfg.Validate()
}

// RunScenario executes every step and stores each run in st. A step that
// halts on invalid state is stored and recorded; any other failure stops
// the scenario.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logger.Info("scenario step", "scenario", scenario.Name, "step", name, "n", i+1, "of", len(scenario.Steps))

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(experiment.Config{
			Preset:      step.Preset,
			Sim:         cfg,
			SampleEvery: step.SampleEvery,
		}, sim.WithLogger(logger))
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		run, runErr := exp.Run(ctx)
		if run == nil {
			return results, fmt.Errorf("step %d run: %w", i+1, runErr)
		}

		runID, err := st.Save(run)
		if err != nil {
			return results, fmt.Errorf("step %d save: %w", i+1, err)
		}

		results = append(results, StepResult{Name: name, RunID: runID, Steps: run.Steps, Err: runErr})
	}

	return results, nil
}
