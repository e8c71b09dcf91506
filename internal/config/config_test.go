package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/melter/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Lattice.CountW != 6 || cfg.Lattice.Width != 20 {
		t.Errorf("unexpected lattice defaults: %+v", cfg.Lattice)
	}
	if cfg.SpringConstant != 1000 {
		t.Errorf("expected spring constant 1000, got %f", cfg.SpringConstant)
	}
	if cfg.StartDelayDuration() != 3*time.Second {
		t.Errorf("expected 3s start delay, got %v", cfg.StartDelayDuration())
	}
	if cfg.TimestepDuration() != 50*time.Millisecond {
		t.Errorf("expected 50ms timestep, got %v", cfg.TimestepDuration())
	}
	if cfg.TotalDuration() != 33*time.Second {
		t.Errorf("expected 33s total, got %v", cfg.TotalDuration())
	}
	if cfg.FrameDuration() != 16666666*time.Nanosecond {
		t.Errorf("unexpected frame duration %v", cfg.FrameDuration())
	}
	if src := cfg.ThermalSource(); src.I != 0 || src.J != 0 || src.K != 0 || src.Temperature != 100 {
		t.Errorf("unexpected source: %+v", src)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"count_w 1", func(c *Config) { c.Lattice.CountW = 1 }},
		{"count_d 0", func(c *Config) { c.Lattice.CountD = 0 }},
		{"zero height", func(c *Config) { c.Lattice.Height = 0 }},
		{"zero timestep", func(c *Config) { c.Timestep = 0 }},
		{"negative timestep", func(c *Config) { c.Timestep = -0.05 }},
		{"sub-nanosecond timestep", func(c *Config) { c.Timestep = 1e-12 }},
		{"negative start delay", func(c *Config) { c.StartDelay = -1 }},
		{"negative vibration", func(c *Config) { c.Vibration = -1 }},
		{"negative gain", func(c *Config) { c.DiffusionGain = -1 }},
		{"unstable gain", func(c *Config) { c.DiffusionGain = 100 }},
		{"unstable timestep", func(c *Config) { c.Timestep = 0.2 }},
		{"negative catch up", func(c *Config) { c.MaxCatchUp = -1 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }},
		{"nan spring", func(c *Config) { c.SpringConstant = math.NaN() }},
		{"inf source", func(c *Config) { c.Source.Temperature = math.Inf(1) }},
		{"source outside", func(c *Config) { c.Source.I = 6 }},
		{"negative source", func(c *Config) { c.Source.K = -1 }},
		{"zero mass", func(c *Config) { c.Physics.Mass = 0 }},
		{"negative damping", func(c *Config) { c.Physics.Damping = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestValidate_GainAtStabilityLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DiffusionGain = 20
	if err := cfg.Validate(); err != nil {
		t.Errorf("gain*timestep of 1 should be valid, got %v", err)
	}
}

func TestValidate_PhysicsDisabledSkipsMass(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Physics.Enabled = false
	cfg.Physics.Mass = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "melter.yaml")

	cfg := DefaultConfig()
	cfg.Lattice.CountW = 4
	cfg.Vibration = 12.5
	cfg.Source = SourceConfig{I: 1, J: 2, K: 3, Temperature: 80}
	cfg.Lattice.Origin = [3]float64{1, 2, 3}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Lattice.CountW != 4 || loaded.Vibration != 12.5 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if loaded.Source != cfg.Source {
		t.Errorf("source = %+v, want %+v", loaded.Source, cfg.Source)
	}
	if d := loaded.Dimensions(); d.Origin.X != 1 || d.Origin.Z != 3 {
		t.Errorf("origin = %v", d.Origin)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("vibration: 0\nlattice:\n  count_w: 3\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Vibration != 0 {
		t.Errorf("expected vibration 0, got %f", cfg.Vibration)
	}
	if cfg.Lattice.CountW != 3 || cfg.Lattice.CountH != DefaultCount {
		t.Errorf("unexpected lattice: %+v", cfg.Lattice)
	}
	if cfg.Timestep != DefaultTimestep {
		t.Errorf("timestep default lost: %f", cfg.Timestep)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Lattice.CountW != 3 {
		t.Errorf("expected count 3, got %d", cfg.Lattice.CountW)
	}

	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestGetPreset_Fresh(t *testing.T) {
	a := GetPreset("default")
	a.Vibration = 999
	if b := GetPreset("default"); b.Vibration != DefaultVibration {
		t.Error("presets share state")
	}
}

func TestLookupPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	_, err := LookupPreset("nonexistent")
	if !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want time.Duration
	}{
		{0.05, 50 * time.Millisecond},
		{3, 3 * time.Second},
		{1.0 / 60, 16666667 * time.Nanosecond},
	}
	for _, tt := range tests {
		if got := Seconds(tt.in); got != tt.want {
			t.Errorf("Seconds(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()
	for i, name := range Params {
		if err := cfg.SetParam(name, float64(i+1)); err != nil {
			t.Errorf("SetParam(%s): %v", name, err)
		}
	}
	if cfg.Vibration != 1 || cfg.Physics.Damping != 7 || cfg.Source.Temperature != 5 {
		t.Errorf("params not applied: %+v", cfg)
	}
	if err := cfg.SetParam("bogus", 1); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
