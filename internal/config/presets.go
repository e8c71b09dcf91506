package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/melter/internal/dynamo"
)

// Presets tweak DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	"small": func(c *Config) {
		c.Lattice = LatticeConfig{Width: 8, Height: 8, Depth: 8, CountW: 3, CountH: 3, CountD: 3}
		c.Duration = 10
	},
	"large": func(c *Config) {
		c.Lattice = LatticeConfig{Width: 30, Height: 30, Depth: 30, CountW: 10, CountH: 10, CountD: 10}
		c.Duration = 60
	},
	"slow": func(c *Config) {
		c.DiffusionGain = 2
		c.Duration = 90
	},
	"violent": func(c *Config) {
		c.Vibration = 400
	},
	"noisy": func(c *Config) {
		c.Ambient = AmbientConfig{Temperature: 10, Noise: 10, Scale: DefaultNoiseScale}
	},
	"frame-locked": func(c *Config) {
		c.MaxCatchUp = 1
	},
	"center": func(c *Config) {
		c.Source = SourceConfig{I: 3, J: 3, K: 3, Temperature: 100}
		c.Physics.Gravity = false
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// LookupPreset is GetPreset with an error for unknown names.
func LookupPreset(name string) (*Config, error) {
	cfg := GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownPreset, name, ListPresets())
	}
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
