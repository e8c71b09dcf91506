package config

import (
	"math"
	"os"
	"time"

	"github.com/san-kum/melter/internal/dynamo"
	"github.com/san-kum/melter/internal/lattice"
	"github.com/san-kum/melter/internal/thermal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultExtent         = 20.0
	DefaultCount          = 6
	DefaultSpringConstant = 1000.0
	DefaultVibration      = 50.0
	DefaultStartDelay     = 3.0
	DefaultTimestep       = 0.05
	DefaultDuration       = 30.0
	DefaultFrameRate      = 60
	DefaultNoiseScale     = 0.15
)

type Config struct {
	Lattice        LatticeConfig `yaml:"lattice"`
	SpringConstant float64       `yaml:"spring_constant"`
	Vibration      float64       `yaml:"vibration"`
	DiffusionGain  float64       `yaml:"diffusion_gain"`
	StartDelay     float64       `yaml:"start_delay"`
	Timestep       float64       `yaml:"timestep"`
	MaxCatchUp     int           `yaml:"max_catch_up"`
	Duration       float64       `yaml:"duration"`
	FrameRate      int           `yaml:"frame_rate"`
	Seed           int64         `yaml:"seed"`
	Source         SourceConfig  `yaml:"source"`
	Ambient        AmbientConfig `yaml:"ambient"`
	Physics        PhysicsConfig `yaml:"physics"`
}

type LatticeConfig struct {
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Depth  float64    `yaml:"depth"`
	CountW int        `yaml:"count_w"`
	CountH int        `yaml:"count_h"`
	CountD int        `yaml:"count_d"`
	Origin [3]float64 `yaml:"origin"`
}

type SourceConfig struct {
	I           int     `yaml:"i"`
	J           int     `yaml:"j"`
	K           int     `yaml:"k"`
	Temperature float64 `yaml:"temperature"`
}

type AmbientConfig struct {
	Temperature float64 `yaml:"temperature"`
	Noise       float64 `yaml:"noise"`
	Scale       float64 `yaml:"scale"`
}

type PhysicsConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Mass     float64 `yaml:"mass"`
	Damping  float64 `yaml:"damping"`
	Gravity  bool    `yaml:"gravity"`
	Substeps int     `yaml:"substeps"`
}

// DefaultConfig is the classic melting demo: a 6x6x6 cube of side 20
// heated from its (0,0,0) corner after a three second pause.
func DefaultConfig() *Config {
	return &Config{
		Lattice: LatticeConfig{
			Width:  DefaultExtent,
			Height: DefaultExtent,
			Depth:  DefaultExtent,
			CountW: DefaultCount,
			CountH: DefaultCount,
			CountD: DefaultCount,
		},
		SpringConstant: DefaultSpringConstant,
		Vibration:      DefaultVibration,
		DiffusionGain:  thermal.DefaultGain,
		StartDelay:     DefaultStartDelay,
		Timestep:       DefaultTimestep,
		Duration:       DefaultDuration,
		FrameRate:      DefaultFrameRate,
		Source:         SourceConfig{Temperature: thermal.DefaultSourceTemperature},
		Ambient:        AmbientConfig{Scale: DefaultNoiseScale},
		Physics: PhysicsConfig{
			Enabled:  true,
			Mass:     20,
			Damping:  0.5,
			Gravity:  true,
			Substeps: 8,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations that would build a degenerate lattice or
// a scheduler that never advances.
func (c *Config) Validate() error {
	if err := c.Dimensions().Validate(); err != nil {
		return err
	}

	finite := []struct {
		name string
		v    float64
	}{
		{"spring_constant", c.SpringConstant},
		{"vibration", c.Vibration},
		{"diffusion_gain", c.DiffusionGain},
		{"start_delay", c.StartDelay},
		{"timestep", c.Timestep},
		{"duration", c.Duration},
		{"source.temperature", c.Source.Temperature},
		{"ambient.temperature", c.Ambient.Temperature},
		{"ambient.noise", c.Ambient.Noise},
		{"ambient.scale", c.Ambient.Scale},
	}
	for _, f := range finite {
		if !dynamo.IsFinite(f.v) {
			return dynamo.Invalidf("%s must be finite, got %v", f.name, f.v)
		}
	}

	if c.Timestep <= 0 {
		return dynamo.Invalidf("timestep must be positive, got %v", c.Timestep)
	}
	if c.TimestepDuration() <= 0 {
		return dynamo.Invalidf("timestep %v is below clock resolution", c.Timestep)
	}
	if c.StartDelay < 0 {
		return dynamo.Invalidf("start_delay must not be negative, got %v", c.StartDelay)
	}
	if c.Vibration < 0 {
		return dynamo.Invalidf("vibration must not be negative, got %v", c.Vibration)
	}
	if c.DiffusionGain < 0 {
		return dynamo.Invalidf("diffusion_gain must not be negative, got %v", c.DiffusionGain)
	}
	if c.DiffusionGain*c.Timestep > 1 {
		return dynamo.Invalidf("diffusion_gain*timestep must not exceed 1, got %v", c.DiffusionGain*c.Timestep)
	}
	if c.Duration < 0 {
		return dynamo.Invalidf("duration must not be negative, got %v", c.Duration)
	}
	if c.FrameRate <= 0 {
		return dynamo.Invalidf("frame_rate must be positive, got %d", c.FrameRate)
	}
	if c.MaxCatchUp < 0 {
		return dynamo.Invalidf("max_catch_up must not be negative, got %d", c.MaxCatchUp)
	}

	l := c.Lattice
	s := c.Source
	if s.I < 0 || s.I >= l.CountW || s.J < 0 || s.J >= l.CountH || s.K < 0 || s.K >= l.CountD {
		return dynamo.Invalidf("source (%d,%d,%d) outside %dx%dx%d lattice", s.I, s.J, s.K, l.CountW, l.CountH, l.CountD)
	}

	if c.Physics.Enabled {
		if !dynamo.IsFinite(c.Physics.Mass) || c.Physics.Mass <= 0 {
			return dynamo.Invalidf("physics.mass must be positive, got %v", c.Physics.Mass)
		}
		if !dynamo.IsFinite(c.Physics.Damping) || c.Physics.Damping < 0 {
			return dynamo.Invalidf("physics.damping must not be negative, got %v", c.Physics.Damping)
		}
	}
	return nil
}

func (c *Config) Dimensions() lattice.Dimensions {
	l := c.Lattice
	return lattice.Dimensions{
		Width: l.Width, Height: l.Height, Depth: l.Depth,
		CountW: l.CountW, CountH: l.CountH, CountD: l.CountD,
		Origin: dynamo.Vec3{X: l.Origin[0], Y: l.Origin[1], Z: l.Origin[2]},
	}
}

func (c *Config) StartDelayDuration() time.Duration { return Seconds(c.StartDelay) }
func (c *Config) TimestepDuration() time.Duration   { return Seconds(c.Timestep) }
func (c *Config) FrameDuration() time.Duration      { return time.Second / time.Duration(c.FrameRate) }

// TotalDuration is the start delay plus the simulated duration.
func (c *Config) TotalDuration() time.Duration {
	return c.StartDelayDuration() + Seconds(c.Duration)
}

func (c *Config) ThermalSource() thermal.Source {
	return thermal.Source{I: c.Source.I, J: c.Source.J, K: c.Source.K, Temperature: c.Source.Temperature}
}

func (c *Config) AmbientField() thermal.Ambient {
	return thermal.Ambient{
		Temperature: c.Ambient.Temperature,
		Noise:       c.Ambient.Noise,
		Scale:       c.Ambient.Scale,
		Seed:        c.Seed,
	}
}

// Seconds converts a float seconds value to a Duration, rounding to the
// nearest nanosecond.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// Params lists the scalar fields SetParam accepts.
var Params = []string{"vibration", "diffusion_gain", "spring_constant", "timestep", "source_temperature", "mass", "damping"}

// SetParam sets one scalar field by its yaml name.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "vibration":
		c.Vibration = v
	case "diffusion_gain":
		c.DiffusionGain = v
	case "spring_constant":
		c.SpringConstant = v
	case "timestep":
		c.Timestep = v
	case "source_temperature":
		c.Source.Temperature = v
	case "mass":
		c.Physics.Mass = v
	case "damping":
		c.Physics.Damping = v
	default:
		return dynamo.Invalidf("unknown parameter %q (available: %v)", name, Params)
	}
	return nil
}
