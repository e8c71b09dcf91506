// Package experiment assembles a headless melter run: the melter, its
// optional physics body and a metric recorder.
package experiment

import (
	"context"
	"errors"
	"time"

	"github.com/san-kum/melter/internal/config"
	"github.com/san-kum/melter/internal/dynamo"
	"github.com/san-kum/melter/internal/metrics"
	"github.com/san-kum/melter/internal/physics"
	"github.com/san-kum/melter/internal/sim"
	"github.com/san-kum/melter/internal/storage"
)

type Config struct {
	Preset      string
	Sim         *config.Config
	SampleEvery int
}

type Experiment struct {
	cfg      Config
	melter   *sim.Melter
	body     *physics.Body
	recorder *metrics.Recorder
}

// New builds the melter and attaches a physics body when the config
// enables one.
func New(cfg Config, opts ...sim.Option) (*Experiment, error) {
	m, err := sim.New(cfg.Sim, opts...)
	if err != nil {
		return nil, err
	}

	e := &Experiment{cfg: cfg, melter: m}
	if cfg.Sim.Physics.Enabled {
		e.body = NewBody(cfg.Sim, m)
		m.SetPhysics(e.body)
	}

	e.recorder = metrics.NewRecorder(cfg.SampleEvery, metrics.Default(m.Lattice(), m.Diffusion().SourceIndex())...)
	m.AddObserver(e.recorder)
	return e, nil
}

// NewBody builds the reference physics body for m's lattice from cfg.
func NewBody(cfg *config.Config, m *sim.Melter) *physics.Body {
	p := cfg.Physics
	opts := []physics.Option{
		physics.WithMass(p.Mass),
		physics.WithDamping(p.Damping),
		physics.WithGravity(p.Gravity),
	}
	if p.Substeps > 0 {
		opts = append(opts, physics.WithSubsteps(p.Substeps))
	}
	return physics.New(m.Lattice(), opts...)
}

// Run feeds the start delay plus the configured duration in fixed frames.
// A run halted by invalid state still returns its partial result alongside
// the error; a cancelled run returns only the error.
func (e *Experiment) Run(ctx context.Context) (*storage.Run, error) {
	cfg := e.cfg.Sim
	start := time.Now()
	err := e.melter.Run(ctx, cfg.FrameDuration(), cfg.TotalDuration())
	if err != nil && !errors.Is(err, dynamo.ErrInvalidState) {
		return nil, err
	}

	run := &storage.Run{
		Preset:  e.cfg.Preset,
		Config:  cfg,
		Lattice: e.melter.Lattice(),
		Steps:   e.melter.Steps(),
		SimTime: e.melter.SimTime(),
		Halted:  err,
		Names:   e.recorder.Names(),
		Samples: e.recorder.Samples(),
		Metrics: e.recorder.Summary(),
	}
	run.Metrics["wall_seconds"] = time.Since(start).Seconds()
	if e.body != nil {
		run.Metrics["kinetic_energy"] = e.body.KineticEnergy()
	}
	return run, err
}

func (e *Experiment) Melter() *sim.Melter         { return e.melter }
func (e *Experiment) Body() *physics.Body         { return e.body }
func (e *Experiment) Recorder() *metrics.Recorder { return e.recorder }
