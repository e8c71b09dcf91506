package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/melter/internal/colormap"
	"github.com/san-kum/melter/internal/config"
	"github.com/san-kum/melter/internal/dynamo"
	"github.com/san-kum/melter/internal/lattice"
	"github.com/san-kum/melter/internal/thermal"
	"github.com/san-kum/melter/internal/vibration"
)

// Physics resolves spring constants and external forces into particle
// motion. Positions it computes are never read back by the melter.
type Physics interface {
	Apply(springs []lattice.Spring, forces []dynamo.Vec3, dt float64)
}

// Renderer receives one colour per particle after every step.
type Renderer interface {
	Paint(colors []colormap.RGB)
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(step int, t float64, l *lattice.Lattice)
}

type resetter interface {
	Reset()
}

// Melter owns a lattice and advances it one scheduled step at a time.
type Melter struct {
	cfg       *config.Config
	lat       *lattice.Lattice
	diffusion *thermal.Diffusion
	vibration *vibration.Generator
	sched     *Scheduler

	physics   Physics
	renderer  Renderer
	observers []Observer
	logger    *slog.Logger
	src       rand.Source

	initial []float64
	forces  []dynamo.Vec3
	colors  []colormap.RGB
	dt      float64
	step    int
	err     error
}

type Option func(*Melter)

func WithLogger(l *slog.Logger) Option {
	return func(m *Melter) { m.logger = l }
}

// WithRandSource overrides the vibration random source, which is otherwise
// seeded from the config seed.
func WithRandSource(src rand.Source) Option {
	return func(m *Melter) { m.src = src }
}

// New validates cfg and assembles the lattice and its engines. Temperatures
// start from the ambient field with the source pinned.
func New(cfg *config.Config, opts ...Option) (*Melter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Melter{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		dt:     cfg.TimestepDuration().Seconds(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.src == nil {
		m.src = rand.NewSource(cfg.Seed)
	}

	lat, err := lattice.Build(cfg.Dimensions(), cfg.SpringConstant)
	if err != nil {
		return nil, fmt.Errorf("build lattice: %w", err)
	}
	m.lat = lat

	m.diffusion, err = thermal.NewDiffusion(lat,
		thermal.WithGain(cfg.DiffusionGain),
		thermal.WithSource(cfg.ThermalSource()),
	)
	if err != nil {
		return nil, fmt.Errorf("diffusion: %w", err)
	}

	m.sched, err = NewScheduler(cfg.StartDelayDuration(), cfg.TimestepDuration(), cfg.MaxCatchUp)
	if err != nil {
		return nil, err
	}

	m.vibration = vibration.New(cfg.Vibration, m.src)
	m.initial = cfg.AmbientField().Field(lat, cfg.ThermalSource())
	m.forces = make([]dynamo.Vec3, lat.Len())
	m.colors = make([]colormap.RGB, lat.Len())

	lat.Reset(m.initial)
	colormap.Fill(lat, m.colors)

	m.logger.Debug("lattice built",
		"particles", lat.Len(),
		"springs", len(lat.Springs),
		"timestep", cfg.TimestepDuration(),
		"start_delay", cfg.StartDelayDuration(),
	)
	return m, nil
}

// SetPhysics attaches the physics service that consumes spring constants
// and vibration forces.
func (m *Melter) SetPhysics(p Physics) { m.physics = p }

// SetRenderer attaches a renderer and paints the current colours into it.
func (m *Melter) SetRenderer(r Renderer) {
	m.renderer = r
	if r != nil {
		r.Paint(m.colors)
	}
}

func (m *Melter) AddObserver(o Observer) { m.observers = append(m.observers, o) }

// Tick feeds one frame of real time and runs every step that falls due.
// It returns the number of steps run. After a step fails the melter is
// halted and every later Tick returns the same error.
func (m *Melter) Tick(elapsed time.Duration) (int, error) {
	if m.err != nil {
		return 0, m.err
	}

	before := m.sched.Phase()
	n := m.sched.Advance(elapsed)
	if before != m.sched.Phase() {
		m.logger.Info("simulation started", "after", m.sched.Elapsed())
	}

	for i := 0; i < n; i++ {
		if err := m.Step(); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Step runs one simulation step regardless of the scheduler.
func (m *Melter) Step() error {
	if m.err != nil {
		return m.err
	}

	m.diffusion.Step(m.dt)
	if idx, ok := m.firstInvalid(); ok {
		return m.halt(fmt.Errorf("%w: particle %v", dynamo.ErrInvalidState, m.lat.Particles[idx].Index))
	}

	thermal.UpdateSprings(m.lat)
	if idx, ok := m.firstInvalidSpring(); ok {
		sp := m.lat.Springs[idx]
		return m.halt(fmt.Errorf("%w: spring %v-%v", dynamo.ErrInvalidState,
			m.lat.Particles[sp.A].Index, m.lat.Particles[sp.B].Index))
	}

	m.vibration.Fill(m.forces)
	if m.physics != nil {
		m.physics.Apply(m.lat.Springs, m.forces, m.dt)
	}

	colormap.Fill(m.lat, m.colors)
	if m.renderer != nil {
		m.renderer.Paint(m.colors)
	}

	m.step++
	t := m.SimTime()
	for _, o := range m.observers {
		o.OnStep(m.step, t, m.lat)
	}
	return nil
}

func (m *Melter) halt(err error) error {
	m.err = &dynamo.SimulationError{Step: m.step, Time: m.SimTime(), Wrapped: err}
	m.logger.Error("simulation halted", "err", m.err)
	return m.err
}

// firstInvalidSpring catches temperatures that are finite but large enough
// to overflow the stiffness polynomial.
func (m *Melter) firstInvalidSpring() (int, bool) {
	for i := range m.lat.Springs {
		if !dynamo.IsFinite(m.lat.Springs[i].CurrentConstant) {
			return i, true
		}
	}
	return 0, false
}

func (m *Melter) firstInvalid() (int, bool) {
	for i := range m.lat.Particles {
		if !dynamo.IsFinite(m.lat.Particles[i].Temperature) {
			return i, true
		}
	}
	return 0, false
}

// Reset restores the initial temperatures and springs, rewinds the
// scheduler to Waiting and resets the physics service when it supports it.
func (m *Melter) Reset() {
	m.lat.Reset(m.initial)
	m.sched.Reset()
	m.step = 0
	m.err = nil
	for i := range m.forces {
		m.forces[i] = dynamo.Vec3{}
	}
	if r, ok := m.physics.(resetter); ok {
		r.Reset()
	}
	colormap.Fill(m.lat, m.colors)
	if m.renderer != nil {
		m.renderer.Paint(m.colors)
	}
}

func (m *Melter) Config() *config.Config        { return m.cfg }
func (m *Melter) Lattice() *lattice.Lattice     { return m.lat }
func (m *Melter) Scheduler() *Scheduler         { return m.sched }
func (m *Melter) Diffusion() *thermal.Diffusion { return m.diffusion }
func (m *Melter) Colors() []colormap.RGB        { return m.colors }
func (m *Melter) Forces() []dynamo.Vec3         { return m.forces }
func (m *Melter) Steps() int                    { return m.step }
func (m *Melter) Phase() Phase                  { return m.sched.Phase() }
func (m *Melter) Err() error                    { return m.err }

// SimTime is the simulated time covered by completed steps, in seconds.
func (m *Melter) SimTime() float64 { return float64(m.step) * m.dt }
