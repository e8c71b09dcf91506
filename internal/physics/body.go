package physics

import (
	"math"

	"github.com/san-kum/melter/internal/dynamo"
	"github.com/san-kum/melter/internal/lattice"
)

const (
	DefaultMass     = 20.0
	DefaultDamping  = 0.5
	DefaultSubsteps = 8
	Gravity         = 9.81
)

// Body integrates lattice particle motion from spring constants and
// external forces. It keeps its own positions; the lattice's build
// positions stay untouched.
type Body struct {
	mass     float64
	damping  float64
	gravity  bool
	substeps int
	floor    float64

	rest    []float64
	initial []dynamo.Vec3
	pos     []dynamo.Vec3
	vel     []dynamo.Vec3
	force   []dynamo.Vec3
}

type Option func(*Body)

func WithMass(m float64) Option    { return func(b *Body) { b.mass = m } }
func WithDamping(c float64) Option { return func(b *Body) { b.damping = c } }
func WithGravity(on bool) Option   { return func(b *Body) { b.gravity = on } }
func WithSubsteps(n int) Option    { return func(b *Body) { b.substeps = n } }
func WithFloor(y float64) Option   { return func(b *Body) { b.floor = y } }

// New starts every particle at rest at its build position. Spring rest
// lengths are the build distances, and the floor defaults to the lattice's
// lowest y.
func New(l *lattice.Lattice, opts ...Option) *Body {
	min, _ := l.Bounds()
	b := &Body{
		mass:     DefaultMass,
		damping:  DefaultDamping,
		gravity:  true,
		substeps: DefaultSubsteps,
		floor:    min.Y,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.substeps < 1 {
		b.substeps = 1
	}

	n := l.Len()
	b.initial = make([]dynamo.Vec3, n)
	for i, p := range l.Particles {
		b.initial[i] = p.Position
	}
	b.pos = make([]dynamo.Vec3, n)
	b.vel = make([]dynamo.Vec3, n)
	b.force = make([]dynamo.Vec3, n)

	b.rest = make([]float64, len(l.Springs))
	for s, sp := range l.Springs {
		b.rest[s] = l.Particles[sp.B].Position.Sub(l.Particles[sp.A].Position).Length()
	}

	b.Reset()
	return b
}

// Apply advances the bodies by dt. forces holds one external force per
// particle and is held constant across substeps. A spring whose constant
// has gone negative is treated as slack.
func (b *Body) Apply(springs []lattice.Spring, forces []dynamo.Vec3, dt float64) {
	h := dt / float64(b.substeps)
	for step := 0; step < b.substeps; step++ {
		b.accumulate(springs, forces)
		b.integrate(h)
	}
}

func (b *Body) accumulate(springs []lattice.Spring, forces []dynamo.Vec3) {
	for i := range b.force {
		f := b.vel[i].Scale(-b.damping)
		if i < len(forces) {
			f = f.Add(forces[i])
		}
		if b.gravity {
			f.Y -= b.mass * Gravity
		}
		b.force[i] = f
	}

	for s, sp := range springs {
		if s >= len(b.rest) {
			break
		}
		k := math.Max(sp.CurrentConstant, 0)
		if k == 0 {
			continue
		}
		d := b.pos[sp.B].Sub(b.pos[sp.A])
		length := d.Length()
		if length == 0 {
			continue
		}
		f := d.Scale(k * (length - b.rest[s]) / length)
		b.force[sp.A] = b.force[sp.A].Add(f)
		b.force[sp.B] = b.force[sp.B].Sub(f)
	}
}

// integrate is semi-implicit Euler with a hard floor.
func (b *Body) integrate(h float64) {
	inv := 1 / b.mass
	for i := range b.pos {
		b.vel[i] = b.vel[i].Add(b.force[i].Scale(inv * h))
		b.pos[i] = b.pos[i].Add(b.vel[i].Scale(h))
		if b.pos[i].Y < b.floor {
			b.pos[i].Y = b.floor
			if b.vel[i].Y < 0 {
				b.vel[i].Y = 0
			}
		}
	}
}

// Positions returns the current particle positions. The slice is owned by
// the body and is overwritten by the next Apply.
func (b *Body) Positions() []dynamo.Vec3 { return b.pos }

// Velocities returns the current particle velocities.
func (b *Body) Velocities() []dynamo.Vec3 { return b.vel }

// KineticEnergy sums 1/2 m v^2 over all particles.
func (b *Body) KineticEnergy() float64 {
	var e float64
	for _, v := range b.vel {
		e += 0.5 * b.mass * v.LengthSq()
	}
	return e
}

// Reset puts every particle back at rest at its build position.
func (b *Body) Reset() {
	copy(b.pos, b.initial)
	for i := range b.vel {
		b.vel[i] = dynamo.Vec3{}
		b.force[i] = dynamo.Vec3{}
	}
}
