// Package vibration generates the random per-particle forces that stand in
// for thermal agitation.
package vibration

import (
	"math/rand"

	"github.com/san-kum/melter/internal/dynamo"
)

// Generator draws one random force per particle per step.
type Generator struct {
	amplitude float64
	rng       *rand.Rand
}

// New returns a generator scaling unit-ball samples by amplitude. An
// amplitude of zero disables vibration.
func New(amplitude float64, src rand.Source) *Generator {
	return &Generator{amplitude: amplitude, rng: rand.New(src)}
}

func (g *Generator) Amplitude() float64 { return g.amplitude }

// ForceFor returns one vibration force. The force does not depend on the
// particle; every call draws a fresh sample.
func (g *Generator) ForceFor() dynamo.Vec3 {
	if g.amplitude == 0 {
		return dynamo.Vec3{}
	}
	return InsideUnitSphere(g.rng).Scale(g.amplitude)
}

// Fill writes one force per slot.
func (g *Generator) Fill(forces []dynamo.Vec3) {
	for i := range forces {
		forces[i] = g.ForceFor()
	}
}

// InsideUnitSphere draws a point uniformly from the solid unit ball.
func InsideUnitSphere(rng *rand.Rand) dynamo.Vec3 {
	for {
		p := dynamo.Vec3{
			X: 2*rng.Float64() - 1,
			Y: 2*rng.Float64() - 1,
			Z: 2*rng.Float64() - 1,
		}
		if p.LengthSq() <= 1 {
			return p
		}
	}
}
