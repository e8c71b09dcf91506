package thermal

import (
	"github.com/aquilax/go-perlin"
	"github.com/san-kum/melter/internal/lattice"
)

const (
	perlinAlpha = 2.0
	perlinBeta  = 2.0
	perlinOcts  = 3
)

// Ambient is the starting temperature field. Noise adds a Perlin
// perturbation of that amplitude, sampled at position*Scale. Perlin noise
// is zero on integer sample points, so pick a Scale that avoids them.
type Ambient struct {
	Temperature float64
	Noise       float64
	Scale       float64
	Seed        int64
}

// Field returns the initial temperature of every particle, with the source
// already pinned.
func (a Ambient) Field(l *lattice.Lattice, src Source) []float64 {
	temps := make([]float64, l.Len())
	var p *perlin.Perlin
	if a.Noise != 0 {
		p = perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOcts, a.Seed)
	}
	for i, pt := range l.Particles {
		temps[i] = a.Temperature
		if p != nil {
			pos := pt.Position.Scale(a.Scale)
			temps[i] += a.Noise * p.Noise3D(pos.X, pos.Y, pos.Z)
		}
	}
	if l.InRange(src.I, src.J, src.K) {
		temps[l.Index(src.I, src.J, src.K)] = src.Temperature
	}
	return temps
}
