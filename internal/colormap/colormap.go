// Package colormap maps temperatures to display colours by interpolating
// between a cold and a hot colour in HSV space.
package colormap

import (
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/melter/internal/lattice"
)

// RGB channels are in [0, 1].
type RGB struct {
	R, G, B float64
}

// FullScale is the temperature that maps to the hot colour.
const FullScale = 100.0

var (
	Cold = RGB{B: 1}
	Hot  = RGB{R: 1}
)

// ColorFor maps 0 to Cold and FullScale to Hot. Temperatures outside that
// range saturate at the endpoints.
func ColorFor(temperature float64) RGB {
	return LerpHSV(Cold, Hot, temperature/FullScale)
}

// LerpHSV interpolates hue, saturation and value independently. t is
// clamped to [0, 1]. Hue is not wrapped: blue to red passes through green.
func LerpHSV(from, to RGB, t float64) RGB {
	t = clamp01(t)
	h0, s0, v0 := colorful.Color(from).Hsv()
	h1, s1, v1 := colorful.Color(to).Hsv()
	c := colorful.Hsv(lerp(h0, h1, t), lerp(s0, s1, t), lerp(v0, v1, t))
	return RGB(c)
}

// Hex returns the colour as #rrggbb.
func (c RGB) Hex() string {
	return colorful.Color(c).Clamped().Hex()
}

// Fill writes the colour of every lattice particle into out.
func Fill(l *lattice.Lattice, out []RGB) {
	for i := range l.Particles {
		if i >= len(out) {
			return
		}
		out[i] = ColorFor(l.Particles[i].Temperature)
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
