// Package metrics observes a lattice after each simulation step.
package metrics

import "github.com/san-kum/melter/internal/lattice"

// Metric reports one instantaneous value of the lattice.
type Metric interface {
	Name() string
	Observe(l *lattice.Lattice)
	Value() float64
	Reset()
}

// Default returns the standard metric set for a lattice heated from
// sourceIdx.
func Default(l *lattice.Lattice, sourceIdx int) []Metric {
	return []Metric{
		NewMeanTemperature(),
		NewPeakTemperature(sourceIdx),
		NewHeatFront(l, sourceIdx, DefaultFrontThreshold),
		NewMeanStiffness(),
		NewSoftened(),
	}
}
