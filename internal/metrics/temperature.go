package metrics

import (
	"math"

	"github.com/san-kum/melter/internal/lattice"
)

// DefaultFrontThreshold is the temperature that counts as reached by the
// heat front.
const DefaultFrontThreshold = 50.0

type MeanTemperature struct {
	name  string
	value float64
}

func NewMeanTemperature() *MeanTemperature {
	return &MeanTemperature{name: "mean_temp"}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(l *lattice.Lattice) {
	if l.Len() == 0 {
		return
	}
	var sum float64
	for _, p := range l.Particles {
		sum += p.Temperature
	}
	m.value = sum / float64(l.Len())
}

func (m *MeanTemperature) Value() float64 { return m.value }
func (m *MeanTemperature) Reset()         { m.value = 0 }

// PeakTemperature is the hottest particle other than the pinned source.
type PeakTemperature struct {
	name    string
	exclude int
	value   float64
}

func NewPeakTemperature(exclude int) *PeakTemperature {
	return &PeakTemperature{name: "peak_temp", exclude: exclude}
}

func (p *PeakTemperature) Name() string { return p.name }

func (p *PeakTemperature) Observe(l *lattice.Lattice) {
	peak := math.Inf(-1)
	for i, pt := range l.Particles {
		if i == p.exclude {
			continue
		}
		peak = math.Max(peak, pt.Temperature)
	}
	if !math.IsInf(peak, -1) {
		p.value = peak
	}
}

func (p *PeakTemperature) Value() float64 { return p.value }
func (p *PeakTemperature) Reset()         { p.value = 0 }

// HeatFront is the largest build-position distance from the source to a
// particle at or above the threshold temperature.
type HeatFront struct {
	name      string
	threshold float64
	dist      []float64
	value     float64
}

func NewHeatFront(l *lattice.Lattice, sourceIdx int, threshold float64) *HeatFront {
	src := l.Particles[sourceIdx].Position
	dist := make([]float64, l.Len())
	for i, p := range l.Particles {
		dist[i] = p.Position.Sub(src).Length()
	}
	return &HeatFront{name: "heat_front", threshold: threshold, dist: dist}
}

func (h *HeatFront) Name() string { return h.name }

func (h *HeatFront) Observe(l *lattice.Lattice) {
	h.value = 0
	for i, p := range l.Particles {
		if i < len(h.dist) && p.Temperature >= h.threshold && h.dist[i] > h.value {
			h.value = h.dist[i]
		}
	}
}

func (h *HeatFront) Value() float64 { return h.value }
func (h *HeatFront) Reset()         { h.value = 0 }
