package thermal

import (
	"github.com/san-kum/melter/internal/dynamo"
	"github.com/san-kum/melter/internal/lattice"
)

const (
	DefaultGain              = 10.0
	DefaultSourceTemperature = 100.0
)

// Source is the particle whose temperature is pinned after every update.
type Source struct {
	I, J, K     int
	Temperature float64
}

// DefaultSource heats the lattice from its (0,0,0) corner.
func DefaultSource() Source {
	return Source{Temperature: DefaultSourceTemperature}
}

type link struct {
	idx    int
	weight float64
}

// Diffusion moves every particle toward the inverse-square-distance
// weighted mean of its neighbours.
type Diffusion struct {
	lat       *lattice.Lattice
	gain      float64
	source    Source
	sourceIdx int
	links     [][]link
}

type Option func(*Diffusion)

// WithGain sets the diffusion rate multiplier.
func WithGain(gain float64) Option {
	return func(d *Diffusion) { d.gain = gain }
}

// WithSource sets the pinned heat source.
func WithSource(src Source) Option {
	return func(d *Diffusion) { d.source = src }
}

// NewDiffusion precomputes neighbour weights from the lattice's build
// positions. Positions are never re-read, so later motion of the particles
// does not change the weighting.
func NewDiffusion(l *lattice.Lattice, opts ...Option) (*Diffusion, error) {
	d := &Diffusion{
		lat:    l,
		gain:   DefaultGain,
		source: DefaultSource(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if !dynamo.IsFinite(d.gain) || d.gain < 0 {
		return nil, dynamo.Invalidf("diffusion gain must be non-negative, got %v", d.gain)
	}
	if !l.InRange(d.source.I, d.source.J, d.source.K) {
		return nil, dynamo.Invalidf("heat source (%d,%d,%d) outside lattice", d.source.I, d.source.J, d.source.K)
	}
	if !dynamo.IsFinite(d.source.Temperature) {
		return nil, dynamo.Invalidf("source temperature must be finite, got %v", d.source.Temperature)
	}
	d.sourceIdx = l.Index(d.source.I, d.source.J, d.source.K)

	d.links = make([][]link, l.Len())
	for idx := range l.Particles {
		p := l.Particles[idx]
		for _, nb := range l.NeighborsOf(p.Index[0], p.Index[1], p.Index[2]) {
			distSq := p.Position.Sub(l.Particles[nb.Index].Position).LengthSq()
			d.links[idx] = append(d.links[idx], link{idx: nb.Index, weight: 1 / distSq})
		}
	}

	return d, nil
}

func (d *Diffusion) Gain() float64    { return d.gain }
func (d *Diffusion) Source() Source   { return d.source }
func (d *Diffusion) SourceIndex() int { return d.sourceIdx }

// Step advances every temperature by dt and re-pins the source.
func (d *Diffusion) Step(dt float64) {
	d.ComputeRates()
	d.Apply(dt)
	d.PinSource()
}

// ComputeRates fills WeightedAvgTemp and RateOfChange from the current
// temperatures. It writes no temperatures, so every particle sees the same
// pre-step field.
func (d *Diffusion) ComputeRates() {
	ps := d.lat.Particles
	for idx := range ps {
		links := d.links[idx]
		if len(links) == 0 {
			continue
		}
		var weighted, total float64
		for _, ln := range links {
			weighted += ln.weight * ps[ln.idx].Temperature
			total += ln.weight
		}
		avg := weighted / total
		ps[idx].WeightedAvgTemp = avg
		ps[idx].RateOfChange = d.gain * (avg - ps[idx].Temperature)
	}
}

// Apply integrates the rates computed by ComputeRates.
func (d *Diffusion) Apply(dt float64) {
	ps := d.lat.Particles
	for idx := range ps {
		ps[idx].Temperature += ps[idx].RateOfChange * dt
	}
}

// PinSource forces the source particle back to its fixed temperature.
func (d *Diffusion) PinSource() {
	d.lat.Particles[d.sourceIdx].Temperature = d.source.Temperature
}
