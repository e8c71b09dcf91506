// Package lattice owns the grid of point masses and the springs that join
// each particle to its 26-connected neighbours.
package lattice

import (
	"math"

	"github.com/san-kum/melter/internal/dynamo"
)

// Dimensions describes the physical extents and grid resolution of a lattice.
type Dimensions struct {
	Width, Height, Depth   float64
	CountW, CountH, CountD int
	Origin                 dynamo.Vec3
}

// Particle is one lattice cell. Position is fixed at build time; motion is
// tracked by whatever physics service consumes the springs.
type Particle struct {
	Index           [3]int
	Position        dynamo.Vec3
	Temperature     float64
	RateOfChange    float64
	WeightedAvgTemp float64
}

// Spring joins particle A to particle B. Springs are directed: every
// neighbouring pair owns two, one created from each endpoint.
type Spring struct {
	A, B            int
	ManhattanWeight int
	BaseConstant    float64
	CurrentConstant float64
}

// Neighbor is a lattice neighbour and its Manhattan offset magnitude.
type Neighbor struct {
	Index  int
	Weight int
}

// Offsets lists the 26 neighbour offsets in build order.
var Offsets = func() [][3]int {
	offs := make([][3]int, 0, 26)
	for u := -1; u <= 1; u++ {
		for v := -1; v <= 1; v++ {
			for w := -1; w <= 1; w++ {
				if u == 0 && v == 0 && w == 0 {
					continue
				}
				offs = append(offs, [3]int{u, v, w})
			}
		}
	}
	return offs
}()

// Lattice is the particle grid plus its directed springs.
type Lattice struct {
	Particles []Particle
	Springs   []Spring

	dims     Dimensions
	spacing  dynamo.Vec3
	outgoing [][]int
}

// Build lays out CountW x CountH x CountD particles evenly over the extents
// and connects every in-range neighbour offset with a spring whose base
// constant is springConstant divided by the offset's Manhattan weight.
func Build(dims Dimensions, springConstant float64) (*Lattice, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if !dynamo.IsFinite(springConstant) {
		return nil, dynamo.Invalidf("spring constant must be finite, got %v", springConstant)
	}

	l := &Lattice{
		dims: dims,
		spacing: dynamo.Vec3{
			X: dims.Width / float64(dims.CountW-1),
			Y: dims.Height / float64(dims.CountH-1),
			Z: dims.Depth / float64(dims.CountD-1),
		},
	}

	n := dims.CountW * dims.CountH * dims.CountD
	l.Particles = make([]Particle, n)
	l.outgoing = make([][]int, n)

	for i := 0; i < dims.CountW; i++ {
		for j := 0; j < dims.CountH; j++ {
			for k := 0; k < dims.CountD; k++ {
				p := &l.Particles[l.Index(i, j, k)]
				p.Index = [3]int{i, j, k}
				p.Position = dims.Origin.Add(dynamo.Vec3{
					X: float64(i) * l.spacing.X,
					Y: float64(j) * l.spacing.Y,
					Z: float64(k) * l.spacing.Z,
				})
			}
		}
	}

	for idx := range l.Particles {
		i, j, k := l.Coords(idx)
		for _, nb := range l.NeighborsOf(i, j, k) {
			base := springConstant / float64(nb.Weight)
			l.outgoing[idx] = append(l.outgoing[idx], len(l.Springs))
			l.Springs = append(l.Springs, Spring{
				A:               idx,
				B:               nb.Index,
				ManhattanWeight: nb.Weight,
				BaseConstant:    base,
				CurrentConstant: base,
			})
		}
	}

	return l, nil
}

// Validate rejects grids that would divide by a zero spacing or produce
// degenerate geometry.
func (d Dimensions) Validate() error {
	counts := []struct {
		name string
		n    int
	}{{"count_w", d.CountW}, {"count_h", d.CountH}, {"count_d", d.CountD}}
	for _, c := range counts {
		if c.n < 2 {
			return dynamo.Invalidf("%s must be at least 2, got %d", c.name, c.n)
		}
	}

	extents := []struct {
		name string
		v    float64
	}{{"width", d.Width}, {"height", d.Height}, {"depth", d.Depth}}
	for _, e := range extents {
		if !dynamo.IsFinite(e.v) || e.v <= 0 {
			return dynamo.Invalidf("%s must be positive, got %v", e.name, e.v)
		}
	}

	if !d.Origin.IsFinite() {
		return dynamo.Invalidf("origin must be finite, got %v", d.Origin)
	}
	return nil
}

func (l *Lattice) Dimensions() Dimensions { return l.dims }
func (l *Lattice) Spacing() dynamo.Vec3   { return l.spacing }
func (l *Lattice) Len() int               { return len(l.Particles) }

// InRange reports whether (i, j, k) addresses a particle.
func (l *Lattice) InRange(i, j, k int) bool {
	return i >= 0 && i < l.dims.CountW &&
		j >= 0 && j < l.dims.CountH &&
		k >= 0 && k < l.dims.CountD
}

// Index flattens (i, j, k). The caller must check InRange first.
func (l *Lattice) Index(i, j, k int) int {
	return (i*l.dims.CountH+j)*l.dims.CountD + k
}

// Coords is the inverse of Index.
func (l *Lattice) Coords(idx int) (i, j, k int) {
	k = idx % l.dims.CountD
	j = (idx / l.dims.CountD) % l.dims.CountH
	i = idx / (l.dims.CountD * l.dims.CountH)
	return
}

// At returns the particle at (i, j, k), or nil when out of range.
func (l *Lattice) At(i, j, k int) *Particle {
	if !l.InRange(i, j, k) {
		return nil
	}
	return &l.Particles[l.Index(i, j, k)]
}

// NeighborsOf returns the up-to-26 in-range neighbours of (i, j, k), each
// weighted by |u|+|v|+|w| of its offset.
func (l *Lattice) NeighborsOf(i, j, k int) []Neighbor {
	if !l.InRange(i, j, k) {
		return nil
	}
	out := make([]Neighbor, 0, len(Offsets))
	for _, off := range Offsets {
		ni, nj, nk := i+off[0], j+off[1], k+off[2]
		if !l.InRange(ni, nj, nk) {
			continue
		}
		out = append(out, Neighbor{
			Index:  l.Index(ni, nj, nk),
			Weight: manhattan(off),
		})
	}
	return out
}

// SpringsOf returns the indices of the springs created from particle idx.
func (l *Lattice) SpringsOf(idx int) []int {
	return l.outgoing[idx]
}

// Undirected returns the index of one spring per neighbouring pair, the one
// whose A endpoint has the lower particle index.
func (l *Lattice) Undirected() []int {
	out := make([]int, 0, len(l.Springs)/2)
	for s := range l.Springs {
		if l.Springs[s].A < l.Springs[s].B {
			out = append(out, s)
		}
	}
	return out
}

// Temperatures returns a snapshot of every particle temperature.
func (l *Lattice) Temperatures() []float64 {
	out := make([]float64, len(l.Particles))
	for i := range l.Particles {
		out[i] = l.Particles[i].Temperature
	}
	return out
}

// Reset restores temperatures from temps, clears scratch values and puts
// every spring back at its base constant.
func (l *Lattice) Reset(temps []float64) {
	for i := range l.Particles {
		p := &l.Particles[i]
		p.Temperature = 0
		if i < len(temps) {
			p.Temperature = temps[i]
		}
		p.RateOfChange = 0
		p.WeightedAvgTemp = 0
	}
	for s := range l.Springs {
		l.Springs[s].CurrentConstant = l.Springs[s].BaseConstant
	}
}

// Bounds returns the axis-aligned box spanned by the build positions.
func (l *Lattice) Bounds() (min, max dynamo.Vec3) {
	min = dynamo.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max = dynamo.Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range l.Particles {
		min.X, max.X = math.Min(min.X, p.Position.X), math.Max(max.X, p.Position.X)
		min.Y, max.Y = math.Min(min.Y, p.Position.Y), math.Max(max.Y, p.Position.Y)
		min.Z, max.Z = math.Min(min.Z, p.Position.Z), math.Max(max.Z, p.Position.Z)
	}
	return min, max
}

func manhattan(off [3]int) int {
	return abs(off[0]) + abs(off[1]) + abs(off[2])
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
