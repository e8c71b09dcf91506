package viz

import (
	"math"

	"github.com/san-kum/melter/internal/dynamo"
	"github.com/san-kum/melter/internal/lattice"
)

// Camera orbits the lattice centre and projects points onto a canvas.
type Camera struct {
	Distance   float64
	RotX, RotY float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 4, RotX: -0.5, RotY: 0.6, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) rotate(p dynamo.Vec3) dynamo.Vec3 {
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// Project maps a point in unit-scene space to sub-pixel coordinates on a
// sw x sh surface. Points behind the camera are not visible.
func (c *Camera) Project(p dynamo.Vec3, sw, sh int) (int, int, bool) {
	r := c.rotate(p).Scale(c.Zoom)
	if r.Z >= c.Distance-0.1 {
		return 0, 0, false
	}
	persp := c.Distance / (c.Distance - r.Z)
	unit := float64(min(sw, sh)) / 2.5
	x := int(r.X*persp*unit) + sw/2
	y := int(-r.Y*persp*unit) + sh/2
	return x, y, x >= 0 && x < sw && y >= 0 && y < sh
}

// Scene normalises lattice positions into a unit box around the origin so
// the camera needs no knowledge of the lattice extents.
type Scene struct {
	center dynamo.Vec3
	scale  float64
	edges  []int
}

func NewScene(l *lattice.Lattice) *Scene {
	lo, hi := l.Bounds()
	span := hi.Sub(lo)
	extent := math.Max(span.X, math.Max(span.Y, span.Z))
	if extent == 0 {
		extent = 1
	}
	s := &Scene{center: lo.Add(span.Scale(0.5)), scale: 1 / extent}
	for _, idx := range l.Undirected() {
		if l.Springs[idx].ManhattanWeight == 1 {
			s.edges = append(s.edges, idx)
		}
	}
	return s
}

// Draw renders the axis-aligned springs between pos as a wireframe. Springs
// that have fully softened are left out.
func (s *Scene) Draw(c *Canvas, cam *Camera, pos []dynamo.Vec3, springs []lattice.Spring) {
	sw, sh := c.PixelSize()
	for _, idx := range s.edges {
		sp := springs[idx]
		if sp.CurrentConstant <= 0 {
			continue
		}
		x0, y0, v0 := cam.Project(s.local(pos[sp.A]), sw, sh)
		x1, y1, v1 := cam.Project(s.local(pos[sp.B]), sw, sh)
		if v0 || v1 {
			c.DrawLine(x0, y0, x1, y1)
		}
	}
	for _, p := range pos {
		if x, y, ok := cam.Project(s.local(p), sw, sh); ok {
			c.Set(x, y)
		}
	}
}

func (s *Scene) local(p dynamo.Vec3) dynamo.Vec3 {
	return p.Sub(s.center).Scale(s.scale)
}
