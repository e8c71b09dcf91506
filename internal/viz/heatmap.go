package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/melter/internal/colormap"
	"github.com/san-kum/melter/internal/lattice"
)

const cellGlyph = "██"

// Frame keeps the most recent colours painted by the melter.
type Frame struct {
	colors []colormap.RGB
	paints int
}

func NewFrame(n int) *Frame {
	return &Frame{colors: make([]colormap.RGB, n)}
}

func (f *Frame) Paint(colors []colormap.RGB) {
	if len(f.colors) != len(colors) {
		f.colors = make([]colormap.RGB, len(colors))
	}
	copy(f.colors, colors)
	f.paints++
}

func (f *Frame) Colors() []colormap.RGB { return f.colors }

// Paints counts how many times the frame has been painted.
func (f *Frame) Paints() int { return f.paints }

// HeatMap renders layer k of the lattice as coloured cells, j increasing
// upwards and i to the right.
func HeatMap(l *lattice.Lattice, colors []colormap.RGB, k int) string {
	dims := l.Dimensions()
	if k < 0 || k >= dims.CountD {
		return ""
	}

	var b strings.Builder
	for j := dims.CountH - 1; j >= 0; j-- {
		for i := 0; i < dims.CountW; i++ {
			c := colors[l.Index(i, j, k)]
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(cellGlyph))
		}
		if j > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Legend renders the colour scale from cold to hot.
func Legend(width int) string {
	if width < 2 {
		width = 2
	}
	var b strings.Builder
	for x := 0; x < width; x++ {
		t := colormap.FullScale * float64(x) / float64(width-1)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(colormap.ColorFor(t).Hex())).Render("█"))
	}
	return b.String()
}
