// Package export renders stored runs as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/melter/internal/colormap"
)

const background = "#0a0a0a"

// Layer is one k-slice of lattice temperatures, indexed i + j*W.
type Layer struct {
	W, H  int
	Temps []float64
}

func (l Layer) At(i, j int) float64 { return l.Temps[i+j*l.W] }

// LayerSVG draws one square per particle coloured by temperature, with j
// increasing upwards.
func LayerSVG(layer Layer, cell float64) string {
	if layer.W == 0 || layer.H == 0 || len(layer.Temps) < layer.W*layer.H {
		return ""
	}

	width := float64(layer.W) * cell
	height := float64(layer.H) * cell

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	for j := 0; j < layer.H; j++ {
		y := height - float64(j+1)*cell
		for i := 0; i < layer.W; i++ {
			t := layer.At(i, j)
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>(%d,%d) %.2f</title></rect>
`, float64(i)*cell, y, cell, cell, colormap.ColorFor(t).Hex(), i, j, t)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesSVG draws values as a polyline scaled to fill the document with a
// tenth of padding on the value axis.
func SeriesSVG(values []float64, width, height int, stroke string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		lo -= 0.5
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, stroke)

	last := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
