// Package optim sweeps config parameters over a grid of values.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/melter/internal/config"
	"github.com/san-kum/melter/internal/experiment"
)

// Point is one evaluated grid cell. Err is set when the run could not be
// built or halted, in which case Value is NaN.
type Point struct {
	Params map[string]float64
	Value  float64
	Steps  int
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// ParseAxis reads "name=v1,v2,..." into a parameter name and its values.
func ParseAxis(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("axis %q: expected name=v1,v2", s)
	}
	var vals []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("axis %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}

// Search runs one experiment per grid cell, each on a copy of base with the
// cell's parameters applied, and records the final value of metricName.
// Cells come back in grid order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) ([]Point, error) {
	var points []Point
	err := g.searchRecursive(ctx, 0, map[string]float64{}, base, metricName, &points)
	return points, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	points *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		*points = append(*points, evaluate(ctx, current, base, metricName))
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, base, metricName, points); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, params map[string]float64, base *config.Config, metricName string) Point {
	p := Point{Params: params, Value: math.NaN()}

	cfg := *base
	for k, v := range params {
		if err := cfg.SetParam(k, v); err != nil {
			p.Err = err
			return p
		}
	}

	exp, err := experiment.New(experiment.Config{Sim: &cfg})
	if err != nil {
		p.Err = err
		return p
	}

	run, err := exp.Run(ctx)
	if run != nil {
		p.Steps = run.Steps
	}
	if err != nil {
		p.Err = err
		return p
	}

	val, ok := run.Metrics[metricName]
	if !ok {
		p.Err = fmt.Errorf("unknown metric %q", metricName)
		return p
	}
	p.Value = val
	return p
}

// Best returns the index of the successful point with the lowest value, or
// the highest when maximize is set. It returns -1 when every point failed.
func Best(points []Point, maximize bool) int {
	best := -1
	for i, p := range points {
		if p.Err != nil {
			continue
		}
		if best < 0 || (maximize && p.Value > points[best].Value) || (!maximize && p.Value < points[best].Value) {
			best = i
		}
	}
	return best
}

// Names returns the parameter names of a point in sorted order.
func (p Point) Names() []string {
	names := make([]string, 0, len(p.Params))
	for k := range p.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
