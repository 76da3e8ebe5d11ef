// Package optim searches run parameters for the most (or least) damaging
// configuration.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/config"
	"github.com/san-kum/cascadesim/internal/experiment"
	"github.com/san-kum/cascadesim/internal/parallel"
)

var (
	ErrUnknownParam = errors.New("optim: unknown parameter")
	ErrEmptyGrid    = errors.New("optim: empty grid")
)

// Params lists the config fields a grid can vary.
func Params() []string { return []string{"alpha", "nodes", "extra", "seed", "max_rounds"} }

// Apply sets one named parameter on cfg.
func Apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case "alpha":
		cfg.Alpha = v
	case "nodes":
		cfg.Topology.Nodes = int(v)
	case "extra":
		cfg.Topology.Extra = int(v)
	case "seed":
		cfg.Topology.Seed = int64(v)
	case "max_rounds":
		cfg.MaxRounds = int(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Point is one evaluated grid cell.
type Point struct {
	Params  map[string]float64
	Status  cascade.Status
	Rounds  int
	Metrics map[string]float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if !slices.Contains(Params(), name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: no values for %s", ErrEmptyGrid, name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// WithWorkers bounds how many runs execute at once; n <= 0 uses GOMAXPROCS.
func (g *GridSearch) WithWorkers(n int) *GridSearch {
	g.workers = n
	return g
}

// Points enumerates the grid in row-major order, the last parameter
// varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	if len(g.paramNames) == 0 {
		return nil
	}
	var out []map[string]float64
	g.enumerate(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, maps.Clone(current))
		return
	}
	for _, v := range g.ranges[depth] {
		current[g.paramNames[depth]] = v
		g.enumerate(depth+1, current, out)
	}
}

// Evaluate runs one experiment per grid point on a copy of base. Each run
// uses a single betweenness worker since runs already execute in parallel.
func (g *GridSearch) Evaluate(ctx context.Context, base *config.Config) ([]Point, error) {
	grid := g.Points()
	if len(grid) == 0 {
		return nil, ErrEmptyGrid
	}

	workers := g.workers
	if workers <= 0 {
		workers = parallel.DefaultWorkers()
	}

	points := make([]Point, len(grid))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, params := range grid {
		eg.Go(func() error {
			cfg := *base
			cfg.Steps = slices.Clone(base.Steps)
			cfg.Workers = 1
			for name, v := range params {
				if err := Apply(&cfg, name, v); err != nil {
					return err
				}
			}

			exp := experiment.New(&cfg, nil)
			if err := exp.Setup(); err != nil {
				return fmt.Errorf("optim: point %v: %w", params, err)
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("optim: point %v: %w", params, err)
			}
			points[i] = Point{Params: params, Status: res.Status, Rounds: res.Rounds, Metrics: res.Metrics}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// Search evaluates the grid and returns the point with the smallest value
// of metric (the largest when maximize is set). Ties keep the earlier point.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string, maximize bool) (Point, []Point, error) {
	points, err := g.Evaluate(ctx, base)
	if err != nil {
		return Point{}, nil, err
	}

	bestIdx, best := 0, math.Inf(1)
	for i, p := range points {
		v, ok := p.Metrics[metric]
		if !ok {
			return Point{}, points, fmt.Errorf("optim: unknown metric %q", metric)
		}
		if maximize {
			v = -v
		}
		if v < best {
			bestIdx, best = i, v
		}
	}
	return points[bestIdx], points, nil
}
