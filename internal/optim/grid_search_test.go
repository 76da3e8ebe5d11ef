package optim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/config"
)

func lineConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Topology.Generator = "line"
	return cfg
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3))
	assert.Equal(t, []float64{2}, Linspace(2, 5, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}

func TestApply(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, Apply(cfg, "alpha", 0.5))
	require.NoError(t, Apply(cfg, "nodes", 12))
	require.NoError(t, Apply(cfg, "seed", 7))
	assert.Equal(t, 0.5, cfg.Alpha)
	assert.Equal(t, 12, cfg.Topology.Nodes)
	assert.Equal(t, int64(7), cfg.Topology.Seed)
	assert.ErrorIs(t, Apply(cfg, "dt", 1), ErrUnknownParam)
}

func TestNewGridSearchErrors(t *testing.T) {
	_, err := NewGridSearch([]string{"alpha"}, nil)
	assert.Error(t, err)
	_, err = NewGridSearch([]string{"dt"}, [][]float64{{1}})
	assert.ErrorIs(t, err, ErrUnknownParam)
	_, err = NewGridSearch([]string{"alpha"}, [][]float64{{}})
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestPointsOrder(t *testing.T) {
	g, err := NewGridSearch([]string{"alpha", "nodes"}, [][]float64{{0, 1}, {4, 5, 6}})
	require.NoError(t, err)

	pts := g.Points()
	require.Len(t, pts, 6)
	assert.Equal(t, map[string]float64{"alpha": 0, "nodes": 4}, pts[0])
	assert.Equal(t, map[string]float64{"alpha": 0, "nodes": 5}, pts[1])
	assert.Equal(t, map[string]float64{"alpha": 1, "nodes": 6}, pts[5])
}

func TestEvaluateLines(t *testing.T) {
	g, err := NewGridSearch([]string{"alpha", "nodes"}, [][]float64{{0, 3}, {4, 5}})
	require.NoError(t, err)
	g.WithWorkers(2)

	base := lineConfig()
	points, err := g.Evaluate(context.Background(), base)
	require.NoError(t, err)
	require.Len(t, points, 4)

	for _, p := range points {
		assert.Equal(t, cascade.HaltedDisconnected, p.Status, "%v", p.Params)
		assert.Equal(t, 1, p.Rounds)
		assert.Equal(t, 1.0, p.Metrics["removed_nodes"])
	}
	assert.Equal(t, 10, base.Topology.Nodes, "base config is not modified")
	assert.Equal(t, 0, base.Workers)

	best, all, err := g.Search(context.Background(), base, "removed_nodes", false)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, map[string]float64{"alpha": 0, "nodes": 4}, best.Params, "ties keep the first point")

	_, _, err = g.Search(context.Background(), base, "energy", true)
	assert.Error(t, err)
}

func TestEvaluateFailingPoint(t *testing.T) {
	g, err := NewGridSearch([]string{"nodes"}, [][]float64{{1}})
	require.NoError(t, err)
	_, err = g.Evaluate(context.Background(), lineConfig())
	assert.Error(t, err)
}
