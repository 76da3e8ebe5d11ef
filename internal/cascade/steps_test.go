package cascade

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cascadesim/internal/graph"
	"github.com/san-kum/cascadesim/internal/topology"
)

func newHistory(t *testing.T, d graph.Desc, alpha float64) *History {
	t.Helper()
	g, err := graph.New(d)
	require.NoError(t, err)
	return NewHistory(g, alpha)
}

func apply(t *testing.T, h *History, steps ...Step) {
	t.Helper()
	for _, s := range steps {
		require.NoError(t, s.Apply(context.Background(), h), "step %s", s)
	}
}

func betweennessOf(h *History) []int {
	it := h.Active()
	out := make([]int, 0, it.Graph.Alive())
	for _, b := range it.Metrics.Betweenness.Alive(it.Graph.Tracker()) {
		out = append(out, b)
	}
	return out
}

func TestMeasureSmallTopologies(t *testing.T) {
	tests := []struct {
		name      string
		desc      graph.Desc
		between   []int
		max, min  graph.Node
		zmax      float64
		betaDelta float64
	}{
		{"line of 3", topology.NewLine(3), []int{2, 3, 2}, 1, 0, 2, 0},
		{"star of 4", topology.NewStar(4), []int{6, 3, 3, 3}, 0, 1, 3, 0},
		{"complete 4", topology.NewNet(4), []int{3, 3, 3, 3}, 0, 0, 2, 1},
		{"ring of 4", topology.NewRing(4), []int{4, 4, 3, 3}, 0, 2, 2, 1},
		{"line of 5", topology.NewLine(5), []int{4, 7, 8, 7, 4}, 2, 0, 0, 1.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHistory(t, tt.desc, DefaultAlpha)
			apply(t, h, MeasureSteps()...)

			m := h.Active().Metrics
			assert.Equal(t, tt.between, betweennessOf(h))
			assert.Equal(t, tt.max, m.MaxBetweenness)
			assert.Equal(t, tt.min, m.MinBetweenness)
			if tt.zmax != 0 {
				assert.InDelta(t, tt.zmax, m.Zmax, 1e-12)
			}
			assert.InDelta(t, tt.betaDelta, m.BetaDelta, 1e-12)
			assert.Equal(t, []float64{m.BetaDelta}, h.BetaDeltas())
		})
	}
}

func TestExampleBetweenness(t *testing.T) {
	h := newHistory(t, graph.Example(), DefaultAlpha)
	apply(t, h, UpdatePaths, Betweenness)

	assert.Equal(t, []int{18, 21, 17, 13, 17, 17, 17, 9, 9, 9}, betweennessOf(h))
	assert.Equal(t, graph.Node(1), h.Active().Metrics.MaxBetweenness)
	assert.Equal(t, graph.Node(7), h.Active().Metrics.MinBetweenness)
}

func TestCapacity(t *testing.T) {
	for _, alpha := range []float64{0, 0.5, 3} {
		h := newHistory(t, graph.Example(), alpha)
		apply(t, h, UpdatePaths, Betweenness, Capacity)

		it := h.Active()
		m := it.Metrics
		for node, b := range m.Betweenness.Alive(it.Graph.Tracker()) {
			assert.Equal(t, (1+alpha)*float64(b), m.Capacity.At(node))
		}
		assert.Equal(t, m.MaxBetweenness, m.MaxCapacity)
		assert.Equal(t, m.MinBetweenness, m.MinCapacity)
	}
}

func TestCapacityTracksMinOnFirstNode(t *testing.T) {
	// node 0 of a line is the first node scanned and also the minimum
	h := newHistory(t, topology.NewLine(4), DefaultAlpha)
	apply(t, h, UpdatePaths, Betweenness, Capacity)
	assert.Equal(t, graph.Node(0), h.Active().Metrics.MinCapacity)
	assert.Equal(t, graph.Node(1), h.Active().Metrics.MaxCapacity)
}

func TestResilienceDegenerate(t *testing.T) {
	h := newHistory(t, topology.NewLine(2), DefaultAlpha)
	apply(t, h, UpdatePaths)

	err := Resilience.Apply(context.Background(), h)
	assert.ErrorIs(t, err, ErrDegenerate)
	assert.Empty(t, h.BetaDeltas())
}

func TestResilienceWithoutPaths(t *testing.T) {
	h := newHistory(t, topology.NewNet(5), DefaultAlpha)

	err := Resilience.Apply(context.Background(), h)
	require.ErrorIs(t, err, ErrDegenerate)
	assert.Empty(t, h.BetaDeltas())
	assert.False(t, math.IsNaN(h.Active().Metrics.Zmax))
	assert.False(t, math.IsNaN(h.Active().Metrics.Beta))

	_, err = New(topology.NewNet(5), WithSteps(Resilience, Betweenness, Capacity))
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestResilienceIsFinite(t *testing.T) {
	h := newHistory(t, graph.Example(), DefaultAlpha)
	apply(t, h, UpdatePaths, Resilience)

	m := h.Active().Metrics
	assert.False(t, math.IsNaN(m.Beta))
	assert.False(t, math.IsInf(m.Beta, 0))
	assert.InDelta(t, 0.7352941176470587, m.BetaDelta, 1e-12)
	for node, z := range m.Z.Alive(h.Active().Graph.Tracker()) {
		assert.LessOrEqual(t, z, m.Zmax, "z of %v", node)
	}
}

func TestSnapshotPreservesBefore(t *testing.T) {
	h := newHistory(t, topology.NewRing(5), DefaultAlpha)
	apply(t, h, UpdatePaths, Betweenness, Capacity, Snapshot, RemoveMax)

	require.Equal(t, 2, h.IterCount())
	assert.Equal(t, 1, h.CurrentIter())
	assert.Equal(t, 5, h.At(0).Graph.Alive())
	assert.Equal(t, 4, h.At(1).Graph.Alive())
	assert.True(t, h.At(0).Graph.IsAlive(0))
	assert.False(t, h.At(1).Graph.IsAlive(0))
	assert.NotSame(t, h.At(0).Metrics, h.At(1).Metrics)
}

func TestRemoveOverloaded(t *testing.T) {
	// 2x3 ladder; with alpha 0 any load increase is an overload
	ladder := graph.Desc{Nodes: []graph.NodeDesc{
		{ID: 0, Neighbors: []uint32{1, 3}},
		{ID: 1, Neighbors: []uint32{2, 4}},
		{ID: 2, Neighbors: []uint32{5}},
		{ID: 3, Neighbors: []uint32{4}},
		{ID: 4, Neighbors: []uint32{5}},
		{ID: 5},
	}}
	h := newHistory(t, ladder, 0)
	apply(t, h, CanonicalSteps()...)

	assert.Equal(t, []float64{1.0 / 3}, h.KS())
	assert.Equal(t, []int{3}, h.Cascades())
	removals := h.Removals()
	require.Len(t, removals, 1)
	assert.Equal(t, graph.Node(1), removals[0].Max)
	assert.Equal(t, []graph.Node{3, 4, 5}, removals[0].Overloaded)
	assert.Equal(t, 4, removals[0].Count())
	assert.Equal(t, 2, h.Active().Graph.Alive())
}

func TestRemoveOverloadedNoCascade(t *testing.T) {
	h := newHistory(t, topology.NewNet(4), DefaultAlpha)
	apply(t, h, CanonicalSteps()...)

	assert.Equal(t, []float64{0}, h.KS())
	assert.Equal(t, []int{0}, h.Cascades())
	assert.Empty(t, h.Removals()[0].Overloaded)
}

func TestRemoveMaxWithoutCandidate(t *testing.T) {
	h := newHistory(t, topology.NewNet(4), DefaultAlpha)
	err := RemoveMax.Apply(context.Background(), h)
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestUpdatePathsDisconnected(t *testing.T) {
	h := newHistory(t, topology.NewLine(3), DefaultAlpha)
	h.Active().Graph.Delete(1)

	err := UpdatePaths.Apply(context.Background(), h)
	assert.True(t, errors.Is(err, graph.ErrDisconnected))
}

func TestParseStep(t *testing.T) {
	for _, s := range CanonicalSteps() {
		got, err := ParseStep(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseStep("  Remove-Overloaded ")
	require.NoError(t, err)
	assert.Equal(t, RemoveOverloaded, got)

	_, err = ParseStep("explode")
	assert.ErrorIs(t, err, ErrUnknownStep)
	assert.Equal(t, "step(42)", Step(42).String())

	steps, err := ParseSteps([]string{"update-paths", "betweenness"})
	require.NoError(t, err)
	assert.Equal(t, []Step{UpdatePaths, Betweenness}, steps)

	var s Step
	require.NoError(t, s.UnmarshalText([]byte("snapshot")))
	assert.Equal(t, Snapshot, s)
	text, err := RemoveMax.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "remove-max", string(text))
}

func TestValidatePlan(t *testing.T) {
	tests := []struct {
		name  string
		steps []Step
		want  error
	}{
		{"canonical", CanonicalSteps(), nil},
		{"measure", MeasureSteps(), nil},
		{"empty", nil, ErrInvalidPlan},
		{"remove before snapshot", []Step{UpdatePaths, Betweenness, RemoveMax, Snapshot}, ErrInvalidPlan},
		{"remove before betweenness", []Step{Snapshot, RemoveMax}, ErrInvalidPlan},
		{"resilience before update paths", []Step{Resilience, Betweenness, Capacity}, ErrInvalidPlan},
		{"betweenness before update paths", []Step{Betweenness, UpdatePaths}, ErrInvalidPlan},
		{"unknown", []Step{UpdatePaths, Step(99)}, ErrUnknownStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlan(tt.steps)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
