package cascade

import "github.com/san-kum/cascadesim/internal/graph"

// Metrics holds the per-node and graph-wide values derived from one graph
// snapshot. Only alive entries of the vectors carry meaning.
type Metrics struct {
	Betweenness graph.NodeVec[int]
	Capacity    graph.NodeVec[float64]
	Z           graph.NodeVec[float64]

	MaxBetweenness graph.Node
	MinBetweenness graph.Node
	MaxCapacity    graph.Node
	MinCapacity    graph.Node

	Zmax      float64
	Beta      float64
	BetaDelta float64
}

func NewMetrics(n int) *Metrics {
	return &Metrics{
		Betweenness:    graph.NewNodeVec[int](n),
		Capacity:       graph.NewNodeVec[float64](n),
		Z:              graph.NewNodeVec[float64](n),
		MaxBetweenness: graph.InvalidNode,
		MinBetweenness: graph.InvalidNode,
		MaxCapacity:    graph.InvalidNode,
		MinCapacity:    graph.InvalidNode,
	}
}

func (m *Metrics) Clone() *Metrics {
	c := *m
	c.Betweenness = m.Betweenness.Clone()
	c.Capacity = m.Capacity.Clone()
	c.Z = m.Z.Clone()
	return &c
}
