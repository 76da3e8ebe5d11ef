package graph

import (
	"context"
	"fmt"
)

// Graph composes node liveness, adjacency and shortest path data for one
// snapshot of the network.
type Graph struct {
	tracker   *Tracker
	adjacency BoolMat
	paths     *PathFinder
}

// New validates d and builds a graph with a symmetric adjacency matrix.
func New(d Desc) (*Graph, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	n := d.NodeCount()
	adj := NewBoolMat(n)
	for _, nd := range d.Nodes {
		for _, j := range nd.Neighbors {
			adj.Mark(Node(nd.ID), Node(j))
			adj.Mark(Node(j), Node(nd.ID))
		}
	}
	return &Graph{
		tracker:   NewTracker(n),
		adjacency: adj,
		paths:     NewPathFinder(n),
	}, nil
}

func (g *Graph) NodeCount() int      { return g.tracker.NodeCount() }
func (g *Graph) Alive() int          { return g.tracker.Alive() }
func (g *Graph) IsAlive(n Node) bool { return g.tracker.IsAlive(n) }
func (g *Graph) Tracker() *Tracker   { return g.tracker }
func (g *Graph) Paths() *PathFinder  { return g.paths }
func (g *Graph) IterAlive() AliveSeq { return g.tracker.IterAlive() }
func (g *Graph) Cost(i, j Node) int  { return g.paths.Cost(i, j) }

func (g *Graph) IsAdjacent(i, j Node) bool {
	v, _ := g.adjacency.Get(i, j)
	return v
}

// Neighbors lists the alive neighbors of n in ascending order.
func (g *Graph) Neighbors(n Node) []Node {
	var out []Node
	for j, set := range g.adjacency.Row(n).All() {
		if set && g.tracker.IsAlive(j) {
			out = append(out, j)
		}
	}
	return out
}

// Edges counts undirected edges between alive nodes.
func (g *Graph) Edges() int {
	count := 0
	for i := range g.tracker.IterAlive() {
		for j := range g.tracker.IterAlive() {
			if i < j && g.adjacency.IsSet(i, j) {
				count++
			}
		}
	}
	return count
}

// UpdatePaths recomputes shortest paths from every alive source. Membership
// left over from earlier calls is cleared first. The first source that
// cannot reach every alive node stops the update.
func (g *Graph) UpdatePaths(ctx context.Context) error {
	g.paths.Reset()
	for src := range g.tracker.IterAlive() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.paths.FindShortestPathsFrom(g.tracker, g.adjacency, src); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes node from the network and erases every edge touching it.
func (g *Graph) Delete(node Node) {
	g.tracker.Delete(node)
	g.adjacency.Delete(g.tracker, node)
	g.adjacency.ClearRow(node)
}

// Desc rebuilds a description of the alive subgraph over the full id space.
func (g *Graph) Desc() Desc {
	d := Desc{Nodes: make([]NodeDesc, g.NodeCount())}
	for i := range d.Nodes {
		d.Nodes[i].ID = uint32(i)
	}
	for i := range g.tracker.IterAlive() {
		for _, j := range g.Neighbors(i) {
			if i < j {
				d.Nodes[i].Neighbors = append(d.Nodes[i].Neighbors, uint32(j))
			}
		}
	}
	return d
}

func (g *Graph) Clone() *Graph {
	return &Graph{
		tracker:   g.tracker.Clone(),
		adjacency: g.adjacency.Clone(),
		paths:     g.paths.Clone(),
	}
}

func (g *Graph) String() string {
	return fmt.Sprintf("alive: %v\nadjacency:\n%spaths:\n%s", g.tracker.AliveNodes(), g.adjacency.Mat, g.paths)
}
