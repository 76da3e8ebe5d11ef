package graph

import (
	"fmt"
	"math"
	"strings"
)

// ConnectionCost is the weight of every edge.
const ConnectionCost = 2

const unreached = math.MaxInt

// PathFinder holds all-pairs shortest path costs and, for every node, the
// set of (src, dst) pairs whose recorded shortest path passes through it.
// Endpoints count as lying on their own path.
type PathFinder struct {
	costs *Mat[int]
	paths []BoolMat
}

func NewPathFinder(n int) *PathFinder {
	paths := make([]BoolMat, n)
	for i := range paths {
		paths[i] = NewBoolMat(n)
	}
	return &PathFinder{costs: NewMat[int](n), paths: paths}
}

func (p *PathFinder) Cost(i, j Node) int { return p.costs.At(i, j) }

// Contains reports whether node lies on the recorded shortest path s–t.
func (p *PathFinder) Contains(s, t, node Node) bool {
	return p.paths[node].IsSet(s, t)
}

// Reset forgets every recorded path membership.
func (p *PathFinder) Reset() {
	for _, m := range p.paths {
		m.Reset()
	}
}

// FindShortestPathsFrom runs unit-weight Dijkstra from src over the alive
// nodes of t. It returns a *PathError wrapping ErrDisconnected when some
// alive node is unreachable; nothing is recorded in that case.
func (p *PathFinder) FindShortestPathsFrom(t *Tracker, adj BoolMat, src Node) error {
	n := t.NodeCount()
	visited := make([]bool, n)
	dist := make([]int, n)
	for i := range dist {
		dist[i] = unreached
	}
	dist[src] = 0

	for round := 0; round < t.Alive(); round++ {
		u := InvalidNode
		best := unreached
		for v := range t.IterAlive() {
			if !visited[v] && dist[v] < best {
				best = dist[v]
				u = v
			}
		}
		if !u.Valid() {
			return &PathError{Source: src, Reached: round, Alive: t.Alive()}
		}
		visited[u] = true

		for v := range t.IterAlive().Exclude(u) {
			if !visited[v] && adj.IsSet(u, v) && dist[u]+ConnectionCost < dist[v] {
				dist[v] = dist[u] + ConnectionCost
			}
		}
	}

	for target := range t.IterAlive().Exclude(src) {
		for _, node := range reconstructPath(t, adj, dist, src, target) {
			p.paths[node].Mark(src, target)
			p.paths[node].Mark(target, src)
		}
	}

	for j := range t.IterAlive().Exclude(src) {
		p.costs.Set(src, j, dist[j])
	}
	return nil
}

// reconstructPath walks back from target to src, at each hop taking the
// first alive neighbor (ascending) whose distance is one edge shorter.
func reconstructPath(t *Tracker, adj BoolMat, dist []int, src, target Node) []Node {
	path := []Node{target}
	cur := target
	for cur != src {
		next := InvalidNode
		for v := range t.IterAlive().Exclude(cur) {
			if adj.IsSet(v, cur) && dist[v] == dist[cur]-ConnectionCost {
				next = v
				break
			}
		}
		if !next.Valid() {
			panic(fmt.Sprintf("graph: no predecessor for %v on path from %v", cur, src))
		}
		cur = next
		path = append(path, cur)
	}
	return path
}

func (p *PathFinder) Clone() *PathFinder {
	paths := make([]BoolMat, len(p.paths))
	for i, m := range p.paths {
		paths[i] = m.Clone()
	}
	return &PathFinder{costs: p.costs.Clone(), paths: paths}
}

func (p *PathFinder) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "costs:\n%s", p.costs)
	for i, m := range p.paths {
		fmt.Fprintf(&b, "node %d:\n%s", i, m.Mat)
	}
	return b.String()
}
