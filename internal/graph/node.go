package graph

import (
	"fmt"
	"iter"
	"math"
)

// Node is an index into a fixed-size node universe. A Node is only ever
// created by this package, after its range has been checked.
type Node uint32

// InvalidNode marks "no node found" results.
const InvalidNode Node = math.MaxUint32

// NodeAt validates idx against a universe of size n.
func NodeAt(idx, n int) (Node, error) {
	if idx < 0 || idx >= n {
		return InvalidNode, fmt.Errorf("%w: node %d, node count %d", ErrNodeOutOfRange, idx, n)
	}
	return Node(idx), nil
}

func (n Node) Idx() int    { return int(n) }
func (n Node) Valid() bool { return n != InvalidNode }

func (n Node) String() string {
	if !n.Valid() {
		return "node(invalid)"
	}
	return fmt.Sprintf("node(%d)", uint32(n))
}

// Tracker owns node liveness. Nodes only ever die; there is no undelete.
type Tracker struct {
	nodes []bool
	alive int
}

func NewTracker(n int) *Tracker {
	nodes := make([]bool, n)
	for i := range nodes {
		nodes[i] = true
	}
	return &Tracker{nodes: nodes, alive: n}
}

func (t *Tracker) check(node Node) {
	if node.Idx() >= len(t.nodes) {
		panic(fmt.Sprintf("graph: accessing invalid %v, maximum node id = %d", node, len(t.nodes)-1))
	}
}

// Delete marks node dead. Deleting a dead node is a bug and panics.
func (t *Tracker) Delete(node Node) {
	t.check(node)
	if !t.nodes[node] {
		panic(fmt.Sprintf("graph: deleting already deleted %v", node))
	}
	t.nodes[node] = false
	t.alive--
}

func (t *Tracker) IsAlive(node Node) bool {
	t.check(node)
	return t.nodes[node]
}

func (t *Tracker) Alive() int     { return t.alive }
func (t *Tracker) NodeCount() int { return len(t.nodes) }

// IterAlive yields alive nodes in ascending order. The sequence reads the
// tracker when it is ranged over, not when it is created.
func (t *Tracker) IterAlive() AliveSeq {
	return func(yield func(Node) bool) {
		for i, alive := range t.nodes {
			if alive && !yield(Node(i)) {
				return
			}
		}
	}
}

// AliveNodes collects IterAlive into a slice.
func (t *Tracker) AliveNodes() []Node {
	out := make([]Node, 0, t.alive)
	for n := range t.IterAlive() {
		out = append(out, n)
	}
	return out
}

func (t *Tracker) Clone() *Tracker {
	nodes := make([]bool, len(t.nodes))
	copy(nodes, t.nodes)
	return &Tracker{nodes: nodes, alive: t.alive}
}

// AliveSeq is an ascending sequence of alive nodes.
type AliveSeq iter.Seq[Node]

// Exclude drops x from the sequence.
func (s AliveSeq) Exclude(x Node) AliveSeq {
	return func(yield func(Node) bool) {
		for n := range s {
			if n == x {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// Count consumes the sequence.
func (s AliveSeq) Count() int {
	c := 0
	for range s {
		c++
	}
	return c
}

// NodeVec is a node-associated data vector. Only alive entries carry meaning.
type NodeVec[T any] []T

func NewNodeVec[T any](n int) NodeVec[T] { return make(NodeVec[T], n) }

func (v NodeVec[T]) At(n Node) T         { return v[n] }
func (v NodeVec[T]) Set(n Node, value T) { v[n] = value }

func (v NodeVec[T]) Fill(value T) {
	for i := range v {
		v[i] = value
	}
}

// Alive yields (node, value) pairs for the alive nodes of t.
func (v NodeVec[T]) Alive(t *Tracker) iter.Seq2[Node, T] {
	return func(yield func(Node, T) bool) {
		for n := range t.IterAlive() {
			if !yield(n, v[n]) {
				return
			}
		}
	}
}

func (v NodeVec[T]) Clone() NodeVec[T] {
	c := make(NodeVec[T], len(v))
	copy(c, v)
	return c
}
