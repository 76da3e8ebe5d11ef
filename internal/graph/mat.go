package graph

import (
	"fmt"
	"iter"
	"strings"
)

// Mat is a flattened N×N matrix addressed by node pairs. The diagonal is
// undefined: Get reports it as absent and At/Set panic on it.
type Mat[T any] struct {
	data []T
	n    int
}

func NewMat[T any](n int) *Mat[T] {
	return &Mat[T]{data: make([]T, n*n), n: n}
}

func (m *Mat[T]) NodeCount() int { return m.n }

func (m *Mat[T]) check(node Node) {
	if node.Idx() >= m.n {
		panic(fmt.Sprintf("graph: accessing invalid %v in %dx%d matrix", node, m.n, m.n))
	}
}

func (m *Mat[T]) Get(i, j Node) (T, bool) {
	m.check(i)
	m.check(j)
	if i == j {
		var zero T
		return zero, false
	}
	return m.data[m.n*i.Idx()+j.Idx()], true
}

func (m *Mat[T]) At(i, j Node) T {
	v, ok := m.Get(i, j)
	if !ok {
		panic("graph: diagonal of matrix is not accessible")
	}
	return v
}

func (m *Mat[T]) Set(i, j Node, v T) {
	m.check(i)
	m.check(j)
	if i == j {
		panic("graph: diagonal of matrix is not accessible")
	}
	m.data[m.n*i.Idx()+j.Idx()] = v
}

// Delete resets (j, node) for every j still alive in t.
func (m *Mat[T]) Delete(t *Tracker, node Node) {
	m.check(node)
	var zero T
	for j := range t.IterAlive() {
		if j != node {
			m.data[m.n*j.Idx()+node.Idx()] = zero
		}
	}
}

// ClearRow resets every entry of node's row.
func (m *Mat[T]) ClearRow(node Node) {
	m.check(node)
	start := m.n * node.Idx()
	clear(m.data[start : start+m.n])
}

func (m *Mat[T]) Row(node Node) Row[T] {
	m.check(node)
	start := m.n * node.Idx()
	return Row[T]{row: m.data[start : start+m.n], id: node}
}

func (m *Mat[T]) Clone() *Mat[T] {
	data := make([]T, len(m.data))
	copy(data, m.data)
	return &Mat[T]{data: data, n: m.n}
}

func (m *Mat[T]) String() string {
	var b strings.Builder
	for i := 0; i < m.n; i++ {
		b.WriteString("[")
		for j := 0; j < m.n; j++ {
			if v, ok := m.Get(Node(i), Node(j)); ok {
				fmt.Fprintf(&b, "\t%v", v)
			} else {
				b.WriteString("\t*")
			}
		}
		b.WriteString(" ]\n")
	}
	return b.String()
}

// Row is a read-only view of one matrix row.
type Row[T any] struct {
	row []T
	id  Node
}

func (r Row[T]) Get(j Node) (T, bool) {
	if j.Idx() >= len(r.row) {
		panic(fmt.Sprintf("graph: accessing invalid %v in row of %d", j, len(r.row)))
	}
	if j == r.id {
		var zero T
		return zero, false
	}
	return r.row[j], true
}

// All yields every off-diagonal entry of the row.
func (r Row[T]) All() iter.Seq2[Node, T] {
	return func(yield func(Node, T) bool) {
		for j, v := range r.row {
			if Node(j) == r.id {
				continue
			}
			if !yield(Node(j), v) {
				return
			}
		}
	}
}

// BoolMat is the boolean specialisation used for adjacency and path
// membership.
type BoolMat struct {
	*Mat[bool]
}

func NewBoolMat(n int) BoolMat { return BoolMat{NewMat[bool](n)} }

func (m BoolMat) Mark(i, j Node)       { m.Set(i, j, true) }
func (m BoolMat) Unmark(i, j Node)     { m.Set(i, j, false) }
func (m BoolMat) IsSet(i, j Node) bool { return m.At(i, j) }
func (m BoolMat) Reset()               { clear(m.data) }
func (m BoolMat) Clone() BoolMat       { return BoolMat{m.Mat.Clone()} }
