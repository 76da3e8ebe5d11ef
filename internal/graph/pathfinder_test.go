package graph

import (
	"context"
	"errors"
	"testing"
)

func lineDesc(n int) Desc {
	d := Desc{Nodes: make([]NodeDesc, n)}
	for i := range d.Nodes {
		d.Nodes[i].ID = uint32(i)
		if i+1 < n {
			d.Nodes[i].Neighbors = []uint32{uint32(i + 1)}
		}
	}
	return d
}

func mustGraph(t *testing.T, d Desc) *Graph {
	t.Helper()
	g, err := New(d)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return g
}

func TestPathFinderLine(t *testing.T) {
	g := mustGraph(t, lineDesc(3))
	if err := g.UpdatePaths(context.Background()); err != nil {
		t.Fatalf("UpdatePaths failed: %v", err)
	}

	costs := []struct {
		i, j Node
		cost int
	}{
		{0, 1, ConnectionCost},
		{0, 2, 2 * ConnectionCost},
		{1, 2, ConnectionCost},
	}
	for _, c := range costs {
		if got := g.Cost(c.i, c.j); got != c.cost {
			t.Errorf("Cost(%d,%d) = %d, want %d", c.i, c.j, got, c.cost)
		}
		if g.Cost(c.i, c.j) != g.Cost(c.j, c.i) {
			t.Errorf("Cost(%d,%d) is not symmetric", c.i, c.j)
		}
	}

	p := g.Paths()
	membership := []struct {
		s, t, node Node
		want       bool
	}{
		{0, 2, 1, true},
		{0, 2, 0, true},
		{0, 2, 2, true},
		{2, 0, 1, true},
		{0, 1, 2, false},
		{1, 2, 0, false},
		{0, 1, 0, true},
		{0, 1, 1, true},
	}
	for _, m := range membership {
		if got := p.Contains(m.s, m.t, m.node); got != m.want {
			t.Errorf("Contains((%d,%d), %d) = %v, want %v", m.s, m.t, m.node, got, m.want)
		}
	}
}

func TestPathFinderTieBreak(t *testing.T) {
	// 0-1-2-3-0: both 0→2 and 1→3 have two shortest paths; the lower
	// predecessor wins in both directions.
	d := Desc{Nodes: []NodeDesc{
		{ID: 0, Neighbors: []uint32{1, 3}},
		{ID: 1, Neighbors: []uint32{2}},
		{ID: 2, Neighbors: []uint32{3}},
		{ID: 3},
	}}
	g := mustGraph(t, d)
	if err := g.UpdatePaths(context.Background()); err != nil {
		t.Fatalf("UpdatePaths failed: %v", err)
	}

	p := g.Paths()
	if !p.Contains(0, 2, 1) || p.Contains(0, 2, 3) {
		t.Error("pair (0,2) should route through node 1 only")
	}
	if !p.Contains(1, 3, 0) || p.Contains(1, 3, 2) {
		t.Error("pair (1,3) should route through node 0 only")
	}
}

func TestPathFinderDisconnected(t *testing.T) {
	d := Desc{Nodes: []NodeDesc{
		{ID: 0, Neighbors: []uint32{1}},
		{ID: 1},
		{ID: 2, Neighbors: []uint32{3}},
		{ID: 3},
	}}
	g := mustGraph(t, d)

	err := g.UpdatePaths(context.Background())
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("expected ErrDisconnected, got %v", err)
	}

	var pe *PathError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PathError, got %T", err)
	}
	if pe.Source != 0 || pe.Reached != 2 || pe.Alive != 4 {
		t.Errorf("unexpected path error %+v", pe)
	}
}

func TestPathFinderIgnoresDeadNodes(t *testing.T) {
	g := mustGraph(t, lineDesc(4))
	if err := g.UpdatePaths(context.Background()); err != nil {
		t.Fatalf("UpdatePaths failed: %v", err)
	}
	if !g.Paths().Contains(0, 2, 1) {
		t.Fatal("expected (0,2) through node 1 before removal")
	}

	g.Delete(3)
	if err := g.UpdatePaths(context.Background()); err != nil {
		t.Fatalf("UpdatePaths after removing a leaf failed: %v", err)
	}
	if g.Paths().Contains(0, 3, 1) {
		t.Error("membership for a dead pair survived UpdatePaths")
	}

	g.Delete(1)
	if err := g.UpdatePaths(context.Background()); !errors.Is(err, ErrDisconnected) {
		t.Errorf("removing the bridge should disconnect, got %v", err)
	}
}

func TestUpdatePathsCanceled(t *testing.T) {
	g := mustGraph(t, lineDesc(3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := g.UpdatePaths(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
