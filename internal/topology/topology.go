// Package topology generates graph descriptions for common network shapes.
package topology

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/cascadesim/internal/graph"
)

// Kind names a generator.
type Kind string

const (
	Net     Kind = "net"
	Ring    Kind = "ring"
	Line    Kind = "line"
	Star    Kind = "star"
	Mesh    Kind = "mesh"
	Random  Kind = "random"
	Example Kind = "example"
)

// Kinds lists every generator in display order.
func Kinds() []Kind {
	return []Kind{Example, Net, Ring, Line, Star, Mesh, Random}
}

// Params controls generation. Extra and Seed only apply to Random.
type Params struct {
	Nodes int   `yaml:"nodes"`
	Extra int   `yaml:"extra"`
	Seed  int64 `yaml:"seed"`
}

// Generate builds the description for kind.
func Generate(kind Kind, p Params) (graph.Desc, error) {
	if kind == Example {
		return graph.Example(), nil
	}
	if p.Nodes < 2 {
		return graph.Desc{}, fmt.Errorf("topology: %s needs at least 2 nodes, got %d", kind, p.Nodes)
	}
	switch kind {
	case Net:
		return NewNet(p.Nodes), nil
	case Ring:
		if p.Nodes < 3 {
			return graph.Desc{}, fmt.Errorf("topology: ring needs at least 3 nodes, got %d", p.Nodes)
		}
		return NewRing(p.Nodes), nil
	case Line:
		return NewLine(p.Nodes), nil
	case Star:
		return NewStar(p.Nodes), nil
	case Mesh:
		return NewMesh(p.Nodes), nil
	case Random:
		return NewRandom(p.Nodes, p.Extra, p.Seed), nil
	}
	return graph.Desc{}, fmt.Errorf("topology: unknown kind %q", kind)
}

type builder struct {
	adj []map[uint32]struct{}
}

func newBuilder(n int) *builder {
	adj := make([]map[uint32]struct{}, n)
	for i := range adj {
		adj[i] = make(map[uint32]struct{})
	}
	return &builder{adj: adj}
}

// connect records the edge once, on the lower id.
func (b *builder) connect(i, j int) {
	if i == j {
		return
	}
	lo, hi := min(i, j), max(i, j)
	b.adj[lo][uint32(hi)] = struct{}{}
}

func (b *builder) connected(i, j int) bool {
	lo, hi := min(i, j), max(i, j)
	_, ok := b.adj[lo][uint32(hi)]
	return ok
}

func (b *builder) desc() graph.Desc {
	d := graph.Desc{Nodes: make([]graph.NodeDesc, len(b.adj))}
	for i, set := range b.adj {
		d.Nodes[i].ID = uint32(i)
		for j := range set {
			d.Nodes[i].Neighbors = append(d.Nodes[i].Neighbors, j)
		}
		sort.Slice(d.Nodes[i].Neighbors, func(a, c int) bool {
			return d.Nodes[i].Neighbors[a] < d.Nodes[i].Neighbors[c]
		})
	}
	return d
}

// NewNet connects every pair of nodes.
func NewNet(n int) graph.Desc {
	b := newBuilder(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			b.connect(i, j)
		}
	}
	return b.desc()
}

// NewLine chains nodes 0-1-...-(n-1).
func NewLine(n int) graph.Desc {
	b := newBuilder(n)
	for i := 1; i < n; i++ {
		b.connect(i-1, i)
	}
	return b.desc()
}

// NewRing is a line closed back onto node 0.
func NewRing(n int) graph.Desc {
	b := newBuilder(n)
	for i := 1; i < n; i++ {
		b.connect(i-1, i)
	}
	b.connect(0, n-1)
	return b.desc()
}

// NewStar connects node 0 to every other node.
func NewStar(n int) graph.Desc {
	b := newBuilder(n)
	for i := 1; i < n; i++ {
		b.connect(0, i)
	}
	return b.desc()
}

// NewMesh lays nodes out row by row on a ceil(sqrt(n)) wide grid and links
// horizontal and vertical neighbors.
func NewMesh(n int) graph.Desc {
	width := int(math.Ceil(math.Sqrt(float64(n))))
	b := newBuilder(n)
	for i := 0; i < n; i++ {
		if (i+1)%width != 0 && i+1 < n {
			b.connect(i, i+1)
		}
		if i+width < n {
			b.connect(i, i+width)
		}
	}
	return b.desc()
}

// NewRandom builds a random spanning tree (each node i > 0 attaches to an
// earlier node) and adds up to extra further edges. The same seed always
// yields the same description.
func NewRandom(n, extra int, seed int64) graph.Desc {
	rng := rand.New(rand.NewSource(seed))
	b := newBuilder(n)
	for i := 1; i < n; i++ {
		b.connect(i, rng.Intn(i))
	}
	maxEdges := n*(n-1)/2 - (n - 1)
	if extra > maxEdges {
		extra = maxEdges
	}
	for added := 0; added < extra; {
		i, j := rng.Intn(n), rng.Intn(n)
		if i == j || b.connected(i, j) {
			continue
		}
		b.connect(i, j)
		added++
	}
	return b.desc()
}
