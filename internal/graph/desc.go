package graph

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// NodeDesc lists the neighbors of one node.
type NodeDesc struct {
	ID        uint32   `yaml:"node_id" json:"node_id"`
	Neighbors []uint32 `yaml:"nodes" json:"nodes"`
}

// Desc describes a topology: node count is len(Nodes), ids are 0..len-1.
// Neighbor lists may be one-sided; edges are made symmetric on build.
type Desc struct {
	Nodes []NodeDesc `yaml:"nodes" json:"nodes"`
}

func (d Desc) NodeCount() int { return len(d.Nodes) }

// Validate checks that ids are unique and in range and that no node lists
// itself.
func (d Desc) Validate() error {
	if len(d.Nodes) == 0 {
		return ErrEmptyDesc
	}
	count := uint32(len(d.Nodes))
	seen := make([]bool, count)
	for _, nd := range d.Nodes {
		if nd.ID >= count {
			return &DescError{Node: nd.ID, Neighbor: nd.ID, Err: ErrNodeOutOfRange}
		}
		if seen[nd.ID] {
			return &DescError{Node: nd.ID, Err: ErrDuplicateNode}
		}
		seen[nd.ID] = true
		for _, j := range nd.Neighbors {
			if j == nd.ID {
				return &DescError{Node: nd.ID, Neighbor: j, Err: ErrSelfLoop}
			}
			if j >= count {
				return &DescError{Node: nd.ID, Neighbor: j, Err: ErrNodeOutOfRange}
			}
		}
	}
	return nil
}

// Edges returns every undirected edge once, as (lo, hi) pairs in ascending
// order.
func (d Desc) Edges() [][2]uint32 {
	set := make(map[[2]uint32]struct{})
	for _, nd := range d.Nodes {
		for _, j := range nd.Neighbors {
			e := [2]uint32{min(nd.ID, j), max(nd.ID, j)}
			set[e] = struct{}{}
		}
	}
	edges := make([][2]uint32, 0, len(set))
	for e := range set {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(a, b int) bool {
		if edges[a][0] != edges[b][0] {
			return edges[a][0] < edges[b][0]
		}
		return edges[a][1] < edges[b][1]
	})
	return edges
}

// Relabel returns the same topology with node i renamed to perm[i].
func (d Desc) Relabel(perm []uint32) (Desc, error) {
	if len(perm) != len(d.Nodes) {
		return Desc{}, fmt.Errorf("%w: length %d for %d nodes", ErrNotPermutation, len(perm), len(d.Nodes))
	}
	seen := make([]bool, len(perm))
	for i, v := range perm {
		if int(v) >= len(perm) || seen[v] {
			return Desc{}, fmt.Errorf("%w: perm[%d] = %d", ErrNotPermutation, i, v)
		}
		seen[v] = true
	}
	if err := d.Validate(); err != nil {
		return Desc{}, err
	}
	out := Desc{Nodes: make([]NodeDesc, len(d.Nodes))}
	for i := range out.Nodes {
		out.Nodes[i].ID = uint32(i)
	}
	for _, nd := range d.Nodes {
		dst := &out.Nodes[perm[nd.ID]]
		for _, j := range nd.Neighbors {
			dst.Neighbors = append(dst.Neighbors, perm[j])
		}
	}
	return out, nil
}

func ParseDesc(data []byte) (Desc, error) {
	var d Desc
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Desc{}, fmt.Errorf("graph: parse description: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Desc{}, err
	}
	return d, nil
}

func LoadDesc(path string) (Desc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Desc{}, err
	}
	return ParseDesc(data)
}

func SaveDesc(path string, d Desc) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Example is the ten node reference topology.
func Example() Desc {
	return Desc{Nodes: []NodeDesc{
		{ID: 0, Neighbors: []uint32{1, 2, 3}},
		{ID: 1, Neighbors: []uint32{4, 5}},
		{ID: 2, Neighbors: []uint32{4, 6}},
		{ID: 3, Neighbors: []uint32{5, 6}},
		{ID: 4, Neighbors: []uint32{9}},
		{ID: 5, Neighbors: []uint32{8}},
		{ID: 6, Neighbors: []uint32{7}},
		{ID: 7},
		{ID: 8},
		{ID: 9},
	}}
}
