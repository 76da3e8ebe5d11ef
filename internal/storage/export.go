package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/graph"
)

type ExportData struct {
	Run        RunMetadata       `json:"run"`
	KS         []float64         `json:"ks"`
	BetaDeltas []float64         `json:"beta_deltas"`
	Cascades   []int             `json:"cascades"`
	Iterations []IterationExport `json:"iterations"`
}

type IterationExport struct {
	Index          int           `json:"index"`
	Alive          []uint32      `json:"alive"`
	Edges          [][2]uint32   `json:"edges"`
	Nodes          []NodeMetrics `json:"nodes"`
	MaxBetweenness int           `json:"max_betweenness"`
	MinBetweenness int           `json:"min_betweenness"`
	MaxCapacity    int           `json:"max_capacity"`
	MinCapacity    int           `json:"min_capacity"`
	Zmax           float64       `json:"zmax"`
	Beta           float64       `json:"beta"`
	BetaDelta      float64       `json:"beta_delta"`
}

type NodeMetrics struct {
	Node        uint32  `json:"node"`
	Betweenness int     `json:"betweenness"`
	Capacity    float64 `json:"capacity"`
	Z           float64 `json:"z"`
}

func nodeID(n graph.Node) int {
	if !n.Valid() {
		return -1
	}
	return n.Idx()
}

// NewExport flattens every recorded iteration of h.
func NewExport(meta RunMetadata, h *cascade.History) ExportData {
	data := ExportData{
		Run:        meta,
		KS:         h.KS(),
		BetaDeltas: h.BetaDeltas(),
		Cascades:   h.Cascades(),
		Iterations: make([]IterationExport, h.IterCount()),
	}

	for i := range h.IterCount() {
		it := h.At(i)
		g, m := it.Graph, it.Metrics
		ie := IterationExport{
			Index:          i,
			Alive:          make([]uint32, 0, g.Alive()),
			Edges:          g.Desc().Edges(),
			Nodes:          make([]NodeMetrics, 0, g.Alive()),
			MaxBetweenness: nodeID(m.MaxBetweenness),
			MinBetweenness: nodeID(m.MinBetweenness),
			MaxCapacity:    nodeID(m.MaxCapacity),
			MinCapacity:    nodeID(m.MinCapacity),
			Zmax:           m.Zmax,
			Beta:           m.Beta,
			BetaDelta:      m.BetaDelta,
		}
		for n := range g.IterAlive() {
			ie.Alive = append(ie.Alive, uint32(n))
			ie.Nodes = append(ie.Nodes, NodeMetrics{
				Node:        uint32(n),
				Betweenness: m.Betweenness.At(n),
				Capacity:    m.Capacity.At(n),
				Z:           m.Z.At(n),
			})
		}
		data.Iterations[i] = ie
	}
	return data
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ReadJSON(r io.Reader) (ExportData, error) {
	var data ExportData
	err := json.NewDecoder(r).Decode(&data)
	return data, err
}
