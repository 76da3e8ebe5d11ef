package cascade

import (
	"fmt"
	"slices"

	"github.com/san-kum/cascadesim/internal/graph"
)

// DefaultAlpha is the tolerance used when none is configured.
const DefaultAlpha = 3.0

// Iteration pairs one graph snapshot with its metrics. Only the last
// iteration of a History is ever mutated.
type Iteration struct {
	Graph   *graph.Graph
	Metrics *Metrics
}

func (it Iteration) Clone() Iteration {
	return Iteration{Graph: it.Graph.Clone(), Metrics: it.Metrics.Clone()}
}

// Removal lists the nodes deleted during one round.
type Removal struct {
	Round      int
	Max        graph.Node
	Overloaded []graph.Node
}

// Count is the total number of nodes removed in the round.
func (r Removal) Count() int {
	n := len(r.Overloaded)
	if r.Max.Valid() {
		n++
	}
	return n
}

// History is the append-only record of a run plus a display cursor that
// moves independently of the append position.
type History struct {
	Alpha float64

	iterations []Iteration
	current    int
	round      int

	ks         []float64
	betaDeltas []float64
	cascades   []int
	removals   []Removal
}

// NewHistory seeds iteration 0 with g and empty metrics.
func NewHistory(g *graph.Graph, alpha float64) *History {
	return &History{
		Alpha:      alpha,
		iterations: []Iteration{{Graph: g, Metrics: NewMetrics(g.NodeCount())}},
	}
}

func (h *History) IterCount() int     { return len(h.iterations) }
func (h *History) CurrentIter() int   { return h.current }
func (h *History) Current() Iteration { return h.iterations[h.current] }

// Active is the last iteration, the one steps read and write.
func (h *History) Active() Iteration { return h.iterations[len(h.iterations)-1] }

func (h *History) At(i int) Iteration {
	h.check(i)
	return h.iterations[i]
}

func (h *History) SetCurrentIter(i int) {
	h.check(i)
	h.current = i
}

// Next moves the cursor forward, wrapping to the first iteration.
func (h *History) Next() {
	h.current = (h.current + 1) % len(h.iterations)
}

// Prev moves the cursor back, wrapping to the last iteration.
func (h *History) Prev() {
	h.current = (h.current - 1 + len(h.iterations)) % len(h.iterations)
}

func (h *History) check(i int) {
	if i < 0 || i >= len(h.iterations) {
		panic(fmt.Sprintf("cascade: iteration %d out of range [0, %d)", i, len(h.iterations)))
	}
}

// KS is the per-round overload severity log: 1/(nodes removed by overload),
// or 0 for a round without a cascade.
func (h *History) KS() []float64         { return slices.Clone(h.ks) }
func (h *History) BetaDeltas() []float64 { return slices.Clone(h.betaDeltas) }

// Cascades is the number of overloaded nodes removed per round.
func (h *History) Cascades() []int { return slices.Clone(h.cascades) }

func (h *History) Removals() []Removal {
	out := make([]Removal, len(h.removals))
	for i, r := range h.removals {
		out[i] = Removal{Round: r.Round, Max: r.Max, Overloaded: slices.Clone(r.Overloaded)}
	}
	return out
}

func (h *History) push(it Iteration) {
	h.iterations = append(h.iterations, it)
	h.current = len(h.iterations) - 1
}

func (h *History) pop() {
	h.iterations = h.iterations[:len(h.iterations)-1]
	h.current = min(h.current, len(h.iterations)-1)
}

// removal returns the record for the running round, starting one if needed.
func (h *History) removal() *Removal {
	if n := len(h.removals); n > 0 && h.removals[n-1].Round == h.round {
		return &h.removals[n-1]
	}
	h.removals = append(h.removals, Removal{Round: h.round, Max: graph.InvalidNode})
	return &h.removals[len(h.removals)-1]
}
