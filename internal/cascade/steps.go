package cascade

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/cascadesim/internal/graph"
	"github.com/san-kum/cascadesim/internal/parallel"
)

// Step is one unit of work applied to the active iteration of a History.
// The set is closed; every value is handled by Apply.
type Step uint8

const (
	UpdatePaths Step = iota
	Resilience
	Betweenness
	Capacity
	Snapshot
	RemoveMax
	RemoveOverloaded
)

var stepNames = [...]string{
	UpdatePaths:      "update-paths",
	Resilience:       "resilience",
	Betweenness:      "betweenness",
	Capacity:         "capacity",
	Snapshot:         "snapshot",
	RemoveMax:        "remove-max",
	RemoveOverloaded: "remove-overloaded",
}

func (s Step) String() string {
	if int(s) < len(stepNames) {
		return stepNames[s]
	}
	return fmt.Sprintf("step(%d)", uint8(s))
}

// MarshalText lets plans be written to config files by name.
func (s Step) MarshalText() ([]byte, error) {
	if int(s) >= len(stepNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, uint8(s))
	}
	return []byte(stepNames[s]), nil
}

func (s *Step) UnmarshalText(b []byte) error {
	v, err := ParseStep(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseStep(name string) (Step, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStep, name)
}

func ParseSteps(names []string) ([]Step, error) {
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		s, err := ParseStep(name)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// CanonicalSteps is the cascading-failure round: measure, snapshot, remove
// the most loaded node, re-measure, then remove every node over the
// capacity computed before the removal.
func CanonicalSteps() []Step {
	return []Step{
		UpdatePaths, Resilience, Betweenness, Capacity,
		Snapshot,
		RemoveMax, UpdatePaths, Betweenness, RemoveOverloaded,
	}
}

// MeasureSteps computes every metric of the active iteration without
// removing anything.
func MeasureSteps() []Step {
	return []Step{UpdatePaths, Resilience, Betweenness, Capacity}
}

// ValidatePlan rejects plans whose removals would rewrite iteration 0, that
// remove a maximum before measuring betweenness, or that measure before any
// shortest paths exist.
func ValidatePlan(steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidPlan)
	}
	snapshot, measured, routed := false, false, false
	for i, s := range steps {
		switch s {
		case UpdatePaths:
			routed = true
		case Snapshot:
			snapshot = true
		case Resilience, Betweenness:
			if !routed {
				return fmt.Errorf("%w: %s at position %d precedes any update-paths step", ErrInvalidPlan, s, i)
			}
			measured = measured || s == Betweenness
		case RemoveMax, RemoveOverloaded:
			if !snapshot {
				return fmt.Errorf("%w: %s at position %d precedes any snapshot", ErrInvalidPlan, s, i)
			}
			if !measured {
				return fmt.Errorf("%w: %s at position %d precedes any betweenness step", ErrInvalidPlan, s, i)
			}
		default:
			if int(s) >= len(stepNames) {
				return fmt.Errorf("%w: %v", ErrUnknownStep, s)
			}
		}
	}
	return nil
}

// Apply runs the step against h with the default worker count.
func (s Step) Apply(ctx context.Context, h *History) error {
	return s.apply(ctx, h, parallel.DefaultWorkers())
}

func (s Step) apply(ctx context.Context, h *History, workers int) error {
	switch s {
	case UpdatePaths:
		return h.Active().Graph.UpdatePaths(ctx)
	case Resilience:
		return resilience(h)
	case Betweenness:
		return betweenness(ctx, h.Active(), workers)
	case Capacity:
		capacity(h.Active(), h.Alpha)
		return nil
	case Snapshot:
		h.push(h.Active().Clone())
		return nil
	case RemoveMax:
		return removeMax(h)
	case RemoveOverloaded:
		removeOverloaded(h)
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnknownStep, s)
}

func resilience(h *History) error {
	it := h.Active()
	g, m := it.Graph, it.Metrics

	n := g.Alive()
	if n < 3 {
		return fmt.Errorf("%w: %d alive", ErrDegenerate, n)
	}

	p := graph.NewNodeVec[float64](g.NodeCount())
	total := 0.0
	for i := range g.IterAlive() {
		sum := 0
		for j := range g.IterAlive().Exclude(i) {
			sum += g.Cost(i, j)
		}
		if sum == 0 {
			return fmt.Errorf("%w: node %v has no recorded paths", ErrDegenerate, i)
		}
		p.Set(i, float64(sum))
		total += float64(sum)
	}

	m.Z.Fill(0)
	zmax := 0.0
	for i, pi := range p.Alive(g.Tracker()) {
		z := total / (2 * pi)
		m.Z.Set(i, z)
		zmax = max(zmax, z)
	}

	nf := float64(n)
	m.Zmax = zmax
	m.Beta = ((nf - 1) * (2*zmax - nf)) / (zmax * (nf - 2))
	m.BetaDelta = math.Abs(m.Beta - 1)
	h.betaDeltas = append(h.betaDeltas, m.BetaDelta)
	return nil
}

const betweennessChunk = 4

// betweenness counts, for every alive node, the alive unordered pairs whose
// recorded shortest path contains it. Workers only read path data and each
// writes its own slots of the output vector.
func betweenness(ctx context.Context, it Iteration, workers int) error {
	g, m := it.Graph, it.Metrics
	paths := g.Paths()
	alive := g.Tracker().AliveNodes()

	m.Betweenness.Fill(0)
	err := parallel.For(ctx, len(alive), betweennessChunk, workers, func(start, end int) error {
		for _, node := range alive[start:end] {
			count := 0
			for a, s := range alive {
				for _, t := range alive[a+1:] {
					if paths.Contains(s, t, node) {
						count++
					}
				}
			}
			m.Betweenness.Set(node, count)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.MaxBetweenness, m.MinBetweenness = graph.InvalidNode, graph.InvalidNode
	for _, node := range alive {
		b := m.Betweenness.At(node)
		if !m.MaxBetweenness.Valid() || b > m.Betweenness.At(m.MaxBetweenness) {
			m.MaxBetweenness = node
		}
		if !m.MinBetweenness.Valid() || b < m.Betweenness.At(m.MinBetweenness) {
			m.MinBetweenness = node
		}
	}
	return nil
}

func capacity(it Iteration, alpha float64) {
	g, m := it.Graph, it.Metrics

	m.Capacity.Fill(0)
	m.MaxCapacity, m.MinCapacity = graph.InvalidNode, graph.InvalidNode
	for node, b := range m.Betweenness.Alive(g.Tracker()) {
		c := (1 + alpha) * float64(b)
		m.Capacity.Set(node, c)
		if !m.MaxCapacity.Valid() || c > m.Capacity.At(m.MaxCapacity) {
			m.MaxCapacity = node
		}
		if !m.MinCapacity.Valid() || c < m.Capacity.At(m.MinCapacity) {
			m.MinCapacity = node
		}
	}
}

func removeMax(h *History) error {
	it := h.Active()
	node := it.Metrics.MaxBetweenness
	if !node.Valid() || !it.Graph.IsAlive(node) {
		return ErrNoCandidate
	}
	it.Graph.Delete(node)
	h.removal().Max = node
	return nil
}

// removeOverloaded deletes, in one batch, every alive node whose current
// betweenness exceeds the capacity stored earlier in the round.
func removeOverloaded(h *History) {
	it := h.Active()
	g, m := it.Graph, it.Metrics

	var victims []graph.Node
	for node, b := range m.Betweenness.Alive(g.Tracker()) {
		if float64(b) > m.Capacity.At(node) {
			victims = append(victims, node)
		}
	}
	for _, node := range victims {
		g.Delete(node)
	}

	k := 0.0
	if len(victims) > 0 {
		k = 1 / float64(len(victims))
	}
	h.ks = append(h.ks, k)
	h.cascades = append(h.cascades, len(victims))

	r := h.removal()
	r.Overloaded = append(r.Overloaded, victims...)
}
