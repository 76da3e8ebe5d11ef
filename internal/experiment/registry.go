package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/graph"
	"github.com/san-kum/cascadesim/internal/metrics"
	"github.com/san-kum/cascadesim/internal/topology"
)

// Plan is a named step order. MaxRounds, when non-zero, bounds runs whose
// steps never remove a node.
type Plan struct {
	Steps     []cascade.Step
	MaxRounds int
}

type Registry struct {
	generators map[string]func(topology.Params) (graph.Desc, error)
	plans      map[string]func() Plan
}

func NewRegistry() *Registry {
	r := &Registry{
		generators: make(map[string]func(topology.Params) (graph.Desc, error)),
		plans:      make(map[string]func() Plan),
	}

	for _, kind := range topology.Kinds() {
		r.generators[string(kind)] = func(p topology.Params) (graph.Desc, error) {
			return topology.Generate(kind, p)
		}
	}

	r.plans["canonical"] = func() Plan { return Plan{Steps: cascade.CanonicalSteps()} }
	r.plans["measure"] = func() Plan { return Plan{Steps: cascade.MeasureSteps(), MaxRounds: 1} }

	return r
}

func (r *Registry) GetGenerator(name string) (func(topology.Params) (graph.Desc, error), error) {
	fn, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown topology generator: %s", name)
	}
	return fn, nil
}

func (r *Registry) GetPlan(name string) (Plan, error) {
	fn, ok := r.plans[name]
	if !ok {
		return Plan{}, fmt.Errorf("unknown plan: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListGenerators() []string { return sortedKeys(r.generators) }
func (r *Registry) ListPlans() []string      { return sortedKeys(r.plans) }

func (r *Registry) DefaultMetrics() *metrics.Summary {
	return metrics.DefaultSummary()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
