package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/config"
	"github.com/san-kum/cascadesim/internal/graph"
	"github.com/san-kum/cascadesim/internal/logging"
	"github.com/san-kum/cascadesim/internal/metrics"
	"github.com/san-kum/cascadesim/internal/storage"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *slog.Logger
	observers []cascade.Observer

	desc     graph.Desc
	planName string
	steps    []cascade.Step
	pipeline *cascade.Pipeline
	summary  *metrics.Summary
	rows     []storage.RoundRow
}

type Result struct {
	Status   cascade.Status
	Rounds   int
	History  *cascade.History
	Rows     []storage.RoundRow
	Metrics  map[string]float64
	Topology graph.Desc
}

func New(cfg *config.Config, logger *slog.Logger) *Experiment {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Experiment{cfg: cfg, registry: NewRegistry(), logger: logger}
}

// AddObserver registers an extra observer; it must be called before Setup.
func (e *Experiment) AddObserver(o cascade.Observer) { e.observers = append(e.observers, o) }

// Setup resolves the topology and step plan and builds the pipeline.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	desc, err := e.topology()
	if err != nil {
		return err
	}

	maxRounds := e.cfg.MaxRounds
	if len(e.cfg.Steps) > 0 {
		e.planName = "custom"
		if e.steps, err = cascade.ParseSteps(e.cfg.Steps); err != nil {
			return err
		}
	} else {
		plan, err := e.registry.GetPlan(e.cfg.Plan)
		if err != nil {
			return err
		}
		e.planName = e.cfg.Plan
		e.steps = plan.Steps
		if maxRounds == 0 {
			maxRounds = plan.MaxRounds
		}
	}

	e.summary = e.registry.DefaultMetrics()
	e.rows = nil
	opts := []cascade.Option{
		cascade.WithAlpha(e.cfg.Alpha),
		cascade.WithSteps(e.steps...),
		cascade.WithWorkers(e.cfg.Workers),
		cascade.WithMaxRounds(maxRounds),
		cascade.WithLogger(e.logger),
		cascade.WithObserver(e.summary),
		cascade.WithObserver(cascade.ObserverFunc(func(r cascade.RoundReport) {
			e.rows = append(e.rows, storage.NewRoundRow(r))
		})),
	}
	for _, o := range e.observers {
		opts = append(opts, cascade.WithObserver(o))
	}

	p, err := cascade.New(desc, opts...)
	if err != nil {
		return fmt.Errorf("experiment: %w", err)
	}
	e.desc = desc
	e.pipeline = p

	e.logger.Debug("experiment ready",
		"nodes", desc.NodeCount(), "edges", len(desc.Edges()),
		"plan", e.planName, "alpha", e.cfg.Alpha)
	return nil
}

func (e *Experiment) topology() (graph.Desc, error) {
	t := e.cfg.Topology
	if t.File != "" {
		return graph.LoadDesc(t.File)
	}
	gen, err := e.registry.GetGenerator(t.Generator)
	if err != nil {
		return graph.Desc{}, err
	}
	return gen(t.Params())
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.pipeline == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	status, err := e.pipeline.Run(ctx)
	res := &Result{
		Status:   status,
		Rounds:   e.pipeline.Rounds(),
		History:  e.pipeline.History(),
		Rows:     e.rows,
		Metrics:  e.summary.Values(),
		Topology: e.desc,
	}
	return res, err
}

// Metadata describes a finished run for storage.
func (e *Experiment) Metadata(name string, res *Result) storage.RunMetadata {
	steps := make([]string, len(e.steps))
	for i, s := range e.steps {
		steps[i] = s.String()
	}
	topo := e.cfg.Topology.Generator
	if e.cfg.Topology.File != "" {
		topo = e.cfg.Topology.File
	}
	return storage.RunMetadata{
		Name:       name,
		Alpha:      e.cfg.Alpha,
		Plan:       e.planName,
		Steps:      steps,
		Topology:   topo,
		Nodes:      res.Topology.NodeCount(),
		Edges:      len(res.Topology.Edges()),
		Status:     res.Status.String(),
		Rounds:     res.Rounds,
		Iterations: res.History.IterCount(),
		Metrics:    res.Metrics,
	}
}

// Pipeline returns the underlying pipeline for stepping rounds manually.
func (e *Experiment) Pipeline() *cascade.Pipeline {
	return e.pipeline
}
