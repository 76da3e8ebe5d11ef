// Package cascade runs the cascading-failure simulation: each round measures
// the network, snapshots it, removes the most loaded node and then every node
// pushed over its capacity, until the network converges to two nodes or
// fragments.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/cascadesim/internal/graph"
	"github.com/san-kum/cascadesim/internal/logging"
)

// Status is the lifecycle state of a pipeline. Every value except Running is
// terminal.
type Status uint8

const (
	Running Status = iota
	Converged
	HaltedDisconnected
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case HaltedDisconnected:
		return "halted-disconnected"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Terminal reports whether no further round will run.
func (s Status) Terminal() bool { return s != Running }

// RoundReport summarises one round for observers. K and BetaDelta are only
// meaningful when HasK and HasBetaDelta are set.
type RoundReport struct {
	Round        int
	Status       Status
	Alive        int
	Iterations   int
	Removal      Removal
	K            float64
	HasK         bool
	BetaDelta    float64
	HasBetaDelta bool
}

// Observer is notified after every completed round and once on termination.
type Observer interface {
	OnRound(r RoundReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(RoundReport)

func (f ObserverFunc) OnRound(r RoundReport) { f(r) }

// Pipeline repeats a step plan over a topology until its status is terminal.
type Pipeline struct {
	history   *History
	steps     []Step
	status    Status
	rounds    int
	maxRounds int
	alpha     float64
	workers   int
	logger    *slog.Logger
	observers []Observer
}

// Option configures a Pipeline in New.
type Option func(*Pipeline)

func WithAlpha(alpha float64) Option   { return func(p *Pipeline) { p.alpha = alpha } }
func WithSteps(steps ...Step) Option   { return func(p *Pipeline) { p.steps = steps } }
func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.logger = l } }
func WithWorkers(n int) Option         { return func(p *Pipeline) { p.workers = n } }
func WithMaxRounds(n int) Option       { return func(p *Pipeline) { p.maxRounds = n } }
func WithObserver(obs Observer) Option { return func(p *Pipeline) { p.observers = append(p.observers, obs) } }

// New builds iteration 0 from d. The default plan is CanonicalSteps with
// DefaultAlpha, bounded by one round per node.
func New(d graph.Desc, opts ...Option) (*Pipeline, error) {
	g, err := graph.New(d)
	if err != nil {
		return nil, err
	}
	if g.NodeCount() < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewNodes, g.NodeCount())
	}

	p := &Pipeline{
		steps:     CanonicalSteps(),
		alpha:     DefaultAlpha,
		maxRounds: g.NodeCount(),
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.alpha < 0 || math.IsNaN(p.alpha) || math.IsInf(p.alpha, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAlpha, p.alpha)
	}
	if err := ValidatePlan(p.steps); err != nil {
		return nil, err
	}
	if p.maxRounds <= 0 {
		p.maxRounds = g.NodeCount()
	}

	p.history = NewHistory(g, p.alpha)
	return p, nil
}

func (p *Pipeline) History() *History { return p.history }
func (p *Pipeline) Status() Status    { return p.status }
func (p *Pipeline) Rounds() int       { return p.rounds }
func (p *Pipeline) Steps() []Step     { return append([]Step(nil), p.steps...) }

// Round advances the simulation by one round and returns the new status.
// A disconnected network halts the pipeline without an error; any other
// step failure is returned as a *StepError.
func (p *Pipeline) Round(ctx context.Context) (Status, error) {
	if p.status.Terminal() {
		return p.status, nil
	}

	h := p.history
	alive := h.Active().Graph.Alive()
	if alive <= 2 {
		if h.IterCount() < 2 {
			panic(fmt.Sprintf("cascade: initial topology converged immediately with %d alive nodes", alive))
		}
		h.pop()
		p.status = Converged
		p.logger.Info("network converged", "rounds", p.rounds, "iterations", h.IterCount())
		p.notify(p.final(alive))
		return p.status, nil
	}

	if p.rounds >= p.maxRounds {
		p.status = Exhausted
		p.logger.Info("round limit reached", "rounds", p.rounds)
		p.notify(p.final(alive))
		return p.status, nil
	}

	p.rounds++
	h.round = p.rounds
	ks, betas := len(h.ks), len(h.betaDeltas)

	for _, s := range p.steps {
		logging.Trace(p.logger, "applying step", "round", p.rounds, "step", s)
		if err := s.apply(ctx, h, p.workers); err != nil {
			if errors.Is(err, graph.ErrDisconnected) {
				p.status = HaltedDisconnected
				p.logger.Info("network disconnected", "round", p.rounds, "step", s, "err", err)
				p.notify(p.report(ks, betas))
				return p.status, nil
			}
			return p.status, &StepError{Round: p.rounds, Step: s, Err: err}
		}
	}

	r := p.report(ks, betas)
	if r.Removal.Max.Valid() {
		p.logger.Info("removed most loaded node",
			"round", r.Round, "node", uint32(r.Removal.Max), "alive", r.Alive)
	}
	for _, node := range r.Removal.Overloaded {
		p.logger.Debug("removed overloaded node", "round", r.Round, "node", uint32(node))
	}
	p.notify(r)
	return p.status, nil
}

// Run loops rounds until the pipeline reaches a terminal status. The context
// is checked between rounds and while paths are recomputed.
func (p *Pipeline) Run(ctx context.Context) (Status, error) {
	for !p.status.Terminal() {
		select {
		case <-ctx.Done():
			return p.status, ctx.Err()
		default:
		}

		if _, err := p.Round(ctx); err != nil {
			return p.status, err
		}
	}
	return p.status, nil
}

func (p *Pipeline) report(ks, betas int) RoundReport {
	h := p.history
	r := RoundReport{
		Round:      p.rounds,
		Status:     p.status,
		Alive:      h.Active().Graph.Alive(),
		Iterations: h.IterCount(),
		Removal:    Removal{Round: p.rounds, Max: graph.InvalidNode},
	}
	if n := len(h.removals); n > 0 && h.removals[n-1].Round == p.rounds {
		r.Removal = h.removals[n-1]
	}
	if len(h.ks) > ks {
		r.K, r.HasK = h.ks[len(h.ks)-1], true
	}
	if len(h.betaDeltas) > betas {
		r.BetaDelta, r.HasBetaDelta = h.betaDeltas[len(h.betaDeltas)-1], true
	}
	return r
}

// final reports a terminal status reached without running any step. alive
// is the size of the network when the status was reached, which for a
// converged run is the popped iteration's.
func (p *Pipeline) final(alive int) RoundReport {
	return RoundReport{
		Round:      p.rounds,
		Status:     p.status,
		Alive:      alive,
		Iterations: p.history.IterCount(),
		Removal:    Removal{Round: p.rounds, Max: graph.InvalidNode},
	}
}

func (p *Pipeline) notify(r RoundReport) {
	for _, obs := range p.observers {
		obs.OnRound(r)
	}
}
