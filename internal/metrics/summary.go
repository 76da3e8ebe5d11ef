// Package metrics aggregates per-round simulation reports into run summaries
// and Prometheus series.
package metrics

import (
	"github.com/san-kum/cascadesim/internal/cascade"
)

// Metric accumulates one scalar over the rounds of a run.
type Metric interface {
	Name() string
	Observe(r cascade.RoundReport)
	Value() float64
	Reset()
}

// Severity is the mean of the per-round overload severity log.
type Severity struct {
	name    string
	sum     float64
	samples int
}

func NewSeverity() *Severity {
	return &Severity{name: "mean_severity"}
}

func (s *Severity) Name() string { return s.name }

func (s *Severity) Observe(r cascade.RoundReport) {
	if !r.HasK {
		return
	}
	s.sum += r.K
	s.samples++
}

func (s *Severity) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *Severity) Reset() {
	s.sum = 0
	s.samples = 0
}

// CascadeRate is the fraction of completed rounds that removed at least one
// overloaded node.
type CascadeRate struct {
	name     string
	rounds   int
	cascades int
}

func NewCascadeRate() *CascadeRate {
	return &CascadeRate{name: "cascade_rate"}
}

func (c *CascadeRate) Name() string { return c.name }

func (c *CascadeRate) Observe(r cascade.RoundReport) {
	if !r.HasK {
		return
	}
	c.rounds++
	if len(r.Removal.Overloaded) > 0 {
		c.cascades++
	}
}

func (c *CascadeRate) Value() float64 {
	if c.rounds == 0 {
		return 0
	}
	return float64(c.cascades) / float64(c.rounds)
}

func (c *CascadeRate) Reset() {
	c.rounds = 0
	c.cascades = 0
}

// PeakBetaDelta is the largest resilience deviation seen during the run.
type PeakBetaDelta struct {
	name string
	peak float64
}

func NewPeakBetaDelta() *PeakBetaDelta {
	return &PeakBetaDelta{name: "peak_beta_delta"}
}

func (p *PeakBetaDelta) Name() string { return p.name }

func (p *PeakBetaDelta) Observe(r cascade.RoundReport) {
	if r.HasBetaDelta {
		p.peak = max(p.peak, r.BetaDelta)
	}
}

func (p *PeakBetaDelta) Value() float64 { return p.peak }
func (p *PeakBetaDelta) Reset()         { p.peak = 0 }

// Removed counts every node deleted during the run.
type Removed struct {
	name  string
	count int
}

func NewRemoved() *Removed {
	return &Removed{name: "removed_nodes"}
}

func (m *Removed) Name() string                  { return m.name }
func (m *Removed) Observe(r cascade.RoundReport) { m.count += r.Removal.Count() }
func (m *Removed) Value() float64                { return float64(m.count) }
func (m *Removed) Reset()                        { m.count = 0 }

// FinalAlive is the alive count of the last report seen.
type FinalAlive struct {
	name  string
	alive int
}

func NewFinalAlive() *FinalAlive {
	return &FinalAlive{name: "final_alive"}
}

func (f *FinalAlive) Name() string                  { return f.name }
func (f *FinalAlive) Observe(r cascade.RoundReport) { f.alive = r.Alive }
func (f *FinalAlive) Value() float64                { return float64(f.alive) }
func (f *FinalAlive) Reset()                        { f.alive = 0 }

// Summary fans round reports out to a set of metrics. It implements
// cascade.Observer.
type Summary struct {
	metrics []Metric
}

func NewSummary(ms ...Metric) *Summary {
	return &Summary{metrics: ms}
}

func DefaultSummary() *Summary {
	return NewSummary(
		NewSeverity(),
		NewCascadeRate(),
		NewPeakBetaDelta(),
		NewRemoved(),
		NewFinalAlive(),
	)
}

func (s *Summary) OnRound(r cascade.RoundReport) {
	for _, m := range s.metrics {
		m.Observe(r)
	}
}

func (s *Summary) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Summary) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}
