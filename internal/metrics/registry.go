package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/cascadesim/internal/cascade"
)

// Registry exposes simulation progress as Prometheus series. It implements
// cascade.Observer so a pipeline can feed it directly.
type Registry struct {
	RoundsTotal       *prometheus.CounterVec
	NodesRemovedTotal *prometheus.CounterVec
	RunsTotal         *prometheus.CounterVec
	AliveNodes        prometheus.Gauge
	Iterations        prometheus.Gauge
	BetaDelta         prometheus.Gauge
	CascadeSize       prometheus.Histogram

	registry *prometheus.Registry
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}
	r.initRoundMetrics()
	r.initNetworkMetrics()
	return r
}

func (r *Registry) initRoundMetrics() {
	r.RoundsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascadesim_rounds_total",
			Help: "Rounds executed, by the status they ended in",
		},
		[]string{"status"},
	)

	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascadesim_runs_total",
			Help: "Runs that reached a terminal status",
		},
		[]string{"status"},
	)

	r.CascadeSize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cascadesim_cascade_size",
			Help:    "Overloaded nodes removed per round",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)
}

func (r *Registry) initNetworkMetrics() {
	r.NodesRemovedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascadesim_nodes_removed_total",
			Help: "Nodes removed, by cause",
		},
		[]string{"cause"},
	)

	r.AliveNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cascadesim_alive_nodes",
			Help: "Alive nodes in the active iteration",
		},
	)

	r.Iterations = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cascadesim_iterations",
			Help: "Iterations recorded in the history",
		},
	)

	r.BetaDelta = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cascadesim_beta_delta",
			Help: "Latest deviation of the resilience index from 1",
		},
	)
}

func (r *Registry) OnRound(rep cascade.RoundReport) {
	r.AliveNodes.Set(float64(rep.Alive))
	r.Iterations.Set(float64(rep.Iterations))
	if rep.HasBetaDelta {
		r.BetaDelta.Set(rep.BetaDelta)
	}

	if rep.Removal.Max.Valid() {
		r.NodesRemovedTotal.WithLabelValues("max").Inc()
	}
	if n := len(rep.Removal.Overloaded); n > 0 {
		r.NodesRemovedTotal.WithLabelValues("overload").Add(float64(n))
	}
	if rep.HasK {
		r.CascadeSize.Observe(float64(len(rep.Removal.Overloaded)))
	}

	switch rep.Status {
	case cascade.Running:
		r.RoundsTotal.WithLabelValues(rep.Status.String()).Inc()
	case cascade.HaltedDisconnected:
		r.RoundsTotal.WithLabelValues(rep.Status.String()).Inc()
		r.RunsTotal.WithLabelValues(rep.Status.String()).Inc()
	default:
		r.RunsTotal.WithLabelValues(rep.Status.String()).Inc()
	}
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every series in the text exposition format, for the
// node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
