// Package metrics exposes board activity to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements app.Metrics on its own registry so several boards
// (and tests) can coexist in one process.
type Prometheus struct {
	registry      *prometheus.Registry
	mutations     *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	subscribers   prometheus.Gauge
}

func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propboard_mutations_total",
				Help: "Pick and answer edits by outcome.",
			},
			[]string{"kind", "outcome"},
		),
		storeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "propboard_store_duration_seconds",
				Help:    "Latency of blob store reads and writes.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		subscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "propboard_subscribers",
				Help: "Live WebSocket subscribers.",
			},
		),
	}
}

// Registry is what the /metrics handler gathers from.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) MutationApplied(kind, outcome string) {
	p.mutations.WithLabelValues(kind, outcome).Inc()
}

func (p *Prometheus) StoreObserved(op string, d time.Duration) {
	p.storeDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (p *Prometheus) SubscribersChanged(delta int) {
	p.subscribers.Add(float64(delta))
}
