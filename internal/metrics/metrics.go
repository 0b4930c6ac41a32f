// Package metrics exposes chunker and probe counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry     *prometheus.Registry
	chunkResults *prometheus.CounterVec
	chunkLatency prometheus.Histogram
	probes       *prometheus.CounterVec
	activeViews  prometheus.Gauge
	inFlight     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chunkResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chunker",
			Name:      "requests_total",
			Help:      "Chunk submissions by outcome.",
		}, []string{"outcome"}),
		chunkLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chunker",
			Name:      "request_duration_seconds",
			Help:      "Round trip time of chunk-text calls to the chunking service.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chunker",
			Name:      "health_probes_total",
			Help:      "Health probes against the chunking service by resulting status.",
		}, []string{"status"}),
		activeViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chunker",
			Name:      "active_views",
			Help:      "Chunker views currently held in memory.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chunker",
			Name:      "requests_in_flight",
			Help:      "Chunk submissions currently waiting on the chunking service.",
		}),
	}
	m.registry.MustRegister(m.chunkResults, m.chunkLatency, m.probes, m.activeViews, m.inFlight)
	return m
}

// ChunkSettled records the outcome of one submission. Outcomes are the
// error kinds plus "success"; elapsed is zero when no network call was made.
func (m *Metrics) ChunkSettled(outcome string, elapsed time.Duration) {
	m.chunkResults.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		m.chunkLatency.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) ProbeFinished(status string) {
	m.probes.WithLabelValues(status).Inc()
}

func (m *Metrics) ViewOpened() { m.activeViews.Inc() }
func (m *Metrics) ViewClosed() { m.activeViews.Dec() }

func (m *Metrics) RequestStarted()  { m.inFlight.Inc() }
func (m *Metrics) RequestFinished() { m.inFlight.Dec() }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
