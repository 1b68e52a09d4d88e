package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors the prediction path reports to.
type Metrics struct {
	Predictions     *prometheus.CounterVec
	Fallbacks       *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
	StatusProbes    prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry. Each call returns an
// independent set so tests do not share counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neuroflow",
			Name:      "predictions_total",
			Help:      "Predictions served, by prediction source.",
		}, []string{"source"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neuroflow",
			Name:      "fallbacks_total",
			Help:      "Predictions that fell back to the local formula, by reason.",
		}, []string{"reason"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "neuroflow",
			Name:      "ml_request_duration_seconds",
			Help:      "Latency of calls to the external model server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "outcome"}),
		StatusProbes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "neuroflow",
			Name:      "status_probes_total",
			Help:      "Health probes actually sent to the model server.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.Predictions, m.Fallbacks, m.UpstreamLatency, m.StatusProbes)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// The observe helpers are no-ops on a nil *Metrics.

func (m *Metrics) ObservePrediction(source string) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveFallback(reason string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveUpstream(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamLatency.WithLabelValues(endpoint, outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveProbe() {
	if m == nil {
		return
	}
	m.StatusProbes.Inc()
}
