// Package metrics exports Manager activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CreativeUnicorns/widgetprefs"
)

const namespace = "widgetprefs"

var _ widgetprefs.MetricsRecorder = (*Recorder)(nil)

// Recorder implements widgetprefs.MetricsRecorder with Prometheus collectors.
type Recorder struct {
	operations     *prometheus.CounterVec
	durations      *prometheus.HistogramVec
	persistFailure *prometheus.CounterVec
	recoveries     *prometheus.CounterVec
	gatherer       prometheus.Gatherer
}

// NewRecorder registers the collectors with reg. A nil reg uses a fresh
// private registry.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	rec := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Visibility operations handled, by operation.",
		}, []string{"op"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of visibility operations including persistence.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
		persistFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Writes that did not reach storage; in-memory state was kept.",
		}, []string{"op"}),
		recoveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_recoveries_total",
			Help:      "Loads that fell back to registry defaults, by reason.",
		}, []string{"reason"}),
		gatherer: gatherer,
	}

	for _, c := range []prometheus.Collector{rec.operations, rec.durations, rec.persistFailure, rec.recoveries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// ObserveOperation counts op and records its latency.
func (r *Recorder) ObserveOperation(op string, d time.Duration) {
	r.operations.WithLabelValues(op).Inc()
	r.durations.WithLabelValues(op).Observe(d.Seconds())
}

// PersistFailed counts a write that did not reach storage.
func (r *Recorder) PersistFailed(op string) {
	r.persistFailure.WithLabelValues(op).Inc()
}

// StateRecovered counts a fallback to defaults.
func (r *Recorder) StateRecovered(reason string) {
	r.recoveries.WithLabelValues(reason).Inc()
}

// Handler serves the registry the Recorder was built on in the Prometheus
// exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
