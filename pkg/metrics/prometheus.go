package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal     *prometheus.CounterVec
	cycleDuration   *prometheus.HistogramVec
	fetchDuration   *prometheus.HistogramVec
	alertsPublished *prometheus.CounterVec
	vixLevel        prometheus.Gauge
	errorsTotal     *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vixwatch_cycles_total",
				Help: "Total number of monitoring cycles by outcome",
			},
			[]string{"outcome"},
		),
		cycleDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vixwatch_cycle_duration_seconds",
				Help:    "Duration of a full monitoring cycle in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vixwatch_fetch_duration_seconds",
				Help:    "Duration of a single upstream quote fetch in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
		alertsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vixwatch_alerts_published_total",
				Help: "Total number of zone-transition alerts published",
			},
			[]string{"zone"},
		),
		vixLevel: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vixwatch_vix_level",
				Help: "Last observed volatility index reading",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vixwatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordCycle records one finished cycle and its duration.
func (r *Recorder) RecordCycle(outcome string, seconds float64) {
	r.cyclesTotal.WithLabelValues(outcome).Inc()
	r.cycleDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordFetchLatency records a single quote fetch duration.
func (r *Recorder) RecordFetchLatency(symbol string, seconds float64) {
	r.fetchDuration.WithLabelValues(symbol).Observe(seconds)
}

// RecordAlertPublished records an alert delivered to the sink.
func (r *Recorder) RecordAlertPublished(zone string) {
	r.alertsPublished.WithLabelValues(zone).Inc()
}

// RecordVIX records the latest volatility reading.
func (r *Recorder) RecordVIX(value float64) {
	r.vixLevel.Set(value)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
