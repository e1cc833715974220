package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the clock's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing, so components can be built
// without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	attempts   *prometheus.CounterVec
	duration   prometheus.Histogram
	inFlight   prometheus.Gauge
	dropped    prometheus.Counter
	frames     prometheus.Counter
	background prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clockface_generation_attempts_total",
				Help: "Total number of background generation attempts by outcome",
			},
			[]string{"outcome"}, // success, failure
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "clockface_generation_duration_seconds",
				Help:    "Time spent in the generation backend",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 15, 20, 30, 60},
			},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "clockface_generation_in_flight",
				Help: "1 while a generation call is running",
			},
		),

		dropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "clockface_update_requests_dropped_total",
				Help: "Update requests ignored because one was in flight or the interval had not elapsed",
			},
		),

		frames: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "clockface_frames_total",
				Help: "Frames presented to the display",
			},
		),

		background: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "clockface_background_sequence",
				Help: "Sequence number of the currently published background",
			},
		),
	}

	m.registry.MustRegister(
		m.attempts,
		m.duration,
		m.inFlight,
		m.dropped,
		m.frames,
		m.background,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) GenerationStarted() {
	if m == nil {
		return
	}
	m.inFlight.Set(1)
}

// GenerationFinished records one completed attempt.
func (m *Metrics) GenerationFinished(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Set(0)
	m.attempts.WithLabelValues(outcome).Inc()
	m.duration.Observe(took.Seconds())
}

func (m *Metrics) RequestDropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *Metrics) FramePresented() {
	if m == nil {
		return
	}
	m.frames.Inc()
}

func (m *Metrics) BackgroundPublished(seq uint64) {
	if m == nil {
		return
	}
	m.background.Set(float64(seq))
}
