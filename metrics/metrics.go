package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SubmissionsTotal    *prometheus.CounterVec
	AnalyzerDuration    *prometheus.HistogramVec
	SectionErrorsTotal  *prometheus.CounterVec
	ActiveSessions      prometheus.GaugeFunc
}

// New registers the collectors with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reportview_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reportview_http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reportview_submissions_total",
				Help: "Total number of analysis submissions by outcome.",
			},
			[]string{"outcome"},
		),
		AnalyzerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reportview_analyzer_duration_seconds",
				Help:    "Time from submission to a rendered outcome.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"outcome"},
		),
		SectionErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reportview_section_errors_total",
				Help: "Report sections the analyzer could not produce.",
			},
			[]string{"section"},
		),
	}
}

// RecordOutcome counts a finished submission. Rejected input never reached
// the analyzer and is not timed.
func (m *Metrics) RecordOutcome(outcome string, elapsed time.Duration) {
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
	if outcome != "invalid_input" {
		m.AnalyzerDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) RecordSectionError(section string) {
	m.SectionErrorsTotal.WithLabelValues(section).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}

// TrackSessions exposes the live session count reported by count.
func (m *Metrics) TrackSessions(reg prometheus.Registerer, count func() int) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m.ActiveSessions = promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "reportview_active_sessions",
			Help: "Current number of report view sessions.",
		},
		func() float64 { return float64(count()) },
	)
}
