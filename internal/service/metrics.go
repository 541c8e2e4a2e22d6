package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis outcomes recorded by MetricsCollector
const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport_error"
	OutcomeParse     = "parse_error"
	OutcomeData      = "data_error"
	OutcomeConflict  = "conflict"
)

type MetricsCollector interface {
	IncrementAnalyses(outcome string)
	ObserveFetchDuration(d time.Duration)
	IncrementValidationWarnings(n int)
	SetActiveSessions(n int)
}

type metricsCollector struct {
	analysesTotal      *prometheus.CounterVec
	fetchDuration      prometheus.Histogram
	validationWarnings prometheus.Counter
	activeSessions     prometheus.Gauge
}

// NewMetricsCollector registers the dashboard metrics on reg
func NewMetricsCollector(reg prometheus.Registerer) MetricsCollector {
	factory := promauto.With(reg)
	return &metricsCollector{
		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statsdash_analyses_total",
				Help: "Token submissions by outcome",
			},
			[]string{"outcome"},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statsdash_stats_fetch_duration_seconds",
				Help:    "Latency of the upstream statistics request",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		validationWarnings: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "statsdash_validation_warnings_total",
				Help: "Contract violations found in upstream statistics",
			},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "statsdash_active_sessions",
				Help: "Dashboard sessions currently held in memory",
			},
		),
	}
}

func (m *metricsCollector) IncrementAnalyses(outcome string) {
	m.analysesTotal.WithLabelValues(outcome).Inc()
}

func (m *metricsCollector) ObserveFetchDuration(d time.Duration) {
	m.fetchDuration.Observe(d.Seconds())
}

func (m *metricsCollector) IncrementValidationWarnings(n int) {
	m.validationWarnings.Add(float64(n))
}

func (m *metricsCollector) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}
