// Package metrics provides Prometheus collectors for summarization runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricSummariesTotal       = "summaries_total"
	MetricSummaryDuration      = "summary_duration_seconds"
	MetricSentencesRankedTotal = "sentences_ranked_total"
	MetricWatchEventsTotal     = "watch_events_total"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics contains Prometheus metrics for summarization.
// All operations are thread-safe.
type Metrics struct {
	summariesTotal  *prometheus.CounterVec
	summaryDuration *prometheus.HistogramVec
	sentencesRanked *prometheus.CounterVec
	watchEvents     *prometheus.CounterVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		summariesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSummariesTotal,
				Help: "Total number of summarization runs by strategy and status",
			},
			[]string{"strategy", "status"},
		),
		summaryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricSummaryDuration,
				Help:    "Histogram of summarization run duration in seconds by strategy",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"strategy"},
		),
		sentencesRanked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSentencesRankedTotal,
				Help: "Total number of sentences scored by strategy",
			},
			[]string{"strategy"},
		),
		watchEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricWatchEventsTotal,
				Help: "Total number of handled watch events by kind",
			},
			[]string{"event"},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRun records one summarization run. ranked is the number of scored
// sentences and is only counted on success.
func (m *Metrics) ObserveRun(strategy string, elapsed time.Duration, ranked int, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.summariesTotal.WithLabelValues(strategy, status).Inc()
	m.summaryDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	if err == nil {
		m.sentencesRanked.WithLabelValues(strategy).Add(float64(ranked))
	}
}

// IncWatchEvent counts a handled watch event ("summarized", "removed", "failed").
func (m *Metrics) IncWatchEvent(event string) {
	m.watchEvents.WithLabelValues(event).Inc()
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.summariesTotal,
		m.summaryDuration,
		m.sentencesRanked,
		m.watchEvents,
	}
}
