package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects Prometheus metrics for the analysis service
type Metrics struct {
	queriesTotal    *prometheus.CounterVec
	parseFailures   prometheus.Counter
	analysisErrors  prometheus.Counter
	requestDuration *prometheus.HistogramVec
	startTime       time.Time
}

// NewMetrics creates and registers the service collectors. Tests pass a
// fresh registry to avoid duplicate registration on the default one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menucost_queries_total",
			Help: "Number of analysis queries processed, by query type.",
		}, []string{"query_type"}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menucost_parse_failures_total",
			Help: "Number of LLM parse attempts that fell back to the default query.",
		}),
		analysisErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menucost_analysis_errors_total",
			Help: "Number of analysis requests that surfaced a structured error.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "menucost_request_duration_seconds",
			Help:    "HTTP request duration by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		startTime: time.Now(),
	}

	reg.MustRegister(m.queriesTotal, m.parseFailures, m.analysisErrors, m.requestDuration)
	return m
}

// RecordQuery counts one processed query of the given type
func (m *Metrics) RecordQuery(queryType string) {
	m.queriesTotal.WithLabelValues(queryType).Inc()
}

// RecordParseFailure counts one parser fallback
func (m *Metrics) RecordParseFailure() {
	m.parseFailures.Inc()
}

// RecordAnalysisError counts one structured analysis error
func (m *Metrics) RecordAnalysisError() {
	m.analysisErrors.Inc()
}

// ObserveRequest records the duration of one HTTP request
func (m *Metrics) ObserveRequest(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// Uptime returns how long the service has been running
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
