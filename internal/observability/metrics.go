// Package observability holds the Prometheus metrics of the analysis service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Outcome labels for RecordAnalysis.
const (
	OutcomeSuccess   = "success"
	OutcomeEmpty     = "empty_input"
	OutcomeMalformed = "malformed_response"
	OutcomeFailed    = "failed"
)

// Metrics groups every collector on a private registry. All methods are safe
// on a nil *Metrics, which records nothing.
type Metrics struct {
	// Registry backs the /metrics endpoint.
	Registry *prometheus.Registry

	analysisDuration *prometheus.HistogramVec
	analyses         *prometheus.CounterVec
	recalculations   prometheus.Counter
	tokensUsed       *prometheus.CounterVec
	exports          *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		analysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsight_analysis_duration_seconds",
				Help:    "Duration of statement analyses by outcome.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"outcome"},
		),
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_analyses_total",
				Help: "Total statement analyses by outcome.",
			},
			[]string{"outcome"},
		),
		recalculations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "finsight_recalculations_total",
				Help: "Total snapshot recomputations after a transaction edit.",
			},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_llm_tokens_total",
				Help: "Total LLM tokens consumed.",
			},
			[]string{"type"},
		),
		exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_exports_total",
				Help: "Total transaction exports by format.",
			},
			[]string{"format"},
		),
	}
}

// RecordAnalysis counts one analysis and observes how long it took.
func (m *Metrics) RecordAnalysis(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(outcome).Inc()
	m.analysisDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) IncrRecalculation() {
	if m == nil {
		return
	}
	m.recalculations.Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	if m == nil {
		return
	}
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

func (m *Metrics) IncrExport(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// AnalysisCount returns how many analyses ended with outcome.
func (m *Metrics) AnalysisCount(outcome string) float64 {
	if m == nil {
		return 0
	}
	return getCounterValue(m.analyses, outcome)
}

// getCounterValue extracts the current value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
