package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.RecordAnalysis(OutcomeSuccess, 2*time.Second)
	m.RecordAnalysis(OutcomeSuccess, time.Second)
	m.RecordAnalysis(OutcomeMalformed, time.Second)
	m.IncrRecalculation()
	m.RecordTokens(120, 80)
	m.RecordTokens(30, 20)
	m.IncrExport("csv")

	assert.Equal(t, 2.0, m.AnalysisCount(OutcomeSuccess))
	assert.Zero(t, m.AnalysisCount(OutcomeEmpty))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues(OutcomeMalformed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recalculations))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.tokensUsed.WithLabelValues("prompt")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.tokensUsed.WithLabelValues("completion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("csv")))

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_PrivateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAnalysis(OutcomeFailed, time.Second)
		m.IncrRecalculation()
		m.RecordTokens(1, 1)
		m.IncrExport("notion")
	})
}
