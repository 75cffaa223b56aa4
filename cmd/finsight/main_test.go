package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finsight/internal/domain"
)

func TestParseLimits(t *testing.T) {
	limits, err := parseLimits([]string{"Food & Dining=5000", " Shopping = 3000.5", "a=b=10"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Food & Dining": 5000, "Shopping": 3000.5, "a=b": 10}, limits)

	for _, bad := range []string{"Food", "=10", "Food=ten"} {
		_, err := parseLimits([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestReadAttachment(t *testing.T) {
	dir := t.TempDir()

	pdf := filepath.Join(dir, "statement.PDF")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o600))
	att, err := readAttachment(pdf)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", att.MIMEType)

	noExt := filepath.Join(dir, "scan")
	require.NoError(t, os.WriteFile(noExt, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))
	att, err = readAttachment(noExt)
	require.NoError(t, err)
	assert.Equal(t, "image/png", att.MIMEType)

	_, err = readAttachment(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func snapshot() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Overview: "ok",
		Summary:  domain.AccountSummary{TotalCredits: 1000, TotalDebits: 300, NetSavings: 700},
		CategoryBreakdown: []domain.CategoryBreakdown{
			{Category: "Shopping", TotalSpent: 300, PercentageOfExpenses: 100},
		},
		Transactions: []domain.Transaction{
			{Date: "2025-01-01", Description: "Salary", Type: domain.TransactionTypeCredit, Amount: 1000, Category: "Income"},
			{Date: "2025-01-03", Description: "Amazon", Type: domain.TransactionTypeDebit, Amount: 300, Category: "Shopping"},
		},
		Insights:    []string{},
		Suggestions: []string{},
	}
}

func TestLoadResult_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.json")
	require.NoError(t, writeJSON(path, snapshot()))

	got, err := loadResult(path)
	require.NoError(t, err)
	assert.Equal(t, snapshot(), got)
}

func TestLoadResult_RejectsInvalidSnapshot(t *testing.T) {
	bad := snapshot()
	bad.Transactions[1].Type = "DEBIT"
	path := filepath.Join(t.TempDir(), "analysis.json")
	require.NoError(t, writeJSON(path, bad))

	_, err := loadResult(path)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestRecalculateCommand(t *testing.T) {
	dir := t.TempDir()
	analysisPath := filepath.Join(dir, "analysis.json")
	txnPath := filepath.Join(dir, "txn.json")
	outPath := filepath.Join(dir, "next.json")

	require.NoError(t, writeJSON(analysisPath, snapshot()))
	require.NoError(t, writeJSON(txnPath, domain.Transaction{
		Date: "2025-01-03", Description: "Amazon", Type: domain.TransactionTypeDebit, Amount: 300, Category: "Groceries",
	}))

	rootCmd.SetArgs([]string{"recalculate", "--analysis", analysisPath, "--transaction", txnPath, "--index", "1", "--out", outPath})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var next domain.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &next))
	require.Len(t, next.CategoryBreakdown, 1)
	assert.Equal(t, "Groceries", next.CategoryBreakdown[0].Category)
	assert.Equal(t, 700.0, next.Summary.NetSavings)
	assert.Equal(t, "ok", next.Overview)
}
