package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeMap(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestTransformModelOutput(t *testing.T) {
	r, err := transformModelOutput(decodeMap(t, sampleModelJSON))
	require.NoError(t, err)

	assert.Equal(t, "A healthy month: you saved most of your salary.", r.Overview)
	require.NotNil(t, r.Summary.OpeningBalance)
	assert.Equal(t, 12000.5, *r.Summary.OpeningBalance)
	require.Len(t, r.CategoryBreakdown, 2)
	assert.Equal(t, 48.08, r.CategoryBreakdown[0].PercentageOfExpenses)

	first := r.Transactions[0]
	assert.Equal(t, "12345", *first.ReferenceID)
	assert.Equal(t, 11550.5, *first.BalanceAfterTxn)
	assert.Equal(t, "Delivery", *first.SubCategory)
	assert.Nil(t, first.ValueDate)
}

func TestTransformModelOutput_MissingNarrativeIsEmpty(t *testing.T) {
	r, err := transformModelOutput(decodeMap(t, `{
		"summary": {"totalCredits": 0, "totalDebits": 0, "netSavings": 0},
		"categoryBreakdown": [],
		"transactions": []
	}`))
	require.NoError(t, err)

	assert.Empty(t, r.Overview)
	assert.NotNil(t, r.Insights)
	assert.Empty(t, r.Insights)
	assert.Empty(t, r.Transactions)
}

func TestTransformModelOutput_Errors(t *testing.T) {
	base := `{"summary":{"totalCredits":1,"totalDebits":1,"netSavings":0},"categoryBreakdown":[],"transactions":[%s]}`
	wrap := func(tx string) string { return fmt.Sprintf(base, tx) }

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "missing summary", body: `{"categoryBreakdown":[],"transactions":[]}`, wantField: "summary"},
		{name: "summary wrong type", body: `{"summary":[],"categoryBreakdown":[],"transactions":[]}`, wantField: "summary"},
		{name: "missing totals", body: `{"summary":{"totalCredits":1},"categoryBreakdown":[],"transactions":[]}`, wantField: "summary.totalDebits"},
		{name: "missing transactions", body: `{"summary":{"totalCredits":1,"totalDebits":1,"netSavings":0},"categoryBreakdown":[]}`, wantField: "transactions"},
		{name: "amount as string", body: wrap(`{"date":"2025-01-01","description":"x","type":"debit","amount":"1,200.00","category":"Cash"}`), wantField: "transactions[0].amount"},
		{name: "missing category", body: wrap(`{"date":"2025-01-01","description":"x","type":"debit","amount":1}`), wantField: "transactions[0].category"},
		{name: "transaction not object", body: wrap(`"row"`), wantField: "transactions[0]"},
		{name: "reference as number", body: wrap(`{"date":"2025-01-01","description":"x","type":"debit","amount":1,"category":"Cash","referenceId":12345}`), wantField: "transactions[0].referenceId"},
		{name: "insight not string", body: `{"summary":{"totalCredits":1,"totalDebits":1,"netSavings":0},"categoryBreakdown":[],"transactions":[],"insights":[1]}`, wantField: "insights[0]"},
		{name: "bad breakdown", body: `{"summary":{"totalCredits":1,"totalDebits":1,"netSavings":0},"categoryBreakdown":[{"category":"Cash"}],"transactions":[]}`, wantField: "categoryBreakdown[0].totalSpent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transformModelOutput(decodeMap(t, tt.body))
			require.Error(t, err)

			var malformed *domain.MalformedResponseError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, tt.wantField, malformed.Field)
			assert.ErrorIs(t, err, domain.ErrCollaboratorFailure)
		})
	}
}

func TestGetOptionalStringField_BlankIsNil(t *testing.T) {
	got, err := getOptionalStringField(map[string]interface{}{"notes": "   "}, "", "notes")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetOptionalStringField_KeepsValueUntrimmed(t *testing.T) {
	m := map[string]interface{}{
		"notes":    "  Corrected amount\nbased on balance  ",
		"bankName": " HDFC Bank",
	}

	notes, err := getOptionalStringField(m, "", "notes")
	require.NoError(t, err)
	require.NotNil(t, notes)
	assert.Equal(t, "  Corrected amount\nbased on balance  ", *notes)

	bank, err := getOptionalStringField(m, "summary", "bankName")
	require.NoError(t, err)
	require.NotNil(t, bank)
	assert.Equal(t, " HDFC Bank", *bank)
}
