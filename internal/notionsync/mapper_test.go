package notionsync

import (
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finsight/internal/domain"
)

func TestTransactionToNotionProperties(t *testing.T) {
	ref := "UPI-123"
	bal := 1200.5
	txn := domain.Transaction{
		Date:            "2025-01-05",
		Description:     "Swiggy order",
		ReferenceID:     &ref,
		Type:            domain.TransactionTypeDebit,
		Amount:          450,
		BalanceAfterTxn: &bal,
		Category:        "Food & Dining",
	}

	props := TransactionToNotionProperties(txn, "exp#1")

	title, ok := props[PropDescription].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Swiggy order", title.Title[0].Text.Content)

	date, ok := props[PropDate].(notionapi.DateProperty)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), time.Time(*date.Date.Start))

	assert.Equal(t, notionapi.NumberProperty{Number: 450}, props[PropAmount])
	assert.Equal(t, notionapi.NumberProperty{Number: 1200.5}, props[PropBalance])
	assert.Equal(t, "debit", props[PropType].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, "Food & Dining", props[PropCategory].(notionapi.SelectProperty).Select.Name)
	assert.Contains(t, props, PropReference)
	assert.NotContains(t, props, PropNotes)
	assert.NotContains(t, props, PropSubCategory)
}

func TestTransactionToNotionProperties_BadDateOmitted(t *testing.T) {
	props := TransactionToNotionProperties(domain.Transaction{Date: "05/01/2025", Description: "x"}, "k")
	assert.NotContains(t, props, PropDate)
	assert.NotContains(t, props, PropCategory)
}

func TestExtractEntryKey(t *testing.T) {
	assert.Equal(t, "a#1", extractEntryKey(pageWithKey("p", "a#1")))
	assert.Equal(t, "", extractEntryKey(notionapi.Page{}))
}
