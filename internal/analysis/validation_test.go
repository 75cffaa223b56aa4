package analysis

import (
	"errors"
	"testing"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTransaction(t *testing.T) {
	valid := debit(450, "Food")

	tests := []struct {
		name    string
		mutate  func(*domain.Transaction)
		wantErr bool
	}{
		{name: "valid debit", mutate: func(*domain.Transaction) {}},
		{name: "valid credit", mutate: func(tx *domain.Transaction) { tx.Type = domain.TransactionTypeCredit }},
		{name: "zero amount", mutate: func(tx *domain.Transaction) { tx.Amount = 0 }},
		{name: "indian date format", mutate: func(tx *domain.Transaction) { tx.Date = "05/01/2025" }, wantErr: true},
		{name: "impossible date", mutate: func(tx *domain.Transaction) { tx.Date = "2025-02-30" }, wantErr: true},
		{name: "negative amount", mutate: func(tx *domain.Transaction) { tx.Amount = -1 }, wantErr: true},
		{name: "unknown type", mutate: func(tx *domain.Transaction) { tx.Type = "DEBIT" }, wantErr: true},
		{name: "empty description", mutate: func(tx *domain.Transaction) { tx.Description = "  " }, wantErr: true},
		{name: "empty category", mutate: func(tx *domain.Transaction) { tx.Category = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := ValidateTransaction(tx)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidTransaction)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateResult(t *testing.T) {
	good := Recalculate(previousSnapshot(), []domain.Transaction{credit(100, "Salary"), debit(40, "Food")})
	require.NoError(t, ValidateResult(good))

	bad := Recalculate(previousSnapshot(), []domain.Transaction{credit(100, "Salary"), debit(40, "Food")})
	bad.Transactions[1].Type = "withdrawal"

	err := ValidateResult(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.ErrorIs(t, err, domain.ErrCollaboratorFailure)

	var malformed *domain.MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "transactions[1].type", malformed.Field)
}

func TestValidateResult_DuplicateCategory(t *testing.T) {
	r := &domain.AnalysisResult{
		CategoryBreakdown: []domain.CategoryBreakdown{
			{Category: "Food", TotalSpent: 1},
			{Category: "Food", TotalSpent: 2},
		},
	}

	err := ValidateResult(r)

	var malformed *domain.MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "categoryBreakdown[1].category", malformed.Field)
}

func TestValidateResult_Nil(t *testing.T) {
	assert.ErrorIs(t, ValidateResult(nil), domain.ErrMalformedResponse)
}
