package analysis

import (
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finsight/internal/domain"
)

// ValidateResult checks a model-produced snapshot against the analysis schema.
// It returns a *domain.MalformedResponseError naming the first offending field.
func ValidateResult(r *domain.AnalysisResult) error {
	if r == nil {
		return domain.NewMalformedResponse("", "empty analysis")
	}

	if err := validateSummary(r.Summary); err != nil {
		return err
	}

	seen := make(map[string]bool, len(r.CategoryBreakdown))
	for i, c := range r.CategoryBreakdown {
		field := fmt.Sprintf("categoryBreakdown[%d]", i)
		if strings.TrimSpace(c.Category) == "" {
			return domain.NewMalformedResponse(field+".category", "required field is empty")
		}
		if seen[c.Category] {
			return domain.NewMalformedResponse(field+".category", "duplicate category %q", c.Category)
		}
		seen[c.Category] = true
		if !isFinite(c.TotalSpent) || !isFinite(c.PercentageOfExpenses) {
			return domain.NewMalformedResponse(field, "non-finite number")
		}
	}

	for i, t := range r.Transactions {
		if err := checkTransaction(t); err != nil {
			return domain.NewMalformedResponse(fmt.Sprintf("transactions[%d].%s", i, err.field), "%s", err.reason)
		}
	}

	return nil
}

// ValidateTransaction checks a single transaction, for example one edited by
// the user, and wraps domain.ErrInvalidTransaction on failure.
func ValidateTransaction(t domain.Transaction) error {
	if err := checkTransaction(t); err != nil {
		return fmt.Errorf("%w: %s: %s", domain.ErrInvalidTransaction, err.field, err.reason)
	}
	return nil
}

type fieldError struct {
	field  string
	reason string
}

func checkTransaction(t domain.Transaction) *fieldError {
	if _, err := civil.ParseDate(t.Date); err != nil {
		return &fieldError{"date", fmt.Sprintf("%q is not an ISO YYYY-MM-DD date", t.Date)}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &fieldError{"description", "required field is empty"}
	}
	if t.Type != domain.TransactionTypeCredit && t.Type != domain.TransactionTypeDebit {
		return &fieldError{"type", fmt.Sprintf("%q is not credit or debit", t.Type)}
	}
	if !isFinite(t.Amount) || t.Amount < 0 {
		return &fieldError{"amount", fmt.Sprintf("%v is not a non-negative number", t.Amount)}
	}
	if t.BalanceAfterTxn != nil && !isFinite(*t.BalanceAfterTxn) {
		return &fieldError{"balanceAfterTxn", "non-finite number"}
	}
	if strings.TrimSpace(t.Category) == "" {
		return &fieldError{"category", "required field is empty"}
	}
	return nil
}

func validateSummary(s domain.AccountSummary) error {
	numbers := map[string]float64{
		"summary.totalCredits": s.TotalCredits,
		"summary.totalDebits":  s.TotalDebits,
		"summary.netSavings":   s.NetSavings,
	}
	if s.OpeningBalance != nil {
		numbers["summary.openingBalance"] = *s.OpeningBalance
	}
	if s.ClosingBalance != nil {
		numbers["summary.closingBalance"] = *s.ClosingBalance
	}
	for _, field := range []string{
		"summary.totalCredits", "summary.totalDebits", "summary.netSavings",
		"summary.openingBalance", "summary.closingBalance",
	} {
		v, ok := numbers[field]
		if ok && !isFinite(v) {
			return domain.NewMalformedResponse(field, "non-finite number")
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
