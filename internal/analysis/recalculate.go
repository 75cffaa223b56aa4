// Package analysis keeps a statement analysis snapshot internally consistent
// after the user edits transactions, and offers read-side views over it.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Recalculate derives a new snapshot from previous and the full, already
// edited transaction list. Neither argument is modified.
//
// Totals, net savings, closing balance and the category breakdown are
// recomputed from updated; every other summary field and the narrative
// fields are copied from previous. The closing balance is
// openingBalance + netSavings, which is an approximation: it ignores
// anything the statement did not list.
func Recalculate(previous *domain.AnalysisResult, updated []domain.Transaction) *domain.AnalysisResult {
	if previous == nil {
		previous = &domain.AnalysisResult{}
	}

	credits := decimal.Zero
	debits := decimal.Zero

	// Category totals in first-occurrence order.
	var order []string
	spent := make(map[string]decimal.Decimal)

	for _, t := range updated {
		// NaN and infinite amounts cannot be summed; they count nowhere.
		if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
			continue
		}
		amount := decimal.NewFromFloat(t.Amount)
		switch t.Type {
		case domain.TransactionTypeCredit:
			credits = credits.Add(amount)
		case domain.TransactionTypeDebit:
			debits = debits.Add(amount)
			current, seen := spent[t.Category]
			if !seen {
				order = append(order, t.Category)
			}
			spent[t.Category] = current.Add(amount)
		}
	}

	summary := cloneSummary(previous.Summary)
	summary.TotalCredits = credits.InexactFloat64()
	summary.TotalDebits = debits.InexactFloat64()
	summary.NetSavings = summary.TotalCredits - summary.TotalDebits

	opening := 0.0
	if previous.Summary.OpeningBalance != nil {
		opening = *previous.Summary.OpeningBalance
	}
	closing := opening + summary.NetSavings
	summary.ClosingBalance = &closing

	return &domain.AnalysisResult{
		Overview:          previous.Overview,
		Summary:           summary,
		CategoryBreakdown: buildBreakdown(order, spent, debits),
		Transactions:      cloneTransactions(updated),
		Insights:          cloneStrings(previous.Insights),
		Suggestions:       cloneStrings(previous.Suggestions),
	}
}

// ReplaceTransaction swaps the transaction at index for txn and recomputes.
// The index is a position in previous.Transactions; recomputation never
// reorders that list, so positions stay stable across edits.
func ReplaceTransaction(previous *domain.AnalysisResult, index int, txn domain.Transaction) (*domain.AnalysisResult, error) {
	if previous == nil {
		return nil, domain.ErrNoAnalysis
	}
	if index < 0 || index >= len(previous.Transactions) {
		return nil, fmt.Errorf("ReplaceTransaction: index %d of %d: %w", index, len(previous.Transactions), domain.ErrTransactionIndexOutOfRange)
	}

	updated := cloneTransactions(previous.Transactions)
	updated[index] = txn

	return Recalculate(previous, updated), nil
}

func buildBreakdown(order []string, spent map[string]decimal.Decimal, debits decimal.Decimal) []domain.CategoryBreakdown {
	type entry struct {
		category string
		total    decimal.Decimal
	}

	entries := make([]entry, 0, len(order))
	for _, category := range order {
		total := spent[category]
		if total.IsZero() {
			continue
		}
		entries = append(entries, entry{category: category, total: total})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].total.GreaterThan(entries[j].total)
	})

	breakdown := make([]domain.CategoryBreakdown, 0, len(entries))
	for _, e := range entries {
		pct := 0.0
		if debits.IsPositive() {
			pct = e.total.Mul(hundred).Div(debits).Round(2).InexactFloat64()
		}
		breakdown = append(breakdown, domain.CategoryBreakdown{
			Category:             e.category,
			TotalSpent:           e.total.InexactFloat64(),
			PercentageOfExpenses: pct,
		})
	}

	return breakdown
}

func cloneSummary(s domain.AccountSummary) domain.AccountSummary {
	return domain.AccountSummary{
		BankName:       clonePtr(s.BankName),
		AccountName:    clonePtr(s.AccountName),
		PeriodStart:    clonePtr(s.PeriodStart),
		PeriodEnd:      clonePtr(s.PeriodEnd),
		OpeningBalance: clonePtr(s.OpeningBalance),
		ClosingBalance: clonePtr(s.ClosingBalance),
		TotalCredits:   s.TotalCredits,
		TotalDebits:    s.TotalDebits,
		NetSavings:     s.NetSavings,
	}
}

func cloneTransactions(txns []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txns))
	for i, t := range txns {
		out[i] = cloneTransaction(t)
	}
	return out
}

func cloneTransaction(t domain.Transaction) domain.Transaction {
	t.ValueDate = clonePtr(t.ValueDate)
	t.ReferenceID = clonePtr(t.ReferenceID)
	t.BalanceAfterTxn = clonePtr(t.BalanceAfterTxn)
	t.SubCategory = clonePtr(t.SubCategory)
	t.Notes = clonePtr(t.Notes)
	return t
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
