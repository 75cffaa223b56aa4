package analysis

import (
	"math"

	"github.com/dvloznov/finsight/internal/domain"
)

// BudgetLevel classifies spend against a limit.
type BudgetLevel string

const (
	BudgetLevelNone    BudgetLevel = "none"
	BudgetLevelOK      BudgetLevel = "ok"
	BudgetLevelWarning BudgetLevel = "warning"
	BudgetLevelOver    BudgetLevel = "over"
)

// budgetWarningPercent is where a category starts to be flagged.
const budgetWarningPercent = 85

// BudgetStatus is the spend of one category against its limit.
type BudgetStatus struct {
	Category   string      `json:"category"`
	TotalSpent float64     `json:"totalSpent"`
	Limit      float64     `json:"limit,omitempty"`
	Progress   float64     `json:"progress"` // percent of the limit, capped at 100
	Level      BudgetLevel `json:"level"`
	Exceeded   float64     `json:"exceeded,omitempty"`
}

// EvaluateBudgets compares each spending category with its limit.
// Categories without a positive limit are reported with BudgetLevelNone.
func EvaluateBudgets(breakdown []domain.CategoryBreakdown, limits map[string]float64) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(breakdown))
	for _, c := range breakdown {
		if c.TotalSpent <= 0 {
			continue
		}

		status := BudgetStatus{Category: c.Category, TotalSpent: c.TotalSpent, Level: BudgetLevelNone}
		limit := limits[c.Category]
		if limit > 0 {
			ratio := c.TotalSpent / limit * 100
			status.Limit = limit
			status.Progress = math.Min(ratio, 100)
			switch {
			case ratio >= 100:
				status.Level = BudgetLevelOver
			case ratio >= budgetWarningPercent:
				status.Level = BudgetLevelWarning
			default:
				status.Level = BudgetLevelOK
			}
			if c.TotalSpent > limit {
				status.Exceeded = c.TotalSpent - limit
			}
		}
		out = append(out, status)
	}
	return out
}
