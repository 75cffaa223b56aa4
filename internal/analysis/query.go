package analysis

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finsight/internal/domain"
)

// Sort orders accepted by QueryTransactions.
const (
	SortDateDesc   = "date-desc"
	SortDateAsc    = "date-asc"
	SortAmountDesc = "amount-desc"
	SortAmountAsc  = "amount-asc"
)

// DefaultPageSize is the number of transactions per page.
const DefaultPageSize = 10

// AllCategories disables the category filter.
const AllCategories = "All"

// DefaultCategories are always offered when re-categorising a transaction.
var DefaultCategories = []string{
	"Food & Dining", "Groceries", "Utilities", "Rent", "Shopping",
	"Travel", "Medical", "Investment", "Transfer",
}

// Query filters, sorts and pages a transaction list.
type Query struct {
	Search   string
	Category string
	Sort     string
	Page     int
	PageSize int
}

// IndexedTransaction is a transaction plus its position in the snapshot.
type IndexedTransaction struct {
	domain.Transaction
	OriginalIndex int `json:"originalIndex"`
}

// Page is one page of query results.
type Page struct {
	Items      []IndexedTransaction `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

// QueryTransactions applies q to txns without modifying them. Each item keeps
// the index it has in txns so an edit can be addressed back to it.
func QueryTransactions(txns []domain.Transaction, q Query) Page {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]IndexedTransaction, 0, len(txns))
	for i, t := range txns {
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		if q.Category != "" && q.Category != AllCategories && t.Category != q.Category {
			continue
		}
		filtered = append(filtered, IndexedTransaction{Transaction: cloneTransaction(t), OriginalIndex: i})
	}

	sortTransactions(filtered, q.Sort)

	total := len(filtered)
	totalPages := (total + q.PageSize - 1) / q.PageSize

	start := (q.Page - 1) * q.PageSize
	end := start + q.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:      filtered[start:end],
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}
}

// Categories returns the sorted distinct categories of txns merged with
// DefaultCategories.
func Categories(txns []domain.Transaction) []string {
	set := make(map[string]struct{}, len(txns)+len(DefaultCategories))
	for _, t := range txns {
		set[t.Category] = struct{}{}
	}
	for _, c := range DefaultCategories {
		set[c] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func matchesSearch(t domain.Transaction, search string) bool {
	if strings.Contains(strings.ToLower(t.Description), search) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Category), search) {
		return true
	}
	return t.ReferenceID != nil && strings.Contains(strings.ToLower(*t.ReferenceID), search)
}

func sortTransactions(items []IndexedTransaction, order string) {
	var less func(a, b IndexedTransaction) bool
	switch order {
	case SortDateAsc:
		less = func(a, b IndexedTransaction) bool { return compareDates(a.Date, b.Date) < 0 }
	case SortAmountDesc:
		less = func(a, b IndexedTransaction) bool { return a.Amount > b.Amount }
	case SortAmountAsc:
		less = func(a, b IndexedTransaction) bool { return a.Amount < b.Amount }
	default:
		less = func(a, b IndexedTransaction) bool { return compareDates(a.Date, b.Date) > 0 }
	}

	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func compareDates(a, b string) int {
	da, errA := civil.ParseDate(a)
	db, errB := civil.ParseDate(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	switch {
	case da.Before(db):
		return -1
	case da.After(db):
		return 1
	default:
		return 0
	}
}
