package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/dvloznov/finsight/internal/domain"
)

// transformModelOutput converts the decoded model JSON into an AnalysisResult.
// Type errors are reported as *domain.MalformedResponseError with the JSON
// path of the offending field.
func transformModelOutput(raw map[string]interface{}) (*domain.AnalysisResult, error) {
	overview, err := getStringField(raw, "", "overview", false)
	if err != nil {
		return nil, err
	}

	summaryObj, err := getObjectField(raw, "", "summary")
	if err != nil {
		return nil, err
	}
	summary, err := transformSummary(summaryObj)
	if err != nil {
		return nil, err
	}

	breakdownItems, err := getArrayField(raw, "", "categoryBreakdown", true)
	if err != nil {
		return nil, err
	}
	breakdown := make([]domain.CategoryBreakdown, 0, len(breakdownItems))
	for i, item := range breakdownItems {
		path := fmt.Sprintf("categoryBreakdown[%d]", i)
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, domain.NewMalformedResponse(path, "element is %T, want object", item)
		}
		c, err := transformBreakdown(path, obj)
		if err != nil {
			return nil, err
		}
		breakdown = append(breakdown, c)
	}

	txItems, err := getArrayField(raw, "", "transactions", true)
	if err != nil {
		return nil, err
	}
	txns := make([]domain.Transaction, 0, len(txItems))
	for i, item := range txItems {
		path := fmt.Sprintf("transactions[%d]", i)
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, domain.NewMalformedResponse(path, "element is %T, want object", item)
		}
		t, err := transformTransaction(path, obj)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}

	insights, err := getStringSliceField(raw, "", "insights")
	if err != nil {
		return nil, err
	}
	suggestions, err := getStringSliceField(raw, "", "suggestions")
	if err != nil {
		return nil, err
	}

	return &domain.AnalysisResult{
		Overview:          overview,
		Summary:           summary,
		CategoryBreakdown: breakdown,
		Transactions:      txns,
		Insights:          insights,
		Suggestions:       suggestions,
	}, nil
}

func transformSummary(obj map[string]interface{}) (domain.AccountSummary, error) {
	const path = "summary"
	var (
		s   domain.AccountSummary
		err error
	)

	if s.BankName, err = getOptionalStringField(obj, path, "bankName"); err != nil {
		return s, err
	}
	if s.AccountName, err = getOptionalStringField(obj, path, "accountName"); err != nil {
		return s, err
	}
	if s.PeriodStart, err = getOptionalStringField(obj, path, "periodStart"); err != nil {
		return s, err
	}
	if s.PeriodEnd, err = getOptionalStringField(obj, path, "periodEnd"); err != nil {
		return s, err
	}
	if s.OpeningBalance, err = getOptionalFloat64Field(obj, path, "openingBalance"); err != nil {
		return s, err
	}
	if s.ClosingBalance, err = getOptionalFloat64Field(obj, path, "closingBalance"); err != nil {
		return s, err
	}
	if s.TotalCredits, err = getFloat64Field(obj, path, "totalCredits", true); err != nil {
		return s, err
	}
	if s.TotalDebits, err = getFloat64Field(obj, path, "totalDebits", true); err != nil {
		return s, err
	}
	if s.NetSavings, err = getFloat64Field(obj, path, "netSavings", true); err != nil {
		return s, err
	}
	return s, nil
}

func transformBreakdown(path string, obj map[string]interface{}) (domain.CategoryBreakdown, error) {
	var (
		c   domain.CategoryBreakdown
		err error
	)
	if c.Category, err = getStringField(obj, path, "category", true); err != nil {
		return c, err
	}
	if c.TotalSpent, err = getFloat64Field(obj, path, "totalSpent", true); err != nil {
		return c, err
	}
	if c.PercentageOfExpenses, err = getFloat64Field(obj, path, "percentageOfExpenses", true); err != nil {
		return c, err
	}
	return c, nil
}

func transformTransaction(path string, obj map[string]interface{}) (domain.Transaction, error) {
	var (
		t   domain.Transaction
		err error
	)

	// Required fields
	if t.Date, err = getStringField(obj, path, "date", true); err != nil {
		return t, err
	}
	if t.Description, err = getStringField(obj, path, "description", true); err != nil {
		return t, err
	}
	typ, err := getStringField(obj, path, "type", true)
	if err != nil {
		return t, err
	}
	t.Type = domain.TransactionType(typ)
	if t.Amount, err = getFloat64Field(obj, path, "amount", true); err != nil {
		return t, err
	}
	if t.Category, err = getStringField(obj, path, "category", true); err != nil {
		return t, err
	}

	// Optional fields
	if t.ValueDate, err = getOptionalStringField(obj, path, "valueDate"); err != nil {
		return t, err
	}
	if t.ReferenceID, err = getOptionalStringField(obj, path, "referenceId"); err != nil {
		return t, err
	}
	if t.BalanceAfterTxn, err = getOptionalFloat64Field(obj, path, "balanceAfterTxn"); err != nil {
		return t, err
	}
	if t.SubCategory, err = getOptionalStringField(obj, path, "subCategory"); err != nil {
		return t, err
	}
	if t.Notes, err = getOptionalStringField(obj, path, "notes"); err != nil {
		return t, err
	}
	return t, nil
}

func fieldPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func getStringField(m map[string]interface{}, path, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", domain.NewMalformedResponse(fieldPath(path, key), "missing required field")
		}
		return "", nil
	}
	val, ok := v.(string)
	if !ok {
		return "", domain.NewMalformedResponse(fieldPath(path, key), "has type %T, want string", v)
	}
	if required && strings.TrimSpace(val) == "" {
		return "", domain.NewMalformedResponse(fieldPath(path, key), "required field is empty")
	}
	return val, nil
}

func getOptionalStringField(m map[string]interface{}, path, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	val, ok := v.(string)
	if !ok {
		return nil, domain.NewMalformedResponse(fieldPath(path, key), "has type %T, want string or null", v)
	}
	// Blank counts as absent; anything else is kept exactly as sent.
	if strings.TrimSpace(val) == "" {
		return nil, nil
	}
	return &val, nil
}

func getFloat64Field(m map[string]interface{}, path, key string, required bool) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return 0, domain.NewMalformedResponse(fieldPath(path, key), "missing required field")
		}
		return 0, nil
	}
	val, ok := v.(float64)
	if !ok {
		return 0, domain.NewMalformedResponse(fieldPath(path, key), "has type %T, want number", v)
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, domain.NewMalformedResponse(fieldPath(path, key), "non-finite number")
	}
	return val, nil
}

func getOptionalFloat64Field(m map[string]interface{}, path, key string) (*float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	f, err := getFloat64Field(m, path, key, true)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func getObjectField(m map[string]interface{}, path, key string) (map[string]interface{}, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, domain.NewMalformedResponse(fieldPath(path, key), "missing required field")
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, domain.NewMalformedResponse(fieldPath(path, key), "has type %T, want object", v)
	}
	return obj, nil
}

func getArrayField(m map[string]interface{}, path, key string, required bool) ([]interface{}, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return nil, domain.NewMalformedResponse(fieldPath(path, key), "missing required field")
		}
		return nil, nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, domain.NewMalformedResponse(fieldPath(path, key), "has type %T, want array", v)
	}
	return arr, nil
}

// getStringSliceField reads an optional list of strings; a missing list is empty.
func getStringSliceField(m map[string]interface{}, path, key string) ([]string, error) {
	items, err := getArrayField(m, path, key, false)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, domain.NewMalformedResponse(fmt.Sprintf("%s[%d]", fieldPath(path, key), i), "has type %T, want string", item)
		}
		out = append(out, s)
	}
	return out, nil
}
