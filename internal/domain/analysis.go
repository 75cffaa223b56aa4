package domain

// TransactionType is the direction of money movement. The amount of a
// transaction is always non-negative; direction is carried only here.
type TransactionType string

const (
	// TransactionTypeCredit is money coming into the account.
	TransactionTypeCredit TransactionType = "credit"
	// TransactionTypeDebit is money leaving the account.
	TransactionTypeDebit TransactionType = "debit"
)

// Transaction represents one statement line as returned by the analysis model.
type Transaction struct {
	Date            string          `json:"date"`                      // ISO YYYY-MM-DD
	ValueDate       *string         `json:"valueDate,omitempty"`       // optional
	Description     string          `json:"description"`               // raw statement description
	ReferenceID     *string         `json:"referenceId,omitempty"`     // cheque / UPI / NEFT reference
	Type            TransactionType `json:"type"`                      // credit or debit
	Amount          float64         `json:"amount"`                    // non-negative
	BalanceAfterTxn *float64        `json:"balanceAfterTxn,omitempty"` // running balance, if printed
	Category        string          `json:"category"`
	SubCategory     *string         `json:"subCategory,omitempty"`
	Notes           *string         `json:"notes,omitempty"` // OCR corrections or ambiguities
}

// AccountSummary aggregates a transaction set. Bank, account and period
// fields are descriptive and never derived from transactions.
type AccountSummary struct {
	BankName       *string  `json:"bankName,omitempty"`
	AccountName    *string  `json:"accountName,omitempty"`
	PeriodStart    *string  `json:"periodStart,omitempty"`
	PeriodEnd      *string  `json:"periodEnd,omitempty"`
	OpeningBalance *float64 `json:"openingBalance,omitempty"`
	ClosingBalance *float64 `json:"closingBalance,omitempty"`

	TotalCredits float64 `json:"totalCredits"`
	TotalDebits  float64 `json:"totalDebits"`
	NetSavings   float64 `json:"netSavings"`
}

// CategoryBreakdown is the debit spend of one category.
type CategoryBreakdown struct {
	Category             string  `json:"category"`
	TotalSpent           float64 `json:"totalSpent"`
	PercentageOfExpenses float64 `json:"percentageOfExpenses"`
}

// AnalysisResult is one snapshot of a statement analysis.
//
// Overview, Insights and Suggestions are narrative text owned by the model;
// they are never regenerated locally.
type AnalysisResult struct {
	Overview          string              `json:"overview"`
	Summary           AccountSummary      `json:"summary"`
	CategoryBreakdown []CategoryBreakdown `json:"categoryBreakdown"`
	Transactions      []Transaction       `json:"transactions"`
	Insights          []string            `json:"insights"`
	Suggestions       []string            `json:"suggestions"`
}
