package pipeline

import "strings"

// SystemPrompt is the fixed instruction sent with every analysis request.
const SystemPrompt = `
You are an AI assistant acting as a professional Chartered Accountant (CA) for personal finance analysis in India.
Your task is to analyze raw text from Indian bank statements (OCR output from PDF/Image or copy-paste).

GOALS:
1. CLEAN & STRUCTURE (CRITICAL):
   - Identify the transaction table and ignore unrelated headers/footers.
   - OCR ERROR HANDLING:
     - Detect and fix common OCR typos (e.g., 'l'/'I' -> '1', 'O' -> '0', 'S' -> '5').
     - USE CONTEXT: If a 'Balance' column exists, use it to mathematically verify and correct the 'Amount' of debit/credit transactions.
       (e.g., if Balance decreases by 500 but amount reads 5000, it's likely 500).
     - DATE HANDLING:
       - Input formats vary (DD/MM/YYYY, DD-MM-YY, DD Month YYYY).
       - Output MUST be strictly ISO 8601 (YYYY-MM-DD).
       - Infer the Year: If the transaction date lacks a year (e.g., "12 Jan"), infer it from the Statement Period or the previous row. Handle year rollovers (Dec to Jan).
       - Fix Date OCR: Correct spaces or typos in dates (e.g., '1 0-01-2025' -> '10-01-2025').
   - FLAGGING: If a value is corrected based on context or remains ambiguous/unreadable, populate the 'notes' field for that transaction with a short explanation (e.g., "Corrected amount based on balance").

2. CATEGORIZE:
   - Intelligently categorize expenses based on Indian context.
   - Examples: UPI (GPay/PhonePe), NEFT/IMPS, Swiggy/Zomato, LIC, Loans, Salary, Self Transfer.

3. ANALYZE:
   - Calculate totals, net savings, and identify trends.

INPUT HANDLING:
- If specific values (like opening balance) are missing, infer from context if possible, otherwise null.
- Amounts are often in INR formats (1,23,456.00). Convert to pure numbers.
- Every amount is a non-negative number; direction is given only by "type" ("credit" or "debit").

OUTPUT REQUIREMENTS:
You must return a JSON object strictly adhering to the schema provided.
The JSON must include:
- 'transactions': Array of transaction objects, including a 'notes' field for OCR warnings.
- 'overview': A short, friendly summary.
- 'summary': Aggregate stats.
- 'categoryBreakdown': Array of spending by category.
- 'insights': List of key observations.
- 'suggestions': List of actionable advice.
`

// SampleStatementText is a small HDFC statement used by the CLI --sample flag.
const SampleStatementText = `
HDFC BANK STATEMENT
Account: Kushagra Pandey
Date: 01/01/2025 to 31/01/2025

Date       Description                  Ref No      Debit       Credit      Balance
01-01-25   OPENING BALANCE                                                 12,000.50
05-01-25   UPI-GPAY-SWIGGY ORDER        12345       450.00                  11,550.50
05-01-25   NEFT-SALARY-ACME PVT LTD     SAL001                  45,000.00   56,550.50
06-01-25   ATM WDL HDFC001              ATMX        2,000.00                54,550.50
10-01-25   NETFLIX SUBSCRIPTION         NFLX        649.00                  53,901.50
15-01-25   UPI-AMAZON PAY-SHOPPING      AMZ1        1,200.00                52,701.50
20-01-25   SIP INVESTMENT-ZERODHA       ZER1        5,000.00                47,701.50
25-01-25   ELECTRICITY BILL             BESCOM      1,100.00                46,601.50
31-01-25   INTEREST CREDIT              INT123                  150.00      46,751.50
`

// buildUserPrompt returns the text part of the request.
func buildUserPrompt(in StatementInput) string {
	if in.HasFile() {
		if strings.TrimSpace(in.Text) != "" {
			return "Analyze this bank statement file. Additional user context: " + in.Text
		}
		return "Analyze this bank statement file and extract the transaction data."
	}
	return "Here is the bank statement text to analyze:\n\n" + in.Text
}
