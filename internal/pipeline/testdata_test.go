package pipeline

// sampleModelJSON is a model response for SampleStatementText.
const sampleModelJSON = `{
  "overview": "A healthy month: you saved most of your salary.",
  "summary": {
    "bankName": "HDFC BANK",
    "accountName": "Kushagra Pandey",
    "periodStart": "2025-01-01",
    "periodEnd": "2025-01-31",
    "openingBalance": 12000.5,
    "closingBalance": 46751.5,
    "totalCredits": 45150,
    "totalDebits": 10399,
    "netSavings": 34751
  },
  "categoryBreakdown": [
    {"category": "Investment", "totalSpent": 5000, "percentageOfExpenses": 48.08},
    {"category": "Cash", "totalSpent": 2000, "percentageOfExpenses": 19.23}
  ],
  "transactions": [
    {"date": "2025-01-05", "description": "UPI-GPAY-SWIGGY ORDER", "referenceId": "12345", "type": "debit", "amount": 450, "balanceAfterTxn": 11550.5, "category": "Food & Dining", "subCategory": "Delivery", "notes": null},
    {"date": "2025-01-05", "valueDate": "2025-01-06", "description": "NEFT-SALARY-ACME PVT LTD", "referenceId": "SAL001", "type": "credit", "amount": 45000, "balanceAfterTxn": 56550.5, "category": "Salary"},
    {"date": "2025-01-20", "description": "SIP INVESTMENT-ZERODHA", "type": "debit", "amount": 5000, "category": "Investment", "notes": "Corrected amount based on balance"}
  ],
  "insights": ["Investments are your largest outflow."],
  "suggestions": ["Keep the SIP running."]
}`
