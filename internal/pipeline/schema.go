package pipeline

import "google.golang.org/genai"

func nullable(s *genai.Schema) *genai.Schema {
	s.Nullable = genai.Ptr(true)
	return s
}

func stringSchema(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func numberSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber}
}

func stringListSchema(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: description,
	}
}

// analysisSchema is the response schema the model must follow.
func analysisSchema() *genai.Schema {
	summary := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"bankName":       nullable(stringSchema("")),
			"accountName":    nullable(stringSchema("")),
			"periodStart":    nullable(stringSchema("")),
			"periodEnd":      nullable(stringSchema("")),
			"openingBalance": nullable(numberSchema()),
			"closingBalance": nullable(numberSchema()),
			"totalCredits":   numberSchema(),
			"totalDebits":    numberSchema(),
			"netSavings":     numberSchema(),
		},
		Required: []string{"totalCredits", "totalDebits", "netSavings"},
	}

	breakdown := &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category":             stringSchema(""),
				"totalSpent":           numberSchema(),
				"percentageOfExpenses": numberSchema(),
			},
			Required: []string{"category", "totalSpent", "percentageOfExpenses"},
		},
	}

	transactions := &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"date":            stringSchema("ISO format YYYY-MM-DD. Handle various Indian formats (DD/MM/YYYY) and fix OCR errors."),
				"valueDate":       nullable(stringSchema("")),
				"description":     stringSchema(""),
				"referenceId":     nullable(stringSchema("")),
				"type":            {Type: genai.TypeString, Enum: []string{"credit", "debit"}},
				"amount":          numberSchema(),
				"balanceAfterTxn": nullable(numberSchema()),
				"category":        stringSchema(""),
				"subCategory":     nullable(stringSchema("")),
				"notes":           nullable(stringSchema("Notes regarding OCR corrections or ambiguities.")),
			},
			Required: []string{"date", "description", "type", "amount", "category"},
		},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"overview":          stringSchema("A short, friendly summary paragraph acting like a CA talking to a client."),
			"summary":           summary,
			"categoryBreakdown": breakdown,
			"transactions":      transactions,
			"insights":          stringListSchema("List of key observations about spending habits or large transactions."),
			"suggestions":       stringListSchema("List of actionable financial advice based on the analysis."),
		},
		Required: []string{"overview", "summary", "categoryBreakdown", "transactions", "insights", "suggestions"},
	}
}
