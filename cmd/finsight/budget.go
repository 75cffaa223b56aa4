package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dvloznov/finsight/internal/analysis"
)

func budgetCmd() *cobra.Command {
	var (
		analysisPath string
		limitPairs   []string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:     "budget",
		Short:   "Compare category spend with budget limits",
		Example: `  finsight budget --analysis analysis.json --limit "Food & Dining=5000" --limit Shopping=3000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := loadResult(analysisPath)
			if err != nil {
				return err
			}
			limits, err := parseLimits(limitPairs)
			if err != nil {
				return err
			}

			statuses := analysis.EvaluateBudgets(result.CategoryBreakdown, limits)
			if asJSON {
				return writeJSON("", statuses)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tSPENT\tLIMIT\tPROGRESS\tSTATUS")
			for _, s := range statuses {
				limit := "-"
				if s.Limit > 0 {
					limit = fmt.Sprintf("%.2f", s.Limit)
				}
				status := string(s.Level)
				if s.Level == analysis.BudgetLevelOver && s.Exceeded > 0 {
					status = fmt.Sprintf("%s by %.2f", status, s.Exceeded)
				}
				fmt.Fprintf(w, "%s\t%.2f\t%s\t%.0f%%\t%s\n", s.Category, s.TotalSpent, limit, s.Progress, status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&analysisPath, "analysis", "", "snapshot JSON written by analyze")
	cmd.Flags().StringArrayVar(&limitPairs, "limit", nil, "Category=Amount, repeatable")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("analysis")
	return cmd
}
