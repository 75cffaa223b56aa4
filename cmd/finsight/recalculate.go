package main

import (
	"github.com/spf13/cobra"

	"github.com/dvloznov/finsight/internal/analysis"
)

func recalculateCmd() *cobra.Command {
	var (
		analysisPath string
		txnPath      string
		index        int
		outPath      string
	)

	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Replace one transaction in a snapshot and recompute its totals",
		Long: `Replaces the transaction at --index with the one in --transaction and
recomputes credits, debits, net savings, closing balance and the category
breakdown. Overview, insights and suggestions are carried over unchanged.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			previous, err := loadResult(analysisPath)
			if err != nil {
				return err
			}
			txn, err := loadTransaction(txnPath)
			if err != nil {
				return err
			}
			if err := analysis.ValidateTransaction(txn); err != nil {
				return err
			}

			next, err := analysis.ReplaceTransaction(previous, index, txn)
			if err != nil {
				return err
			}

			log.Info().
				Int("index", index).
				Float64("total_debits", next.Summary.TotalDebits).
				Float64("net_savings", next.Summary.NetSavings).
				Msg("Snapshot recalculated")
			return writeJSON(outPath, next)
		},
	}

	cmd.Flags().StringVar(&analysisPath, "analysis", "", "snapshot JSON written by analyze")
	cmd.Flags().StringVar(&txnPath, "transaction", "", "JSON file with the replacement transaction")
	cmd.Flags().IntVar(&index, "index", -1, "position of the transaction to replace")
	cmd.Flags().StringVar(&outPath, "out", "", "write the new snapshot here instead of stdout")
	_ = cmd.MarkFlagRequired("analysis")
	_ = cmd.MarkFlagRequired("transaction")
	_ = cmd.MarkFlagRequired("index")

	return cmd
}
