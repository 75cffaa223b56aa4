package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvloznov/finsight/internal/export"
	"github.com/dvloznov/finsight/internal/notionsync"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a snapshot's transactions",
	}
	cmd.AddCommand(exportCSVCmd())
	cmd.AddCommand(exportNotionCmd())
	return cmd
}

func exportCSVCmd() *cobra.Command {
	var analysisPath, outPath string

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Write the transaction history as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := loadResult(analysisPath)
			if err != nil {
				return err
			}

			if outPath == "-" {
				return export.WriteCSV(os.Stdout, result.Transactions)
			}
			if outPath == "" {
				outPath = export.Filename(time.Now())
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create CSV: %w", err)
			}
			if err := errors.Join(export.WriteCSV(f, result.Transactions), f.Close()); err != nil {
				return fmt.Errorf("write CSV: %w", err)
			}

			log.Info().Str("path", outPath).Int("rows", len(result.Transactions)).Msg("CSV exported")
			return nil
		},
	}

	cmd.Flags().StringVar(&analysisPath, "analysis", "", "snapshot JSON written by analyze")
	cmd.Flags().StringVar(&outPath, "out", "", "output file, \"-\" for stdout (default transaction_history_<date>.csv)")
	_ = cmd.MarkFlagRequired("analysis")
	return cmd
}

func exportNotionCmd() *cobra.Command {
	var (
		analysisPath string
		exportID     string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "notion",
		Short: "Create or update one Notion page per transaction",
		Long: `Writes every transaction of the snapshot to the configured Notion database.
Pages are keyed by export ID and position, so running the export again for
the same ID updates the existing pages.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Notion.Token == "" {
				return errors.New("notion token is not configured (FINSIGHT_NOTION_TOKEN)")
			}

			result, err := loadResult(analysisPath)
			if err != nil {
				return err
			}
			if exportID == "" {
				exportID = strings.TrimSuffix(filepath.Base(analysisPath), filepath.Ext(analysisPath))
			}

			exporter := notionsync.NewExporter(notionsync.NewNotionClient(cfg.Notion.Token), cfg.Notion.DatabaseID)
			stats, err := exporter.ExportTransactions(cmd.Context(), exportID, result, dryRun)
			fmt.Printf("Created %d, updated %d, failed %d\n", stats.Created, stats.Updated, stats.Failed)
			return err
		},
	}

	cmd.Flags().StringVar(&analysisPath, "analysis", "", "snapshot JSON written by analyze")
	cmd.Flags().StringVar(&exportID, "export-id", "", "key prefix for the pages (default: analysis file name)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be written without calling Notion")
	cmd.Flags().String("database", "", "Notion database ID (overrides notion.database_id)")
	_ = v.BindPFlag("notion.database_id", cmd.Flags().Lookup("database"))
	_ = cmd.MarkFlagRequired("analysis")
	return cmd
}
