package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dvloznov/finsight/internal/app"
	"github.com/dvloznov/finsight/internal/export"
	"github.com/dvloznov/finsight/internal/infra/gcs"
	"github.com/dvloznov/finsight/internal/pipeline"
)

func analyzeCmd() *cobra.Command {
	var (
		filePath string
		text     string
		gcsURI   string
		sample   bool
		outPath  string
		csvPath  string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a bank statement and write the snapshot as JSON",
		Example: `  finsight analyze --file statement.pdf --out analysis.json
  finsight analyze --text "$(cat statement.txt)" --csv history.csv
  finsight analyze --sample`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			in := pipeline.StatementInput{Text: text}
			switch {
			case sample:
				in.Text = pipeline.SampleStatementText
			case filePath != "":
				att, err := readAttachment(filePath)
				if err != nil {
					return err
				}
				in.File = att
			case gcsURI != "":
				bucket, _, err := gcs.ParseURI(gcsURI)
				if err != nil {
					return err
				}
				archive, err := gcs.NewStatementArchive(ctx, bucket)
				if err != nil {
					return err
				}
				defer archive.Close()
				data, contentType, err := archive.Fetch(ctx, gcsURI)
				if err != nil {
					return err
				}
				in.File = &pipeline.Attachment{MIMEType: contentType, Data: data}
			}

			components, err := app.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer components.Close()

			sessionID := uuid.New().String()
			log.Info().Str("session_id", sessionID).Bool("has_file", in.HasFile()).Msg("Analyzing statement")

			result, _, err := pipeline.AnalyzeStatement(ctx, components.Pipeline, sessionID, "", in)
			if err != nil {
				return err
			}

			if err := writeJSON(outPath, result); err != nil {
				return err
			}
			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("create CSV: %w", err)
				}
				if err := errors.Join(export.WriteCSV(f, result.Transactions), f.Close()); err != nil {
					return fmt.Errorf("write CSV: %w", err)
				}
			}

			log.Info().
				Int("transactions", len(result.Transactions)).
				Float64("total_credits", result.Summary.TotalCredits).
				Float64("total_debits", result.Summary.TotalDebits).
				Msg("Analysis complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "statement PDF or image")
	cmd.Flags().StringVar(&text, "text", "", "statement text, or context when --file is given")
	cmd.Flags().StringVar(&gcsURI, "gcs", "", "gs:// URI of an archived statement")
	cmd.Flags().BoolVar(&sample, "sample", false, "analyze the built-in sample statement")
	cmd.Flags().StringVar(&outPath, "out", "", "write the snapshot to this file instead of stdout")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the transaction history as CSV")
	cmd.MarkFlagsMutuallyExclusive("file", "gcs", "sample")

	cmd.Flags().String("model", "", "Gemini model (overrides gemini.model)")
	_ = v.BindPFlag("gemini.model", cmd.Flags().Lookup("model"))
	cmd.Flags().String("bucket", "", "archive statements to this GCS bucket")
	_ = v.BindPFlag("gcs.bucket", cmd.Flags().Lookup("bucket"))

	return cmd
}
