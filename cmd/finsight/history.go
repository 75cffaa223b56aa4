package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	infraBQ "github.com/dvloznov/finsight/internal/infra/bigquery"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent model outputs recorded in BigQuery",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := openModelOutputs(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			outputs, err := repo.ListRecentModelOutputs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tOUTPUT ID\tSESSION\tMODEL\tTXNS\tTOKENS\tARCHIVE")
			for _, o := range outputs {
				archive := "-"
				if o.ArchiveURI.Valid {
					archive = o.ArchiveURI.StringVal
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d/%d\t%s\n",
					o.CreatedTS.Format(time.RFC3339), o.OutputID, o.SessionID, o.ModelName,
					o.TransactionCount.Int64, o.PromptTokens.Int64, o.CompletionTokens.Int64, archive)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of outputs to show")
	return cmd
}

func migrateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending BigQuery schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dryRun {
				migrations, err := infraBQ.EmbeddedMigrations(cfg.BigQuery.Project, cfg.BigQuery.Dataset)
				if err != nil {
					return err
				}
				for _, m := range migrations {
					fmt.Printf("%04d  %s\n", m.Version, m.Name)
				}
				return nil
			}

			repo, err := openModelOutputs(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			applied, err := repo.Migrate(cmd.Context(), appliedBy())
			if err != nil {
				return err
			}
			fmt.Printf("Applied %d migration(s)\n", applied)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list embedded migrations without applying them")
	return cmd
}

func openModelOutputs(cmd *cobra.Command) (*infraBQ.ModelOutputRepository, error) {
	if cfg.BigQuery.Project == "" {
		return nil, errors.New("bigquery project is not configured (FINSIGHT_BIGQUERY_PROJECT or GOOGLE_CLOUD_PROJECT)")
	}
	return infraBQ.NewModelOutputRepository(cmd.Context(), cfg.BigQuery.Project, cfg.BigQuery.Dataset)
}

func appliedBy() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "finsight-cli"
}
