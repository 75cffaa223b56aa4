package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/finsight/internal/config"
	"github.com/dvloznov/finsight/internal/logger"
)

var (
	cfgFile string
	v       = config.New()
	cfg     *config.Config
	log     zerolog.Logger

	rootCmd = &cobra.Command{
		Use:   "finsight",
		Short: "Analyze bank statements and edit the resulting snapshot",
		Long: `finsight sends a bank statement (text, PDF or image) to Gemini, turns the
answer into an analysis snapshot, and keeps its totals consistent when
transactions are edited.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./finsight.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(recalculateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(budgetCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(migrateCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.LoadInto(v, cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	// Logs go to stderr so JSON written to stdout stays clean.
	log = logger.NewWithOutput(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}
