package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finsight/internal/api"
	"github.com/dvloznov/finsight/internal/app"
	"github.com/dvloznov/finsight/internal/config"
	"github.com/dvloznov/finsight/internal/jobs"
	"github.com/dvloznov/finsight/internal/jobs/inmemory"
	"github.com/dvloznov/finsight/internal/logger"
	"github.com/dvloznov/finsight/internal/session"
)

func main() {
	configFile := flag.String("config", "", "Path to a finsight.yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.Log.Level, cfg.Log.Format)
	ctx := logger.WithContext(context.Background(), log)

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize analysis pipeline")
	}
	defer components.Close()

	sessions := session.NewStore()
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Jobs.Buffer, cfg.Jobs.Workers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Int("workers", cfg.Jobs.Workers).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, jobs.NewAnalyzeStatementHandler(components.Pipeline, sessions)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	handler := api.NewRouter(api.Deps{
		Sessions:  sessions,
		Publisher: jobQueue,
		Jobs:      jobStore,
		Metrics:   components.Metrics,
		Log:       log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("model", components.Analyzer.Model()).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// In-flight analyses finish before the workers exit.
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
