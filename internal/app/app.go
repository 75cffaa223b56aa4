// Package app builds the shared components used by the finsight binaries.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finsight/internal/config"
	infraBQ "github.com/dvloznov/finsight/internal/infra/bigquery"
	"github.com/dvloznov/finsight/internal/infra/gcs"
	"github.com/dvloznov/finsight/internal/observability"
	"github.com/dvloznov/finsight/internal/pipeline"
)

// Components holds the analysis pipeline and the optional sinks behind it.
// Archive and Outputs are nil when their backend is not configured.
type Components struct {
	Analyzer *pipeline.GeminiAnalyzer
	Archive  *gcs.StatementArchive
	Outputs  *infraBQ.ModelOutputRepository
	Metrics  *observability.Metrics
	Pipeline *pipeline.Pipeline
}

// Build creates the analyzer and every configured sink. A missing API key is
// not an error here: the analyzer then fails each call with a credentials error.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Components, error) {
	c := &Components{Metrics: observability.NewMetrics()}

	analyzer, err := pipeline.NewGeminiAnalyzer(ctx, pipeline.GeminiConfig{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("Build: create analyzer: %w", err)
	}
	c.Analyzer = analyzer
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("No Gemini API key configured - analyses will fail")
	}

	deps := pipeline.Dependencies{Analyzer: analyzer, Metrics: c.Metrics}

	if cfg.GCS.Bucket != "" {
		archive, err := gcs.NewStatementArchive(ctx, cfg.GCS.Bucket)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("Build: create statement archive: %w", err)
		}
		c.Archive = archive
		deps.Archive = archive
	} else {
		log.Info().Msg("No GCS bucket configured - statements will not be archived")
	}

	if cfg.BigQuery.Project != "" {
		repo, err := infraBQ.NewModelOutputRepository(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("Build: create model output repository: %w", err)
		}
		c.Outputs = repo
		deps.Store = repo
	} else {
		log.Info().Msg("No BigQuery project configured - model outputs will not be recorded")
	}

	c.Pipeline = pipeline.NewStatementAnalysisPipeline(deps)
	return c, nil
}

// Close releases the clients of the configured sinks.
func (c *Components) Close() {
	if c.Archive != nil {
		c.Archive.Close()
	}
	if c.Outputs != nil {
		c.Outputs.Close()
	}
}
