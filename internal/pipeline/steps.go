package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finsight/internal/domain"
	infra "github.com/dvloznov/finsight/internal/infra/bigquery"
	"github.com/dvloznov/finsight/internal/logger"
	"github.com/dvloznov/finsight/internal/observability"
	"github.com/google/uuid"
)

// PipelineStep represents a single step in the analysis pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	SessionID  string
	JobID      string
	Input      StatementInput
	ArchiveURI string
	Response   *AnalyzerResponse
}

// Result returns the analyzed snapshot, or nil before AnalyzeStatementStep ran.
func (s *PipelineState) Result() *domain.AnalysisResult {
	if s.Response == nil {
		return nil
	}
	return s.Response.Result
}

// Step 1: ValidateInputStep rejects submissions with nothing to analyze.
type ValidateInputStep struct{}

func (s *ValidateInputStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Input.IsEmpty() {
		return domain.ErrEmptyInput
	}
	return nil
}

// Step 2: ArchiveStatementStep uploads the statement when an archive is
// configured. Upload failures do not stop the analysis.
type ArchiveStatementStep struct {
	Archive StatementArchive
}

func (s *ArchiveStatementStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Archive == nil {
		return nil
	}
	log := logger.FromContext(ctx)

	mimeType, data := "text/plain; charset=utf-8", []byte(state.Input.Text)
	if state.Input.HasFile() {
		mimeType, data = state.Input.File.MIMEType, state.Input.File.Data
	}

	uri, err := s.Archive.ArchiveStatement(ctx, state.SessionID, mimeType, data)
	if err != nil {
		log.Warn().Err(err).Str("session_id", state.SessionID).Msg("Failed to archive statement")
		return nil
	}
	state.ArchiveURI = uri
	log.Debug().Str("archive_uri", uri).Msg("Statement archived")
	return nil
}

// Step 3: AnalyzeStatementStep makes the single collaborator call.
type AnalyzeStatementStep struct {
	Analyzer Analyzer
	Metrics  *observability.Metrics
}

func (s *AnalyzeStatementStep) Execute(ctx context.Context, state *PipelineState) error {
	start := time.Now()
	resp, err := s.Analyzer.Analyze(ctx, state.Input)
	elapsed := time.Since(start)

	if err != nil {
		s.Metrics.RecordAnalysis(outcomeOf(err), elapsed)
		return err
	}

	s.Metrics.RecordAnalysis(observability.OutcomeSuccess, elapsed)
	s.Metrics.RecordTokens(resp.PromptTokens, resp.CompletionTokens)
	state.Response = resp

	log := logger.FromContext(ctx)
	log.Info().
		Str("session_id", state.SessionID).
		Int("transactions", len(resp.Result.Transactions)).
		Int("prompt_tokens", resp.PromptTokens).
		Int("completion_tokens", resp.CompletionTokens).
		Dur("elapsed", elapsed).
		Msg("Statement analyzed")
	return nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return observability.OutcomeEmpty
	case errors.Is(err, domain.ErrMalformedResponse):
		return observability.OutcomeMalformed
	default:
		return observability.OutcomeFailed
	}
}

// Step 4: StoreModelOutputStep records the raw response when a store is
// configured. Storage failures do not stop the analysis.
type StoreModelOutputStep struct {
	Store ModelOutputStore
}

func (s *StoreModelOutputStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Store == nil || state.Response == nil {
		return nil
	}

	row := newModelOutputRow(state)
	if err := s.Store.InsertModelOutput(ctx, row); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("session_id", state.SessionID).Msg("Failed to store model output")
	}
	return nil
}

func newModelOutputRow(state *PipelineState) *infra.ModelOutputRow {
	resp := state.Response
	raw := resp.RawJSON
	if raw == "" {
		// Fall back to the decoded snapshot so raw_json is never empty.
		if b, err := json.Marshal(resp.Result); err == nil {
			raw = string(b)
		}
	}

	row := &infra.ModelOutputRow{
		OutputID:         uuid.NewString(),
		SessionID:        state.SessionID,
		ModelName:        resp.Model,
		RawJSON:          bigquery.NullJSON{JSONVal: raw, Valid: raw != ""},
		PromptTokens:     bigquery.NullInt64{Int64: int64(resp.PromptTokens), Valid: resp.PromptTokens > 0},
		CompletionTokens: bigquery.NullInt64{Int64: int64(resp.CompletionTokens), Valid: resp.CompletionTokens > 0},
		CreatedTS:        time.Now().UTC(),
	}
	if resp.Result != nil {
		row.TransactionCount = bigquery.NullInt64{Int64: int64(len(resp.Result.Transactions)), Valid: true}
	}
	if state.JobID != "" {
		row.JobID = bigquery.NullString{StringVal: state.JobID, Valid: true}
	}
	if state.ArchiveURI != "" {
		row.ArchiveURI = bigquery.NullString{StringVal: state.ArchiveURI, Valid: true}
	}
	return row
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
