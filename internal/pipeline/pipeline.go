package pipeline

import (
	"context"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/observability"
)

// Dependencies wires the statement analysis pipeline. Archive and Store are optional.
type Dependencies struct {
	Analyzer Analyzer
	Archive  StatementArchive
	Store    ModelOutputStore
	Metrics  *observability.Metrics
}

// NewStatementAnalysisPipeline creates the standard 4-step pipeline for analyzing statements.
func NewStatementAnalysisPipeline(deps Dependencies) *Pipeline {
	return NewPipeline(
		&ValidateInputStep{},
		&ArchiveStatementStep{Archive: deps.Archive},
		&AnalyzeStatementStep{Analyzer: deps.Analyzer, Metrics: deps.Metrics},
		&StoreModelOutputStep{Store: deps.Store},
	)
}

// AnalyzeStatement runs p for one submission and returns the new snapshot.
func AnalyzeStatement(ctx context.Context, p *Pipeline, sessionID, jobID string, in StatementInput) (*domain.AnalysisResult, *PipelineState, error) {
	state := &PipelineState{SessionID: sessionID, JobID: jobID, Input: in}
	if err := p.Execute(ctx, state); err != nil {
		return nil, state, err
	}
	return state.Result(), state, nil
}
