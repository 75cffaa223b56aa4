package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	result *domain.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, in pipeline.StatementInput) (*pipeline.AnalyzerResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.AnalyzerResponse{Result: f.result}, nil
}

type fakeSessions struct {
	completed map[string]*domain.AnalysisResult
	failed    map[string]string
	err       error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{completed: map[string]*domain.AnalysisResult{}, failed: map[string]string{}}
}

func (f *fakeSessions) Complete(id, jobID string, result *domain.AnalysisResult) error {
	if f.err != nil {
		return f.err
	}
	f.completed[id] = result
	return nil
}

func (f *fakeSessions) Fail(id, jobID, message string) error {
	f.failed[id] = message
	return nil
}

func TestAnalyzeStatementHandler_Success(t *testing.T) {
	result := &domain.AnalysisResult{Overview: "ok"}
	p := pipeline.NewStatementAnalysisPipeline(pipeline.Dependencies{Analyzer: &fakeAnalyzer{result: result}})
	sessions := newFakeSessions()

	err := NewAnalyzeStatementHandler(p, sessions)(context.Background(), &AnalyzeStatementJob{
		JobID:     "j-1",
		SessionID: "s-1",
		Input:     pipeline.StatementInput{Text: "statement"},
	})

	require.NoError(t, err)
	assert.Same(t, result, sessions.completed["s-1"])
	assert.Empty(t, sessions.failed)
}

func TestAnalyzeStatementHandler_Failure(t *testing.T) {
	p := pipeline.NewStatementAnalysisPipeline(pipeline.Dependencies{
		Analyzer: &fakeAnalyzer{err: domain.NewCollaboratorError(errors.New("401 unauthorized"))},
	})
	sessions := newFakeSessions()

	err := NewAnalyzeStatementHandler(p, sessions)(context.Background(), &AnalyzeStatementJob{
		JobID:     "j-1",
		SessionID: "s-1",
		Input:     pipeline.StatementInput{Text: "statement"},
	})

	assert.ErrorIs(t, err, domain.ErrCollaboratorFailure)
	assert.Equal(t, domain.UserFacingAnalysisError, sessions.failed["s-1"])
	assert.Empty(t, sessions.completed)
}

func TestAnalyzeStatementHandler_CompleteError(t *testing.T) {
	p := pipeline.NewStatementAnalysisPipeline(pipeline.Dependencies{Analyzer: &fakeAnalyzer{result: &domain.AnalysisResult{}}})
	sessions := newFakeSessions()
	sessions.err = domain.ErrSessionNotFound

	err := NewAnalyzeStatementHandler(p, sessions)(context.Background(), &AnalyzeStatementJob{
		SessionID: "gone",
		Input:     pipeline.StatementInput{Text: "statement"},
	})

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestAnalyzeStatementHandler_StaleResultIsDropped(t *testing.T) {
	p := pipeline.NewStatementAnalysisPipeline(pipeline.Dependencies{Analyzer: &fakeAnalyzer{result: &domain.AnalysisResult{}}})
	sessions := newFakeSessions()
	sessions.err = fmt.Errorf("Complete: job j-1: %w", domain.ErrStaleAnalysis)

	err := NewAnalyzeStatementHandler(p, sessions)(context.Background(), &AnalyzeStatementJob{
		JobID:     "j-1",
		SessionID: "s-1",
		Input:     pipeline.StatementInput{Text: "statement"},
	})

	require.NoError(t, err)
	assert.Empty(t, sessions.completed)
	assert.Empty(t, sessions.failed)
}
