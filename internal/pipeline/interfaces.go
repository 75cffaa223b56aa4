package pipeline

import (
	"context"

	"github.com/dvloznov/finsight/internal/domain"
	infra "github.com/dvloznov/finsight/internal/infra/bigquery"
)

// AnalyzerResponse is one decoded collaborator response.
type AnalyzerResponse struct {
	Result           *domain.AnalysisResult
	RawJSON          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Analyzer is the external analysis collaborator. One call per analysis; no
// retries and no partial results.
type Analyzer interface {
	Analyze(ctx context.Context, in StatementInput) (*AnalyzerResponse, error)
}

// StatementArchive keeps a copy of each submitted statement.
type StatementArchive interface {
	ArchiveStatement(ctx context.Context, sessionID, mimeType string, data []byte) (string, error)
}

// ModelOutputStore records raw collaborator responses.
type ModelOutputStore interface {
	InsertModelOutput(ctx context.Context, row *infra.ModelOutputRow) error
}
