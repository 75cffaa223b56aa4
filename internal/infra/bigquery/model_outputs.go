package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// ModelOutputRow is one raw analyzer response kept for audit.
type ModelOutputRow struct {
	OutputID  string              `bigquery:"output_id"`  // REQUIRED
	SessionID string              `bigquery:"session_id"` // REQUIRED
	JobID     bigquery.NullString `bigquery:"job_id"`     // NULLABLE

	ModelName  string              `bigquery:"model_name"`  // REQUIRED
	ArchiveURI bigquery.NullString `bigquery:"archive_uri"` // NULLABLE

	RawJSON bigquery.NullJSON `bigquery:"raw_json"` // REQUIRED (JSON)

	PromptTokens     bigquery.NullInt64 `bigquery:"prompt_tokens"`     // NULLABLE
	CompletionTokens bigquery.NullInt64 `bigquery:"completion_tokens"` // NULLABLE
	TransactionCount bigquery.NullInt64 `bigquery:"transaction_count"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// ModelOutputSummary is a model_outputs row without the raw payload.
type ModelOutputSummary struct {
	OutputID         string              `bigquery:"output_id"`
	SessionID        string              `bigquery:"session_id"`
	ModelName        string              `bigquery:"model_name"`
	ArchiveURI       bigquery.NullString `bigquery:"archive_uri"`
	PromptTokens     bigquery.NullInt64  `bigquery:"prompt_tokens"`
	CompletionTokens bigquery.NullInt64  `bigquery:"completion_tokens"`
	TransactionCount bigquery.NullInt64  `bigquery:"transaction_count"`
	CreatedTS        time.Time           `bigquery:"created_ts"`
}
