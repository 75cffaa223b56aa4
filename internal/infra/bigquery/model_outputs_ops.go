package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const modelOutputsTable = "model_outputs"

// DefaultDataset is used when no dataset is configured.
const DefaultDataset = "finance"

func tableRef(projectID, datasetID, table string) string {
	return "`" + projectID + "." + datasetID + "." + table + "`"
}

// InsertModelOutputWithClient inserts a single ModelOutputRow into
// <dataset>.model_outputs. Uses DML INSERT to avoid streaming buffer issues.
func InsertModelOutputWithClient(ctx context.Context, client *bigquery.Client, datasetID string, row *ModelOutputRow) error {
	q := client.Query(`
		INSERT INTO ` + tableRef(client.Project(), datasetID, modelOutputsTable) + ` (
			output_id, session_id, job_id,
			model_name, archive_uri, raw_json,
			prompt_tokens, completion_tokens, transaction_count,
			created_ts
		)
		VALUES (
			@output_id, @session_id, @job_id,
			@model_name, @archive_uri, PARSE_JSON(@raw_json),
			@prompt_tokens, @completion_tokens, @transaction_count,
			@created_ts
		)
	`)

	q.Parameters = []bigquery.QueryParameter{
		{Name: "output_id", Value: row.OutputID},
		{Name: "session_id", Value: row.SessionID},
		{Name: "job_id", Value: row.JobID},
		{Name: "model_name", Value: row.ModelName},
		{Name: "archive_uri", Value: row.ArchiveURI},
		{Name: "raw_json", Value: string(row.RawJSON.JSONVal)},
		{Name: "prompt_tokens", Value: row.PromptTokens},
		{Name: "completion_tokens", Value: row.CompletionTokens},
		{Name: "transaction_count", Value: row.TransactionCount},
		{Name: "created_ts", Value: row.CreatedTS},
	}

	if err := runAndWait(ctx, q); err != nil {
		return fmt.Errorf("InsertModelOutput: %w", err)
	}
	return nil
}

// ListRecentModelOutputsWithClient returns the newest model outputs first,
// at most limit rows.
func ListRecentModelOutputsWithClient(ctx context.Context, client *bigquery.Client, datasetID string, limit int) ([]*ModelOutputSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	q := client.Query(`
		SELECT
			output_id,
			session_id,
			model_name,
			archive_uri,
			prompt_tokens,
			completion_tokens,
			transaction_count,
			created_ts
		FROM ` + tableRef(client.Project(), datasetID, modelOutputsTable) + `
		ORDER BY created_ts DESC
		LIMIT @limit
	`)
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: limit}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecentModelOutputs: reading query: %w", err)
	}

	var out []*ModelOutputSummary
	for {
		var row ModelOutputSummary
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecentModelOutputs: iterating: %w", err)
		}
		out = append(out, &row)
	}
	return out, nil
}

func runAndWait(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
