package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// ModelOutputRepository stores analyzer responses in BigQuery. It holds a
// shared client to avoid creating a new connection for each operation.
type ModelOutputRepository struct {
	client    *bigquery.Client
	datasetID string
}

// NewModelOutputRepository connects to projectID. An empty datasetID means
// DefaultDataset.
func NewModelOutputRepository(ctx context.Context, projectID, datasetID string) (*ModelOutputRepository, error) {
	if projectID == "" {
		return nil, fmt.Errorf("NewModelOutputRepository: project ID is required")
	}
	if datasetID == "" {
		datasetID = DefaultDataset
	}

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewModelOutputRepository: creating client: %w", err)
	}
	return &ModelOutputRepository{client: client, datasetID: datasetID}, nil
}

// Close closes the BigQuery client connection.
func (r *ModelOutputRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *ModelOutputRepository) InsertModelOutput(ctx context.Context, row *ModelOutputRow) error {
	return InsertModelOutputWithClient(ctx, r.client, r.datasetID, row)
}

func (r *ModelOutputRepository) ListRecentModelOutputs(ctx context.Context, limit int) ([]*ModelOutputSummary, error) {
	return ListRecentModelOutputsWithClient(ctx, r.client, r.datasetID, limit)
}

// Migrate applies pending schema migrations to the repository's dataset.
func (r *ModelOutputRepository) Migrate(ctx context.Context, appliedBy string) (int, error) {
	return ApplyMigrationsWithClient(ctx, r.client, r.datasetID, appliedBy)
}
