package notionsync

import (
	"context"
	"errors"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finsight/internal/domain"
)

type mockNotion struct {
	createFunc func(ctx context.Context, databaseID string, props notionapi.Properties) (*notionapi.Page, error)
	updateFunc func(ctx context.Context, pageID string, props notionapi.Properties) (*notionapi.Page, error)
	queryFunc  func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

func (m *mockNotion) CreatePage(ctx context.Context, databaseID string, props notionapi.Properties) (*notionapi.Page, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, databaseID, props)
	}
	return &notionapi.Page{}, nil
}

func (m *mockNotion) UpdatePage(ctx context.Context, pageID string, props notionapi.Properties) (*notionapi.Page, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, pageID, props)
	}
	return &notionapi.Page{}, nil
}

func (m *mockNotion) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, databaseID, req)
	}
	return &notionapi.DatabaseQueryResponse{}, nil
}

func pageWithKey(id, key string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			PropEntryKey: &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: key}},
			},
		},
	}
}

func exportResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Transactions: []domain.Transaction{
			{Date: "2025-01-02", Description: "Salary", Type: domain.TransactionTypeCredit, Amount: 50000, Category: "Income"},
			{Date: "2025-01-05", Description: "Swiggy", Type: domain.TransactionTypeDebit, Amount: 450, Category: "Food & Dining"},
			{Date: "2025-01-09", Description: "BESCOM", Type: domain.TransactionTypeDebit, Amount: 1100, Category: "Utilities"},
		},
	}
}

func TestExportTransactions_CreatesAndUpdates(t *testing.T) {
	var created, updated []string
	client := &mockNotion{
		queryFunc: func(_ context.Context, _ string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			if req.StartCursor == "" {
				return &notionapi.DatabaseQueryResponse{
					Results:    []notionapi.Page{pageWithKey("page-0", EntryKey("exp", 0))},
					HasMore:    true,
					NextCursor: "next",
				}, nil
			}
			return &notionapi.DatabaseQueryResponse{
				Results: []notionapi.Page{pageWithKey("page-other", "other#0")},
			}, nil
		},
		createFunc: func(_ context.Context, databaseID string, props notionapi.Properties) (*notionapi.Page, error) {
			assert.Equal(t, "db-1", databaseID)
			created = append(created, extractEntryKey(notionapi.Page{Properties: props}))
			return &notionapi.Page{}, nil
		},
		updateFunc: func(_ context.Context, pageID string, _ notionapi.Properties) (*notionapi.Page, error) {
			updated = append(updated, pageID)
			return &notionapi.Page{}, nil
		},
	}

	stats, err := NewExporter(client, "db-1").ExportTransactions(context.Background(), "exp", exportResult(), false)
	require.NoError(t, err)
	assert.Equal(t, ExportStats{Created: 2, Updated: 1}, stats)
	assert.Equal(t, []string{"page-0"}, updated)
	assert.Equal(t, []string{"exp#1", "exp#2"}, created)
}

func TestExportTransactions_DryRunWritesNothing(t *testing.T) {
	client := &mockNotion{
		createFunc: func(context.Context, string, notionapi.Properties) (*notionapi.Page, error) {
			t.Fatal("CreatePage called in dry run")
			return nil, nil
		},
	}

	stats, err := NewExporter(client, "db-1").ExportTransactions(context.Background(), "exp", exportResult(), true)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Created)
}

func TestExportTransactions_PartialFailure(t *testing.T) {
	calls := 0
	client := &mockNotion{
		createFunc: func(context.Context, string, notionapi.Properties) (*notionapi.Page, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("rate limited")
			}
			return &notionapi.Page{}, nil
		},
	}

	stats, err := NewExporter(client, "db-1").ExportTransactions(context.Background(), "exp", exportResult(), false)
	require.Error(t, err)
	assert.Equal(t, ExportStats{Created: 2, Failed: 1}, stats)
}

func TestExportTransactions_Errors(t *testing.T) {
	_, err := NewExporter(&mockNotion{}, "").ExportTransactions(context.Background(), "exp", exportResult(), false)
	assert.ErrorIs(t, err, ErrNoDatabase)

	_, err = NewExporter(&mockNotion{}, "db").ExportTransactions(context.Background(), "exp", nil, false)
	assert.ErrorIs(t, err, domain.ErrNoAnalysis)

	client := &mockNotion{
		queryFunc: func(context.Context, string, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return nil, errors.New("unauthorized")
		},
	}
	_, err = NewExporter(client, "db").ExportTransactions(context.Background(), "exp", exportResult(), false)
	assert.ErrorContains(t, err, "unauthorized")
}
