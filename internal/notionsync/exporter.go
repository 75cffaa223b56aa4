package notionsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/logger"
)

// PageSize is the page size used when listing existing rows.
const PageSize = 100

// ErrNoDatabase is returned when no Notion database ID is configured.
var ErrNoDatabase = errors.New("notion database ID is not configured")

// ExportStats counts what an export did.
type ExportStats struct {
	Created int
	Updated int
	Failed  int
}

// Exporter writes the transactions of an analysis snapshot to a Notion database.
// The export is one-way: pages are created or updated, never read back into a result.
type Exporter struct {
	client     NotionService
	databaseID string
}

// NewExporter creates an Exporter for the given database.
func NewExporter(client NotionService, databaseID string) *Exporter {
	return &Exporter{client: client, databaseID: databaseID}
}

// ExportTransactions upserts every transaction of result, keyed by exportID and position.
// In dry-run mode nothing is written and every transaction is counted as created
// or updated according to the pages already present.
func (e *Exporter) ExportTransactions(ctx context.Context, exportID string, result *domain.AnalysisResult, dryRun bool) (ExportStats, error) {
	log := logger.FromContext(ctx)
	var stats ExportStats

	if e.databaseID == "" {
		return stats, ErrNoDatabase
	}
	if result == nil {
		return stats, domain.ErrNoAnalysis
	}

	log.Info().
		Str("export_id", exportID).
		Int("transaction_count", len(result.Transactions)).
		Bool("dry_run", dryRun).
		Msg("Starting Notion export")

	existing, err := e.existingPages(ctx)
	if err != nil {
		return stats, fmt.Errorf("ExportTransactions: query existing pages: %w", err)
	}

	for i, txn := range result.Transactions {
		key := EntryKey(exportID, i)
		props := TransactionToNotionProperties(txn, key)
		pageID, found := existing[key]

		if dryRun {
			if found {
				stats.Updated++
			} else {
				stats.Created++
			}
			log.Debug().Str("entry_key", key).Bool("exists", found).Msg("[DRY RUN] Would export transaction")
			continue
		}

		if found {
			if _, err := e.client.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Str("entry_key", key).Str("page_id", pageID).Msg("Failed to update Notion page")
				stats.Failed++
				continue
			}
			stats.Updated++
			continue
		}

		if _, err := e.client.CreatePage(ctx, e.databaseID, props); err != nil {
			log.Warn().Err(err).Str("entry_key", key).Msg("Failed to create Notion page")
			stats.Failed++
			continue
		}
		stats.Created++
	}

	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("failed", stats.Failed).
		Msg("Notion export completed")

	if stats.Failed > 0 {
		return stats, fmt.Errorf("ExportTransactions: %d of %d pages failed", stats.Failed, len(result.Transactions))
	}
	return stats, nil
}

// existingPages maps entry keys to page IDs, following query pagination.
func (e *Exporter) existingPages(ctx context.Context) (map[string]string, error) {
	pages := make(map[string]string)
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: PageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := e.client.QueryDatabase(ctx, e.databaseID, req)
		if err != nil {
			return nil, err
		}

		for _, page := range resp.Results {
			if key := extractEntryKey(page); key != "" {
				pages[key] = string(page.ID)
			}
		}

		if !resp.HasMore {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}
