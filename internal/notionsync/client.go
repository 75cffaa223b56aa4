package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the average request rate Notion allows per integration.
const DefaultRequestsPerSecond = 3

// NotionClient implements NotionService on top of the Notion SDK. Every call
// waits on a shared limiter so a large export stays under Notion's rate limit.
type NotionClient struct {
	client  *notionapi.Client
	limiter *rate.Limiter
}

// NewNotionClient creates a NotionClient limited to DefaultRequestsPerSecond.
func NewNotionClient(token string) *NotionClient {
	return &NotionClient{
		client:  notionapi.NewClient(notionapi.Token(token)),
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
	}
}

func (n *NotionClient) wait(ctx context.Context, op string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", op, err)
	}
	return nil
}

// CreatePage adds a row to the database.
func (n *NotionClient) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if err := n.wait(ctx, "CreatePage"); err != nil {
		return nil, err
	}

	page, err := n.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	})
	if err != nil {
		return nil, fmt.Errorf("CreatePage: %w", err)
	}
	return page, nil
}

// UpdatePage overwrites the given properties of an existing row.
func (n *NotionClient) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if err := n.wait(ctx, "UpdatePage"); err != nil {
		return nil, err
	}

	page, err := n.client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: properties})
	if err != nil {
		return nil, fmt.Errorf("UpdatePage: %w", err)
	}
	return page, nil
}

// QueryDatabase returns one page of database rows.
func (n *NotionClient) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if err := n.wait(ctx, "QueryDatabase"); err != nil {
		return nil, err
	}

	resp, err := n.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
	if err != nil {
		return nil, fmt.Errorf("QueryDatabase: %w", err)
	}
	return resp, nil
}

var _ NotionService = (*NotionClient)(nil)
