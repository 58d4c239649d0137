// Package notion implements the target adapter over the Notion REST API.
// One database holds one record per synchronized paper; its human-edited
// columns are never written outside record creation.
package notion

import (
	"context"
	"fmt"
	"iter"

	"github.com/shelfmark/refsync/internal/transport"
	"github.com/shelfmark/refsync/pkg/constants"
	"github.com/shelfmark/refsync/pkg/errors"
	"github.com/shelfmark/refsync/pkg/papers"
	"github.com/shelfmark/refsync/pkg/stores"
)

// DefaultBaseURL is the public Notion API endpoint.
const DefaultBaseURL = "https://api.notion.com"

// Config holds what the adapter needs to reach one database.
type Config struct {
	Token      string
	DatabaseID string
	BaseURL    string // defaults to DefaultBaseURL
}

// Client implements stores.Target for a Notion database.
type Client struct {
	transport  *transport.Client
	databaseID string
	baseURL    string
	pageSize   int
}

// NewClient creates a Notion target adapter.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		transport: transport.New("notion",
			&transport.BearerAuth{Token: cfg.Token},
			map[string]string{"Notion-Version": constants.NotionAPIVersion},
		),
		databaseID: cfg.DatabaseID,
		baseURL:    baseURL,
		pageSize:   constants.NotionPageSize,
	}
}

// Transport exposes the underlying client for test configuration.
func (c *Client) Transport() *transport.Client {
	return c.transport
}

// ID implements stores.Target.
func (c *Client) ID() stores.ID {
	return stores.NotionID
}

// queryRequest is the database query payload.
type queryRequest struct {
	PageSize    int    `json:"page_size"`
	StartCursor string `json:"start_cursor,omitempty"`
}

// queryResponse is one page of query results.
type queryResponse struct {
	Results    []wirePage `json:"results"`
	NextCursor string     `json:"next_cursor"`
	HasMore    bool       `json:"has_more"`
}

// Records implements stores.Target. Each range starts a fresh cursor
// traversal over the database; an unreachable API is yielded as a fatal
// error matching errors.ErrTargetUnavailable.
func (c *Client) Records(ctx context.Context) iter.Seq2[papers.Record, error] {
	return func(yield func(papers.Record, error) bool) {
		url := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, c.databaseID)

		cursor := ""
		for {
			var page queryResponse
			req := queryRequest{PageSize: c.pageSize, StartCursor: cursor}
			if err := c.transport.Post(ctx, url, req, &page); err != nil {
				yield(papers.Record{}, fmt.Errorf("query records: %w: %w", errors.ErrTargetUnavailable, err))
				return
			}

			for _, wp := range page.Results {
				if !yield(wp.toRecord(), nil) {
					return
				}
			}

			if !page.HasMore || page.NextCursor == "" {
				return
			}
			cursor = page.NextCursor
		}
	}
}

// createRequest is the page creation payload.
type createRequest struct {
	Parent     parentRef           `json:"parent"`
	Properties map[string]wireProp `json:"properties"`
}

type parentRef struct {
	DatabaseID string `json:"database_id"`
}

// Create implements stores.Target.
func (c *Client) Create(ctx context.Context, props papers.Properties) (papers.Record, error) {
	url := fmt.Sprintf("%s/v1/pages", c.baseURL)
	req := createRequest{
		Parent:     parentRef{DatabaseID: c.databaseID},
		Properties: marshalProperties(props),
	}

	var created wirePage
	if err := c.transport.Post(ctx, url, req, &created); err != nil {
		return papers.Record{}, &errors.WriteError{Op: "create", Err: err}
	}
	return created.toRecord(), nil
}

// updateRequest is the partial patch payload: only the listed property
// keys are touched, everything else on the page stays as the human left it.
type updateRequest struct {
	Properties map[string]wireProp `json:"properties"`
}

// Update implements stores.Target.
func (c *Client) Update(ctx context.Context, id string, props papers.Properties) error {
	url := fmt.Sprintf("%s/v1/pages/%s", c.baseURL, id)
	req := updateRequest{Properties: marshalProperties(props)}

	if err := c.transport.Patch(ctx, url, req, nil); err != nil {
		return &errors.WriteError{Op: "update", RecordID: id, Err: err}
	}
	return nil
}
