// Package zotero implements the source adapter over the Zotero Web API v3
// for group libraries.
package zotero

import (
	"context"
	"fmt"
	"iter"

	"github.com/shelfmark/refsync/internal/transport"
	"github.com/shelfmark/refsync/pkg/constants"
	"github.com/shelfmark/refsync/pkg/errors"
	"github.com/shelfmark/refsync/pkg/logging"
	"github.com/shelfmark/refsync/pkg/papers"
	"github.com/shelfmark/refsync/pkg/stores"
)

// DefaultBaseURL is the public Zotero API endpoint.
const DefaultBaseURL = "https://api.zotero.org"

// Config holds what the adapter needs to reach one group library.
type Config struct {
	Token   string
	GroupID string
	BaseURL string // defaults to DefaultBaseURL
}

// Client implements stores.Source for a Zotero group library.
type Client struct {
	transport *transport.Client
	groupID   string
	baseURL   string
	pageSize  int
}

// NewClient creates a Zotero source adapter.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		transport: transport.New("zotero",
			&transport.HeaderAuth{Header: "Zotero-API-Key", Token: cfg.Token},
			map[string]string{"Zotero-API-Version": constants.ZoteroAPIVersion},
		),
		groupID:  cfg.GroupID,
		baseURL:  baseURL,
		pageSize: constants.ZoteroPageSize,
	}
}

// Transport exposes the underlying client for test configuration.
func (c *Client) Transport() *transport.Client {
	return c.transport
}

// ID implements stores.Source.
func (c *Client) ID() stores.ID {
	return stores.ZoteroID
}

// Items implements stores.Source. Each range over the sequence starts a
// fresh traversal: back-reference notes are scanned first so every paper
// can carry its record hint, then top-level items are paged through.
// Malformed items are yielded as *errors.ItemError; an unreachable API is
// yielded as a fatal error matching errors.ErrSourceUnavailable.
func (c *Client) Items(ctx context.Context) iter.Seq2[papers.Paper, error] {
	return func(yield func(papers.Paper, error) bool) {
		hints, err := c.recordHints(ctx)
		if err != nil {
			yield(papers.Paper{}, c.unavailable("scan notes", err))
			return
		}

		start := 0
		for {
			var page []wireItem
			url := fmt.Sprintf("%s/groups/%s/items/top?format=json&start=%d&limit=%d",
				c.baseURL, c.groupID, start, c.pageSize)
			if err := c.transport.Get(ctx, url, &page); err != nil {
				yield(papers.Paper{}, c.unavailable("list items", err))
				return
			}

			for _, item := range page {
				paper, err := item.toPaper(c.groupID)
				if err != nil {
					if !yield(papers.Paper{}, &errors.ItemError{Key: item.Key, Err: err}) {
						return
					}
					continue
				}
				paper.RecordHint = hints[paper.Key]
				if !yield(paper, nil) {
					return
				}
			}

			if len(page) < c.pageSize {
				return
			}
			start += len(page)
		}
	}
}

// LinkBack implements stores.Source: it maintains the tagged child note
// pointing at the item's target record.
func (c *Client) LinkBack(ctx context.Context, itemKey, recordID string) error {
	logger := logging.FromContext(ctx)

	note, found, err := c.findLinkNote(ctx, itemKey)
	if err != nil {
		return errors.WrapResource("find", "back-reference note", itemKey, err)
	}

	body := noteBody(recordID)
	if !found {
		logger.Debug().Str("item_key", itemKey).Msg("Creating back-reference note")
		return c.createLinkNote(ctx, itemKey, body)
	}

	if note.Data.Note == body {
		return nil
	}
	logger.Debug().Str("item_key", itemKey).Str("note_key", note.Key).Msg("Updating back-reference note")
	return c.updateLinkNote(ctx, note, body)
}

// unavailable tags a fatal traversal failure with the source sentinel.
func (c *Client) unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, errors.ErrSourceUnavailable, err)
}
