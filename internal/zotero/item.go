package zotero

import (
	"fmt"
	"strings"
	"time"

	"github.com/shelfmark/refsync/pkg/papers"
)

// wireItem is one item as the API returns it.
type wireItem struct {
	Key     string `json:"key"`
	Version int    `json:"version"`
	Library struct {
		ID int `json:"id"`
	} `json:"library"`
	Data wireItemData `json:"data"`
}

// wireItemData is the editable payload of an item.
type wireItemData struct {
	Key        string        `json:"key,omitempty"`
	Version    int           `json:"version,omitempty"`
	ItemType   string        `json:"itemType"`
	Title      string        `json:"title,omitempty"`
	Creators   []wireCreator `json:"creators,omitempty"`
	URL        string        `json:"url,omitempty"`
	Date       string        `json:"date,omitempty"`
	Note       string        `json:"note,omitempty"`
	ParentItem string        `json:"parentItem,omitempty"`
	Tags       []wireTag     `json:"tags"`
}

type wireCreator struct {
	CreatorType string `json:"creatorType"`
	Name        string `json:"name,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
}

type wireTag struct {
	Tag string `json:"tag"`
}

// toPaper converts a wire item into the domain model.
func (w wireItem) toPaper(groupID string) (papers.Paper, error) {
	if w.Key == "" {
		return papers.Paper{}, fmt.Errorf("item has no key")
	}
	if w.Data.Title == "" {
		return papers.Paper{}, fmt.Errorf("item has no title")
	}

	paper := papers.Paper{
		Key:         w.Key,
		Title:       w.Data.Title,
		Authors:     authorNames(w.Data.Creators),
		Link:        w.Data.URL,
		PublishedAt: parseDate(w.Data.Date),
		SourceURL:   papers.SelectURL(groupID, w.Key),
	}
	return paper, nil
}

// authorNames keeps creators of type author, in catalog order. Single-field
// names are used verbatim; two-field names join as "First Last".
func authorNames(creators []wireCreator) []string {
	var names []string
	for _, c := range creators {
		if c.CreatorType != "author" {
			continue
		}
		if c.Name != "" {
			names = append(names, c.Name)
			continue
		}
		name := strings.TrimSpace(c.FirstName + " " + c.LastName)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// dateLayouts are tried in order against the free-form date field.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"January 2006",
	"Jan 2006",
	"2006-01",
	"2006",
	time.RFC3339,
}

// parseDate renders a Zotero date string as YYYY-MM-DD, or empty when no
// layout matches. Partial dates resolve to the first day of the period,
// matching how the original database rows were seeded.
func parseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
