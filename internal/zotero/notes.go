package zotero

import (
	"context"
	"fmt"
	"regexp"

	"github.com/shelfmark/refsync/pkg/papers"
)

// linkTag marks the child note that carries an item's back reference.
const linkTag = "notion-link"

var recordLinkRe = regexp.MustCompile(`https://notion\.so/([a-z0-9-]+)`)

// noteBody renders the back-reference note content.
func noteBody(recordID string) string {
	return fmt.Sprintf(`<a href="%s">Notion</a>`, papers.NotionURL(recordID))
}

// isLinkNote reports whether a note carries exactly the link tag.
func isLinkNote(data wireItemData) bool {
	return data.ItemType == "note" && len(data.Tags) == 1 && data.Tags[0].Tag == linkTag
}

// recordHints scans every note in the library once and maps parent item
// keys to the record IDs their back-reference notes point at.
func (c *Client) recordHints(ctx context.Context) (map[string]string, error) {
	hints := make(map[string]string)

	start := 0
	for {
		var page []wireItem
		url := fmt.Sprintf("%s/groups/%s/items?itemType=note&format=json&start=%d&limit=%d",
			c.baseURL, c.groupID, start, c.pageSize)
		if err := c.transport.Get(ctx, url, &page); err != nil {
			return nil, err
		}

		for _, note := range page {
			if !isLinkNote(note.Data) || note.Data.ParentItem == "" {
				continue
			}
			if m := recordLinkRe.FindStringSubmatch(note.Data.Note); m != nil {
				hints[note.Data.ParentItem] = m[1]
			}
		}

		if len(page) < c.pageSize {
			return hints, nil
		}
		start += len(page)
	}
}

// findLinkNote looks for the tagged note among an item's children.
func (c *Client) findLinkNote(ctx context.Context, itemKey string) (wireItem, bool, error) {
	var children []wireItem
	url := fmt.Sprintf("%s/groups/%s/items/%s/children?format=json", c.baseURL, c.groupID, itemKey)
	if err := c.transport.Get(ctx, url, &children); err != nil {
		return wireItem{}, false, err
	}

	for _, child := range children {
		if isLinkNote(child.Data) {
			return child, true, nil
		}
	}
	return wireItem{}, false, nil
}

// createLinkNote adds a fresh tagged child note to an item.
func (c *Client) createLinkNote(ctx context.Context, itemKey, body string) error {
	payload := []wireItemData{{
		ItemType:   "note",
		ParentItem: itemKey,
		Note:       body,
		Tags:       []wireTag{{Tag: linkTag}},
	}}
	url := fmt.Sprintf("%s/groups/%s/items", c.baseURL, c.groupID)
	return c.transport.Post(ctx, url, payload, nil)
}

// updateLinkNote rewrites an existing note's body in place. The note's
// current version rides along so the API can reject a concurrent edit.
func (c *Client) updateLinkNote(ctx context.Context, note wireItem, body string) error {
	patch := wireItemData{
		Key:      note.Key,
		Version:  note.Version,
		ItemType: "note",
		Note:     body,
		Tags:     []wireTag{{Tag: linkTag}},
	}
	url := fmt.Sprintf("%s/groups/%s/items/%s", c.baseURL, c.groupID, note.Key)
	return c.transport.Patch(ctx, url, patch, nil)
}
