// Package papers defines the domain model shared by the refsync stores:
// bibliographic papers fetched from the source library, the records that
// mirror them in the target database, and the typed property values those
// records carry.
package papers

import (
	"fmt"
	"strings"
)

// Property names used in the target database. Source-owned columns are
// overwritten on every run; anything else in the database belongs to humans.
const (
	PropTitle       = "Title"
	PropAuthors     = "Authors"
	PropLink        = "Link"
	PropPublishedAt = "Published at"
	PropZoteroURL   = "Zotero URL"
	PropZoteroKey   = "Zotero ItemID"
)

// Paper is a single bibliographic item from the source library.
// It is immutable once fetched; a run never writes back into it except
// through the best-effort back-reference note.
type Paper struct {
	// Key is the stable source item key, globally unique within the library.
	Key string

	// Title of the work.
	Title string

	// Authors holds creator names in catalog order, already formatted
	// for display ("First Last" or the verbatim single-field name).
	Authors []string

	// Link is the item's own URL field, if any.
	Link string

	// PublishedAt is the publication date rendered as YYYY-MM-DD,
	// empty when the item carries no parseable date.
	PublishedAt string

	// SourceURL is the human-readable select address for this item.
	SourceURL string

	// RecordHint is a target record ID recovered from the item's
	// back-reference note. It may point at a deleted record; only the
	// target snapshot decides whether a link is live.
	RecordHint string
}

// AuthorsLine returns the comma-joined author list as stored in the
// target's Authors property.
func (p Paper) AuthorsLine() string {
	return strings.Join(p.Authors, ", ")
}

// Validate reports whether the paper can be synchronized at all.
func (p Paper) Validate() error {
	if p.Key == "" {
		return fmt.Errorf("paper has no key")
	}
	if p.Title == "" {
		return fmt.Errorf("paper %s has no title", p.Key)
	}
	return nil
}

// SelectURL builds the human-readable source address for an item in a
// group library.
func SelectURL(groupID, key string) string {
	return fmt.Sprintf("https://open-zotero.xyz/select/groups/%s/items/%s", groupID, key)
}

// NotionURL builds the public page URL for a target record ID. Dashes are
// stripped, matching the URLs the web app itself hands out.
func NotionURL(recordID string) string {
	return "https://notion.so/" + strings.ReplaceAll(recordID, "-", "")
}
