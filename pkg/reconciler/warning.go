package reconciler

import "fmt"

// WarningKind classifies a non-fatal reconciliation finding.
type WarningKind string

const (
	// WarnDuplicateLink marks a target record claiming an item key some
	// earlier record already claimed. The first record keeps the link.
	WarnDuplicateLink WarningKind = "duplicate_link"

	// WarnDanglingLink marks a source item whose back-reference points at
	// a record the target snapshot does not contain.
	WarnDanglingLink WarningKind = "dangling_link"
)

// Warning is a finding the run surfaces but does not act on. Cleaning up
// duplicates or stale back-references is left to a human.
type Warning struct {
	Kind     WarningKind
	Key      string
	RecordID string
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	switch w.Kind {
	case WarnDuplicateLink:
		return fmt.Sprintf("record %s duplicates the link for item %s", w.RecordID, w.Key)
	case WarnDanglingLink:
		return fmt.Sprintf("item %s references missing record %s", w.Key, w.RecordID)
	default:
		return fmt.Sprintf("%s: item %s record %s", w.Kind, w.Key, w.RecordID)
	}
}
