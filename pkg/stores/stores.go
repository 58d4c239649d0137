// Package stores defines the capability interfaces for the two ends of a
// synchronization run: the source library that owns the bibliographic
// truth and the target database that mirrors it.
//
// Both traversal methods return lazy, restartable sequences: ranging over
// the sequence a second time starts a fresh, independent traversal, and
// pagination is invisible to the consumer. Per-item failures are yielded
// as *errors.ItemError values so callers can log and continue; anything
// else yielded as an error is fatal to the traversal.
package stores

import (
	"context"
	"iter"
	"slices"

	"github.com/shelfmark/refsync/pkg/papers"
)

// ID identifies a concrete store implementation.
type ID string

// String returns the string representation of a store ID.
func (id ID) String() string {
	return string(id)
}

// Known store IDs.
const (
	ZoteroID ID = "zotero"
	NotionID ID = "notion"
)

// IDs returns all known store IDs.
func IDs() []ID {
	return []ID{ZoteroID, NotionID}
}

// IsValid returns true if the ID is one of the defined constants.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Source is the read side of a run plus the optional back-reference write.
type Source interface {
	// ID returns the identifier of this store
	ID() ID

	// Items returns a lazy sequence over every item in the library.
	// Pagination within one traversal is strictly sequential.
	Items(ctx context.Context) iter.Seq2[papers.Paper, error]

	// LinkBack writes a back-reference note on the given item pointing at
	// the target record. Best effort: callers log failures and move on.
	LinkBack(ctx context.Context, itemKey, recordID string) error
}

// Target is the read and write side of the mirrored database.
type Target interface {
	// ID returns the identifier of this store
	ID() ID

	// Records returns a lazy sequence over every record in the database.
	Records(ctx context.Context) iter.Seq2[papers.Record, error]

	// Create adds a new record with the given properties and returns it.
	Create(ctx context.Context, props papers.Properties) (papers.Record, error)

	// Update patches only the listed properties of an existing record.
	// Keys absent from props are left untouched. Patching a deleted
	// record fails with a *errors.WriteError wrapping ErrNotFound and is
	// never retried.
	Update(ctx context.Context, id string, props papers.Properties) error
}
