package reconciler

import (
	gosync "sync"

	"github.com/shelfmark/refsync/pkg/papers"
)

// LinkIndex maps source item keys to target records for one run. It is
// rebuilt from the target snapshot every run and discarded afterwards;
// nothing about the pairing is persisted anywhere else.
type LinkIndex struct {
	mu      gosync.RWMutex
	links   map[string]string        // item key -> record ID
	records map[string]papers.Record // record ID -> record
}

// BuildIndex scans the target snapshot and pairs each linked record with
// its item key. When two records claim the same key, the first
// encountered keeps the link and the rest are reported as duplicates.
// Unlinked records enter the snapshot set but get no link.
func BuildIndex(records []papers.Record) (*LinkIndex, []Warning) {
	idx := &LinkIndex{
		links:   make(map[string]string, len(records)),
		records: make(map[string]papers.Record, len(records)),
	}

	var warnings []Warning
	for _, record := range records {
		idx.records[record.ID] = record
		if !record.Linked() {
			continue
		}
		if _, taken := idx.links[record.Ref]; taken {
			warnings = append(warnings, Warning{
				Kind:     WarnDuplicateLink,
				Key:      record.Ref,
				RecordID: record.ID,
			})
			continue
		}
		idx.links[record.Ref] = record.ID
	}
	return idx, warnings
}

// Lookup returns the record ID linked to the item key.
func (idx *LinkIndex) Lookup(key string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.links[key]
	return id, ok
}

// Record returns the snapshot record with the given ID.
func (idx *LinkIndex) Record(id string) (papers.Record, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	record, ok := idx.records[id]
	return record, ok
}

// Has reports whether a record with the given ID is in the snapshot set.
func (idx *LinkIndex) Has(id string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.records[id]
	return ok
}

// Register adds a link for a record created during the run, so that a
// later duplicate of the key within the same run resolves to it. An
// existing link is never displaced.
func (idx *LinkIndex) Register(key string, record papers.Record) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.records[record.ID] = record
	if _, taken := idx.links[key]; taken {
		return
	}
	idx.links[key] = record.ID
}

// Len returns the number of links.
func (idx *LinkIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.links)
}

// Records returns the size of the snapshot set.
func (idx *LinkIndex) Records() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}
