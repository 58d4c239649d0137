package reconciler

import (
	"testing"

	"github.com/shelfmark/refsync/pkg/papers"
)

func TestBuildIndexFirstEncounteredWins(t *testing.T) {
	records := []papers.Record{
		{ID: "r1", Ref: "K1"},
		{ID: "r2", Ref: "K2"},
		{ID: "r3", Ref: "K1"}, // duplicate from a prior failed run
	}

	idx, warnings := BuildIndex(records)

	if got, _ := idx.Lookup("K1"); got != "r1" {
		t.Errorf("K1 should map to first encountered record r1, got %s", got)
	}
	if got, _ := idx.Lookup("K2"); got != "r2" {
		t.Errorf("K2 should map to r2, got %s", got)
	}
	if idx.Len() != 2 {
		t.Errorf("expected 2 links, got %d", idx.Len())
	}

	if len(warnings) != 1 {
		t.Fatalf("expected 1 duplicate warning, got %d", len(warnings))
	}
	w := warnings[0]
	if w.Kind != WarnDuplicateLink || w.Key != "K1" || w.RecordID != "r3" {
		t.Errorf("unexpected warning: %+v", w)
	}
}

func TestBuildIndexIgnoresUnlinkedRecords(t *testing.T) {
	records := []papers.Record{
		{ID: "manual-1"}, // created by hand, no reference field
		{ID: "r1", Ref: "K1"},
	}

	idx, warnings := BuildIndex(records)

	if idx.Len() != 1 {
		t.Errorf("expected 1 link, got %d", idx.Len())
	}
	if idx.Records() != 2 {
		t.Errorf("all records belong in the snapshot set, got %d", idx.Records())
	}
	if !idx.Has("manual-1") {
		t.Error("unlinked record must still be present in the snapshot set")
	}
	if len(warnings) != 0 {
		t.Errorf("unlinked records are not duplicates: %v", warnings)
	}
}

func TestRegisterGuardsExistingLink(t *testing.T) {
	idx, _ := BuildIndex([]papers.Record{{ID: "r1", Ref: "K1"}})

	idx.Register("K1", papers.Record{ID: "r9", Ref: "K1"})
	if got, _ := idx.Lookup("K1"); got != "r1" {
		t.Errorf("register must not displace an existing link, got %s", got)
	}

	idx.Register("K2", papers.Record{ID: "r2", Ref: "K2"})
	if got, ok := idx.Lookup("K2"); !ok || got != "r2" {
		t.Errorf("register should add a new link, got %s ok=%v", got, ok)
	}
	if !idx.Has("r2") {
		t.Error("registered record should be visible to Has")
	}
}

func TestIndexRecordLookup(t *testing.T) {
	rec := papers.Record{
		ID:  "r1",
		Ref: "K1",
		Properties: papers.Properties{
			papers.PropTitle: papers.Title("Paper One"),
		},
	}
	idx, _ := BuildIndex([]papers.Record{rec})

	got, ok := idx.Record("r1")
	if !ok {
		t.Fatal("record should be retrievable")
	}
	if got.Properties[papers.PropTitle].String() != "Paper One" {
		t.Errorf("unexpected record properties: %+v", got.Properties)
	}

	if _, ok := idx.Record("missing"); ok {
		t.Error("missing record should not be found")
	}
}
