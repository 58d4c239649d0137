package sync_test

import (
	"context"
	"fmt"
	"iter"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/refsync/pkg/errors"
	"github.com/shelfmark/refsync/pkg/papers"
	"github.com/shelfmark/refsync/pkg/stores"
	"github.com/shelfmark/refsync/pkg/sync"
)

// fakeSource implements stores.Source over in-memory papers.
type fakeSource struct {
	mu          gosync.Mutex
	items       []papers.Paper
	itemErrs    []error
	fatalErr    error
	linkBacks   map[string]string // item key -> record ID
	linkBackErr error
}

func newFakeSource(items ...papers.Paper) *fakeSource {
	return &fakeSource{items: items, linkBacks: make(map[string]string)}
}

func (s *fakeSource) ID() stores.ID { return stores.ZoteroID }

func (s *fakeSource) Items(_ context.Context) iter.Seq2[papers.Paper, error] {
	return func(yield func(papers.Paper, error) bool) {
		if s.fatalErr != nil {
			yield(papers.Paper{}, s.fatalErr)
			return
		}
		for _, err := range s.itemErrs {
			if !yield(papers.Paper{}, err) {
				return
			}
		}
		for _, p := range s.items {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func (s *fakeSource) LinkBack(_ context.Context, itemKey, recordID string) error {
	if s.linkBackErr != nil {
		return s.linkBackErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linkBacks[itemKey] = recordID
	return nil
}

// fakeTarget implements stores.Target over an in-memory record set.
type fakeTarget struct {
	mu        gosync.Mutex
	records   []papers.Record
	nextID    int
	fatalErr  error
	createErr error
	updateErr map[string]error // record ID -> error
	creates   int
	updates   int
}

func newFakeTarget(records ...papers.Record) *fakeTarget {
	return &fakeTarget{records: records, updateErr: make(map[string]error)}
}

func (t *fakeTarget) ID() stores.ID { return stores.NotionID }

func (t *fakeTarget) Records(_ context.Context) iter.Seq2[papers.Record, error] {
	t.mu.Lock()
	snapshot := make([]papers.Record, len(t.records))
	copy(snapshot, t.records)
	t.mu.Unlock()

	return func(yield func(papers.Record, error) bool) {
		if t.fatalErr != nil {
			yield(papers.Record{}, t.fatalErr)
			return
		}
		for _, r := range snapshot {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (t *fakeTarget) Create(_ context.Context, props papers.Properties) (papers.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.creates++
	if t.createErr != nil {
		return papers.Record{}, &errors.WriteError{Op: "create", Err: t.createErr}
	}
	t.nextID++
	rec := papers.Record{
		ID:         fmt.Sprintf("R%d", t.nextID),
		Ref:        props[papers.PropZoteroKey].String(),
		Properties: props.Clone(),
	}
	t.records = append(t.records, rec)
	return rec, nil
}

func (t *fakeTarget) Update(_ context.Context, id string, props papers.Properties) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.updates++
	if err, ok := t.updateErr[id]; ok {
		return &errors.WriteError{Op: "update", RecordID: id, Err: err}
	}
	for i, rec := range t.records {
		if rec.ID == id {
			t.records[i].Properties = rec.Properties.Merge(props)
			return nil
		}
	}
	return &errors.WriteError{Op: "update", RecordID: id, Err: errors.ErrNotFound}
}

func paper(key, title string) papers.Paper {
	return papers.Paper{
		Key:       key,
		Title:     title,
		Authors:   []string{"X"},
		Link:      "http://x",
		SourceURL: papers.SelectURL("7", key),
	}
}

func TestRunCreatesAndLinksBack(t *testing.T) {
	source := newFakeSource(paper("A1", "Paper One"))
	target := newFakeTarget()

	syncer, err := sync.New(source, target)
	require.NoError(t, err)

	result, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Failed)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, "R1", source.linkBacks["A1"], "back reference should point at the new record")

	// The created record carries the full source-owned property set.
	rec := target.records[0]
	assert.Equal(t, "A1", rec.Ref)
	assert.Equal(t, "Paper One", rec.Properties[papers.PropTitle].String())
}

func TestSecondRunUpdatesInsteadOfCreating(t *testing.T) {
	source := newFakeSource(paper("A1", "Paper One"), paper("B2", "Paper Two"))
	target := newFakeTarget()

	syncer, err := sync.New(source, target)
	require.NoError(t, err)

	first, err := syncer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	// Second run sees the refreshed target snapshot.
	second, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, second.Created, "second run must create nothing")
	assert.Equal(t, 2, second.Updated)
	assert.Len(t, target.records, 2, "exactly one record per distinct source key")
}

func TestDryRunWritesNothing(t *testing.T) {
	source := newFakeSource(paper("A1", "Paper One"))
	target := newFakeTarget()

	syncer, err := sync.New(source, target, sync.WithDryRun(true))
	require.NoError(t, err)

	result, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, target.creates)
	assert.Equal(t, 0, target.updates)
	assert.Empty(t, source.linkBacks)
	require.NotNil(t, result.Plan)
	assert.Equal(t, 1, result.Plan.Stats.Creates, "plan still reports what would happen")
}

func TestLinkBackFailureDoesNotFailCreation(t *testing.T) {
	source := newFakeSource(paper("A1", "Paper One"))
	source.linkBackErr = errors.New("note endpoint down")
	target := newFakeTarget()

	syncer, err := sync.New(source, target)
	require.NoError(t, err)

	result, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created, "creation stands even when the back-write fails")
	assert.True(t, result.IsSuccess())
}

func TestPartialFailureIsolation(t *testing.T) {
	source := newFakeSource(paper("A1", "Paper One"), paper("B2", "Paper Two"), paper("C3", "Paper Three"))
	target := newFakeTarget(papers.Record{ID: "R1", Ref: "B2"})
	target.updateErr["R1"] = errors.New("rate limit exhausted")

	syncer, err := sync.New(source, target)
	require.NoError(t, err)

	result, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created, "failure of one action must not stop the rest")
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "B2", result.Errors[0].Action.Paper.Key)
	assert.False(t, result.IsSuccess())
}

func TestFailFastStopsTheRun(t *testing.T) {
	source := newFakeSource(paper("A1", "Paper One"), paper("B2", "Paper Two"))
	target := newFakeTarget()
	target.createErr = errors.New("schema mismatch")

	syncer, err := sync.New(source, target, sync.WithFailFast(true))
	require.NoError(t, err)

	result, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, target.creates, "fail fast should stop after the first failure")
}

func TestVanishedRecordPatchIsReportedNotRetried(t *testing.T) {
	source := newFakeSource(paper("A1", "Paper One"))
	target := newFakeTarget(papers.Record{ID: "R1", Ref: "A1"})
	target.updateErr["R1"] = errors.ErrNotFound

	syncer, err := sync.New(source, target)
	require.NoError(t, err)

	result, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, target.updates, "a patch to a missing record is attempted exactly once")
	assert.True(t, errors.IsNotFound(result.Errors[0]))
}

func TestMalformedItemsAreSkippedNotFatal(t *testing.T) {
	source := newFakeSource(paper("A1", "Paper One"))
	source.itemErrs = []error{&errors.ItemError{Key: "BAD1", Err: errors.New("no title")}}
	target := newFakeTarget()

	syncer, err := sync.New(source, target)
	require.NoError(t, err)

	result, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	require.Len(t, result.ItemErrors, 1)
	assert.True(t, errors.IsItemError(result.ItemErrors[0]))
}

func TestSourceUnavailableAbortsBeforeAnyWrite(t *testing.T) {
	source := newFakeSource(paper("A1", "Paper One"))
	source.fatalErr = fmt.Errorf("list items: %w", errors.ErrSourceUnavailable)
	target := newFakeTarget()

	syncer, err := sync.New(source, target)
	require.NoError(t, err)

	_, err = syncer.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSourceUnavailable))
	assert.Equal(t, 0, target.creates, "nothing may be written after a failed snapshot")
}

func TestTargetUnavailableAbortsBeforeAnyWrite(t *testing.T) {
	source := newFakeSource(paper("A1", "Paper One"))
	target := newFakeTarget()
	target.fatalErr = fmt.Errorf("query records: %w", errors.ErrTargetUnavailable)

	syncer, err := sync.New(source, target)
	require.NoError(t, err)

	_, err = syncer.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTargetUnavailable))
	assert.Equal(t, 0, target.creates)
}

func TestDuplicateSnapshotKeyCreatesOnce(t *testing.T) {
	source := newFakeSource(paper("A1", "Paper One"), paper("A1", "Paper One"))
	target := newFakeTarget()

	syncer, err := sync.New(source, target)
	require.NoError(t, err)

	result, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, target.records, 1)
}

func TestConcurrentExecution(t *testing.T) {
	var items []papers.Paper
	for i := range 20 {
		items = append(items, paper(fmt.Sprintf("K%02d", i), fmt.Sprintf("Paper %d", i)))
	}
	source := newFakeSource(items...)
	target := newFakeTarget()

	syncer, err := sync.New(source, target, sync.WithConcurrency(4))
	require.NoError(t, err)

	result, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, result.Created)
	assert.Len(t, target.records, 20)
	assert.Len(t, source.linkBacks, 20)
}

func TestTargetDefaultsSeededOnCreateOnly(t *testing.T) {
	defaults := papers.Properties{"Notes": papers.RichText("")}
	source := newFakeSource(paper("A1", "Paper One"))
	target := newFakeTarget()

	syncer, err := sync.New(source, target, sync.WithTargetDefaults(defaults))
	require.NoError(t, err)

	_, err = syncer.Run(context.Background())
	require.NoError(t, err)

	created := target.records[0]
	_, hasNotes := created.Properties["Notes"]
	assert.True(t, hasNotes, "creation must seed target defaults")

	// Simulate a human annotation, then run again.
	target.records[0].Properties["Notes"] = papers.RichText("my reading notes")

	_, err = syncer.Run(context.Background())
	require.NoError(t, err)

	got := target.records[0].Properties["Notes"].String()
	assert.Equal(t, "my reading notes", got, "updates must never touch target-owned fields")
}

func TestOptionValidation(t *testing.T) {
	source := newFakeSource()
	target := newFakeTarget()

	_, err := sync.New(source, target, sync.WithConcurrency(0))
	assert.Error(t, err)

	_, err = sync.New(source, target, sync.WithTimeout(-1))
	assert.Error(t, err)

	_, err = sync.New(nil, target)
	assert.Error(t, err)

	_, err = sync.New(source, nil)
	assert.Error(t, err)
}
