// Package sync orchestrates a full synchronization run: snapshot both
// stores, build the link index, reconcile, and apply the resulting plan
// against the target. A run holds no state between invocations; killing
// one mid-flight and re-running is always safe because the index is
// rebuilt from the target store's current contents.
package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/shelfmark/refsync/pkg/errors"
	"github.com/shelfmark/refsync/pkg/logging"
	"github.com/shelfmark/refsync/pkg/papers"
	"github.com/shelfmark/refsync/pkg/reconciler"
	"github.com/shelfmark/refsync/pkg/stores"
)

// Syncer runs one-directional synchronization from a source to a target.
type Syncer struct {
	source stores.Source
	target stores.Target
	opts   *Options
}

// New creates a Syncer for the given store pair.
func New(source stores.Source, target stores.Target, opts ...Option) (*Syncer, error) {
	if source == nil {
		return nil, &errors.ValidationError{Field: "source", Message: "cannot be nil"}
	}
	if target == nil {
		return nil, &errors.ValidationError{Field: "target", Message: "cannot be nil"}
	}

	options := Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	return &Syncer{source: source, target: target, opts: options}, nil
}

// Run performs a single synchronization pass.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	logger := logging.FromContext(ctx)
	result := NewResult()
	result.DryRun = s.opts.DryRun

	// Snapshot both stores. The traversals are read-only and independent,
	// so they run concurrently; pages within one traversal stay sequential.
	items, records, err := s.snapshot(ctx, result)
	if err != nil {
		return nil, err
	}
	result.SourceCount = len(items)
	result.TargetCount = len(records)

	logger.Info().
		Int("source_items", len(items)).
		Int("target_records", len(records)).
		Msg("Snapshots complete")

	index, warnings := reconciler.BuildIndex(records)
	for _, w := range warnings {
		logger.Warn().Str("item_key", w.Key).Str("record_id", w.RecordID).Msg(w.String())
	}

	rec, err := reconciler.New(
		reconciler.WithMapper(s.opts.Mapper),
		reconciler.WithSkipUnchanged(s.opts.SkipUnchanged),
	)
	if err != nil {
		return nil, err
	}

	plan := rec.Reconcile(ctx, items, index)
	plan.Warnings = append(warnings, plan.Warnings...)
	result.Plan = plan

	if s.opts.DryRun {
		for _, action := range plan.Actions {
			logger.Info().Str("action", action.String()).Msg("Dry run")
		}
		result.Finalize()
		return result, nil
	}

	s.execute(ctx, plan.Actions, index, result)
	result.Finalize()

	logger.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Run complete")

	return result, nil
}

// snapshot fetches both stores concurrently and collects the sequences.
func (s *Syncer) snapshot(ctx context.Context, result *Result) ([]papers.Paper, []papers.Record, error) {
	var (
		wg        gosync.WaitGroup
		items     []papers.Paper
		records   []papers.Record
		srcErr    error
		tgtErr    error
		itemSkips []error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		items, itemSkips, srcErr = collectPapers(ctx, s.source)
	}()
	go func() {
		defer wg.Done()
		records, tgtErr = collectRecords(ctx, s.target)
	}()
	wg.Wait()

	// Either fatal snapshot error aborts before any write occurs.
	if srcErr != nil {
		return nil, nil, fmt.Errorf("source snapshot: %w", srcErr)
	}
	if tgtErr != nil {
		return nil, nil, fmt.Errorf("target snapshot: %w", tgtErr)
	}

	logger := logging.FromContext(ctx)
	for _, err := range itemSkips {
		logger.Warn().Err(err).Msg("Skipping malformed source item")
	}
	result.ItemErrors = itemSkips

	return items, records, nil
}

// collectPapers drains a source traversal. Per-item errors are collected
// and reported to the caller; any other error aborts the snapshot.
func collectPapers(ctx context.Context, source stores.Source) ([]papers.Paper, []error, error) {
	var (
		items     []papers.Paper
		itemSkips []error
	)
	for paper, err := range source.Items(ctx) {
		if err != nil {
			if errors.IsItemError(err) {
				itemSkips = append(itemSkips, err)
				continue
			}
			return nil, nil, err
		}
		items = append(items, paper)
	}
	return items, itemSkips, nil
}

// collectRecords drains a target traversal. The target has no per-record
// error class; anything yielded is fatal to the index build.
func collectRecords(ctx context.Context, target stores.Target) ([]papers.Record, error) {
	var records []papers.Record
	for record, err := range target.Records(ctx) {
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
