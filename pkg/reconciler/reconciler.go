// Package reconciler is the decision core of refsync. Given a snapshot of
// source papers, a link index built from the target snapshot, and a field
// mapper, it produces an ordered list of create, update, and skip actions
// with no side effects of its own. Orphan target records, records with no
// corresponding paper, are never acted on.
package reconciler

import (
	"context"

	"github.com/shelfmark/refsync/pkg/logging"
	"github.com/shelfmark/refsync/pkg/papers"
)

// Reconciler turns snapshots into an action plan.
type Reconciler interface {
	// Reconcile diffs the source snapshot against the link index. The
	// returned actions preserve source snapshot order.
	Reconcile(ctx context.Context, items []papers.Paper, index *LinkIndex) *Result
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	mapper        Mapper
	skipUnchanged bool
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &reconciler{
		mapper:        options.mapper,
		skipUnchanged: options.skipUnchanged,
	}, nil
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(ctx context.Context, items []papers.Paper, index *LinkIndex) *Result {
	logger := logging.FromContext(ctx)
	result := NewResult()

	seen := make(map[string]struct{}, len(items))
	for _, paper := range items {
		if _, dup := seen[paper.Key]; dup {
			// Should not happen given the source store's key invariant,
			// but a repeated key must not yield a second create.
			result.Append(Skip(paper, "duplicate item in snapshot"))
			continue
		}
		seen[paper.Key] = struct{}{}

		result.Append(r.decide(paper, index, result))
	}

	result.Finalize()
	logger.Info().
		Int("items", len(items)).
		Int("creates", result.Stats.Creates).
		Int("updates", result.Stats.Updates).
		Int("skips", result.Stats.Skips).
		Int("warnings", len(result.Warnings)).
		Msg("Reconciliation plan ready")

	return result
}

// decide derives the single action for one paper.
func (r *reconciler) decide(paper papers.Paper, index *LinkIndex, result *Result) Action {
	recordID, linked := index.Lookup(paper.Key)
	if !linked {
		// The target-side scan is authoritative. A source-side hint the
		// snapshot cannot confirm is a dangling link: surface it and
		// create a fresh record rather than erroring out.
		if paper.RecordHint != "" && !index.Has(paper.RecordHint) {
			result.Warn(Warning{
				Kind:     WarnDanglingLink,
				Key:      paper.Key,
				RecordID: paper.RecordHint,
			})
		}
		return Create(paper)
	}

	if r.skipUnchanged {
		if current, ok := index.Record(recordID); ok {
			projection := r.mapper.Project(paper)
			if projection.SourceOwned.EqualSubset(current.Properties) {
				return Skip(paper, "unchanged")
			}
		}
	}

	return Update(paper, recordID)
}
