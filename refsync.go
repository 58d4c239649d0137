// Package refsync keeps a Notion database consistent with a Zotero group
// library. Sync is one-directional: papers flow from Zotero into Notion,
// one page per paper, and the columns refsync writes are the only ones it
// ever touches.
package refsync

import (
	"context"

	"github.com/shelfmark/refsync/pkg/errors"
	"github.com/shelfmark/refsync/pkg/stores"
	syncer "github.com/shelfmark/refsync/pkg/sync"
)

// Refsync runs synchronization passes and notifies hooks of applied writes.
type Refsync interface {
	// Sync performs one synchronization pass.
	Sync(ctx context.Context) (*syncer.Result, error)

	// Plan computes the actions a pass would apply without writing.
	Plan(ctx context.Context) (*syncer.Result, error)

	// OnRecordCreated registers a callback fired for each created record.
	OnRecordCreated(RecordCreatedHook)

	// OnRecordUpdated registers a callback fired for each updated record.
	OnRecordUpdated(RecordUpdatedHook)
}

// refsync is the internal implementation of the Refsync interface.
type refsync struct {
	source   stores.Source
	target   stores.Target
	syncOpts []syncer.Option

	hooks *hooks
}

// New creates a Refsync instance with the given options. A source and a
// target are required, either directly or via WithConfig.
func New(opts ...Option) (Refsync, error) {
	r := &refsync{hooks: newHooks()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.source == nil {
		return nil, &errors.ValidationError{Field: "source", Message: "cannot be nil"}
	}
	if r.target == nil {
		return nil, &errors.ValidationError{Field: "target", Message: "cannot be nil"}
	}
	return r, nil
}

// Sync performs one synchronization pass.
func (r *refsync) Sync(ctx context.Context) (*syncer.Result, error) {
	return r.run(ctx, r.syncOpts)
}

// Plan computes the actions a pass would apply without writing.
func (r *refsync) Plan(ctx context.Context) (*syncer.Result, error) {
	opts := make([]syncer.Option, 0, len(r.syncOpts)+1)
	opts = append(opts, r.syncOpts...)
	opts = append(opts, syncer.WithDryRun(true))
	return r.run(ctx, opts)
}

func (r *refsync) run(ctx context.Context, opts []syncer.Option) (*syncer.Result, error) {
	s, err := syncer.New(r.source, r.target, opts...)
	if err != nil {
		return nil, err
	}
	result, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	if !result.DryRun {
		r.hooks.fire(result)
	}
	return result, nil
}

// OnRecordCreated registers a callback fired for each created record.
func (r *refsync) OnRecordCreated(fn RecordCreatedHook) {
	r.hooks.onRecordCreated(fn)
}

// OnRecordUpdated registers a callback fired for each updated record.
func (r *refsync) OnRecordUpdated(fn RecordUpdatedHook) {
	r.hooks.onRecordUpdated(fn)
}
