package sync

import (
	"context"
	gosync "sync"

	"github.com/shelfmark/refsync/pkg/errors"
	"github.com/shelfmark/refsync/pkg/logging"
	"github.com/shelfmark/refsync/pkg/reconciler"
)

// execute applies the plan against the target. Actions are independent,
// so a worker pool may process them; each paper yields exactly one action,
// which is what makes same-key writes impossible to race.
func (s *Syncer) execute(ctx context.Context, actions []reconciler.Action, index *reconciler.LinkIndex, result *Result) {
	if s.opts.Concurrency <= 1 {
		for _, action := range actions {
			if ctx.Err() != nil {
				return
			}
			s.apply(ctx, action, index, result)
			if s.opts.FailFast && result.Failed > 0 {
				return
			}
		}
		return
	}

	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg gosync.WaitGroup
	queue := make(chan reconciler.Action)

	for range s.opts.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for action := range queue {
				if execCtx.Err() != nil {
					continue
				}
				s.apply(execCtx, action, index, result)
				if s.opts.FailFast && result.failed() > 0 {
					cancel()
				}
			}
		}()
	}

	for _, action := range actions {
		queue <- action
	}
	close(queue)
	wg.Wait()
}

// apply executes a single action.
func (s *Syncer) apply(ctx context.Context, action reconciler.Action, index *reconciler.LinkIndex, result *Result) {
	logger := logging.FromContext(ctx)
	projection := s.opts.Mapper.Project(action.Paper)

	switch action.Type {
	case reconciler.ActionCreate:
		record, err := s.target.Create(ctx, projection.CreateProperties())
		if err != nil {
			logger.Error().Err(err).Str("item_key", action.Paper.Key).Msg("Create failed")
			result.fail(action, err)
			return
		}

		// Register the new link immediately so a repeated key in the same
		// snapshot cannot create a second record.
		index.Register(action.Paper.Key, record)
		result.created()

		logger.Info().
			Str("item_key", action.Paper.Key).
			Str("record_id", record.ID).
			Msg("Created record")

		if s.opts.LinkBack {
			// Best effort. The target record is the source of truth for
			// existence; a missing back reference only costs the source
			// side its hint, which the target-side scan covers anyway.
			if err := s.source.LinkBack(ctx, action.Paper.Key, record.ID); err != nil {
				logger.Warn().Err(err).
					Str("item_key", action.Paper.Key).
					Msg("Back-reference write failed")
			}
		}

	case reconciler.ActionUpdate:
		if err := s.target.Update(ctx, action.RecordID, projection.SourceOwned); err != nil {
			if errors.IsNotFound(err) {
				// Record deleted between snapshot and patch. Reported,
				// not retried; the next run recreates it.
				logger.Warn().
					Str("item_key", action.Paper.Key).
					Str("record_id", action.RecordID).
					Msg("Record vanished before patch")
			} else {
				logger.Error().Err(err).
					Str("item_key", action.Paper.Key).
					Str("record_id", action.RecordID).
					Msg("Update failed")
			}
			result.fail(action, err)
			return
		}
		result.updated()

		logger.Debug().
			Str("item_key", action.Paper.Key).
			Str("record_id", action.RecordID).
			Msg("Updated record")

	case reconciler.ActionSkip:
		result.skipped()
		logger.Debug().
			Str("item_key", action.Paper.Key).
			Str("reason", action.Reason).
			Msg("Skipped")
	}
}
