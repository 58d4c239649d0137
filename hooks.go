package refsync

import (
	gosync "sync"

	"github.com/shelfmark/refsync/pkg/papers"
	"github.com/shelfmark/refsync/pkg/reconciler"
	syncer "github.com/shelfmark/refsync/pkg/sync"
)

// Hook function types for record events.
type (
	// RecordCreatedHook is called when a run creates a record for a paper.
	RecordCreatedHook func(paper papers.Paper)

	// RecordUpdatedHook is called when a run patches the record linked to
	// a paper.
	RecordUpdatedHook func(paper papers.Paper, recordID string)
)

// hooks manages event callbacks for applied writes.
type hooks struct {
	mu        gosync.RWMutex
	onCreated []RecordCreatedHook
	onUpdated []RecordUpdatedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) onRecordCreated(fn RecordCreatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCreated = append(h.onCreated, fn)
}

func (h *hooks) onRecordUpdated(fn RecordUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUpdated = append(h.onUpdated, fn)
}

// fire walks the executed plan and invokes callbacks for every action
// that was applied. Failed and skipped actions fire nothing.
func (h *hooks) fire(result *syncer.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if result.Plan == nil || (len(h.onCreated) == 0 && len(h.onUpdated) == 0) {
		return
	}

	failed := make(map[string]struct{}, len(result.Errors))
	for _, actionErr := range result.Errors {
		failed[actionErr.Action.Paper.Key] = struct{}{}
	}

	for _, action := range result.Plan.Actions {
		if _, bad := failed[action.Paper.Key]; bad {
			continue
		}
		switch action.Type {
		case reconciler.ActionCreate:
			for _, fn := range h.onCreated {
				fn(action.Paper)
			}
		case reconciler.ActionUpdate:
			for _, fn := range h.onUpdated {
				fn(action.Paper, action.RecordID)
			}
		}
	}
}
