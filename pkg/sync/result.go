package sync

import (
	"fmt"
	gosync "sync"
	"time"

	"github.com/shelfmark/refsync/pkg/reconciler"
)

// ActionError pairs a failed action with its cause.
type ActionError struct {
	Action reconciler.Action
	Err    error
}

// Error implements the error interface.
func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *ActionError) Unwrap() error {
	return e.Err
}

// Result represents the outcome of one synchronization run.
type Result struct {
	// Plan is the reconciliation output the run executed (or would have,
	// under dry run). Its Warnings include index-building findings.
	Plan *reconciler.Result

	// Counters for applied actions.
	Created int
	Updated int
	Skipped int
	Failed  int

	// Errors holds one entry per failed action.
	Errors []*ActionError

	// ItemErrors holds the malformed source items that were skipped.
	ItemErrors []error

	// Snapshot sizes.
	SourceCount int
	TargetCount int

	// DryRun marks a run that planned but did not write.
	DryRun bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	mu gosync.Mutex
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{StartTime: time.Now()}
}

// IsSuccess returns true if no action failed.
func (r *Result) IsSuccess() bool {
	return r.Failed == 0
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	if r.DryRun {
		if r.Plan != nil {
			return fmt.Sprintf("Dry run: %s", r.Plan.Summary())
		}
		return "Dry run: nothing to do"
	}
	s := fmt.Sprintf("Created %d, updated %d, skipped %d record(s)", r.Created, r.Updated, r.Skipped)
	if r.Failed > 0 {
		s += fmt.Sprintf(", %d action(s) failed", r.Failed)
	}
	return s
}

func (r *Result) created() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Created++
}

func (r *Result) updated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Updated++
}

func (r *Result) skipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped++
}

func (r *Result) fail(action reconciler.Action, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed++
	r.Errors = append(r.Errors, &ActionError{Action: action, Err: err})
}

func (r *Result) failed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Failed
}
