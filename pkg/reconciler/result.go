package reconciler

import (
	"fmt"
	"time"
)

// Result represents the outcome of a reconciliation pass.
type Result struct {
	// Actions in source snapshot order.
	Actions []Action

	// Warnings surfaced during index building or reconciliation.
	Warnings []Warning

	// Stats about the plan.
	Stats Statistics

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Statistics counts the plan by action type.
type Statistics struct {
	Creates int
	Updates int
	Skips   int
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Actions:   []Action{},
		Warnings:  []Warning{},
		StartTime: time.Now(),
	}
}

// Append records an action and bumps its counter.
func (r *Result) Append(action Action) {
	r.Actions = append(r.Actions, action)
	switch action.Type {
	case ActionCreate:
		r.Stats.Creates++
	case ActionUpdate:
		r.Stats.Updates++
	case ActionSkip:
		r.Stats.Skips++
	}
}

// Warn records a non-fatal finding.
func (r *Result) Warn(warning Warning) {
	r.Warnings = append(r.Warnings, warning)
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Summary returns a human-readable summary of the plan.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d create(s), %d update(s), %d skip(s), %d warning(s)",
		r.Stats.Creates, r.Stats.Updates, r.Stats.Skips, len(r.Warnings))
}
