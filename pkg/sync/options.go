package sync

import (
	"time"

	"github.com/shelfmark/refsync/pkg/constants"
	"github.com/shelfmark/refsync/pkg/errors"
	"github.com/shelfmark/refsync/pkg/papers"
	"github.com/shelfmark/refsync/pkg/reconciler"
)

// Options controls the overall run orchestration in Syncer.Run().
type Options struct {
	// Orchestration control
	DryRun   bool          // Plan without applying anything
	FailFast bool          // Stop on first failed action instead of continuing
	Timeout  time.Duration // Timeout for the entire run (0 means none)

	// Executor behavior
	Concurrency int  // Worker count for applying actions (1 means sequential)
	LinkBack    bool // Write back-reference notes after creates

	// Reconciliation behavior
	SkipUnchanged  bool              // Skip linked records whose source-owned fields already match
	Mapper         reconciler.Mapper // Field mapper; defaults to the paper schema mapper
	TargetDefaults papers.Properties // Seed values for human columns, creation only
}

// Apply applies the given options to the run options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	if o.Mapper == nil {
		o.Mapper = reconciler.NewMapper(o.TargetDefaults)
	}
	return o
}

// Defaults returns the default run options.
func Defaults() *Options {
	return &Options{
		DryRun:      false,
		FailFast:    false,
		Timeout:     constants.DefaultRunTimeout,
		Concurrency: 1,
		LinkBack:    true,
	}
}

// Validate checks if the run options are valid.
func (o *Options) Validate() error {
	if o.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   o.Timeout,
			Message: "timeout must be non-negative",
		}
	}
	if o.Concurrency < 1 || o.Concurrency > constants.MaxConcurrency {
		return &errors.ValidationError{
			Field:   "Concurrency",
			Value:   o.Concurrency,
			Message: "concurrency must be between 1 and the pool cap",
		}
	}
	return nil
}

// Option is a function that configures run Options.
type Option func(*Options)

// WithDryRun plans the run without writing to either store.
func WithDryRun(enabled bool) Option {
	return func(o *Options) { o.DryRun = enabled }
}

// WithFailFast stops the executor at the first failed action.
func WithFailFast(enabled bool) Option {
	return func(o *Options) { o.FailFast = enabled }
}

// WithTimeout bounds the whole run.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithConcurrency sets the executor worker count.
func WithConcurrency(n int) Option {
	return func(o *Options) { o.Concurrency = n }
}

// WithLinkBack toggles best-effort back-reference notes on creation.
func WithLinkBack(enabled bool) Option {
	return func(o *Options) { o.LinkBack = enabled }
}

// WithSkipUnchanged skips updates whose source-owned values already match.
func WithSkipUnchanged(enabled bool) Option {
	return func(o *Options) { o.SkipUnchanged = enabled }
}

// WithMapper overrides the field mapper.
func WithMapper(m reconciler.Mapper) Option {
	return func(o *Options) { o.Mapper = m }
}

// WithTargetDefaults seeds human-owned columns at creation time. Ignored
// when a custom mapper is supplied.
func WithTargetDefaults(defaults papers.Properties) Option {
	return func(o *Options) { o.TargetDefaults = defaults }
}
