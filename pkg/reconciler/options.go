package reconciler

import "github.com/shelfmark/refsync/pkg/errors"

// options configures a reconciler.
type options struct {
	mapper        Mapper
	skipUnchanged bool
}

func defaultOptions() *options {
	return &options{
		mapper: NewMapper(nil),
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithMapper sets the field mapper used to project papers.
func WithMapper(mapper Mapper) Option {
	return func(o *options) error {
		if mapper == nil {
			return &errors.ValidationError{
				Field:   "mapper",
				Message: "cannot be nil",
			}
		}
		o.mapper = mapper
		return nil
	}
}

// WithSkipUnchanged makes the reconciler emit a skip instead of an update
// when a linked record's source-owned properties already match the paper.
// Off by default: an update of identical values is a harmless no-op patch.
func WithSkipUnchanged(enabled bool) Option {
	return func(o *options) error {
		o.skipUnchanged = enabled
		return nil
	}
}
