package refsync

import (
	"github.com/shelfmark/refsync/internal/config"
	"github.com/shelfmark/refsync/internal/notion"
	"github.com/shelfmark/refsync/internal/zotero"
	"github.com/shelfmark/refsync/pkg/errors"
	"github.com/shelfmark/refsync/pkg/stores"
	syncer "github.com/shelfmark/refsync/pkg/sync"
)

// Option is a function that configures a Refsync instance.
type Option func(*refsync) error

// WithSource sets the source store.
func WithSource(source stores.Source) Option {
	return func(r *refsync) error {
		if source == nil {
			return &errors.ValidationError{Field: "source", Message: "cannot be nil"}
		}
		r.source = source
		return nil
	}
}

// WithTarget sets the target store.
func WithTarget(target stores.Target) Option {
	return func(r *refsync) error {
		if target == nil {
			return &errors.ValidationError{Field: "target", Message: "cannot be nil"}
		}
		r.target = target
		return nil
	}
}

// WithSyncOptions sets options forwarded to every run.
func WithSyncOptions(opts ...syncer.Option) Option {
	return func(r *refsync) error {
		r.syncOpts = append(r.syncOpts, opts...)
		return nil
	}
}

// WithConfig builds both store adapters and run options from loaded
// configuration. Later options can still override either store.
func WithConfig(cfg *config.Config) Option {
	return func(r *refsync) error {
		if cfg == nil {
			return &errors.ValidationError{Field: "config", Message: "cannot be nil"}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		r.source = zotero.NewClient(zotero.Config{
			Token:   cfg.Zotero.Token,
			GroupID: cfg.Zotero.GroupID,
			BaseURL: cfg.Zotero.BaseURL,
		})
		r.target = notion.NewClient(notion.Config{
			Token:      cfg.Notion.Token,
			DatabaseID: cfg.Notion.DatabaseID,
			BaseURL:    cfg.Notion.BaseURL,
		})
		r.syncOpts = append(r.syncOpts,
			syncer.WithDryRun(cfg.Sync.DryRun),
			syncer.WithFailFast(cfg.Sync.FailFast),
			syncer.WithSkipUnchanged(cfg.Sync.SkipUnchanged),
			syncer.WithLinkBack(cfg.Sync.LinkBack),
			syncer.WithTimeout(cfg.Sync.Timeout),
			syncer.WithConcurrency(cfg.Sync.Concurrency),
		)
		return nil
	}
}
