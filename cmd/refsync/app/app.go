// Package app provides the application context for the refsync CLI.
// It centralizes configuration loading, logging setup, and store
// construction so commands stay thin.
package app

import (
	"github.com/rs/zerolog"

	"github.com/shelfmark/refsync/internal/config"
	"github.com/shelfmark/refsync/internal/notion"
	"github.com/shelfmark/refsync/internal/zotero"
	"github.com/shelfmark/refsync/pkg/logging"
	"github.com/shelfmark/refsync/pkg/stores"
)

// App represents the refsync application with all its dependencies.
type App struct {
	version string
	commit  string
	date    string

	configFile string
	config     *config.Config

	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
// Configuration is loaded lazily in setupCommand so the --config flag
// has been parsed by then.
func New(version, commit, date string) (*App, error) {
	logger := logging.Default()
	return &App{
		version: version,
		commit:  commit,
		date:    date,
		logger:  logger,
	}, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Config returns the loaded application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Source builds the Zotero source adapter from configuration.
func (a *App) Source() stores.Source {
	return zotero.NewClient(zotero.Config{
		Token:   a.config.Zotero.Token,
		GroupID: a.config.Zotero.GroupID,
		BaseURL: a.config.Zotero.BaseURL,
	})
}

// Target builds the Notion target adapter from configuration.
func (a *App) Target() stores.Target {
	return notion.NewClient(notion.Config{
		Token:      a.config.Notion.Token,
		DatabaseID: a.config.Notion.DatabaseID,
		BaseURL:    a.config.Notion.BaseURL,
	})
}
