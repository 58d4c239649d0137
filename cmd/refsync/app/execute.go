package app

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfmark/refsync/internal/config"
	"github.com/shelfmark/refsync/pkg/logging"
)

// Execute runs the refsync CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "refsync",
		Short:   "Sync a Zotero library into a Notion database",
		Version: a.version,
		Long: `Refsync mirrors the papers of a Zotero group library into a Notion
database, one page per paper. Sync is one-directional: refsync owns the
bibliographic columns it writes and never touches anything a human added
to a page.

Credentials come from REFSYNC_* environment variables, a .env file, or a
.refsync.yaml config file (see "refsync config init").`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default is .refsync.yaml, then $HOME/.refsync.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: auto, json, console")

	rootCmd.SetVersionTemplate("refsync {{.Version}}\n")

	rootCmd.AddCommand(a.newSyncCommand())
	rootCmd.AddCommand(a.newConfigCommand())
	rootCmd.AddCommand(a.newVersionCommand())

	return rootCmd
}

// setupCommand runs before any command: it loads configuration and
// configures the logger. Credential validation is left to the commands
// that need credentials.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.config = cfg

	level := cfg.Log.Level
	if mustGetBool(cmd, "quiet") {
		level = "warn"
	}
	if mustGetBool(cmd, "verbose") {
		level = "debug"
	}
	if flagLevel := mustGetString(cmd, "log-level"); flagLevel != "" {
		level = flagLevel
	}
	format := cfg.Log.Format
	if flagFormat := mustGetString(cmd, "log-format"); flagFormat != "" {
		format = flagFormat
	}

	logging.Configure(&logging.Config{
		Level:  level,
		Format: format,
		Output: "stderr",
	})
	a.logger = logging.Default()
	return nil
}

// ExitOnError prints the error to stderr and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag
// doesn't exist. Only for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag
// doesn't exist. Only for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
