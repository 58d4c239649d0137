package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfmark/refsync/internal/config"
	"github.com/shelfmark/refsync/pkg/logging"
	"github.com/shelfmark/refsync/pkg/sync"
)

// newSyncCommand creates the sync command, the tool's main operation.
func (a *App) newSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization pass",
		Long: `Sync snapshots the Zotero library and the Notion database, plans the
creates and updates needed to bring the database up to date, and applies
them. Pages are matched to papers through the back-reference note refsync
leaves in Zotero, so re-running after an interruption never duplicates a
page.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.config.Validate(); err != nil {
				return err
			}
			return a.runSync(cmd)
		},
	}

	cmd.Flags().Bool("dry-run", false, "plan the run and print it without writing")
	cmd.Flags().Bool("fail-fast", false, "stop at the first failed write")
	cmd.Flags().Bool("skip-unchanged", false, "skip records whose synced columns already match")
	cmd.Flags().Bool("no-link-back", false, "do not leave back-reference notes in Zotero")
	cmd.Flags().Duration("timeout", 0, "overall run deadline (default from config)")
	cmd.Flags().IntP("concurrency", "c", 0, "parallel write workers (default from config)")

	return cmd
}

func (a *App) runSync(cmd *cobra.Command) error {
	cfg := a.config.Sync

	opts := []sync.Option{
		sync.WithDryRun(cfg.DryRun || mustGetBool(cmd, "dry-run")),
		sync.WithFailFast(cfg.FailFast || mustGetBool(cmd, "fail-fast")),
		sync.WithSkipUnchanged(cfg.SkipUnchanged || mustGetBool(cmd, "skip-unchanged")),
		sync.WithLinkBack(cfg.LinkBack && !mustGetBool(cmd, "no-link-back")),
		sync.WithTimeout(cfg.Timeout),
		sync.WithConcurrency(cfg.Concurrency),
	}
	if d := mustGetDuration(cmd, "timeout"); d > 0 {
		opts = append(opts, sync.WithTimeout(d))
	}
	if n := mustGetInt(cmd, "concurrency"); n > 0 {
		opts = append(opts, sync.WithConcurrency(n))
	}

	syncer, err := sync.New(a.Source(), a.Target(), opts...)
	if err != nil {
		return err
	}

	ctx := logging.WithLogger(cmd.Context(), a.logger)
	result, err := syncer.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
	for _, w := range result.Plan.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w.String())
	}
	if !result.IsSuccess() {
		return fmt.Errorf("%d action(s) failed", result.Failed)
	}
	return nil
}

// newConfigCommand creates the config command group.
func (a *App) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage refsync configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .refsync.yaml in the current directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := mustGetString(cmd, "file")
			if err := config.WriteExample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().String("file", ".refsync.yaml", "path to write the starter config to")

	cmd.AddCommand(initCmd)
	return cmd
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "refsync %s (commit %s, built %s)\n", a.version, a.commit, a.date)
		},
	}
}
