package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	annocat "github.com/goliatone/go-annocat"
	catalogcmd "github.com/goliatone/go-annocat/internal/commands/catalog"
	"github.com/goliatone/go-annocat/internal/watch"
)

var errGeneratorDisabled = errors.New("generator feature is disabled; enable it in annocat.yml")

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the site whenever notes change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, set, err := newModule()
		if err != nil {
			return err
		}
		defer cli.Close()

		if set.Build == nil {
			return errGeneratorDisabled
		}

		rebuild := func(ctx context.Context, event watch.Event) error {
			if len(event.Paths) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) changed, rebuilding\n", len(event.Paths))
			}

			err := set.Sync.Execute(ctx, catalogcmd.SyncNotesCommand{
				Directory:      cli.cfg.Notes.ContentDir,
				UpdateExisting: true,
				DeleteOrphaned: true,
			})
			if err != nil {
				return err
			}
			return set.Build.Execute(ctx, catalogcmd.BuildSiteCommand{})
		}

		watcher, err := cli.module.NewWatcher(rebuild)
		if err != nil {
			if errors.Is(err, annocat.ErrWatchFeatureDisabled) {
				return errors.New("watch feature is disabled; enable it in annocat.yml")
			}
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Prime the site so the first change diff has a baseline.
		if err := rebuild(ctx, watch.Event{}); err != nil {
			return err
		}

		return watcher.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
