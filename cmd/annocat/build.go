package main

import (
	"github.com/spf13/cobra"

	catalogcmd "github.com/goliatone/go-annocat/internal/commands/catalog"
)

var (
	buildCategories []string
	buildDryRun     bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the static reference site and JSON export",
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

		// The memory driver starts empty each invocation; fold the notes in
		// before rendering.
		if driver := cli.cfg.Storage.Driver; driver == "" || driver == "memory" {
			err := set.Import.Execute(cmd.Context(), catalogcmd.ImportNotesCommand{
				Directory:       cli.cfg.Notes.ContentDir,
				DefaultCategory: cli.cfg.Notes.DefaultCategory,
			})
			if err != nil {
				return err
			}
		}

		return set.Build.Execute(cmd.Context(), catalogcmd.BuildSiteCommand{
			Categories: buildCategories,
			DryRun:     buildDryRun,
		})
	},
}

func init() {
	buildCmd.Flags().StringSliceVar(&buildCategories, "category", nil, "restrict the build to the named category slugs")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "render pages without writing output")
	rootCmd.AddCommand(buildCmd)
}
