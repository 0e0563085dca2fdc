package main

import (
	"github.com/spf13/cobra"

	catalogcmd "github.com/goliatone/go-annocat/internal/commands/catalog"
)

var (
	importDryRun   bool
	importCategory string
)

var importCmd = &cobra.Command{
	Use:   "import [directory]",
	Short: "Import annotation notes into the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, set, err := newModule()
		if err != nil {
			return err
		}
		defer cli.Close()

		return set.Import.Execute(cmd.Context(), catalogcmd.ImportNotesCommand{
			Directory:       noteDirectory(args, cli.cfg),
			DefaultCategory: importCategory,
			DryRun:          importDryRun,
		})
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "collect the import diff without persisting changes")
	importCmd.Flags().StringVar(&importCategory, "category", "", "default category for entries without a heading")
	rootCmd.AddCommand(importCmd)
}
