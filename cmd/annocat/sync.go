package main

import (
	"github.com/spf13/cobra"

	catalogcmd "github.com/goliatone/go-annocat/internal/commands/catalog"
)

var (
	syncDryRun         bool
	syncDeleteOrphaned bool
	syncUpdateExisting bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [directory]",
	Short: "Synchronise the catalog with the notes directory",
	Long: `Sync imports changed notes, optionally updates records whose source
content changed, and removes catalog entries whose note files vanished.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, set, err := newModule()
		if err != nil {
			return err
		}
		defer cli.Close()

		return set.Sync.Execute(cmd.Context(), catalogcmd.SyncNotesCommand{
			Directory:      noteDirectory(args, cli.cfg),
			DryRun:         syncDryRun,
			DeleteOrphaned: syncDeleteOrphaned,
			UpdateExisting: syncUpdateExisting,
		})
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report planned changes without persisting them")
	syncCmd.Flags().BoolVar(&syncDeleteOrphaned, "delete-orphaned", false, "delete catalog entries whose source files vanished")
	syncCmd.Flags().BoolVar(&syncUpdateExisting, "update-existing", true, "update records whose note content changed")
	rootCmd.AddCommand(syncCmd)
}
