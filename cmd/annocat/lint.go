package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	catalogcmd "github.com/goliatone/go-annocat/internal/commands/catalog"
	"github.com/goliatone/go-annocat/internal/lint"
)

var lintFailOn string

var lintCmd = &cobra.Command{
	Use:   "lint [directory]",
	Short: "Check documentation quality across notes and catalog",
	Long: `Lint reports indexed names without entries, annotations missing
descriptions or examples, code fences without a language, and conflicting
duplicate descriptions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var report *lint.Report
		cli, set, err := newModule(catalogcmd.WithReportSink(func(_ context.Context, r *lint.Report) {
			report = r
		}))
		if err != nil {
			return err
		}
		defer cli.Close()

		if set.Lint == nil {
			return fmt.Errorf("lint feature is disabled; enable it in %s", defaultConfigFile)
		}

		failOn := lintFailOn
		if failOn == "" {
			failOn = cli.cfg.Lint.FailOn
		}

		// The memory driver starts empty each invocation, so catalog-backed
		// rules need the notes folded in first.
		if driver := cli.cfg.Storage.Driver; driver == "" || driver == "memory" {
			err := set.Import.Execute(cmd.Context(), catalogcmd.ImportNotesCommand{
				Directory:       noteDirectory(args, cli.cfg),
				DefaultCategory: cli.cfg.Notes.DefaultCategory,
			})
			if err != nil {
				return err
			}
		}

		execErr := set.Lint.Execute(cmd.Context(), catalogcmd.LintNotesCommand{
			Directory: noteDirectory(args, cli.cfg),
			FailOn:    failOn,
		})

		printReport(cmd, report)
		return execErr
	},
}

func printReport(cmd *cobra.Command, report *lint.Report) {
	if report == nil {
		return
	}
	out := cmd.OutOrStdout()
	for _, issue := range report.Issues {
		location := issue.Path
		if issue.Line > 0 {
			location = fmt.Sprintf("%s:%d", issue.Path, issue.Line)
		}
		if location == "" {
			fmt.Fprintf(out, "%s [%s] %s\n", issue.Severity, issue.Rule, issue.Message)
			continue
		}
		fmt.Fprintf(out, "%s %s [%s] %s\n", issue.Severity, location, issue.Rule, issue.Message)
	}
	fmt.Fprintf(out, "%d issues (%d errors, %d warnings)\n", len(report.Issues), report.Errors, report.Warnings)
}

func init() {
	lintCmd.Flags().StringVar(&lintFailOn, "fail-on", "", "severity threshold that fails the run: error, warning, or none")
	rootCmd.AddCommand(lintCmd)
}
