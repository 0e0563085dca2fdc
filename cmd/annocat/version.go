package main

import (
	"fmt"

	"github.com/spf13/cobra"

	annocat "github.com/goliatone/go-annocat"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the annocat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "annocat version %s\n", annocat.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
