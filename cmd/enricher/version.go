package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/palantir/angellist-enrichment-connector/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the connector version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Current)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
