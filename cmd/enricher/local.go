package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/palantir/angellist-enrichment-connector/internal/app"
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Enrich requests from a local CSV file",
	Long: `Reads one request per CSV row (entity_type, name, aliases, identifiers and the optional
role_startup_id, role_startup_name, role_title columns) and writes one JSON clue per line.`,
	Example: "  enricher local --input requests.csv --output clues.jsonl",
	RunE:    runLocal,
}

var (
	localInput  string
	localOutput string
)

func init() {
	localCmd.Flags().StringVarP(&localInput, "input", "i", "", "Input CSV file path")
	localCmd.Flags().StringVarP(&localOutput, "output", "o", "-", "Output JSON Lines path, '-' for stdout")
	_ = localCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(localCmd)
}

func runLocal(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if _, err := app.RunLocal(cmd.Context(), cfg, localInput, localOutput, log); err != nil {
		return fmt.Errorf("local run failed: %w", err)
	}
	return nil
}
