package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palantir/angellist-enrichment-connector/internal/app"
	"github.com/palantir/angellist-enrichment-connector/pkg/foundry"
	"github.com/palantir/angellist-enrichment-connector/pkg/foundry/keepalive"
)

var foundryCmd = &cobra.Command{
	Use:   "foundry",
	Short: "Run as a Foundry compute module",
	Long: `Reads the request table behind --input-alias and publishes one record per clue to the
stream behind --output-alias. When GET_JOB_URI and POST_RESULT_URI are set the module then
keeps serving "enrich" jobs until it is stopped.

Environment:
  FOUNDRY_URL         Foundry base URL (or service discovery via FOUNDRY_SERVICE_DISCOVERY_V2)
  BUILD2_TOKEN        File path containing a bearer token
  RESOURCE_ALIAS_MAP  File path containing alias -> {rid, branch} JSON
  SOURCE_CREDENTIALS  Optional source secrets holding the directory token pool`,
	RunE: runFoundry,
}

var (
	foundryInputAlias  string
	foundryOutputAlias string
	foundryJobsOnly    bool
)

func init() {
	foundryCmd.Flags().StringVar(&foundryInputAlias, "input-alias", "input", "Alias name for the input dataset in RESOURCE_ALIAS_MAP")
	foundryCmd.Flags().StringVar(&foundryOutputAlias, "output-alias", "output", "Alias name for the output stream in RESOURCE_ALIAS_MAP")
	foundryCmd.Flags().BoolVar(&foundryJobsOnly, "jobs-only", false, "Skip the table run and only serve compute-module jobs")

	rootCmd.AddCommand(foundryCmd)
}

func runFoundry(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	jobs, serveJobs, err := keepalive.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("compute module env: %w", err)
	}
	if foundryJobsOnly && !serveJobs {
		return errors.New("--jobs-only requires GET_JOB_URI and POST_RESULT_URI")
	}

	if !foundryJobsOnly {
		env, err := foundry.LoadEnv()
		if err != nil {
			return fmt.Errorf("foundry env: %w", err)
		}
		if _, err := app.RunFoundry(ctx, cfg, env, foundryInputAlias, foundryOutputAlias, log); err != nil {
			return fmt.Errorf("foundry run failed: %w", err)
		}
	}
	if !serveJobs {
		return nil
	}

	handle, err := app.NewJobHandler(cfg, log)
	if err != nil {
		return err
	}
	jobs.Logger = log.Named("jobs")
	log.Info("serving compute module jobs", zap.String("query_type", app.QueryTypeEnrich))
	if err := keepalive.RunLoop(ctx, jobs, handle); err != nil && ctx.Err() == nil {
		return fmt.Errorf("job loop: %w", err)
	}
	return nil
}
