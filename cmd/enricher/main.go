// Command enricher resolves organizations and people against the AngelList directory and
// emits entity clues, either locally or as a Foundry compute module.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palantir/angellist-enrichment-connector/internal/config"
	"github.com/palantir/angellist-enrichment-connector/internal/logging"
	"github.com/palantir/angellist-enrichment-connector/internal/redact"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "enricher",
	Short: "AngelList entity enrichment connector",
	Long: `enricher looks up organizations and people in the AngelList directory and emits
one clue per resolved entity, following startup roles to the people behind them.

Directory access tokens come from access_tokens / access_tokens_file in the config file,
ANGELLIST_ACCESS_TOKENS / ANGELLIST_ACCESS_TOKENS_FILE, or the Foundry source named by
source_api_name when SOURCE_CREDENTIALS is set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("ENRICHER_CONFIG"), "Path to a YAML config file (env: ENRICHER_CONFIG)")
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", redact.Error(err))
		os.Exit(1)
	}
}

// setup loads configuration and installs the process logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(log)
	return cfg, log, nil
}
