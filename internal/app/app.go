// Package app wires configuration, the directory provider and the pipeline into the
// local, Foundry and compute-module job run modes.
package app

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/palantir/angellist-enrichment-connector/internal/config"
	"github.com/palantir/angellist-enrichment-connector/internal/credentials"
	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/internal/pipeline"
	"github.com/palantir/angellist-enrichment-connector/internal/provider"
	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

// UserAgent identifies the connector to the directory.
const UserAgent = "angellist-enrichment-connector"

// NewProvider builds the directory provider from configuration.
func NewProvider(d config.Directory, log *zap.Logger) (*provider.Provider, error) {
	rot, err := credentials.NewRotator(d.AccessTokens)
	if err != nil {
		return nil, eris.Wrap(err, "credential pool")
	}
	client, err := angellist.NewClient(d.BaseURL, rot, angellist.Options{
		Timeout:      d.Timeout,
		RateLimitRPS: d.RateLimitRPS,
		UserAgent:    UserAgent,
	})
	if err != nil {
		return nil, eris.Wrap(err, "directory client")
	}

	delay := d.PageDelay
	if delay == 0 {
		delay = -1
	}
	return provider.New(client, provider.Options{
		SkipRoles: !d.RolesEnabled,
		PageDelay: delay,
		Logger:    log,
	}), nil
}

func pipelineOptions(p config.Pipeline, log *zap.Logger) pipeline.Options {
	return pipeline.Options{
		Workers:        p.Workers,
		RequestTimeout: p.RequestTimeout,
		RateLimitRPS:   p.RateLimitRPS,
		FailFast:       p.FailFast,
		MaxDepth:       p.MaxDepth,
		Logger:         log,
	}
}

func providers(p *provider.Provider) []external.Provider {
	return []external.Provider{p}
}

func logStats(log *zap.Logger, msg string, st pipeline.Stats) {
	log.Info(msg,
		zap.String("run_id", st.RunID.String()),
		zap.Int("requests", st.Requests),
		zap.Int("queries", st.Queries),
		zap.Int("duplicate_queries", st.DuplicateQueries),
		zap.Int("failed", st.Failed),
		zap.Int("clues", st.Clues),
		zap.Int("follow_ups", st.FollowUps),
		zap.Int("images", st.ImagesScheduled),
	)
}
