package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/palantir/angellist-enrichment-connector/internal/config"
	"github.com/palantir/angellist-enrichment-connector/internal/entity"
	"github.com/palantir/angellist-enrichment-connector/internal/input"
	"github.com/palantir/angellist-enrichment-connector/internal/pipeline"
	"github.com/palantir/angellist-enrichment-connector/pkg/foundry"
)

// RunFoundry reads the request table behind inputAlias and publishes one record per clue
// to the stream behind outputAlias.
func RunFoundry(
	ctx context.Context,
	cfg *config.Config,
	env foundry.Env,
	inputAlias string,
	outputAlias string,
	log *zap.Logger,
) (pipeline.Stats, error) {
	if log == nil {
		log = zap.NewNop()
	}
	runStart := time.Now()

	inputRef, err := env.Alias(inputAlias)
	if err != nil {
		return pipeline.Stats{}, err
	}
	outputRef, err := env.Alias(outputAlias)
	if err != nil {
		return pipeline.Stats{}, err
	}
	log = log.With(
		zap.String("input", inputRef.RID+"@"+inputRef.BranchOrDefault()),
		zap.String("output", outputRef.RID+"@"+outputRef.BranchOrDefault()),
	)
	log.Info("foundry run start",
		zap.Int("workers", cfg.Pipeline.Workers),
		zap.Int("max_depth", cfg.Pipeline.MaxDepth),
		zap.Bool("fail_fast", cfg.Pipeline.FailFast),
	)

	client, err := foundry.NewClient(env.Services.APIGateway, env.Services.StreamProxy, env.Token, env.DefaultCAPath)
	if err != nil {
		return pipeline.Stats{}, eris.Wrap(err, "foundry client")
	}

	var table []byte
	if err := retryFoundry(ctx, func() error {
		var err error
		table, err = client.ReadTableCSV(ctx, inputRef.RID, inputRef.Branch)
		return err
	}); err != nil {
		return pipeline.Stats{}, eris.Wrap(err, "read request table")
	}
	reqs, err := input.ReadRequestsCSV(bytes.NewReader(table))
	if err != nil {
		return pipeline.Stats{}, eris.Wrap(err, "parse request table")
	}
	log.Info("requests loaded", zap.Int("requests", len(reqs)))

	var isStream bool
	if err := retryFoundry(ctx, func() error {
		var err error
		isStream, err = client.ProbeStream(ctx, outputRef.RID, outputRef.Branch)
		return err
	}); err != nil {
		return pipeline.Stats{}, eris.Wrap(err, "probe output stream")
	}
	if !isStream {
		return pipeline.Stats{}, eris.Errorf("output %s is not a stream; clues are published as stream records", outputRef.RID)
	}

	p, err := NewProvider(cfg.Directory, log)
	if err != nil {
		return pipeline.Stats{}, err
	}

	published := 0
	st, err := pipeline.Run(ctx, providers(p), reqs, pipelineOptions(cfg.Pipeline, log), func(c entity.Clue) error {
		rec, err := StreamRecord(c)
		if err != nil {
			return err
		}
		if err := retryFoundry(ctx, func() error {
			return client.PublishStreamJSONRecord(ctx, outputRef.RID, outputRef.Branch, rec)
		}); err != nil {
			return eris.Wrapf(err, "publish clue %s", c.Code)
		}
		published++
		log.Debug("clue published", zap.String("code", c.Code.String()), zap.Int("published", published))
		return nil
	}, pipeline.LogImageFetcher{Logger: log})
	if err != nil {
		return st, err
	}

	logStats(log, "foundry run complete", st)
	log.Info("foundry run duration", zap.Duration("elapsed", time.Since(runStart).Round(time.Millisecond)))
	return st, nil
}

// StreamRecord flattens a clue into stream columns. Nested parts are JSON-encoded strings;
// empty values are null so nullable columns read as missing.
func StreamRecord(c entity.Clue) (map[string]any, error) {
	rec := map[string]any{
		"code":        c.Code.String(),
		"provider_id": c.ProviderID,
		"entity_type": string(c.Data.EntityType),
	}
	assignNullable(rec, "name", c.Data.Name)
	assignNullable(rec, "description", c.Data.Description)

	for key, v := range map[string]any{
		"properties":     c.Data.Properties,
		"tags":           c.Data.Tags,
		"outgoing_edges": c.Data.OutgoingEdges,
		"codes":          c.Data.Codes,
	} {
		if isEmpty(v) {
			rec[key] = nil
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		rec[key] = string(b)
	}
	return rec, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case map[string]string:
		return len(t) == 0
	case []entity.Tag:
		return len(t) == 0
	case []entity.Edge:
		return len(t) == 0
	case []entity.Code:
		return len(t) == 0
	}
	return v == nil
}

func assignNullable(dst map[string]any, key string, value string) {
	if value == "" {
		dst[key] = nil
		return
	}
	dst[key] = value
}
