package app

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/palantir/angellist-enrichment-connector/internal/config"
	"github.com/palantir/angellist-enrichment-connector/internal/input"
	"github.com/palantir/angellist-enrichment-connector/internal/pipeline"
	"github.com/palantir/angellist-enrichment-connector/pkg/foundry/keepalive"
)

// QueryTypeEnrich is the job query type handled by the connector.
const QueryTypeEnrich = "enrich"

// NewJobHandler returns a keepalive handler that runs one enrichment per job. The job
// query is an input.JobPayload and the result is the clues as JSON Lines.
func NewJobHandler(cfg *config.Config, log *zap.Logger) (keepalive.Handler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p, err := NewProvider(cfg.Directory, log)
	if err != nil {
		return nil, err
	}
	opts := pipelineOptions(cfg.Pipeline, log)

	return func(ctx context.Context, job keepalive.Job) ([]byte, error) {
		if job.QueryType != "" && job.QueryType != QueryTypeEnrich {
			return nil, fmt.Errorf("unsupported query type %q", job.QueryType)
		}
		reqs, err := input.ReadRequestsJSON(bytes.NewReader(job.Query))
		if err != nil {
			return nil, eris.Wrapf(err, "job %s", job.JobID)
		}

		var buf bytes.Buffer
		st, err := WriteClues(ctx, &buf, providers(p), reqs, opts, pipeline.LogImageFetcher{Logger: log})
		if err != nil {
			return nil, eris.Wrapf(err, "job %s", job.JobID)
		}
		logStats(log.With(zap.String("job_id", job.JobID)), "job complete", st)
		return buf.Bytes(), nil
	}, nil
}
