package app

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/palantir/angellist-enrichment-connector/internal/config"
	"github.com/palantir/angellist-enrichment-connector/internal/entity"
	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/internal/input"
	"github.com/palantir/angellist-enrichment-connector/internal/pipeline"
)

// RunLocal reads requests from a CSV file and writes clues as JSON Lines to outputPath
// ("-" writes to stdout).
func RunLocal(ctx context.Context, cfg *config.Config, inputPath, outputPath string, log *zap.Logger) (pipeline.Stats, error) {
	if log == nil {
		log = zap.NewNop()
	}

	inF, err := os.Open(inputPath)
	if err != nil {
		return pipeline.Stats{}, eris.Wrapf(err, "open input %s", inputPath)
	}
	defer func() {
		_ = inF.Close()
	}()
	reqs, err := input.ReadRequestsCSV(inF)
	if err != nil {
		return pipeline.Stats{}, eris.Wrapf(err, "read requests from %s", inputPath)
	}
	log.Info("local run: requests loaded", zap.Int("requests", len(reqs)), zap.String("input", inputPath))

	p, err := NewProvider(cfg.Directory, log)
	if err != nil {
		return pipeline.Stats{}, err
	}

	var out io.Writer = os.Stdout
	var outF *os.File
	if outputPath != "-" {
		if outF, err = os.Create(outputPath); err != nil {
			return pipeline.Stats{}, eris.Wrapf(err, "create output %s", outputPath)
		}
		defer func() {
			_ = outF.Close()
		}()
		out = outF
	}

	st, err := WriteClues(ctx, out, providers(p), reqs, pipelineOptions(cfg.Pipeline, log), pipeline.LogImageFetcher{Logger: log})
	if err != nil {
		return st, err
	}
	if outF != nil {
		if err := outF.Close(); err != nil {
			return st, eris.Wrapf(err, "close output %s", outputPath)
		}
	}
	logStats(log, "local run complete", st)
	return st, nil
}

// WriteClues runs the pipeline and encodes every clue as one JSON line on w. The
// pipeline and the writer run concurrently; a write failure cancels the run.
func WriteClues(
	ctx context.Context,
	w io.Writer,
	provs []external.Provider,
	reqs []external.Request,
	opts pipeline.Options,
	images pipeline.ImageFetcher,
) (pipeline.Stats, error) {
	clues := make(chan entity.Clue, 64)
	g, gctx := errgroup.WithContext(ctx)

	var st pipeline.Stats
	g.Go(func() error {
		defer close(clues)
		var err error
		st, err = pipeline.Run(gctx, provs, reqs, opts, func(c entity.Clue) error {
			select {
			case clues <- c:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		}, images)
		return err
	})
	g.Go(func() error {
		bw := bufio.NewWriter(w)
		enc := json.NewEncoder(bw)
		for c := range clues {
			if err := enc.Encode(c); err != nil {
				return eris.Wrap(err, "write clue")
			}
		}
		if err := bw.Flush(); err != nil {
			return eris.Wrap(err, "flush clues")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return st, err
	}
	return st, nil
}
