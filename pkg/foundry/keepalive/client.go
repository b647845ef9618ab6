// Package keepalive serves compute-module jobs: it polls the runtime for the next job,
// runs it and posts the result back. The runtime treats a module that stops polling as
// dead, so the loop only ends with its context.
package keepalive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/palantir/angellist-enrichment-connector/internal/redact"
	"github.com/palantir/angellist-enrichment-connector/pkg/foundry"
)

// Job is one compute-module job.
type Job struct {
	JobID     string          `json:"jobId"`
	QueryType string          `json:"queryType"`
	Query     json.RawMessage `json:"query"`
}

// Handler runs one job and returns its result body.
type Handler func(ctx context.Context, job Job) ([]byte, error)

type Config struct {
	GetJobURI       string
	PostResultURI   string
	ModuleAuthToken string
	DefaultCAPath   string

	// IdleWait is the pause after an empty poll (default 500ms). Failed polls back off
	// from IdleWait up to MaxBackoff (default 5s).
	IdleWait   time.Duration
	MaxBackoff time.Duration
	// PostAttempts bounds result delivery (default 6).
	PostAttempts int

	// HTTPClient replaces the client built from DefaultCAPath.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// LoadConfigFromEnv reads GET_JOB_URI, POST_RESULT_URI, MODULE_AUTH_TOKEN (value or file
// path) and DEFAULT_CA_PATH. ok is false when the job endpoints are not set.
func LoadConfigFromEnv() (cfg Config, ok bool, err error) {
	if cfg.GetJobURI, err = loopbackURI(os.Getenv("GET_JOB_URI")); err != nil {
		return Config{}, false, fmt.Errorf("GET_JOB_URI: %w", err)
	}
	if cfg.PostResultURI, err = loopbackURI(os.Getenv("POST_RESULT_URI")); err != nil {
		return Config{}, false, fmt.Errorf("POST_RESULT_URI: %w", err)
	}
	if cfg.GetJobURI == "" || cfg.PostResultURI == "" {
		return Config{}, false, nil
	}

	cfg.ModuleAuthToken = strings.TrimSpace(os.Getenv("MODULE_AUTH_TOKEN"))
	if cfg.ModuleAuthToken != "" {
		if b, rerr := os.ReadFile(cfg.ModuleAuthToken); rerr == nil {
			cfg.ModuleAuthToken = strings.TrimSpace(string(b))
		}
	}
	cfg.DefaultCAPath = strings.TrimSpace(os.Getenv("DEFAULT_CA_PATH"))

	switch {
	case cfg.ModuleAuthToken == "":
		return Config{}, false, fmt.Errorf("MODULE_AUTH_TOKEN is required with GET_JOB_URI")
	case cfg.DefaultCAPath == "":
		return Config{}, false, fmt.Errorf("DEFAULT_CA_PATH is required with GET_JOB_URI")
	}
	return cfg, true, nil
}

// loopbackURI rewrites localhost to 127.0.0.1; the runtime sidecar listens on IPv4 only.
func loopbackURI(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if h := u.Hostname(); h == "localhost" || h == "::1" {
		u.Host = "127.0.0.1"
		if p := u.Port(); p != "" {
			u.Host += ":" + p
		}
	}
	return u.String(), nil
}

type poller struct {
	cfg Config
	hc  *http.Client
	log *zap.Logger
}

// RunLoop serves jobs until ctx is done. It returns early only when the HTTP client
// cannot be built.
func RunLoop(ctx context.Context, cfg Config, handle Handler) error {
	p := poller{cfg: cfg, hc: cfg.HTTPClient, log: cfg.Logger}
	if p.cfg.IdleWait <= 0 {
		p.cfg.IdleWait = 500 * time.Millisecond
	}
	if p.cfg.MaxBackoff <= 0 {
		p.cfg.MaxBackoff = 5 * time.Second
	}
	if p.cfg.PostAttempts <= 0 {
		p.cfg.PostAttempts = 6
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.hc == nil {
		hc, err := foundry.NewTLSClient(cfg.DefaultCAPath, 30*time.Second)
		if err != nil {
			return err
		}
		p.hc = hc
	}

	p.log.Info("keepalive: polling for jobs", zap.String("get_job_uri", p.cfg.GetJobURI))
	wait := p.cfg.IdleWait
	for ctx.Err() == nil {
		job, found, err := p.next(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			p.log.Warn("keepalive: get job failed", zap.String("error", redact.Error(err)))
			wait = min(wait*2, p.cfg.MaxBackoff)
		case err != nil:
		case !found:
			wait = p.cfg.IdleWait
		default:
			wait = p.cfg.IdleWait
			p.serve(ctx, job, handle)
			continue
		}
		pause(ctx, wait)
	}
	return ctx.Err()
}

func (p poller) next(ctx context.Context) (Job, bool, error) {
	status, body, err := p.call(ctx, http.MethodGet, p.cfg.GetJobURI, nil)
	if err != nil || status == http.StatusNoContent {
		return Job{}, false, err
	}
	var envelope struct {
		Job Job `json:"computeModuleJobV1"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Job{}, false, fmt.Errorf("decode job: %w", err)
	}
	return envelope.Job, true, nil
}

func (p poller) serve(ctx context.Context, job Job, handle Handler) {
	id := strings.TrimSpace(job.JobID)
	if id == "" {
		p.log.Warn("keepalive: job without jobId skipped")
		return
	}
	log := p.log.With(zap.String("job_id", id))
	log.Info("keepalive: job received", zap.String("query_type", job.QueryType))

	result, err := handle(ctx, job)
	switch {
	case err != nil:
		log.Warn("keepalive: job failed", zap.String("error", redact.Error(err)))
		if len(result) == 0 {
			result = []byte(redact.Error(err))
		}
	case len(result) == 0:
		result = []byte("ok")
	}

	target := strings.TrimRight(p.cfg.PostResultURI, "/") + "/" + url.PathEscape(id)
	for attempt := 1; attempt <= p.cfg.PostAttempts; attempt++ {
		if _, _, err = p.call(ctx, http.MethodPost, target, result); err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		log.Warn("keepalive: post result failed", zap.Int("attempt", attempt), zap.String("error", redact.Error(err)))
		pause(ctx, time.Duration(attempt)*time.Second)
	}
	log.Error("keepalive: result not delivered", zap.String("error", redact.Error(err)))
}

// call returns the status and body of a 2xx response, or an error.
func (p poller) call(ctx context.Context, method, target string, body []byte) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Module-Auth-Token", p.cfg.ModuleAuthToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := p.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	if resp.StatusCode/100 != 2 {
		return resp.StatusCode, nil, fmt.Errorf("%s %s: status %d", method, redact.Secrets(target), resp.StatusCode)
	}
	return resp.StatusCode, b, nil
}

func pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
