// Package foundry is a small client for the Foundry dataset and stream endpoints the
// connector needs, plus the compute-module runtime environment.
package foundry

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultBranch is used when an alias or caller leaves the branch empty.
const DefaultBranch = "master"

const clientTimeout = 60 * time.Second

// Client reads request tables and publishes clue records.
type Client struct {
	api    *url.URL
	stream *url.URL
	token  string
	hc     *http.Client
}

// NewClient builds a client from the API gateway and stream proxy base URLs, e.g.
// "https://<stack>/api" and "https://<stack>/stream-proxy/api". caPath may be empty.
func NewClient(apiGatewayURL, streamProxyURL, token, caPath string) (*Client, error) {
	api, err := baseURL("api gateway", apiGatewayURL)
	if err != nil {
		return nil, err
	}
	stream, err := baseURL("stream proxy", streamProxyURL)
	if err != nil {
		return nil, err
	}
	hc, err := NewTLSClient(caPath, clientTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{api: api, stream: stream, token: strings.TrimSpace(token), hc: hc}, nil
}

// NewTLSClient returns an HTTP client trusting the PEM bundle at caPath, or the system
// roots when caPath is empty.
func NewTLSClient(caPath string, timeout time.Duration) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if p := strings.TrimSpace(caPath); p != "" {
		pem, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle: %w", err)
		}
		roots := x509.NewCertPool()
		if !roots.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("CA bundle %s holds no certificates", p)
		}
		tr.TLSClientConfig = &tls.Config{RootCAs: roots, MinVersion: tls.VersionTLS12}
	}
	return &http.Client{Transport: tr, Timeout: timeout}, nil
}

func baseURL(name, raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%s URL is required", name)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s URL: %w", name, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%s URL %q has no host", name, raw)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: strings.TrimRight(u.Path, "/")}, nil
}

// endpoint appends path segments to base, escaping each one.
func endpoint(base *url.URL, query url.Values, segments ...string) string {
	u := *base
	raw := base.EscapedPath()
	for _, s := range segments {
		u.Path += "/" + s
		raw += "/" + url.PathEscape(s)
	}
	u.RawPath = raw
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) datasetBranch(ctx context.Context, rid, branch string) (string, error) {
	var out struct {
		TransactionRID string `json:"transactionRid"`
	}
	body, err := c.send(ctx, "getBranch", http.MethodGet,
		endpoint(c.api, nil, "v2", "datasets", rid, "branches", branch), "application/json", nil)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("getBranch: decode: %w", err)
	}
	return strings.TrimSpace(out.TransactionRID), nil
}

// ReadTableCSV reads the dataset as CSV, pinned to the branch's latest transaction.
func (c *Client) ReadTableCSV(ctx context.Context, datasetRID, branch string) ([]byte, error) {
	rid, branch := strings.TrimSpace(datasetRID), branchOrDefault(branch)
	if rid == "" {
		return nil, errors.New("readTable: dataset rid is required")
	}
	txn, err := c.datasetBranch(ctx, rid, branch)
	if err != nil {
		return nil, err
	}

	q := url.Values{"branchName": {branch}, "format": {"CSV"}}
	if txn != "" {
		q.Set("startTransactionRid", txn)
		q.Set("endTransactionRid", txn)
	}
	return c.send(ctx, "readTable", http.MethodGet,
		endpoint(c.api, q, "v2", "datasets", rid, "readTable"), "text/csv", nil)
}

// ProbeStream reports whether rid is reachable as a stream. A 404 means it is not.
func (c *Client) ProbeStream(ctx context.Context, streamRID, branch string) (bool, error) {
	u, err := c.streamURL(streamRID, branch, "records")
	if err != nil {
		return false, err
	}
	_, err = c.send(ctx, "probeStream", http.MethodGet, u, "application/json", nil)
	if StatusCode(err) == http.StatusNotFound {
		return false, nil
	}
	return err == nil, err
}

// ReadStreamRecords returns every record currently on the stream branch.
func (c *Client) ReadStreamRecords(ctx context.Context, streamRID, branch string) ([]map[string]any, error) {
	u, err := c.streamURL(streamRID, branch, "records")
	if err != nil {
		return nil, err
	}
	body, err := c.send(ctx, "readStreamRecords", http.MethodGet, u, "application/json", nil)
	if err != nil {
		return nil, err
	}
	var top any
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("readStreamRecords: decode: %w", err)
	}
	return recordList(top)
}

// PublishStreamJSONRecord appends one JSON record to the stream branch.
func (c *Client) PublishStreamJSONRecord(ctx context.Context, streamRID, branch string, record any) error {
	u, err := c.streamURL(streamRID, branch, "jsonRecord")
	if err != nil {
		return err
	}
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("publish: encode record: %w", err)
	}
	_, err = c.send(ctx, "publishStreamJSONRecord", http.MethodPost, u, "application/json", body)
	return err
}

func (c *Client) streamURL(rid, branch, leaf string) (string, error) {
	if rid = strings.TrimSpace(rid); rid == "" {
		return "", errors.New("stream rid is required")
	}
	return endpoint(c.stream, nil, "streams", rid, "branches", branchOrDefault(branch), leaf), nil
}

// send performs one authenticated call. Non-2xx statuses become *HTTPError.
func (c *Client) send(ctx context.Context, op, method, u, accept string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, newHTTPError(op, resp.StatusCode, b)
	}
	return b, nil
}

// recordList accepts a bare array or an object holding the array under records, values
// or data.
func recordList(v any) ([]map[string]any, error) {
	switch t := v.(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out, nil
	case map[string]any:
		for _, key := range []string{"records", "values", "data"} {
			if inner, ok := t[key]; ok {
				return recordList(inner)
			}
		}
	}
	return nil, fmt.Errorf("readStreamRecords: unexpected response shape %T", v)
}

func branchOrDefault(branch string) string {
	if b := strings.TrimSpace(branch); b != "" {
		return b
	}
	return DefaultBranch
}
