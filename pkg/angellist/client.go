// Package angellist is a minimal client for the AngelList directory REST API.
//
// Every call spends exactly one credential from the TokenSource. 204 and 404 responses
// mean "absent" and are returned as a nil result with a nil error.
package angellist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public directory API.
const DefaultBaseURL = "https://api.angel.co"

// TokenSource hands out one credential per call.
type TokenSource interface {
	Next() string
}

// Options tunes the client. The zero value is usable.
type Options struct {
	// Timeout bounds a single HTTP exchange (default 30s). Ignored when HTTPClient is set.
	Timeout time.Duration
	// RateLimitRPS caps outbound requests per second across all callers; <=0 disables.
	RateLimitRPS float64
	HTTPClient   *http.Client
	UserAgent    string
}

// Client calls the four directory endpoints the connector needs.
type Client struct {
	baseURL   *url.URL
	tokens    TokenSource
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewClient constructs a client against baseURL (e.g. "https://api.angel.co").
func NewClient(baseURL string, tokens TokenSource, opts Options) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   timeout,
		}
	}

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		burst := int(opts.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = "angellist-enrichment-connector"
	}

	return &Client{
		baseURL:   base,
		tokens:    tokens,
		http:      hc,
		limiter:   limiter,
		userAgent: ua,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse angellist base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("angellist base URL must include a host (got %q)", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Search runs a free-text startup search. Identifier and name searches share this endpoint.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("type", "Startup")

	var out []SearchResult
	found, err := c.get(ctx, "search", "1/search", q, &out)
	if err != nil || !found {
		return nil, err
	}
	return out, nil
}

// Startup fetches the full organization profile.
func (c *Client) Startup(ctx context.Context, id int64) (*Startup, error) {
	var out Startup
	found, err := c.get(ctx, "startup", "1/startups/"+strconv.FormatInt(id, 10), nil, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// StartupRoles fetches one page (1-based) of the roles attached to a startup.
func (c *Client) StartupRoles(ctx context.Context, id int64, page int) (*RolesPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var out RolesPage
	found, err := c.get(ctx, "startupRoles", "1/startups/"+strconv.FormatInt(id, 10)+"/roles", q, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// User fetches a person profile.
func (c *Client) User(ctx context.Context, id int64) (*User, error) {
	var out User
	found, err := c.get(ctx, "user", "1/users/"+strconv.FormatInt(id, 10), nil, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// get performs one authenticated GET and decodes a 200 body into out.
// found is false for 204/404.
func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) (bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}
	}

	if q == nil {
		q = url.Values{}
	}
	q.Set("access_token", c.tokens.Next())
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, newTransportError(op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, newTransportError(op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, newTransportError(op, err)
	}

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode/100 != 2:
		return false, newHTTPError(op, resp, b)
	}

	if err := json.Unmarshal(b, out); err != nil {
		return false, &DecodeError{Op: op, Err: err}
	}
	return true, nil
}
