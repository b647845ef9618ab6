package foundry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/palantir/angellist-enrichment-connector/internal/redact"
)

const snippetLimit = 256

// HTTPError describes a non-2xx Foundry response. Conjure error fields are kept when the
// body carries them; otherwise Snippet holds a redacted, truncated excerpt.
type HTTPError struct {
	Op              string
	StatusCode      int
	ErrorName       string
	ErrorCode       string
	ErrorInstanceID string
	Snippet         string
}

func (e *HTTPError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "foundry %s: status %d", e.Op, e.StatusCode)
	for _, kv := range [][2]string{
		{"errorName", e.ErrorName},
		{"errorCode", e.ErrorCode},
		{"instance", e.ErrorInstanceID},
		{"body", e.Snippet},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, " %s=%s", kv[0], kv[1])
		}
	}
	return b.String()
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

func newHTTPError(op string, status int, body []byte) *HTTPError {
	he := &HTTPError{Op: op, StatusCode: status}

	var conjure struct {
		ErrorCode       string `json:"errorCode"`
		ErrorName       string `json:"errorName"`
		ErrorInstanceID string `json:"errorInstanceId"`
	}
	if json.Unmarshal(body, &conjure) == nil {
		he.ErrorName = strings.TrimSpace(conjure.ErrorName)
		he.ErrorCode = strings.TrimSpace(conjure.ErrorCode)
		he.ErrorInstanceID = strings.TrimSpace(conjure.ErrorInstanceID)
	}
	if he.ErrorName == "" && he.ErrorCode == "" && he.ErrorInstanceID == "" {
		he.Snippet = snippet(body)
	}
	return he
}

func snippet(body []byte) string {
	cut := body
	if len(cut) > snippetLimit {
		cut = cut[:snippetLimit]
	}
	s := strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(redact.Secrets(string(cut))))
	if s != "" && len(body) > snippetLimit {
		s += "..."
	}
	return s
}
