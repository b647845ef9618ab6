package angellist

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/palantir/angellist-enrichment-connector/internal/redact"
)

// errorEnvelope covers the two error shapes the directory returns:
//
//	{"error": "invalid_request"}
//	{"error": {"type": "unauthorized", "message": "..."}}
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

type errorObject struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// HTTPError is a sanitized summary of a non-2xx directory response (other than 404).
//
// Raw response bodies are never kept; Snippet is redacted and truncated.
type HTTPError struct {
	Op         string
	StatusCode int
	Status     string
	// Message is taken from the directory error envelope when present.
	Message string
	Snippet string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "angellist http error"
	}
	parts := []string{
		fmt.Sprintf("angellist api error: op=%s status=%s", strings.TrimSpace(e.Op), strings.TrimSpace(e.Status)),
	}
	if strings.TrimSpace(e.Message) != "" {
		parts = append(parts, "message="+strings.TrimSpace(e.Message))
	}
	if strings.TrimSpace(e.Snippet) != "" {
		parts = append(parts, "body="+strings.TrimSpace(e.Snippet))
	}
	return strings.Join(parts, " ")
}

// TransportError wraps a failure to complete the HTTP exchange (DNS, connect, reset, timeout).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return redact.Secrets(fmt.Sprintf("angellist transport error: op=%s: %v", e.Op, e.Err))
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is returned when a 200 response body is not the expected JSON.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("angellist decode error: op=%s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an *HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode == code
	}
	return false
}

func newTransportError(op string, err error) error {
	// *url.Error carries the full request URL including access_token.
	var ue *url.Error
	if errors.As(err, &ue) {
		cp := *ue
		cp.URL = redact.Secrets(ue.URL)
		err = &cp
	}
	return &TransportError{Op: op, Err: err}
}

func newHTTPError(op string, resp *http.Response, body []byte) error {
	h := &HTTPError{Op: op}
	if resp != nil {
		h.StatusCode = resp.StatusCode
		h.Status = resp.Status
	}

	// Best effort: parse the directory error envelope.
	var env errorEnvelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil && len(env.Error) > 0 {
		var s string
		if json.Unmarshal(env.Error, &s) == nil && strings.TrimSpace(s) != "" {
			h.Message = redact.Secrets(s)
			return h
		}
		var obj errorObject
		if json.Unmarshal(env.Error, &obj) == nil {
			msg := strings.TrimSpace(obj.Message)
			if msg == "" {
				msg = strings.TrimSpace(obj.Type)
			} else if t := strings.TrimSpace(obj.Type); t != "" {
				msg = t + ": " + msg
			}
			if msg != "" {
				h.Message = redact.Secrets(msg)
				return h
			}
		}
	}

	h.Snippet = redactAndTruncate(body)
	return h
}

func redactAndTruncate(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	const max = 256
	b := body
	if len(b) > max {
		b = b[:max]
	}
	s := redact.Secrets(string(b))
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(body) > max {
		return s + "..."
	}
	return s
}
