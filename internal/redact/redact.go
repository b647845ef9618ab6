// Package redact scrubs credentials from strings before they reach logs or output.
package redact

import (
	"regexp"
	"strings"
)

var (
	// Matches "Bearer <token>" (JWTs and opaque tokens).
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// Directory credentials travel as a query parameter and show up in *url.Error messages.
	accessTokenRe = regexp.MustCompile(`(?i)\b(access_token)=[^&\s"']+`)

	// Common key=value formats that sometimes leak in error strings.
	apiKeyKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key|access[_-]?tokens?)\b\s*[:=]\s*[^\s"'&]+`)
)

// Secrets removes obvious secret-bearing substrings from error/log strings.
func Secrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = accessTokenRe.ReplaceAllString(out, "$1=<redacted>")
	out = apiKeyKVRe.ReplaceAllStringFunc(out, func(m string) string {
		if strings.HasSuffix(m, "=<redacted>") {
			return m
		}
		return "<redacted_kv>"
	})
	return strings.TrimSpace(out)
}

// Error is Secrets applied to err.Error(); nil yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return Secrets(err.Error())
}
