package redact_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palantir/angellist-enrichment-connector/internal/redact"
)

func TestSecrets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "access token in url",
			in:   `Get "https://api.angel.co/1/startups/1?access_token=abc123&page=2": dial tcp: refused`,
			want: `Get "https://api.angel.co/1/startups/1?access_token=<redacted>&page=2": dial tcp: refused`,
		},
		{
			name: "bearer",
			in:   "auth failed: Bearer eyJhbGciOi.xyz",
			want: "auth failed: Bearer <redacted>",
		},
		{
			name: "api key kv",
			in:   "config api_key: s3cret",
			want: "config <redacted_kv>",
		},
		{
			name: "plain",
			in:   "  nothing to hide ",
			want: "nothing to hide",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, redact.Secrets(tc.in))
		})
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", redact.Error(nil))
	assert.Equal(t, "x access_token=<redacted>", redact.Error(errors.New("x access_token=zzz")))
}
