package provider

import (
	"net/url"
	"strconv"
	"strings"
)

var profileHosts = map[string]bool{
	"angel.co":          true,
	"www.angel.co":      true,
	"angellist.com":     true,
	"www.angellist.com": true,
	"wellfound.com":     true,
	"www.wellfound.com": true,
}

// ProfileID extracts the lower-cased directory profile id from a profile URL
// ("https://angel.co/acme", "wellfound.com/company/acme") or a bare numeric id.
func ProfileID(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
		return strconv.FormatInt(n, 10), true
	}

	raw := value
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	if !profileHosts[strings.ToLower(u.Hostname())] {
		return "", false
	}

	segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	switch {
	case len(segs) == 1:
		return strings.ToLower(segs[0]), true
	case len(segs) == 2 && strings.EqualFold(segs[0], "company"):
		return strings.ToLower(segs[1]), true
	default:
		return "", false
	}
}

// IsProfileURI reports whether value is a directory profile URL.
func IsProfileURI(value string) bool {
	value = strings.TrimSpace(value)
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return false
	}
	_, ok := ProfileID(value)
	return ok
}
