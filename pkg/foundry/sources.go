package foundry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SourceCredentials maps a source API name to its secrets.
type SourceCredentials map[string]map[string]string

// LoadSourceCredentialsFromEnv parses the JSON file named by SOURCE_CREDENTIALS.
func LoadSourceCredentialsFromEnv() (SourceCredentials, error) {
	raw, err := fileFromEnv("SOURCE_CREDENTIALS")
	if err != nil {
		return nil, err
	}
	sc := SourceCredentials{}
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("SOURCE_CREDENTIALS: %w", err)
	}
	return sc, nil
}

// Secret returns the named secret of a source. REST sources prefix secret names with
// "additionalSecret", so that spelling is accepted as well.
func (sc SourceCredentials) Secret(source, name string) string {
	secrets := sc[strings.TrimSpace(source)]
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	for _, key := range []string{name, "additionalSecret" + name} {
		if v := strings.TrimSpace(secrets[key]); v != "" {
			return v
		}
	}
	return ""
}

// SecretList splits a secret on commas and line breaks, dropping blanks.
func (sc SourceCredentials) SecretList(source, name string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(sc.Secret(source, name), func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	}) {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
