// Package config loads connector settings from an optional YAML file, environment
// overrides and validation.
//
// Directory credentials are only ever read from configuration (file, environment or a
// tokens file); none are compiled in.
package config

import (
	"bufio"
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
	"github.com/palantir/angellist-enrichment-connector/pkg/foundry"
)

// sourceTokensSecret is the secret holding the token pool on a Foundry source.
const sourceTokensSecret = "AccessTokens"

type Config struct {
	Directory Directory `yaml:"directory"`
	Pipeline  Pipeline  `yaml:"pipeline"`
	Log       Log       `yaml:"log"`
}

// Directory configures the AngelList API client and provider.
type Directory struct {
	BaseURL          string        `yaml:"base_url" validate:"required,url"`
	AccessTokens     []string      `yaml:"access_tokens" validate:"min=1,dive,required"`
	AccessTokensFile string        `yaml:"access_tokens_file"`
	// SourceAPIName names the Foundry source whose AccessTokens secret is used when
	// SOURCE_CREDENTIALS is present and no tokens are configured otherwise.
	SourceAPIName    string        `yaml:"source_api_name"`
	Timeout          time.Duration `yaml:"timeout" validate:"gte=0"`
	RateLimitRPS     float64       `yaml:"rate_limit_rps" validate:"gte=0"`
	PageDelay        time.Duration `yaml:"page_delay" validate:"gte=0"`
	RolesEnabled     bool          `yaml:"roles_enabled"`
}

// Pipeline configures the host scheduler.
type Pipeline struct {
	Workers        int           `yaml:"workers" validate:"gte=1,lte=256"`
	// RequestTimeout bounds one query; 0 means no deadline beyond the HTTP client timeout.
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gte=0"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" validate:"gte=0"`
	FailFast       bool          `yaml:"fail_fast"`
	MaxDepth       int           `yaml:"max_depth" validate:"gte=0,lte=8"`
}

type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Directory: Directory{
			BaseURL:       angellist.DefaultBaseURL,
			SourceAPIName: "AngelList",
			Timeout:       30 * time.Second,
			PageDelay:     time.Second,
			RolesEnabled:  true,
		},
		Pipeline: Pipeline{
			Workers:        4,
			MaxDepth:       1,
		},
		Log: Log{Level: "info", Format: "json"},
	}
}

// Load reads path (optional), applies environment overrides, resolves the tokens file
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, eris.Wrapf(err, "read config file %s", p)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, eris.Wrapf(err, "parse config file %s", p)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if f := strings.TrimSpace(cfg.Directory.AccessTokensFile); f != "" {
		tokens, err := readTokensFile(f)
		if err != nil {
			return nil, err
		}
		cfg.Directory.AccessTokens = append(cfg.Directory.AccessTokens, tokens...)
	}
	cfg.Directory.AccessTokens = cleanTokens(cfg.Directory.AccessTokens)

	if len(cfg.Directory.AccessTokens) == 0 && strings.TrimSpace(os.Getenv("SOURCE_CREDENTIALS")) != "" {
		sources, err := foundry.LoadSourceCredentialsFromEnv()
		if err != nil {
			return nil, eris.Wrap(err, "load source credentials")
		}
		cfg.Directory.AccessTokens = cleanTokens(sources.SecretList(cfg.Directory.SourceAPIName, sourceTokensSecret))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return eris.Wrap(err, "invalid configuration")
	}
	return nil
}

// readTokensFile reads one credential per line; blank lines and '#' comments are ignored.
func readTokensFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read access tokens file %s", path)
	}
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "scan access tokens file %s", path)
	}
	return out, nil
}

func cleanTokens(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
