package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnv overrides file values with any environment variables that are set.
func applyEnv(cfg *Config) error {
	d := &cfg.Directory
	if v := strings.TrimSpace(os.Getenv("ANGELLIST_BASE_URL")); v != "" {
		d.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ANGELLIST_ACCESS_TOKENS")); v != "" {
		d.AccessTokens = strings.Split(v, ",")
	}
	if v := strings.TrimSpace(os.Getenv("ANGELLIST_ACCESS_TOKENS_FILE")); v != "" {
		d.AccessTokensFile = v
	}
	if v := strings.TrimSpace(os.Getenv("ANGELLIST_SOURCE_API_NAME")); v != "" {
		d.SourceAPIName = v
	}

	var err error
	if d.Timeout, err = envDuration("ANGELLIST_TIMEOUT", d.Timeout); err != nil {
		return err
	}
	if d.RateLimitRPS, err = envFloat("ANGELLIST_RATE_LIMIT_RPS", d.RateLimitRPS); err != nil {
		return err
	}
	if d.PageDelay, err = envDuration("ANGELLIST_PAGE_DELAY", d.PageDelay); err != nil {
		return err
	}
	if d.RolesEnabled, err = envBool("ANGELLIST_ROLES_ENABLED", d.RolesEnabled); err != nil {
		return err
	}

	p := &cfg.Pipeline
	if p.Workers, err = envInt("WORKERS", p.Workers); err != nil {
		return err
	}
	if p.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", p.RequestTimeout); err != nil {
		return err
	}
	if p.RateLimitRPS, err = envFloat("RATE_LIMIT_RPS", p.RateLimitRPS); err != nil {
		return err
	}
	if p.FailFast, err = envBool("FAIL_FAST", p.FailFast); err != nil {
		return err
	}
	if p.MaxDepth, err = envInt("MAX_DEPTH", p.MaxDepth); err != nil {
		return err
	}

	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	return nil
}

func envInt(varName string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envFloat(varName string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envDuration(varName string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envBool(varName string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}
