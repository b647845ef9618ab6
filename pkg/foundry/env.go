package foundry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables set by the compute-module runtime in pipeline mode.
const (
	envDiscovery = "FOUNDRY_SERVICE_DISCOVERY_V2"
	envURL       = "FOUNDRY_URL"
	envToken     = "BUILD2_TOKEN"
	envAliases   = "RESOURCE_ALIAS_MAP"
	envCA        = "DEFAULT_CA_PATH"
)

// DatasetRef points at a dataset or stream on a branch.
type DatasetRef struct {
	RID    string
	Branch string
}

func (r DatasetRef) BranchOrDefault() string {
	return branchOrDefault(r.Branch)
}

// Services holds the API gateway and stream proxy base URLs.
type Services struct {
	APIGateway  string
	StreamProxy string
}

// ServicesFromURL derives both service URLs from a stack URL such as
// "stack.palantirfoundry.com".
func ServicesFromURL(stack string) Services {
	base := strings.TrimRight(strings.TrimSpace(stack), "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return Services{APIGateway: base + "/api", StreamProxy: base + "/stream-proxy/api"}
}

type Env struct {
	Services      Services
	DefaultCAPath string
	Token         string
	Aliases       map[string]DatasetRef
}

// Alias looks name up in RESOURCE_ALIAS_MAP.
func (e Env) Alias(name string) (DatasetRef, error) {
	if ref, ok := e.Aliases[name]; ok {
		return ref, nil
	}
	return DatasetRef{}, fmt.Errorf("alias %q not found in %s", name, envAliases)
}

// LoadEnv reads service URLs (discovery file, else FOUNDRY_URL), the build token and
// the alias map. DEFAULT_CA_PATH is optional.
func LoadEnv() (Env, error) {
	env := Env{DefaultCAPath: strings.TrimSpace(os.Getenv(envCA))}

	var err error
	if env.Services, err = servicesFromEnv(); err != nil {
		return Env{}, err
	}
	token, err := fileFromEnv(envToken)
	if err != nil {
		return Env{}, err
	}
	env.Token = strings.TrimSpace(string(token))

	raw, err := fileFromEnv(envAliases)
	if err != nil {
		return Env{}, err
	}
	if env.Aliases, err = parseAliases(raw); err != nil {
		return Env{}, fmt.Errorf("%s: %w", envAliases, err)
	}
	return env, nil
}

func servicesFromEnv() (Services, error) {
	if strings.TrimSpace(os.Getenv(envDiscovery)) == "" {
		stack := strings.TrimSpace(os.Getenv(envURL))
		if stack == "" {
			return Services{}, fmt.Errorf("%s or %s is required", envDiscovery, envURL)
		}
		return ServicesFromURL(stack), nil
	}

	raw, err := fileFromEnv(envDiscovery)
	if err != nil {
		return Services{}, err
	}
	// Each service id maps to a list of base URLs; the first non-blank one wins.
	var discovery map[string][]string
	if err := yaml.Unmarshal(raw, &discovery); err != nil {
		return Services{}, fmt.Errorf("%s: %w", envDiscovery, err)
	}
	pick := func(id string) (string, error) {
		for _, u := range discovery[id] {
			if u = strings.TrimSpace(u); u != "" {
				return u, nil
			}
		}
		return "", fmt.Errorf("%s has no %s entry", envDiscovery, id)
	}

	var s Services
	if s.APIGateway, err = pick("api_gateway"); err != nil {
		return Services{}, err
	}
	if s.StreamProxy, err = pick("stream_proxy"); err != nil {
		return Services{}, err
	}
	return s, nil
}

// fileFromEnv reads the file whose path is held by varName.
func fileFromEnv(varName string) ([]byte, error) {
	p := strings.TrimSpace(os.Getenv(varName))
	if p == "" {
		return nil, fmt.Errorf("%s is required", varName)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", varName, err)
	}
	return b, nil
}

func parseAliases(raw []byte) (map[string]DatasetRef, error) {
	var entries map[string]struct {
		RID    string `json:"rid"`
		Branch string `json:"branch"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	out := make(map[string]DatasetRef, len(entries))
	for name, e := range entries {
		ref := DatasetRef{RID: strings.TrimSpace(e.RID), Branch: strings.TrimSpace(e.Branch)}
		if ref.RID == "" {
			return nil, fmt.Errorf("alias %q has no rid", name)
		}
		out[name] = ref
	}
	return out, nil
}
