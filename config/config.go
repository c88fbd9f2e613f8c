package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/analytiq/serve"
)

// Security mirrors serve.Security as a YAML-friendly value.
type Security struct {
	VerboseAuthErrors bool `yaml:"verboseAuthErrors"`
}

// CacheConfig describes which cache.Provider to construct and how long
// entries should be considered fresh.
type CacheConfig struct {
	Provider        string        `yaml:"provider"` // "memory" | "redis" | "noop"
	RedisAddr       string        `yaml:"redisAddr"`
	MaxEntries      int           `yaml:"maxEntries"`
	DefaultTTL      time.Duration `yaml:"defaultTTL"`
	DefaultStaleTTL time.Duration `yaml:"defaultStaleTTL"`
}

// EndpointPolicy is one row of the hot-reloadable endpoint/role table:
// the auth requirement attached to a single Endpoint.Key.
type EndpointPolicy struct {
	Public bool     `yaml:"public"`
	Roles  []string `yaml:"roles"`
	Scopes []string `yaml:"scopes"`
}

// Guards translates an EndpointPolicy into the AuthGuard slice
// serve.Endpoint.Guards expects.
func (p EndpointPolicy) Guards() []serve.AuthGuard {
	if p.Public {
		return []serve.AuthGuard{serve.Public()}
	}
	guards := []serve.AuthGuard{serve.RequireAuth()}
	if len(p.Roles) > 0 {
		guards = append(guards, serve.RequireRole(p.Roles...))
	}
	if len(p.Scopes) > 0 {
		guards = append(guards, serve.RequireScope(p.Scopes...))
	}
	return guards
}

// Config is the full process-level configuration for a serve.Server.
type Config struct {
	BasePath    string                    `yaml:"basePath"`
	OpenAPIPath string                    `yaml:"openapiPath"`
	DocsPath    string                    `yaml:"docsPath"`
	Security    Security                  `yaml:"security"`
	Cache       CacheConfig               `yaml:"cache"`
	Endpoints   map[string]EndpointPolicy `yaml:"endpoints"`
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ServeConfig converts the static (non-hot-reloadable) half of Config
// into a serve.Config.
func (c *Config) ServeConfig() serve.Config {
	return serve.Config{
		BasePath:    c.BasePath,
		OpenAPIPath: c.OpenAPIPath,
		DocsPath:    c.DocsPath,
		Security:    serve.Security{VerboseAuthErrors: c.Security.VerboseAuthErrors},
	}
}

// GuardsFor returns the guards configured for endpointKey, defaulting to
// a bare RequireAuth when the table has no entry for it.
func (c *Config) GuardsFor(endpointKey string) []serve.AuthGuard {
	policy, ok := c.Endpoints[endpointKey]
	if !ok {
		return []serve.AuthGuard{serve.RequireAuth()}
	}
	return policy.Guards()
}
