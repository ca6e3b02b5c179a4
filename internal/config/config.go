package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

type Config struct {
	// Host is the verifier's own domain. Assertions issued by this host are
	// trusted via the statically loaded key, never via the network.
	Host string `yaml:"host"`

	Keys      KeysConfig       `yaml:"keys"`
	Trust     TrustConfig      `yaml:"trust"`
	Resolvers []ResolverConfig `yaml:"resolvers"`
	Server    ServerConfig     `yaml:"server"`
	Audit     AuditConfig      `yaml:"audit"`
	Policy    PolicyConfig     `yaml:"policy"`
}

// KeysConfig points at the verifier's own key material. The public key is
// required before any verification is accepted; the private key is only
// needed by tooling that issues certificates for this host.
type KeysConfig struct {
	Public  string `yaml:"public"`
	Private string `yaml:"private"`
}

// TrustConfig holds the administrative trust policy.
type TrustConfig struct {
	// AllowPrimaries enables accepting assertions issued by third-party
	// domains for their own users. When false, only the verifier's own host
	// may issue, and no network key lookup ever happens.
	AllowPrimaries bool `yaml:"allow_primaries"`
}

// ResolverConfig holds configuration for one key resolver.
type ResolverConfig struct {
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type"`    // e.g., "static", "wellknown"
	Config map[string]any `yaml:",inline"` // Capture remaining fields
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AuditConfig holds configuration for the verification decision log.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"
}

// PolicyConfig holds the optional acceptance policy.
type PolicyConfig struct {
	// Expr is a boolean expression over {email, issuer, audience} evaluated
	// after a successful verification. Empty means accept everything.
	Expr string `yaml:"expr"`
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Keys.Public == "" {
		return fmt.Errorf("keys.public is required")
	}
	for i, rc := range c.Resolvers {
		if rc.Name == "" {
			return fmt.Errorf("resolver #%d missing name", i)
		}
		if rc.Type == "" {
			return fmt.Errorf("resolver %q missing type", rc.Name)
		}
	}
	if c.Audit.Enabled && c.Audit.Type == "file" && c.Audit.Path == "" {
		return fmt.Errorf("audit.path is required for the file auditor")
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	return nil
}
