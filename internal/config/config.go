package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/dualopinion/internal/orchestrator"
	"github.com/dusk-indust/dualopinion/internal/persona"
	"github.com/dusk-indust/dualopinion/internal/reconcile"
)

// DefaultHTTPAddr is the listen address of `serve http` when none is set.
const DefaultHTTPAddr = ":8080"

// ProjectConfig holds settings loaded from dualopinion.yml.
type ProjectConfig struct {
	// PersonasFile is a YAML persona list replacing the built-in personas.
	PersonasFile string `yaml:"personasFile,omitempty"`

	// PersonaDB is a Kuzu database directory for the persona store. Empty
	// keeps personas in memory.
	PersonaDB string `yaml:"personaDB,omitempty"`

	// PreferredStyles orders the reasoning styles used to pick the pair.
	PreferredStyles []string `yaml:"preferredStyles,omitempty"`

	// MinConfidence overrides the merge threshold for unique topics.
	MinConfidence *float64 `yaml:"minConfidence,omitempty"`

	CacheSize   int    `yaml:"cacheSize,omitempty"`
	MaxSessions int    `yaml:"maxSessions,omitempty"`
	HTTPAddr    string `yaml:"httpAddr,omitempty"`
	Verbose     bool   `yaml:"verbose,omitempty"`
}

// Load attempts to read dualopinion.yml or dualopinion.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"dualopinion.yml", "dualopinion.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// Validate checks value ranges.
func (c *ProjectConfig) Validate() error {
	if c.MinConfidence != nil && (*c.MinConfidence < 0 || *c.MinConfidence > 1) {
		return fmt.Errorf("minConfidence %v outside [0,1]", *c.MinConfidence)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cacheSize %d is negative", c.CacheSize)
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("maxSessions %d is negative", c.MaxSessions)
	}
	for _, s := range c.PreferredStyles {
		if persona.ParseStyle(s) == "" {
			return fmt.Errorf("preferredStyles contains an empty style")
		}
	}
	return nil
}

// Orchestrator returns the pipeline configuration, filling unset values with
// the defaults.
func (c *ProjectConfig) Orchestrator() orchestrator.Config {
	out := orchestrator.DefaultConfig()
	if len(c.PreferredStyles) > 0 {
		out.PreferredStyles = make([]persona.Style, len(c.PreferredStyles))
		for i, s := range c.PreferredStyles {
			out.PreferredStyles[i] = persona.ParseStyle(s)
		}
	}
	if c.MinConfidence != nil {
		out.Merge = reconcile.Config{MinConfidence: *c.MinConfidence}
	}
	out.MaxSessions = c.MaxSessions
	return out
}

// Addr returns the HTTP listen address.
func (c *ProjectConfig) Addr() string {
	if c.HTTPAddr == "" {
		return DefaultHTTPAddr
	}
	return c.HTTPAddr
}
