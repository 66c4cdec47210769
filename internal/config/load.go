package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.baseDir = filepath.Dir(absPath)

	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
// Relative paths resolve against the working directory.
func Default() *Config {
	cfg := &Config{
		ConfigVersion: 1,
		Spec:          defaultSpec,
		Templates:     TemplatesConfig{Dir: defaultTemplateDir},
		Output:        OutputConfig{Dir: defaultOutputDir},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) resolvePath(p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	base := c.baseDir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, p)
}
