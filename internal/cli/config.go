package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is consulted when --config is not given.
const DefaultConfigPath = "arbor.yaml"

// Config holds settings loaded from the config file. Flags take
// precedence over config values, which take precedence over defaults.
type Config struct {
	// Database is the snapshot store path.
	Database string `mapstructure:"database"`

	// Format is the default output format ("text" or "json").
	Format string `mapstructure:"format"`

	// MaxDepth bounds construction-tree nesting during elaboration.
	// Zero means the built-in default.
	MaxDepth int `mapstructure:"max_depth"`
}

// LoadConfig reads a YAML config file. A missing file at the default
// path is not an error; a missing file at an explicit path is.
func LoadConfig(path string, explicit bool) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	// Decode in two steps: YAML to a generic map, then mapstructure
	// into the typed struct. Unknown keys are rejected so typos fail
	// loudly instead of silently falling back to defaults.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return Config{}, fmt.Errorf("config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	return cfg, nil
}
