// Package config loads the application configuration from a YAML or JSON
// file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/haulage/core/auction"
	"github.com/kilianp07/haulage/core/metrics"
	"github.com/kilianp07/haulage/core/search"
	"github.com/kilianp07/haulage/infra/mqtt"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore: H_SEARCH__MAX_ITERATIONS=500.
const EnvPrefix = "H_"

type Config struct {
	Search  search.Config  `json:"search"`
	Auction auction.Config `json:"auction"`
	Metrics metrics.Config `json:"metrics"`
	Logging LoggingConfig  `json:"logging"`
	MQTT    mqtt.Config    `json:"mqtt"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Search:  search.DefaultConfig(),
		Auction: auction.DefaultConfig(),
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path on top of the defaults, then applies environment
// overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills zero values of every section.
func (c *Config) SetDefaults() {
	c.Search.SetDefaults()
	c.Auction.SetDefaults()
	c.Logging.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate checks every section and reports all failures at once.
func (c Config) Validate() error {
	return errors.Join(
		c.Search.Validate(),
		c.Auction.Validate(),
		c.Logging.Validate(),
		c.MQTT.Validate(),
	)
}
