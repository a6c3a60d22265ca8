// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

// Package config loads rolecall tool configuration from YAML files with
// command-line flag overrides.
package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the rolecall tool configuration.
type Config struct {
	Logging LoggingConfig `koanf:"logging"`
	Policy  PolicyConfig  `koanf:"policy"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// PolicyConfig locates the role documents to load.
type PolicyConfig struct {
	Files []string `koanf:"files"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: defaults, overlaid by the YAML file at
// path (when non-empty), overlaid by any set flags. Flag names map to
// dotted config keys ("logging.level").
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, oops.In("config").
				Code("CONFIG_NOT_FOUND").
				With("path", path).
				Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.In("config").
				Code("CONFIG_INVALID").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.In("config").Wrapf(err, "loading flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.In("config").
			Code("CONFIG_INVALID").
			Wrap(err)
	}
	return cfg, nil
}
