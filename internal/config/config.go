// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config provides the MCP server registry, loaded with Viper from
// $XDG_CONFIG_HOME/relay/config.yaml with RELAY_-prefixed environment
// overrides.
package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// AppName is the application name used for config file naming.
const AppName = "relay"

// Transport kinds a registry entry can select. When Transport is empty it is
// inferred: entries with a URL are "http", entries with a Command are
// "command".
const (
	TransportHTTP    = "http"
	TransportCommand = "command"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version       int               `mapstructure:"version" yaml:"version"`
	DefaultServer string            `mapstructure:"default_server" yaml:"default_server"`
	Servers       map[string]Server `mapstructure:"servers" yaml:"servers"`
}

// Server is one registry entry: either a remote HTTP endpoint or a local
// subprocess.
type Server struct {
	URL       string `mapstructure:"url" yaml:"url"`
	Transport string `mapstructure:"transport" yaml:"transport"`
	// Timeout is the per-request timeout in seconds. Zero means the
	// transport default.
	Timeout      int               `mapstructure:"timeout" yaml:"timeout"`
	APIKey       string            `mapstructure:"api_key" yaml:"api_key"`
	NoInitialize bool              `mapstructure:"no_initialize" yaml:"no_initialize"`
	Headers      map[string]string `mapstructure:"headers" yaml:"headers"`
	Command      string            `mapstructure:"command" yaml:"command"`
	Args         []string          `mapstructure:"args" yaml:"args"`
	Env          []string          `mapstructure:"env" yaml:"env"`
	// RateLimit caps outgoing requests per second. Zero means unlimited.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// EffectiveTransport resolves the entry's transport kind, inferring it from
// which of URL and Command is set when Transport is empty.
func (s Server) EffectiveTransport() string {
	if s.Transport != "" {
		return s.Transport
	}
	if s.Command != "" {
		return TransportCommand
	}
	return TransportHTTP
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))

	viper.SetEnvPrefix("RELAY")
	viper.AutomaticEnv()

	viper.SetDefault("version", 1)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If the user specified a path, this is an error; an implicit
			// load falls back to defaults.
			if path != "" {
				return nil, errors.Wrapf(err, "config file not found at %s", path)
			}
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	return &cfg, nil
}
