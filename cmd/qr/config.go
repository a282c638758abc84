// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tomoacademy/qr"
	"github.com/tomoacademy/qr/api"
)

// Config holds settings read from the configuration file.
type Config struct {
	Size    int      `yaml:"size"`     // image side in pixels
	Format  string   `yaml:"format"`   // output type, see formats
	Border  int      `yaml:"border"`   // quiet zone for plain types
	Scale   int      `yaml:"scale"`    // pixels per module for pbm
	Listen  string   `yaml:"listen"`   // HTTP address; empty: no server
	MaxSize int      `yaml:"max_size"` // largest image served over HTTP
	Style   qr.Style `yaml:"style"`
}

// defaults returns a Config populated with default values.
func defaults() *Config {
	return &Config{
		Size:    qr.DefaultSize,
		Scale:   4,
		MaxSize: api.DefaultMaxSize,
		Style:   qr.DefaultStyle,
	}
}

// loadConfig reads configuration from the YAML file at path, falling
// back to defaults if path is empty or the file does not exist.
// Environment variables with the QR_ prefix override file values.
func loadConfig(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.validate()
}

// applyEnvOverrides applies QR_* environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) error {
	for _, v := range []struct {
		name string
		p    *int
	}{
		{"QR_SIZE", &cfg.Size},
		{"QR_BORDER", &cfg.Border},
		{"QR_SCALE", &cfg.Scale},
		{"QR_MAX_SIZE", &cfg.MaxSize},
	} {
		if s := os.Getenv(v.name); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%s: %w", v.name, err)
			}
			*v.p = n
		}
	}
	if s := os.Getenv("QR_FORMAT"); s != "" {
		cfg.Format = s
	}
	if s := os.Getenv("QR_LISTEN"); s != "" {
		cfg.Listen = s
	}
	return nil
}

func (c *Config) validate() error {
	switch {
	case c.Size <= 0 || c.Size > qr.MaxPixels:
		return fmt.Errorf("size %d out of range", c.Size)
	case c.Scale <= 0:
		return fmt.Errorf("scale %d out of range", c.Scale)
	case c.Border < 0:
		return fmt.Errorf("border %d out of range", c.Border)
	case c.Format != "" && formats[c.Format].write == nil:
		return fmt.Errorf("%q: unknown output type", c.Format)
	}
	return nil
}
