package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if PWD_CONFIG is set
//  3. env (prefix PWD_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PWD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PWD_ADDR, PWD_GRACE_WINDOW_HOURS, ...
	// Map env keys like PWD_GRACE_WINDOW_HOURS -> grace_window_hours.
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PWD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pwd_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case len(c.Teams) == 0:
		return fmt.Errorf("%w: at least one team required", ErrInvalidConfig)
	case c.GraceWindowHours <= 0:
		return fmt.Errorf("%w: grace window must be positive", ErrInvalidConfig)
	case c.Store != StoreMemory && c.Store != StoreMongo:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store)
	case c.Store == StoreMongo && c.MongoURI == "":
		return fmt.Errorf("%w: mongo_uri required for mongo store", ErrInvalidConfig)
	}
	t := c.Risk
	if !(t.OuterLow < t.InnerLow && t.InnerLow < t.InnerHigh && t.InnerHigh < t.OuterHigh) {
		return fmt.Errorf("%w: risk thresholds must be strictly ordered", ErrInvalidConfig)
	}
	return nil
}
