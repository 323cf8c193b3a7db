package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if HOOPRATE_CONFIG is set
//  3. env (prefix HOOPRATE_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("HOOPRATE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: HOOPRATE_DATABASE_URL, HOOPRATE_SEASON, ...
	// Map env keys like HOOPRATE_HALF_LIFE_DAYS -> half_life_days (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("HOOPRATE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "hooprate_")
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

// validate rejects configurations that cannot produce a meaningful run.
func (c *Config) validate() error {
	if !c.DryRun && c.DatabaseURL == "" {
		return fmt.Errorf("%w: database_url is required unless dry_run is set", ErrInvalidConfig)
	}
	if c.CoefficientsPath == "" {
		return fmt.Errorf("%w: coefficients_path is required", ErrInvalidConfig)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive", ErrInvalidConfig)
	}
	if c.HalfLifeDays <= 0 {
		return fmt.Errorf("%w: half_life_days must be positive", ErrInvalidConfig)
	}
	if c.FullSeasonGames <= 0 {
		return fmt.Errorf("%w: full_season_games must be positive", ErrInvalidConfig)
	}
	if c.SeasonWorkers <= 0 {
		return fmt.Errorf("%w: season_workers must be positive", ErrInvalidConfig)
	}
	return nil
}
