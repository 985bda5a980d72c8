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
//  2. file (YAML) if PAYDATE_CONFIG is set
//  3. env (prefix PAYDATE_)
func Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PAYDATE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PAYDATE_ADDR, PAYDATE_MODEL_PATH, ...
	// Map env keys like PAYDATE_MODEL_PATH -> model_path (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PAYDATE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "paydate_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.MinHistoryRecords < 2:
		return fmt.Errorf("%w: min_history_records must be at least 2", ErrInvalidConfig)
	case cfg.TestFraction <= 0 || cfg.TestFraction >= 1:
		return fmt.Errorf("%w: test_fraction must be inside (0, 1)", ErrInvalidConfig)
	case cfg.LearningRate <= 0:
		return fmt.Errorf("%w: learning_rate must be positive", ErrInvalidConfig)
	case cfg.TreeCount <= 0 || cfg.MaxTreeDepth <= 0:
		return fmt.Errorf("%w: tree_count and max_tree_depth must be positive", ErrInvalidConfig)
	case cfg.RegressorBackend != "gbrt" && cfg.RegressorBackend != "linear":
		return fmt.Errorf("%w: regressor_backend must be gbrt or linear", ErrInvalidConfig)
	case len(cfg.FeatureWindows) == 0:
		return fmt.Errorf("%w: feature_windows must not be empty", ErrInvalidConfig)
	}
	return nil
}
