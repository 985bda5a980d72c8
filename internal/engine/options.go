package engine

import (
	"context"

	"github.com/lendops/paydate/internal/domain/feature"
	"github.com/lendops/paydate/internal/domain/payment"
	"github.com/lendops/paydate/internal/domain/regress"
	"github.com/lendops/paydate/pkg/logger"
)

// Default engine configuration constants.
const (
	defaultMinHistoryRecords = 3
	defaultTestFraction      = 0.2
	defaultSplitSeed         = 42
	historyTailLength        = 5
)

// HistoryLoader abstracts the payment-history source. Every top-level
// operation re-reads through it; caching, if any, lives behind the
// implementation.
type HistoryLoader interface {
	Load(ctx context.Context, path string) ([]payment.Record, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLoader sets the payment-history source.
func WithLoader(loader HistoryLoader) Option {
	return func(e *Engine) {
		if loader != nil {
			e.loader = loader
		}
	}
}

// WithEngineer sets the feature engineer.
func WithEngineer(engineer *feature.Engineer) Option {
	return func(e *Engine) {
		if engineer != nil {
			e.engineer = engineer
		}
	}
}

// WithModelPath sets the default artifact location used by Train and by
// lazy loading.
func WithModelPath(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.modelPath = path
		}
	}
}

// WithMinHistoryRecords sets how many records a customer needs before a
// prediction is attempted.
func WithMinHistoryRecords(n int) Option {
	return func(e *Engine) {
		if n > 1 {
			e.minHistory = n
		}
	}
}

// WithBackend selects the fallback regressor backend.
func WithBackend(backend string) Option {
	return func(e *Engine) {
		if backend != "" {
			e.backend = backend
		}
	}
}

// WithGBRTOptions forwards hyperparameters to the gradient-boosting
// backend.
func WithGBRTOptions(opts ...regress.GBRTOption) Option {
	return func(e *Engine) {
		e.gbrtOpts = opts
	}
}

// WithTestFraction sets the held-out share of the training table.
func WithTestFraction(fraction float64) Option {
	return func(e *Engine) {
		if fraction > 0 && fraction < 1 {
			e.testFraction = fraction
		}
	}
}

// WithSplitSeed fixes the train/evaluation shuffle for reproducible
// metrics.
func WithSplitSeed(seed int64) Option {
	return func(e *Engine) {
		e.splitSeed = seed
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}
