package service

import (
	"github.com/lendops/paydate/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithDataPath sets the payment-history file the service reads.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithModelPath sets the model artifact location.
func WithModelPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.modelPath = path
		}
	}
}

// WithMinHistoryRecords sets the per-customer record floor for
// predictions.
func WithMinHistoryRecords(n int) Option {
	return func(s *Service) {
		if n > 1 {
			s.minHistory = n
		}
	}
}

// WithPredictionHorizon sets the batch reporting window: predictions
// within this many days count as due soon.
func WithPredictionHorizon(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.horizonDays = days
		}
	}
}

// WithFeatureWindows sets the rolling-window sizes in days.
func WithFeatureWindows(windows []int) Option {
	return func(s *Service) {
		if len(windows) > 0 {
			s.featureWindows = windows
		}
	}
}

// WithBackend selects the regressor backend.
func WithBackend(backend string) Option {
	return func(s *Service) {
		if backend != "" {
			s.backend = backend
		}
	}
}

// WithBoostingParams sets the gradient-boosting hyperparameters. Zero
// values keep the defaults.
func WithBoostingParams(treeCount, maxDepth int, learningRate float64) Option {
	return func(s *Service) {
		s.treeCount = treeCount
		s.maxTreeDepth = maxDepth
		s.learningRate = learningRate
	}
}

// WithEvaluationSplit sets the held-out fraction and shuffle seed used
// when training.
func WithEvaluationSplit(testFraction float64, seed int64) Option {
	return func(s *Service) {
		s.testFraction = testFraction
		s.splitSeed = seed
	}
}

// WithHistoryCache toggles mtime-keyed caching of parsed history files.
func WithHistoryCache(enabled bool) Option {
	return func(s *Service) {
		s.historyCache = enabled
	}
}

// WithOpenAI configures the LLM explainer. An empty key leaves it
// disabled.
func WithOpenAI(apiKey, model string) Option {
	return func(s *Service) {
		s.openaiKey = apiKey
		s.openaiModel = model
	}
}
