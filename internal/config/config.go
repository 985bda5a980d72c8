// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep configuration explicit: anything that used to be module-level
//   state (minimum history size, prediction horizon, rolling windows)
//   is a field here and is passed into components at construction time.
// - Provide New() to build a Config with documented defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataPath is the default payment-history CSV consumed by training
	// and prediction when a request does not name its own.
	DataPath string `koanf:"data_path"`

	// ModelPath is where the trained model artifact is persisted.
	ModelPath string `koanf:"model_path"`

	// MinHistoryRecords is the minimum number of payment records a
	// customer needs before a prediction is attempted.
	MinHistoryRecords int `koanf:"min_history_records"`

	// PredictionHorizonDays is the reporting window used when
	// summarizing batch output (payments expected within N days).
	PredictionHorizonDays int `koanf:"prediction_horizon_days"`

	// FeatureWindows are the rolling-window sizes, in days, for
	// trailing delay statistics.
	FeatureWindows []int `koanf:"feature_windows"`

	// RegressorBackend selects the fallback regressor: gbrt or linear.
	RegressorBackend string `koanf:"regressor_backend"`

	// Gradient-boosting hyperparameters. Tunable, not protocol-critical.
	TreeCount    int     `koanf:"tree_count"`
	MaxTreeDepth int     `koanf:"max_tree_depth"`
	LearningRate float64 `koanf:"learning_rate"`

	// TestFraction and SplitSeed fix the train/evaluation split so
	// reported metrics are reproducible.
	TestFraction float64 `koanf:"test_fraction"`
	SplitSeed    int64   `koanf:"split_seed"`

	// HistoryCache enables the keyed parse cache on the history loader.
	HistoryCache bool `koanf:"history_cache"`

	// OpenAI settings for the prediction explainer. The explainer is
	// disabled cleanly when the key is empty.
	OpenAIAPIKey string `koanf:"openai_api_key"`
	OpenAIModel  string `koanf:"openai_model"`
}

// New creates a Config with the documented defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":8080",
		DataPath:              "data/payment_history.csv",
		ModelPath:             "models/paydate_model.json",
		MinHistoryRecords:     3,
		PredictionHorizonDays: 30,
		FeatureWindows:        []int{7, 14, 30, 60, 90},
		RegressorBackend:      "gbrt",
		TreeCount:             100,
		MaxTreeDepth:          6,
		LearningRate:          0.1,
		TestFraction:          0.2,
		SplitSeed:             42,
		HistoryCache:          true,
		OpenAIModel:           "gpt-4-turbo-preview",
	}
}
