package export

import (
	"github.com/lendops/paydate/pkg/logger"
)

const defaultWorkers = 4

// Option applies a configuration option to the Exporter.
type Option func(*Exporter)

// WithWorkers sets the number of concurrent prediction workers.
func WithWorkers(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithProgress toggles the terminal progress bar. Off by default so
// library callers and tests stay quiet.
func WithProgress(enabled bool) Option {
	return func(e *Exporter) {
		e.progress = enabled
	}
}

// WithLogger sets a custom logger for the exporter.
func WithLogger(log logger.Logger) Option {
	return func(e *Exporter) {
		if log != nil {
			e.log = log
		}
	}
}
