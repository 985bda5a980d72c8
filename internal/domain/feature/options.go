package feature

import "time"

// Default feature-engineering configuration constants.
const (
	defaultRecentCount = 3
	minVectorRecords   = 2
	minTrainingRecords = 3
)

// defaultWindows is the trailing-window set, in days, used for rolling
// delay statistics.
var defaultWindows = []int{7, 14, 30, 60, 90}

// Option applies a configuration option to the Engineer.
type Option func(*Engineer)

// WithWindows sets the rolling-window sizes in days.
func WithWindows(windows []int) Option {
	return func(e *Engineer) {
		if len(windows) > 0 {
			e.windows = make([]int, len(windows))
			copy(e.windows, windows)
		}
	}
}

// WithRecentCount sets how many trailing records feed the recency
// statistics.
func WithRecentCount(n int) Option {
	return func(e *Engineer) {
		if n > 1 {
			e.recentCount = n
		}
	}
}

// WithClock sets the evaluation-time source used for the
// days_since_last_payment feature. Only that feature depends on the
// clock; every other column is a pure function of the history.
func WithClock(now func() time.Time) Option {
	return func(e *Engineer) {
		if now != nil {
			e.now = now
		}
	}
}
