package history

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from
// callers.
var (
	// ErrDataFormat marks a source file missing required columns or
	// carrying unparseable values. It is surfaced verbatim and never
	// retried: the underlying data issue will not resolve itself.
	ErrDataFormat = errors.New("invalid payment history format")

	ErrOpenSource = errors.New("open payment history failed")
)
