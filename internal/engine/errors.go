package engine

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from
// callers; the HTTP layer maps them onto status codes.
var (
	// ErrInsufficientData means the training table came out empty after
	// feature engineering. Fatal to that training attempt; never retried.
	ErrInsufficientData = errors.New("insufficient data for training")

	// ErrInsufficientHistory means the customer has fewer records than
	// the configured minimum. Client-correctable: pick another customer
	// or wait for more history.
	ErrInsufficientHistory = errors.New("insufficient payment history")

	// ErrFeatureEngineering means no feature vector came back despite
	// the minimum-record check passing. Defensive; handled, not assumed
	// impossible.
	ErrFeatureEngineering = errors.New("feature engineering produced no vector")

	// ErrModelNotFound means no artifact exists at any resolved
	// candidate path. Fatal until training runs or a correct path is
	// supplied.
	ErrModelNotFound = errors.New("model artifact not found")
)
