package regress

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from
// callers.
var (
	ErrNoTrainingData = errors.New("no training data")
	ErrNotFitted      = errors.New("regressor not fitted")
	ErrUnknownBackend = errors.New("unknown regressor backend")
)
