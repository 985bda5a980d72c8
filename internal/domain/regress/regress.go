// Package regress provides the learned regressor behind the prediction
// fallback path. The algorithm is pluggable: backends share a small
// interface and a JSON codec so a fitted model round-trips through the
// persisted artifact regardless of which backend produced it.
package regress

import (
	"encoding/json"
	"fmt"
)

// Backend identifiers accepted by New and recorded in artifacts.
const (
	BackendGBRT   = "gbrt"
	BackendLinear = "linear"
)

// Regressor is fitted on a dense feature matrix and predicts a single
// continuous target (days until the next payment).
type Regressor interface {
	// Fit trains on rows of identical width paired with targets.
	Fit(rows [][]float64, targets []float64) error

	// Predict returns the target estimate for one feature row. The row
	// must have the width the model was fitted with.
	Predict(row []float64) float64
}

// Encoded is the opaque serialized form of a fitted regressor.
type Encoded struct {
	Backend string          `json:"backend"`
	Data    json.RawMessage `json:"data"`
}

// New constructs an unfitted regressor for the named backend.
func New(backend string, opts ...GBRTOption) (Regressor, error) {
	switch backend {
	case BackendGBRT:
		return NewGBRT(opts...), nil
	case BackendLinear:
		return NewLinear(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Encode serializes a fitted regressor with its backend tag.
func Encode(r Regressor) (Encoded, error) {
	var (
		backend string
		data    []byte
		err     error
	)
	switch m := r.(type) {
	case *GBRT:
		backend = BackendGBRT
		data, err = json.Marshal(m)
	case *Linear:
		backend = BackendLinear
		data, err = json.Marshal(m)
	default:
		return Encoded{}, fmt.Errorf("%w: %T", ErrUnknownBackend, r)
	}
	if err != nil {
		return Encoded{}, fmt.Errorf("encode regressor: %w", err)
	}
	return Encoded{Backend: backend, Data: data}, nil
}

// Decode restores a fitted regressor from its serialized form.
func Decode(enc Encoded) (Regressor, error) {
	switch enc.Backend {
	case BackendGBRT:
		m := &GBRT{}
		if err := json.Unmarshal(enc.Data, m); err != nil {
			return nil, fmt.Errorf("decode gbrt: %w", err)
		}
		return m, nil
	case BackendLinear:
		m := &Linear{}
		if err := json.Unmarshal(enc.Data, m); err != nil {
			return nil, fmt.Errorf("decode linear: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, enc.Backend)
	}
}
