package regress

import (
	"fmt"

	"github.com/sajari/regression"
)

// Linear is an ordinary-least-squares backend. Only the fitted
// coefficients are persisted, so a reloaded model predicts identically
// without re-running the solver.
type Linear struct {
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights"`
	R2      float64   `json:"r2"`
	fitted  bool
}

// NewLinear creates an unfitted least-squares regressor.
func NewLinear() *Linear {
	return &Linear{}
}

// Fit solves the least-squares system over all rows.
func (l *Linear) Fit(rows [][]float64, targets []float64) error {
	if len(rows) == 0 || len(rows) != len(targets) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrNoTrainingData, len(rows), len(targets))
	}

	var r regression.Regression
	r.SetObserved("days_until_next_payment")
	for i := range rows[0] {
		r.SetVar(i, fmt.Sprintf("f%d", i))
	}
	for i, row := range rows {
		r.Train(regression.DataPoint(targets[i], row))
	}
	if err := r.Run(); err != nil {
		return fmt.Errorf("least-squares fit: %w", err)
	}

	coeffs := r.GetCoeffs()
	if len(coeffs) == 0 {
		return fmt.Errorf("least-squares fit: %w", ErrNotFitted)
	}
	l.Bias = coeffs[0]
	l.Weights = coeffs[1:]
	l.R2 = r.R2
	l.fitted = true
	return nil
}

// Predict returns the linear combination of the row with the fitted
// coefficients. Rows wider than the weight vector are truncated.
func (l *Linear) Predict(row []float64) float64 {
	out := l.Bias
	for i, w := range l.Weights {
		if i >= len(row) {
			break
		}
		out += w * row[i]
	}
	return out
}
