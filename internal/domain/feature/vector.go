package feature

import "time"

// Vector is a fixed-width numeric feature row engineered from one
// customer's payment history. Column order is significant: it is the
// schema the regressor is trained against, so it must be identical
// between training and inference for the same input shape.
type Vector struct {
	cols []string
	vals []float64

	// LastPaymentDate is non-numeric bookkeeping. It never becomes a
	// regressor column; the fallback prediction path anchors on it.
	LastPaymentDate time.Time
}

func (v *Vector) append(col string, val float64) {
	v.cols = append(v.cols, col)
	v.vals = append(v.vals, val)
}

// Columns returns the ordered column names.
func (v *Vector) Columns() []string {
	out := make([]string, len(v.cols))
	copy(out, v.cols)
	return out
}

// Values returns the feature values in column order.
func (v *Vector) Values() []float64 {
	out := make([]float64, len(v.vals))
	copy(out, v.vals)
	return out
}

// Get returns the value of a named column.
func (v *Vector) Get(col string) (float64, bool) {
	for i, c := range v.cols {
		if c == col {
			return v.vals[i], true
		}
	}
	return 0, false
}

// AlignTo reindexes the vector to an externally persisted schema. Columns
// absent from the vector are zero-filled; their names are returned so
// callers can surface silent substitution instead of hiding it. Columns
// the schema does not know are dropped.
func (v *Vector) AlignTo(schema []string) (values []float64, filled []string) {
	values = make([]float64, len(schema))
	for i, col := range schema {
		if val, ok := v.Get(col); ok {
			values[i] = val
			continue
		}
		filled = append(filled, col)
	}
	return values, filled
}
