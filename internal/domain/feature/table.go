package feature

import (
	"github.com/lendops/paydate/internal/domain/payment"
)

// Table is a dense training matrix: one engineered row per history
// prefix, paired with the days-until-next-payment target. Columns are
// the union of every contributing vector's columns in first-seen order,
// zero-filled where a vector lacked one (amount columns vary by
// dataset). The non-numeric last-payment-date bookkeeping never appears
// here: the regressor must not see a raw date.
type Table struct {
	Columns []string
	Rows    [][]float64
	Targets []float64
}

// TrainingTable builds the training matrix from a full multi-customer
// history. For every customer with at least three records it engineers
// one vector per history prefix, starting at three records, and pairs it
// with the whole-day gap between the prefix's last payment and the one
// that follows it. The final full-history prefix has no next payment, so
// it reuses the gap between the last two payments; that degenerate label
// is a documented policy carried over from the source system.
//
// Returns nil when no customer qualifies.
func (e *Engineer) TrainingTable(records []payment.Record) *Table {
	t := &Table{}
	colIndex := make(map[string]int)

	for _, id := range payment.CustomerIDs(records) {
		history := payment.FilterCustomer(records, id)
		if len(history) < minTrainingRecords {
			continue
		}
		for k := minTrainingRecords; k <= len(history); k++ {
			v := e.Vector(history[:k], id)
			if v == nil {
				continue
			}
			var target float64
			if k < len(history) {
				target = payment.DaysBetween(history[k-1].PaymentDate, history[k].PaymentDate)
			} else {
				target = payment.DaysBetween(history[k-2].PaymentDate, history[k-1].PaymentDate)
			}
			t.addRow(colIndex, v, target)
		}
	}

	if len(t.Rows) == 0 {
		return nil
	}
	return t
}

func (t *Table) addRow(colIndex map[string]int, v *Vector, target float64) {
	// Register any columns this vector introduces and widen prior rows.
	for _, col := range v.cols {
		if _, ok := colIndex[col]; ok {
			continue
		}
		colIndex[col] = len(t.Columns)
		t.Columns = append(t.Columns, col)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], 0)
		}
	}

	row := make([]float64, len(t.Columns))
	for i, col := range v.cols {
		row[colIndex[col]] = v.vals[i]
	}
	t.Rows = append(t.Rows, row)
	t.Targets = append(t.Targets, target)
}
