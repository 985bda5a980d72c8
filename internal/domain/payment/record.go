// Package payment contains the payment-history domain models passed
// between layers.
package payment

import (
	"sort"
	"time"
)

// DateLayout is the calendar-date wire format used across data files
// and API payloads.
const DateLayout = "2006-01-02"

// Record represents one observed payment event for a customer.
// CustomerID is not unique across rows; one customer has many records.
type Record struct {
	CustomerID    string     // opaque customer identifier
	PaymentDate   time.Time  // date funds were actually received
	ScheduledDate *time.Time // contractual demand date; nil when the dataset has none
	Amount        *float64   // payment amount; nil when the dataset has none
	DelayDays     float64    // derived; see ComputeDelays
}

// HistoryEntry is the truncated per-payment view exposed in prediction
// results and LLM prompts.
type HistoryEntry struct {
	PaymentDate string  `json:"payment_date"`
	DelayDays   float64 `json:"delay_days"`
}

// SortByPaymentDate orders records by payment date ascending, in place.
// The sort is stable so same-day records keep their file order.
// Every delay or feature computation assumes this ordering.
func SortByPaymentDate(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PaymentDate.Before(records[j].PaymentDate)
	})
}

// ComputeDelays fills DelayDays on every record. When a record carries a
// scheduled (demand) date the delay is payment minus scheduled in days.
// Otherwise it is the gap to the customer's previous payment, with the
// customer's first record defaulting to 0, never left undefined.
// Records must already be ordered by payment date ascending.
func ComputeDelays(records []Record) {
	prev := make(map[string]time.Time, 16)
	for i := range records {
		r := &records[i]
		if r.ScheduledDate != nil {
			r.DelayDays = DaysBetween(*r.ScheduledDate, r.PaymentDate)
		} else if last, ok := prev[r.CustomerID]; ok {
			r.DelayDays = DaysBetween(last, r.PaymentDate)
		} else {
			r.DelayDays = 0
		}
		prev[r.CustomerID] = r.PaymentDate
	}
}

// FilterCustomer returns the subset of records belonging to customerID,
// preserving order.
func FilterCustomer(records []Record, customerID string) []Record {
	out := make([]Record, 0, 16)
	for _, r := range records {
		if r.CustomerID == customerID {
			out = append(out, r)
		}
	}
	return out
}

// CustomerIDs returns the distinct customer identifiers in first-seen order.
func CustomerIDs(records []Record) []string {
	seen := make(map[string]struct{}, 16)
	ids := make([]string, 0, 16)
	for _, r := range records {
		if _, ok := seen[r.CustomerID]; ok {
			continue
		}
		seen[r.CustomerID] = struct{}{}
		ids = append(ids, r.CustomerID)
	}
	return ids
}

// DaysBetween returns the whole number of days from a to b, truncating
// any partial day the way calendar-date subtraction does.
func DaysBetween(a, b time.Time) float64 {
	return float64(int(b.Sub(a).Hours() / 24))
}

// LastN returns the trailing n records, or all of them when fewer exist.
func LastN(records []Record, n int) []Record {
	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}
