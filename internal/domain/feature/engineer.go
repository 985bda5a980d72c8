// Package feature turns cleaned payment histories into numeric feature
// vectors and training tables. Everything here is deterministic and
// side-effect free apart from the injected clock.
package feature

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lendops/paydate/internal/domain/payment"
)

// Engineer computes feature vectors from per-customer payment records.
type Engineer struct {
	windows     []int
	recentCount int
	now         func() time.Time
}

// New creates an Engineer with default configuration options.
func New(opts ...Option) *Engineer {
	e := &Engineer{
		windows:     defaultWindows,
		recentCount: defaultRecentCount,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Windows returns the configured rolling-window sizes.
func (e *Engineer) Windows() []int {
	out := make([]int, len(e.windows))
	copy(out, e.windows)
	return out
}

// Vector engineers the full feature set for one customer from records
// that already carry delays and are ordered by payment date. It returns
// nil when the customer has fewer than two records: that signals
// insufficient history, not a failure, and callers must check for it.
func (e *Engineer) Vector(records []payment.Record, customerID string) *Vector {
	history := payment.FilterCustomer(records, customerID)
	if len(history) < minVectorRecords {
		return nil
	}

	delays := make([]float64, len(history))
	for i, r := range history {
		delays[i] = r.DelayDays
	}

	v := &Vector{}
	v.append("total_payments", float64(len(history)))
	v.append("avg_delay", mean(delays))
	v.append("std_delay", sampleStd(delays))
	v.append("max_delay", maxOf(delays))
	v.append("min_delay", minOf(delays))

	recent := delays
	if len(recent) > e.recentCount {
		recent = recent[len(recent)-e.recentCount:]
	}
	v.append("recent_avg_delay", mean(recent))
	v.append("recent_trend", mean(firstDifferences(recent)))

	intervals := paymentIntervals(history)
	v.append("avg_interval", mean(intervals))
	v.append("interval_std", sampleStd(intervals))

	v.append("preferred_day", float64(modeInt(weekdays(history))))
	v.append("preferred_month", float64(modeInt(months(history))))

	last := history[len(history)-1]
	for _, w := range e.windows {
		windowMean, windowCount := rollingWindow(history, last.PaymentDate, w)
		v.append(fmt.Sprintf("delay_mean_%dd", w), windowMean)
		v.append(fmt.Sprintf("payment_count_%dd", w), windowCount)
	}

	v.LastPaymentDate = last.PaymentDate
	v.append("last_delay", last.DelayDays)
	v.append("days_since_last_payment", payment.DaysBetween(last.PaymentDate, e.now()))

	if amounts, ok := amountsOf(history); ok {
		v.append("avg_amount", mean(amounts))
		if last.Amount != nil {
			v.append("last_amount", *last.Amount)
		} else {
			v.append("last_amount", 0)
		}
	}

	return v
}

// rollingWindow reports the mean delay and record count inside the
// trailing window of the given size, anchored at the customer's own
// latest payment date. A window with no matching records reports 0 for
// both, never NaN.
func rollingWindow(history []payment.Record, anchor time.Time, windowDays int) (meanDelay, count float64) {
	start := anchor.AddDate(0, 0, -windowDays)
	var sum float64
	var n int
	for _, r := range history {
		if r.PaymentDate.Before(start) {
			continue
		}
		sum += r.DelayDays
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), float64(n)
}

func paymentIntervals(history []payment.Record) []float64 {
	intervals := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		intervals = append(intervals, payment.DaysBetween(history[i-1].PaymentDate, history[i].PaymentDate))
	}
	return intervals
}

func weekdays(history []payment.Record) []int {
	out := make([]int, len(history))
	for i, r := range history {
		out[i] = int(r.PaymentDate.Weekday())
	}
	return out
}

func months(history []payment.Record) []int {
	out := make([]int, len(history))
	for i, r := range history {
		out[i] = int(r.PaymentDate.Month())
	}
	return out
}

func amountsOf(history []payment.Record) ([]float64, bool) {
	amounts := make([]float64, 0, len(history))
	for _, r := range history {
		if r.Amount != nil {
			amounts = append(amounts, *r.Amount)
		}
	}
	return amounts, len(amounts) > 0
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStd is the n-1 standard deviation. Fewer than two samples yield
// 0 rather than NaN so downstream arithmetic stays finite.
func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

func minOf(vals []float64) float64 {
	out := vals[0]
	for _, v := range vals[1:] {
		if v < out {
			out = v
		}
	}
	return out
}

func maxOf(vals []float64) float64 {
	out := vals[0]
	for _, v := range vals[1:] {
		if v > out {
			out = v
		}
	}
	return out
}

func firstDifferences(vals []float64) []float64 {
	diffs := make([]float64, 0, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		diffs = append(diffs, vals[i]-vals[i-1])
	}
	return diffs
}

// modeInt returns the most frequent value; ties break to the lowest
// value. Tie behavior is implementation-defined and not load-bearing.
func modeInt(vals []int) int {
	counts := make(map[int]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	best, bestCount := 0, 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}
