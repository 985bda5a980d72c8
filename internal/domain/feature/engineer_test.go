package feature

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lendops/paydate/internal/domain/payment"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// history builds sorted records with delays derived from the gaps
// between consecutive payment dates.
func history(customerID string, dates ...time.Time) []payment.Record {
	records := make([]payment.Record, len(dates))
	for i, d := range dates {
		records[i] = payment.Record{CustomerID: customerID, PaymentDate: d}
	}
	payment.SortByPaymentDate(records)
	payment.ComputeDelays(records)
	return records
}

func TestVector(t *testing.T) {
	Convey("Given a customer paying monthly", t, func() {
		records := history("A",
			date(2024, time.January, 10),
			date(2024, time.February, 12),
			date(2024, time.March, 11),
			date(2024, time.April, 10),
		)
		eng := New(WithClock(fixedClock(date(2024, time.April, 20))))

		v := eng.Vector(records, "A")
		So(v, ShouldNotBeNil)

		Convey("Aggregate delay statistics come out of the actual gaps", func() {
			// Delays: 0, 33, 28, 30.
			total, _ := v.Get("total_payments")
			So(total, ShouldEqual, 4)
			avg, _ := v.Get("avg_delay")
			So(avg, ShouldAlmostEqual, 22.75, 1e-9)
			maxD, _ := v.Get("max_delay")
			So(maxD, ShouldEqual, 33)
			minD, _ := v.Get("min_delay")
			So(minD, ShouldEqual, 0)
		})

		Convey("Recency features use the trailing three payments", func() {
			recentAvg, _ := v.Get("recent_avg_delay")
			So(recentAvg, ShouldAlmostEqual, (33.0+28+30)/3, 1e-9)
			trend, _ := v.Get("recent_trend")
			So(trend, ShouldAlmostEqual, (30.0-33)/2, 1e-9)
		})

		Convey("Intervals track the calendar gaps", func() {
			avgInterval, _ := v.Get("avg_interval")
			So(avgInterval, ShouldAlmostEqual, (33.0+28+30)/3, 1e-9)
		})

		Convey("Recency to the clock is measured from the last payment", func() {
			since, _ := v.Get("days_since_last_payment")
			So(since, ShouldEqual, 10)
			So(v.LastPaymentDate, ShouldEqual, date(2024, time.April, 10))
		})

		Convey("No amount columns appear when the dataset has no amounts", func() {
			_, ok := v.Get("avg_amount")
			So(ok, ShouldBeFalse)
			_, ok = v.Get("last_amount")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("A single-record history yields no vector", t, func() {
		records := history("B", date(2024, time.May, 1))
		So(New().Vector(records, "B"), ShouldBeNil)
	})

	Convey("An unknown customer yields no vector", t, func() {
		records := history("A", date(2024, time.May, 1), date(2024, time.June, 1))
		So(New().Vector(records, "NOBODY"), ShouldBeNil)
	})

	Convey("Amount columns appear as soon as any record carries one", t, func() {
		amt := 120.50
		records := history("A",
			date(2024, time.January, 1),
			date(2024, time.February, 1),
			date(2024, time.March, 1),
		)
		records[1].Amount = &amt

		v := New(WithClock(fixedClock(date(2024, time.March, 5)))).Vector(records, "A")
		So(v, ShouldNotBeNil)

		avgAmount, ok := v.Get("avg_amount")
		So(ok, ShouldBeTrue)
		So(avgAmount, ShouldAlmostEqual, 120.50, 1e-9)

		// The last record has no amount, so the column zero-fills.
		lastAmount, ok := v.Get("last_amount")
		So(ok, ShouldBeTrue)
		So(lastAmount, ShouldEqual, 0)
	})
}

func TestRollingWindows(t *testing.T) {
	Convey("Windows anchor at the customer's last payment, not the clock", t, func() {
		records := history("A",
			date(2024, time.January, 1),
			date(2024, time.February, 1),
			date(2024, time.March, 1),
		)
		// Clock far in the future; window membership must not change.
		eng := New(
			WithWindows([]int{7, 40}),
			WithClock(fixedClock(date(2025, time.January, 1))),
		)
		v := eng.Vector(records, "A")
		So(v, ShouldNotBeNil)

		Convey("The 7-day window holds only the final payment", func() {
			count, _ := v.Get("payment_count_7d")
			So(count, ShouldEqual, 1)
			meanDelay, _ := v.Get("delay_mean_7d")
			So(meanDelay, ShouldEqual, 29) // Feb 1 -> Mar 1
		})

		Convey("The 40-day window reaches one payment further back", func() {
			count, _ := v.Get("payment_count_40d")
			So(count, ShouldEqual, 2)
			meanDelay, _ := v.Get("delay_mean_40d")
			So(meanDelay, ShouldAlmostEqual, (31.0+29)/2, 1e-9)
		})
	})

	Convey("A sparse history keeps only the anchor payment in a short window", t, func() {
		records := history("A",
			date(2024, time.January, 1),
			date(2024, time.June, 1),
		)
		v := New(WithWindows([]int{7})).Vector(records, "A")
		So(v, ShouldNotBeNil)

		count, _ := v.Get("payment_count_7d")
		So(count, ShouldEqual, 1)
	})

	Convey("rollingWindow with no qualifying records reports zeros, never NaN", t, func() {
		records := history("A", date(2024, time.January, 1))
		meanDelay, count := rollingWindow(records, date(2024, time.June, 1), 7)
		So(meanDelay, ShouldEqual, 0)
		So(count, ShouldEqual, 0)
	})
}

func TestStatisticsHelpers(t *testing.T) {
	Convey("sampleStd uses the n-1 denominator and degrades to zero", t, func() {
		So(sampleStd([]float64{2, 4, 4, 4, 5, 5, 7, 9}), ShouldAlmostEqual, 2.13809, 1e-4)
		So(sampleStd([]float64{42}), ShouldEqual, 0)
		So(sampleStd(nil), ShouldEqual, 0)
	})

	Convey("modeInt breaks ties toward the lowest value", t, func() {
		So(modeInt([]int{3, 1, 3, 1}), ShouldEqual, 1)
		So(modeInt([]int{5, 5, 2}), ShouldEqual, 5)
	})

	Convey("mean of nothing is zero", t, func() {
		So(mean(nil), ShouldEqual, 0)
	})
}

func TestAlignTo(t *testing.T) {
	Convey("Aligning to a persisted schema zero-fills and reports gaps", t, func() {
		records := history("A",
			date(2024, time.January, 1),
			date(2024, time.February, 1),
		)
		v := New(WithClock(fixedClock(date(2024, time.February, 2)))).Vector(records, "A")
		So(v, ShouldNotBeNil)

		schema := []string{"total_payments", "avg_amount", "avg_delay"}
		values, filled := v.AlignTo(schema)

		So(len(values), ShouldEqual, 3)
		So(values[0], ShouldEqual, 2)
		So(values[1], ShouldEqual, 0)
		So(filled, ShouldResemble, []string{"avg_amount"})
	})
}
