package sampledata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lendops/paydate/internal/adapters/history"
	"github.com/lendops/paydate/internal/domain/payment"
	"github.com/lendops/paydate/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func fixedNow() time.Time {
	return time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g := New(
			WithCustomers(10),
			WithPaymentsPerCustomer(6),
			WithSeed(7),
			WithClock(fixedNow),
		)
		records := g.Generate()
		So(len(records), ShouldBeGreaterThan, 0)

		Convey("Every record is complete and never in the future", func() {
			for _, r := range records {
				So(r.CustomerID, ShouldStartWith, "CUST_")
				So(r.ScheduledDate, ShouldNotBeNil)
				So(r.Amount, ShouldNotBeNil)
				So(*r.Amount, ShouldBeBetweenOrEqual, 5000, 50000)
				So(r.PaymentDate.After(fixedNow()), ShouldBeFalse)
			}
		})

		Convey("All requested customers appear", func() {
			So(len(payment.CustomerIDs(records)), ShouldEqual, 10)
		})

		Convey("The same seed reproduces the same dataset", func() {
			again := New(
				WithCustomers(10),
				WithPaymentsPerCustomer(6),
				WithSeed(7),
				WithClock(fixedNow),
			).Generate()
			So(len(again), ShouldEqual, len(records))
			So(again[0].CustomerID, ShouldEqual, records[0].CustomerID)
			So(again[0].PaymentDate, ShouldEqual, records[0].PaymentDate)
		})

		Convey("A different seed produces a different dataset", func() {
			other := New(
				WithCustomers(10),
				WithPaymentsPerCustomer(6),
				WithSeed(8),
				WithClock(fixedNow),
			).Generate()
			So(other, ShouldNotResemble, records)
		})
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Generated CSV round-trips through the history loader", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "data", "payment_history.csv")

		g := New(WithCustomers(5), WithPaymentsPerCustomer(4), WithSeed(1), WithClock(fixedNow))
		written, err := g.WriteCSV(ctx, path)
		So(err, ShouldBeNil)
		So(written, ShouldBeGreaterThan, 0)

		records, err := history.NewLoader().Load(ctx, path)
		So(err, ShouldBeNil)
		So(len(records), ShouldEqual, written)
		So(records[0].ScheduledDate, ShouldNotBeNil)
		So(records[0].Amount, ShouldNotBeNil)
	})
}
