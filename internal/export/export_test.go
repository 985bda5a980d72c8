package export

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lendops/paydate/internal/domain/payment"
	"github.com/lendops/paydate/internal/engine"
	"github.com/lendops/paydate/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubPredictor struct {
	failFor map[string]bool
}

func (s *stubPredictor) PredictNextPaymentDate(_ context.Context, customerID, _ string) (*engine.Result, error) {
	if s.failFor[customerID] {
		return nil, engine.ErrInsufficientHistory
	}
	demand := "2024-08-05"
	return &engine.Result{
		CustomerID:           customerID,
		PredictedPaymentDate: "2024-08-07",
		LastPaymentDate:      "2024-07-06",
		NextDemandDate:       &demand,
		ConfidenceScore:      0.8,
		AverageDelay:         2.25,
	}, nil
}

type stubLoader struct {
	ids []string
}

func (s *stubLoader) Load(context.Context, string) ([]payment.Record, error) {
	records := make([]payment.Record, len(s.ids))
	for i, id := range s.ids {
		records[i] = payment.Record{
			CustomerID:  id,
			PaymentDate: time.Date(2024, time.July, 1+i, 0, 0, 0, 0, time.UTC),
		}
	}
	return records, nil
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given a portfolio with one unpredictable customer", t, func() {
		ids := []string{"CUST_0001", "CUST_0002", "CUST_0003", "CUST_0004"}
		exporter := New(
			&stubPredictor{failFor: map[string]bool{"CUST_0003": true}},
			&stubLoader{ids: ids},
			WithWorkers(3),
		)
		outPath := filepath.Join(t.TempDir(), "predictions.csv")

		summary, err := exporter.Run(ctx, "history.csv", outPath)
		So(err, ShouldBeNil)

		Convey("The summary accounts for every customer", func() {
			So(summary.Requested, ShouldEqual, 4)
			So(summary.Written, ShouldEqual, 3)
			So(summary.Skipped, ShouldEqual, 1)
			So(summary.ExportID, ShouldNotBeEmpty)
		})

		Convey("Rows keep the history file's customer order despite concurrency", func() {
			rows := readCSV(t, outPath)
			So(len(rows), ShouldEqual, 4) // header + 3 rows
			So(rows[0][0], ShouldEqual, "Customer ID")
			So(rows[1][0], ShouldEqual, "CUST_0001")
			So(rows[2][0], ShouldEqual, "CUST_0002")
			So(rows[3][0], ShouldEqual, "CUST_0004")
		})

		Convey("Formatted fields match the spreadsheet conventions", func() {
			rows := readCSV(t, outPath)
			So(rows[1][5], ShouldEqual, "2.25")
			So(rows[1][6], ShouldEqual, "80.0%")
			So(rows[1][3], ShouldEqual, "2024-08-05")
		})
	})

	Convey("A loader failure aborts the run before any file is created", t, func() {
		exporter := New(&stubPredictor{}, failingLoader{}, WithWorkers(1))
		outPath := filepath.Join(t.TempDir(), "predictions.csv")

		_, err := exporter.Run(ctx, "history.csv", outPath)
		So(err, ShouldNotBeNil)
		_, statErr := os.Stat(outPath)
		So(os.IsNotExist(statErr), ShouldBeTrue)
	})
}

type failingLoader struct{}

func (failingLoader) Load(context.Context, string) ([]payment.Record, error) {
	return nil, errors.New("no such file")
}
