package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/lendops/paydate/internal/adapters/http/api"
	service "github.com/lendops/paydate/internal/app"
	"github.com/lendops/paydate/internal/sampledata"
	"github.com/lendops/paydate/pkg/logger"
)

// TestServiceEndToEnd drives the whole stack the way main wires it:
// generated data on disk, a real service, and the HTTP API on top.
func TestServiceEndToEnd(t *testing.T) {
	convey.Convey("Given a freshly wired service over generated data", t, func() {
		if err := logger.Init(); err != nil {
			t.Fatal(err)
		}
		ctx := context.Background()

		dir := t.TempDir()
		dataPath := filepath.Join(dir, "payment_history.csv")
		modelPath := filepath.Join(dir, "model.json")

		gen := sampledata.New(
			sampledata.WithCustomers(12),
			sampledata.WithPaymentsPerCustomer(8),
			sampledata.WithSeed(42),
		)
		written, err := gen.WriteCSV(ctx, dataPath)
		convey.So(err, convey.ShouldBeNil)
		convey.So(written, convey.ShouldBeGreaterThan, 0)

		svc := service.New(
			service.WithDataPath(dataPath),
			service.WithModelPath(modelPath),
			service.WithBoostingParams(20, 4, 0.1),
		)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		convey.Convey("Health reports no model before the first training run", func() {
			resp, err := http.Get(srv.URL + "/api/health")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			var health struct {
				ModelLoaded bool `json:"model_loaded"`
			}
			convey.So(json.NewDecoder(resp.Body).Decode(&health), convey.ShouldBeNil)
			convey.So(health.ModelLoaded, convey.ShouldBeFalse)
		})

		convey.Convey("Training then predicting works through the API", func() {
			resp, err := http.Post(srv.URL+"/api/train", "application/json", nil)
			convey.So(err, convey.ShouldBeNil)
			resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			resp, err = http.Post(srv.URL+"/api/predict", "application/json",
				strings.NewReader(`{"customer_id":"CUST_0001"}`))
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			var prediction struct {
				CustomerID           string  `json:"customer_id"`
				PredictedPaymentDate string  `json:"predicted_payment_date"`
				ConfidenceScore      float64 `json:"confidence_score"`
			}
			convey.So(json.NewDecoder(resp.Body).Decode(&prediction), convey.ShouldBeNil)
			convey.So(prediction.CustomerID, convey.ShouldEqual, "CUST_0001")
			convey.So(prediction.PredictedPaymentDate, convey.ShouldNotBeEmpty)
			convey.So(prediction.ConfidenceScore, convey.ShouldBeBetweenOrEqual, 0.5, 0.95)
		})

		convey.Convey("The customer catalog matches the generated data", func() {
			resp, err := http.Get(srv.URL + "/api/customers")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			var catalog struct {
				Count int `json:"count"`
			}
			convey.So(json.NewDecoder(resp.Body).Decode(&catalog), convey.ShouldBeNil)
			convey.So(catalog.Count, convey.ShouldEqual, 12)
		})

		convey.Convey("The metrics endpoint scrapes", func() {
			resp, err := http.Get(srv.URL + "/metrics")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})
	})
}
