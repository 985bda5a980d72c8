package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/lendops/paydate/internal/app"
	"github.com/lendops/paydate/internal/engine"
)

type stubDeps struct {
	predictErr   error
	trainErr     error
	modelLoaded  bool
	llmEnabled   bool
	lastUseLLM   bool
	lastDataPath string
}

func (s *stubDeps) Predict(_ context.Context, customerID string, useLLM bool) (*service.Prediction, error) {
	s.lastUseLLM = useLLM
	if s.predictErr != nil {
		return nil, s.predictErr
	}
	p := &service.Prediction{}
	p.CustomerID = customerID
	p.PredictedPaymentDate = "2024-07-08"
	p.ConfidenceScore = 0.8
	if useLLM {
		p.Explanation = "Expected to pay around July 8."
	}
	return p, nil
}

func (s *stubDeps) PredictBatch(ctx context.Context, customerIDs []string, useLLM bool) (*service.BatchPrediction, error) {
	if len(customerIDs) == 0 {
		customerIDs = []string{"CUST001", "CUST002"}
	}
	batch := &service.BatchPrediction{Requested: len(customerIDs)}
	for _, id := range customerIDs {
		if id == "GHOST" {
			continue
		}
		p, _ := s.Predict(ctx, id, useLLM)
		batch.Predictions = append(batch.Predictions, *p)
	}
	batch.Succeeded = len(batch.Predictions)
	return batch, nil
}

func (s *stubDeps) Train(_ context.Context, dataPath string) (*engine.TrainingMetrics, error) {
	s.lastDataPath = dataPath
	if s.trainErr != nil {
		return nil, s.trainErr
	}
	return &engine.TrainingMetrics{TrainMAE: 1.5, TestMAE: 2.5}, nil
}

func (s *stubDeps) Customers(context.Context) ([]service.CustomerSummary, error) {
	return []service.CustomerSummary{
		{CustomerID: "CUST001", TotalPayments: 12, FirstPayment: "2023-07-05", LastPayment: "2024-06-07"},
		{CustomerID: "CUST002", TotalPayments: 10, FirstPayment: "2023-09-01", LastPayment: "2024-06-01"},
	}, nil
}

func (s *stubDeps) CustomerHistory(_ context.Context, customerID string) ([]service.HistoryRow, error) {
	if customerID == "GHOST" {
		return nil, service.ErrUnknownCustomer
	}
	return []service.HistoryRow{{PaymentDate: "2024-06-07", DelayDays: 2}}, nil
}

func (s *stubDeps) ModelLoaded() bool { return s.modelLoaded }
func (s *stubDeps) LLMEnabled() bool  { return s.llmEnabled }

func newTestMux(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps).Register(context.Background(), mux)
	return mux
}

func doJSON(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlePredict(t *testing.T) {
	Convey("Given the API wired to a working service", t, func() {
		deps := &stubDeps{modelLoaded: true}
		mux := newTestMux(deps)

		Convey("A valid request returns the prediction", func() {
			rec := doJSON(mux, http.MethodPost, "/api/predict", `{"customer_id":"CUST001"}`)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var p service.Prediction
			So(json.Unmarshal(rec.Body.Bytes(), &p), ShouldBeNil)
			So(p.CustomerID, ShouldEqual, "CUST001")
			So(deps.lastUseLLM, ShouldBeFalse)
		})

		Convey("use_llm is forwarded and the explanation serialized", func() {
			rec := doJSON(mux, http.MethodPost, "/api/predict", `{"customer_id":"CUST001","use_llm":true}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastUseLLM, ShouldBeTrue)
			So(rec.Body.String(), ShouldContainSubstring, "explanation")
		})

		Convey("A blank customer_id is a 400", func() {
			rec := doJSON(mux, http.MethodPost, "/api/predict", `{"customer_id":"  "}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Malformed JSON is a 400", func() {
			rec := doJSON(mux, http.MethodPost, "/api/predict", `{"customer_id"`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET on a POST route is a 404", func() {
			rec := doJSON(mux, http.MethodGet, "/api/predict", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Domain errors map to distinct status codes", t, func() {
		Convey("Insufficient history is a 400", func() {
			mux := newTestMux(&stubDeps{predictErr: engine.ErrInsufficientHistory})
			rec := doJSON(mux, http.MethodPost, "/api/predict", `{"customer_id":"CUST001"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A missing model is a 503", func() {
			mux := newTestMux(&stubDeps{predictErr: engine.ErrModelNotFound})
			rec := doJSON(mux, http.MethodPost, "/api/predict", `{"customer_id":"CUST001"}`)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestHandlePredictBatch(t *testing.T) {
	Convey("Given a batch with one unknown customer", t, func() {
		mux := newTestMux(&stubDeps{})
		rec := doJSON(mux, http.MethodPost, "/api/predict/batch",
			`{"customer_ids":["CUST001","GHOST","CUST002"]}`)
		So(rec.Code, ShouldEqual, http.StatusOK)

		var batch service.BatchPrediction
		So(json.Unmarshal(rec.Body.Bytes(), &batch), ShouldBeNil)
		So(batch.Requested, ShouldEqual, 3)
		So(batch.Succeeded, ShouldEqual, 2)
		So(len(batch.Predictions), ShouldEqual, 2)
	})

	Convey("An empty id list means every customer", t, func() {
		mux := newTestMux(&stubDeps{})
		rec := doJSON(mux, http.MethodPost, "/api/predict/batch", `{"customer_ids":[]}`)
		So(rec.Code, ShouldEqual, http.StatusOK)

		var batch service.BatchPrediction
		So(json.Unmarshal(rec.Body.Bytes(), &batch), ShouldBeNil)
		So(batch.Requested, ShouldEqual, 2)
		So(batch.Succeeded, ShouldEqual, 2)
	})

	Convey("A blank id inside the list is a 400", t, func() {
		mux := newTestMux(&stubDeps{})
		rec := doJSON(mux, http.MethodPost, "/api/predict/batch", `{"customer_ids":["A",""]}`)
		So(rec.Code, ShouldEqual, http.StatusBadRequest)
	})
}

func TestHandleCustomers(t *testing.T) {
	Convey("GET /api/customers lists per-customer summaries with a count", t, func() {
		mux := newTestMux(&stubDeps{})
		rec := doJSON(mux, http.MethodGet, "/api/customers", "")
		So(rec.Code, ShouldEqual, http.StatusOK)

		var resp customersResponse
		So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
		So(resp.Count, ShouldEqual, 2)
		So(resp.Customers[0].CustomerID, ShouldEqual, "CUST001")
		So(resp.Customers[0].TotalPayments, ShouldEqual, 12)
		So(resp.Customers[1].LastPayment, ShouldEqual, "2024-06-01")
	})

	Convey("GET /api/customer/{id}/history returns the rows", t, func() {
		mux := newTestMux(&stubDeps{})
		rec := doJSON(mux, http.MethodGet, "/api/customer/CUST001/history", "")
		So(rec.Code, ShouldEqual, http.StatusOK)
		So(rec.Body.String(), ShouldContainSubstring, "2024-06-07")
	})

	Convey("An unknown customer is a 404", t, func() {
		mux := newTestMux(&stubDeps{})
		rec := doJSON(mux, http.MethodGet, "/api/customer/GHOST/history", "")
		So(rec.Code, ShouldEqual, http.StatusNotFound)
	})

	Convey("A malformed history path is a 404", t, func() {
		mux := newTestMux(&stubDeps{})
		rec := doJSON(mux, http.MethodGet, "/api/customer/CUST001/payments", "")
		So(rec.Code, ShouldEqual, http.StatusNotFound)
	})
}

func TestHandleTrain(t *testing.T) {
	Convey("POST /api/train with an empty body trains on the default data", t, func() {
		deps := &stubDeps{}
		mux := newTestMux(deps)
		rec := doJSON(mux, http.MethodPost, "/api/train", "")
		So(rec.Code, ShouldEqual, http.StatusOK)
		So(rec.Body.String(), ShouldContainSubstring, `"status":"trained"`)
		So(rec.Body.String(), ShouldContainSubstring, "test_mae")
		So(deps.lastDataPath, ShouldBeBlank)
	})

	Convey("An explicit data_path is forwarded", t, func() {
		deps := &stubDeps{}
		mux := newTestMux(deps)
		rec := doJSON(mux, http.MethodPost, "/api/train", `{"data_path":"alt/history.csv"}`)
		So(rec.Code, ShouldEqual, http.StatusOK)
		So(deps.lastDataPath, ShouldEqual, "alt/history.csv")
	})

	Convey("Training without usable data is a 400", t, func() {
		mux := newTestMux(&stubDeps{trainErr: engine.ErrInsufficientData})
		rec := doJSON(mux, http.MethodPost, "/api/train", "")
		So(rec.Code, ShouldEqual, http.StatusBadRequest)
	})
}

func TestHandleHealth(t *testing.T) {
	Convey("GET /api/health reports model and LLM readiness", t, func() {
		mux := newTestMux(&stubDeps{modelLoaded: true, llmEnabled: false})
		rec := doJSON(mux, http.MethodGet, "/api/health", "")
		So(rec.Code, ShouldEqual, http.StatusOK)

		var resp healthResponse
		So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
		So(resp.Status, ShouldEqual, "healthy")
		So(resp.ModelLoaded, ShouldBeTrue)
		So(resp.LLMEnabled, ShouldBeFalse)
		So(resp.Timestamp, ShouldNotBeBlank)
	})
}

func TestCORS(t *testing.T) {
	Convey("API responses carry CORS headers and preflights short-circuit", t, func() {
		mux := newTestMux(&stubDeps{})

		rec := doJSON(mux, http.MethodGet, "/api/customers", "")
		So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		So(rec.Header().Get("X-Request-ID"), ShouldNotBeBlank)

		pre := doJSON(mux, http.MethodOptions, "/api/predict", "")
		So(pre.Code, ShouldEqual, http.StatusNoContent)
	})
}
