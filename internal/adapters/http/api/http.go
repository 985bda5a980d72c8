// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lendops/paydate/internal/adapters/history"
	service "github.com/lendops/paydate/internal/app"
	"github.com/lendops/paydate/internal/engine"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predict(ctx context.Context, customerID string, useLLM bool) (*service.Prediction, error)
	PredictBatch(ctx context.Context, customerIDs []string, useLLM bool) (*service.BatchPrediction, error)
	Train(ctx context.Context, dataPath string) (*engine.TrainingMetrics, error)
	Customers(ctx context.Context) ([]service.CustomerSummary, error)
	CustomerHistory(ctx context.Context, customerID string) ([]service.HistoryRow, error)
	ModelLoaded() bool
	LLMEnabled() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	predictHandler   *PredictHandler
	batchHandler     *BatchHandler
	trainHandler     *TrainHandler
	customersHandler *CustomersHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(deps),
		predictHandler:   NewPredictHandler(deps),
		batchHandler:     NewBatchHandler(deps),
		trainHandler:     NewTrainHandler(deps),
		customersHandler: NewCustomersHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/api/health", with(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/api/predict/batch", with(s.batchHandler.HandlePredictBatch, "predict_batch"))
	mux.HandleFunc("/api/predict", with(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/api/train", with(s.trainHandler.HandleTrain, "train"))
	mux.HandleFunc("/api/customers", with(s.customersHandler.HandleListCustomers, "customers"))
	mux.HandleFunc("/api/customer/", with(s.customersHandler.HandleCustomerHistory, "customer_history"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
}

// with stacks the standard middleware onto a handler.
func with(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(CORSMiddleware(MetricsMiddleware(next, endpoint)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates engine and service errors to HTTP status
// codes so handlers stay free of per-endpoint mapping tables.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInsufficientHistory),
		errors.Is(err, engine.ErrInsufficientData):
		writeError(w, http.StatusBadRequest, "insufficient_history", err)
	case errors.Is(err, history.ErrDataFormat):
		writeError(w, http.StatusBadRequest, "bad_data_format", err)
	case errors.Is(err, engine.ErrModelNotFound):
		writeError(w, http.StatusServiceUnavailable, "model_not_trained", err)
	case errors.Is(err, service.ErrUnknownCustomer):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
