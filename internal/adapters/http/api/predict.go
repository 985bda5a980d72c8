// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// predictRequest mirrors the JSON schema for POST /api/predict.
type predictRequest struct {
	CustomerID string `json:"customer_id"`
	UseLLM     bool   `json:"use_llm"`
}

func (p predictRequest) validate() error {
	if strings.TrimSpace(p.CustomerID) == "" {
		return errors.New("missing customer_id")
	}
	return nil
}

// PredictHandler handles single-customer prediction requests.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /api/predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	prediction, err := h.deps.Predict(r.Context(), strings.TrimSpace(req.CustomerID), req.UseLLM)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}
