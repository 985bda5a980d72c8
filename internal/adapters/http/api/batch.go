// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Batch requests are bounded so one call cannot pin the server on an
// arbitrarily large portfolio.
const maxBatchSize = 1000

// batchRequest mirrors the JSON schema for POST /api/predict/batch. An
// empty customer_ids list asks for every customer in the history file.
type batchRequest struct {
	CustomerIDs []string `json:"customer_ids"`
	UseLLM      bool     `json:"use_llm"`
}

func (b batchRequest) validate() error {
	if len(b.CustomerIDs) > maxBatchSize {
		return errors.New("too many customer_ids")
	}
	for _, id := range b.CustomerIDs {
		if strings.TrimSpace(id) == "" {
			return errors.New("blank customer_id in customer_ids")
		}
	}
	return nil
}

// BatchHandler handles batch prediction requests.
type BatchHandler struct {
	deps Dependencies
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps Dependencies) *BatchHandler {
	return &BatchHandler{deps: deps}
}

// HandlePredictBatch handles POST /api/predict/batch requests. Customers
// that cannot be predicted are skipped, so a 200 response may hold fewer
// predictions than were requested.
func (h *BatchHandler) HandlePredictBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	batch, err := h.deps.PredictBatch(r.Context(), req.CustomerIDs, req.UseLLM)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}
