// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lendops/paydate/internal/engine"
)

// trainRequest mirrors the JSON schema for POST /api/train. The body is
// optional; an absent or empty data_path trains on the configured
// history file.
type trainRequest struct {
	DataPath string `json:"data_path"`
}

// trainResponse mirrors the JSON schema for POST /api/train.
type trainResponse struct {
	Status  string                  `json:"status"`
	Metrics *engine.TrainingMetrics `json:"metrics"`
}

// TrainHandler handles model training requests.
type TrainHandler struct {
	deps Dependencies
}

// NewTrainHandler creates a new train handler.
func NewTrainHandler(deps Dependencies) *TrainHandler {
	return &TrainHandler{deps: deps}
}

// HandleTrain handles POST /api/train requests. Training is synchronous:
// the response carries the evaluation metrics of the model now serving.
func (h *TrainHandler) HandleTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req trainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	metrics, err := h.deps.Train(r.Context(), req.DataPath)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trainResponse{Status: "trained", Metrics: metrics})
}
