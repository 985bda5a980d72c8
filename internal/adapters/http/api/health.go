// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lendops/paydate/pkg/metrics"
)

// healthResponse mirrors the JSON schema for GET /api/health.
type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	LLMEnabled  bool   `json:"llm_enabled"`
	Timestamp   string `json:"timestamp"`
}

// HealthHandler handles health check and metrics requests.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HandleHealth handles GET /api/health requests. The service is healthy
// even before the first training run; model_loaded tells callers whether
// predictions will succeed.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		ModelLoaded: h.deps.ModelLoaded(),
		LLMEnabled:  h.deps.LLMEnabled(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleMetrics serves the Prometheus scrape endpoint from the custom
// metrics registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
