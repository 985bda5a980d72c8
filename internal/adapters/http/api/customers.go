// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	service "github.com/lendops/paydate/internal/app"
)

// customersResponse mirrors the JSON schema for GET /api/customers.
type customersResponse struct {
	Customers []service.CustomerSummary `json:"customers"`
	Count     int                       `json:"count"`
}

// CustomersHandler handles customer catalog requests.
type CustomersHandler struct {
	deps Dependencies
}

// NewCustomersHandler creates a new customers handler.
func NewCustomersHandler(deps Dependencies) *CustomersHandler {
	return &CustomersHandler{deps: deps}
}

// HandleListCustomers handles GET /api/customers requests.
func (h *CustomersHandler) HandleListCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	customers, err := h.deps.Customers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customersResponse{Customers: customers, Count: len(customers)})
}

// HandleCustomerHistory handles GET /api/customer/{customer_id}/history
// requests.
func (h *CustomersHandler) HandleCustomerHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameters after /api/customer/
	path := strings.TrimPrefix(r.URL.Path, "/api/customer/")
	customerID, action, found := strings.Cut(path, "/")
	if !found || action != "history" || customerID == "" {
		http.NotFound(w, r)
		return
	}

	rows, err := h.deps.CustomerHistory(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customer_id": customerID,
		"payments":    rows,
		"count":       len(rows),
	})
}
