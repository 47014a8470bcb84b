package web

import (
	"net/http"
	"strconv"

	"orderhub/internal/core"
)

// createCustomer handles POST /api/customers.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var req core.CustomerInput
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.svc.Customers.Create(r.Context(), claims.OrgID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

// getCustomer handles GET /api/customers/{id}.
func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	customer, err := h.svc.Customers.Get(r.Context(), claims.OrgID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// updateCustomer handles PUT /api/customers/{id}.
func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req core.CustomerInput
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.svc.Customers.Update(r.Context(), claims.OrgID, id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// listCustomers handles GET /api/customers.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	customers, err := h.svc.Customers.List(r.Context(), claims.OrgID, q.Get("search"), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if customers == nil {
		customers = []core.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}
