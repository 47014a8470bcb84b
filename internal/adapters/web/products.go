package web

import (
	"net/http"
	"strconv"

	"orderhub/internal/core"
)

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var req core.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.svc.Products.Create(r.Context(), claims.OrgID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// getProduct handles GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	product, err := h.svc.Products.Get(r.Context(), claims.OrgID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	q := r.URL.Query()

	filter := core.ProductFilter{
		Search:   q.Get("search"),
		LowStock: q.Get("low_stock") == "true",
	}
	if v := q.Get("is_active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	products, err := h.svc.Products.List(r.Context(), claims.OrgID, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if products == nil {
		products = []core.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// updateProduct handles PUT /api/products/{id}.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req core.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.svc.Products.Update(r.Context(), claims.OrgID, id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// deleteProduct handles DELETE /api/products/{id}.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Products.Delete(r.Context(), claims.OrgID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// adjustProductStock handles PATCH /api/products/{id}/stock — sets the stock
// counter to an absolute value.
func (h *Handler) adjustProductStock(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req struct {
		StockQuantity int    `json:"stock_quantity"`
		Notes         string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.Inventory.Adjust(r.Context(), claims.OrgID, id, req.StockQuantity, req.Notes, claims.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	product, err := h.svc.Products.Get(r.Context(), claims.OrgID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// listProductMovements handles GET /api/products/{id}/movements.
func (h *Handler) listProductMovements(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	movements, err := h.svc.Inventory.ListMovements(r.Context(), claims.OrgID, id, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if movements == nil {
		movements = []core.StockMovement{}
	}
	writeJSON(w, http.StatusOK, movements)
}

// listLowStockProducts handles GET /api/products/low-stock.
func (h *Handler) listLowStockProducts(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	products, err := h.svc.Inventory.ListLowStock(r.Context(), claims.OrgID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if products == nil {
		products = []core.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}
