package web

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"orderhub/internal/core"
)

type orderRequest struct {
	CustomerID           int64                 `json:"customer_id"`
	OrderDate            string                `json:"order_date"`
	ExpectedDeliveryDate *string               `json:"expected_delivery_date"`
	PaymentMethod        string                `json:"payment_method"`
	DiscountPercentage   decimal.Decimal       `json:"discount_percentage"`
	DiscountAmount       decimal.Decimal       `json:"discount_amount"`
	ShippingAddress      string                `json:"shipping_address"`
	BillingAddress       string                `json:"billing_address"`
	Notes                string                `json:"notes"`
	Items                []core.OrderItemInput `json:"items"`
}

// createOrder handles POST /api/orders.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.svc.Orders.CreateOrder(r.Context(), claims.OrgID, claims.UserID, core.OrderInput{
		CustomerID:           req.CustomerID,
		OrderDate:            req.OrderDate,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		PaymentMethod:        req.PaymentMethod,
		DiscountPercentage:   req.DiscountPercentage,
		DiscountAmount:       req.DiscountAmount,
		ShippingAddress:      req.ShippingAddress,
		BillingAddress:       req.BillingAddress,
		Notes:                req.Notes,
		Items:                req.Items,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// getOrder handles GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	order, err := h.svc.Orders.GetOrder(r.Context(), claims.OrgID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// listOrders handles GET /api/orders with filter query parameters.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	q := r.URL.Query()

	var filter core.OrderFilter
	if v := q.Get("status"); v != "" {
		status := core.OrderStatus(v)
		if !core.ValidOrderStatus(status) {
			writeError(w, r, "unknown status "+v, "VALIDATION_ERROR", http.StatusBadRequest)
			return
		}
		filter.Status = &status
	}
	if v := q.Get("payment_status"); v != "" {
		payment := core.PaymentStatus(v)
		if !core.ValidPaymentStatus(payment) {
			writeError(w, r, "unknown payment status "+v, "VALIDATION_ERROR", http.StatusBadRequest)
			return
		}
		filter.PaymentStatus = &payment
	}
	if v := q.Get("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, r, "invalid customer_id", "VALIDATION_ERROR", http.StatusBadRequest)
			return
		}
		filter.CustomerID = &id
	}
	filter.DateFrom = q.Get("date_from")
	filter.DateTo = q.Get("date_to")
	filter.Search = q.Get("search")
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	orders, err := h.svc.Orders.ListOrders(r.Context(), claims.OrgID, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if orders == nil {
		orders = []core.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// editOrder handles PUT /api/orders/{id}. Absent fields are left unchanged; a
// present items array replaces the whole item set.
func (h *Handler) editOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Items                *[]core.OrderItemInput `json:"items"`
		Status               *core.OrderStatus      `json:"status"`
		PaymentStatus        *core.PaymentStatus    `json:"payment_status"`
		PaidAmount           *decimal.Decimal       `json:"paid_amount"`
		PaymentMethod        *string                `json:"payment_method"`
		ExpectedDeliveryDate *string                `json:"expected_delivery_date"`
		Notes                *string                `json:"notes"`
		DiscountPercentage   *decimal.Decimal       `json:"discount_percentage"`
		DiscountAmount       *decimal.Decimal       `json:"discount_amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.svc.Orders.EditOrder(r.Context(), claims.OrgID, id, claims.UserID, core.OrderUpdate{
		Items:                req.Items,
		Status:               req.Status,
		PaymentStatus:        req.PaymentStatus,
		PaidAmount:           req.PaidAmount,
		PaymentMethod:        req.PaymentMethod,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Notes:                req.Notes,
		DiscountPercentage:   req.DiscountPercentage,
		DiscountAmount:       req.DiscountAmount,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// updateOrderStatus handles PATCH /api/orders/{id}/status.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Status core.OrderStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.svc.Orders.UpdateStatus(r.Context(), claims.OrgID, id, claims.UserID, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// updateOrderPayment handles PATCH /api/orders/{id}/payment.
func (h *Handler) updateOrderPayment(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req struct {
		PaymentStatus core.PaymentStatus `json:"payment_status"`
		PaidAmount    *decimal.Decimal   `json:"paid_amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.svc.Orders.UpdatePayment(r.Context(), claims.OrgID, id, claims.UserID, req.PaymentStatus, req.PaidAmount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// cancelOrder handles POST /api/orders/{id}/cancel.
func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	order, err := h.svc.Orders.CancelOrder(r.Context(), claims.OrgID, id, claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// deleteOrder handles DELETE /api/orders/{id}.
func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Orders.DeleteOrder(r.Context(), claims.OrgID, id, claims.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}
