package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"orderhub/internal/core"
)

// Services bundles the domain services the HTTP layer fronts.
type Services struct {
	Orders    core.OrderService
	Products  core.ProductService
	Customers core.CustomerService
	Inventory core.InventoryService
}

// Options carries handler configuration.
type Options struct {
	AllowedOrigins string
	JWTSecret      string
	RateLimit      string // limiter notation, e.g. "300-M"
	Logger         *zap.Logger
}

// Handler holds the services and the chi router.
type Handler struct {
	svc       Services
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc Services, opts Options) (http.Handler, error) {
	h := &Handler{
		svc:       svc,
		jwtSecret: opts.JWTSecret,
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rateLimit, err := RateLimit(opts.RateLimit)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer)
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(rateLimit)
	r.Use(Metrics)

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	// ── Protected API (401 JSON if unauthenticated) ───────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// Orders
		r.Get("/api/orders", h.listOrders)
		r.Post("/api/orders", h.createOrder)
		r.Get("/api/orders/{id}", h.getOrder)
		r.Put("/api/orders/{id}", h.editOrder)
		r.Patch("/api/orders/{id}/status", h.updateOrderStatus)
		r.Patch("/api/orders/{id}/payment", h.updateOrderPayment)
		r.Post("/api/orders/{id}/cancel", h.cancelOrder)
		r.Delete("/api/orders/{id}", h.deleteOrder)

		// Products
		r.Get("/api/products", h.listProducts)
		r.Post("/api/products", h.createProduct)
		r.Get("/api/products/{id}", h.getProduct)
		r.Put("/api/products/{id}", h.updateProduct)
		r.Delete("/api/products/{id}", h.deleteProduct)
		r.Patch("/api/products/{id}/stock", h.adjustProductStock)
		r.Get("/api/products/{id}/movements", h.listProductMovements)
		r.Get("/api/products/low-stock", h.listLowStockProducts)

		// Customers
		r.Get("/api/customers", h.listCustomers)
		r.Post("/api/customers", h.createCustomer)
		r.Get("/api/customers/{id}", h.getCustomer)
		r.Put("/api/customers/{id}", h.updateCustomer)
	})

	h.router = r
	return r, nil
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// idParam extracts the {id} URL parameter, writing a 400 when it is not a
// positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id", "VALIDATION_ERROR", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
