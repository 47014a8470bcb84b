package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"orderhub/internal/adapters/web"
	"orderhub/internal/core"
)

const testSecret = "test-secret"

// stubOrders lets each test plug in just the methods it exercises.
type stubOrders struct {
	core.OrderService
	createFn func(ctx context.Context, orgID, userID int64, in core.OrderInput) (*core.Order, error)
	getFn    func(ctx context.Context, orgID, orderID int64) (*core.Order, error)
	cancelFn func(ctx context.Context, orgID, orderID, userID int64) (*core.Order, error)
	statusFn func(ctx context.Context, orgID, orderID, userID int64, to core.OrderStatus) (*core.Order, error)
	listFn   func(ctx context.Context, orgID int64, filter core.OrderFilter) ([]core.Order, error)
	deleteFn func(ctx context.Context, orgID, orderID, userID int64) error
}

func (s *stubOrders) CreateOrder(ctx context.Context, orgID, userID int64, in core.OrderInput) (*core.Order, error) {
	return s.createFn(ctx, orgID, userID, in)
}

func (s *stubOrders) GetOrder(ctx context.Context, orgID, orderID int64) (*core.Order, error) {
	return s.getFn(ctx, orgID, orderID)
}

func (s *stubOrders) CancelOrder(ctx context.Context, orgID, orderID, userID int64) (*core.Order, error) {
	return s.cancelFn(ctx, orgID, orderID, userID)
}

func (s *stubOrders) UpdateStatus(ctx context.Context, orgID, orderID, userID int64, to core.OrderStatus) (*core.Order, error) {
	return s.statusFn(ctx, orgID, orderID, userID, to)
}

func (s *stubOrders) ListOrders(ctx context.Context, orgID int64, filter core.OrderFilter) ([]core.Order, error) {
	return s.listFn(ctx, orgID, filter)
}

func (s *stubOrders) DeleteOrder(ctx context.Context, orgID, orderID, userID int64) error {
	return s.deleteFn(ctx, orgID, orderID, userID)
}

func newTestHandler(t *testing.T, orders core.OrderService) http.Handler {
	t.Helper()
	h, err := web.NewHandler(web.Services{Orders: orders}, web.Options{
		JWTSecret: testSecret,
		RateLimit: "1000-S",
		Logger:    zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}
	return h
}

func signToken(t *testing.T, userID, orgID int64) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"org_id":  orgID,
		"role":    "staff",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code string) {
	t.Helper()
	var resp struct {
		Code      string `json:"code"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", rec.Body.String(), err)
	}
	if resp.RequestID == "" {
		t.Errorf("Error response missing request_id")
	}
	return resp.Code
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestHealthIsPublic(t *testing.T) {
	h := newTestHandler(t, &stubOrders{})
	rec := doRequest(t, h, http.MethodGet, "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	h := newTestHandler(t, &stubOrders{})

	t.Run("no token", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/orders/1", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
		if code := decodeError(t, rec); code != "UNAUTHORIZED" {
			t.Errorf("Expected UNAUTHORIZED, got %s", code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/orders/1", "not-a-jwt", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("token without org", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/orders/1", signToken(t, 1, 0), "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 without org claim, got %d", rec.Code)
		}
	})
}

func TestCreateOrder(t *testing.T) {
	var gotOrg, gotUser int64
	orders := &stubOrders{
		createFn: func(ctx context.Context, orgID, userID int64, in core.OrderInput) (*core.Order, error) {
			gotOrg, gotUser = orgID, userID
			return &core.Order{
				ID:          7,
				OrderNumber: "ORD-3-2026-000001",
				Status:      core.StatusDraft,
				Total:       decimal.NewFromInt(354),
			}, nil
		},
	}
	h := newTestHandler(t, orders)

	body := `{"customer_id": 1, "items": [{"product_id": 1, "quantity": 3}]}`
	rec := doRequest(t, h, http.MethodPost, "/api/orders", signToken(t, 9, 3), body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotOrg != 3 || gotUser != 9 {
		t.Errorf("Claims not threaded through: org=%d user=%d", gotOrg, gotUser)
	}

	var order core.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("Failed to decode order: %v", err)
	}
	if order.OrderNumber != "ORD-3-2026-000001" {
		t.Errorf("Unexpected order number %q", order.OrderNumber)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &core.ValidationError{Field: "quantity", Message: "must be greater than zero"},
			http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", &core.NotFoundError{Entity: "order", ID: 7},
			http.StatusNotFound, "NOT_FOUND"},
		{"insufficient stock", &core.InsufficientStockError{SKU: "WID-A", Requested: 5, Available: 2},
			http.StatusBadRequest, "INSUFFICIENT_STOCK"},
		{"invalid state", &core.InvalidStateError{Message: "cancelled orders cannot be edited"},
			http.StatusBadRequest, "INVALID_STATE"},
		{"conflict", &core.ConflictError{Message: "duplicate"},
			http.StatusConflict, "CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &stubOrders{
				createFn: func(ctx context.Context, orgID, userID int64, in core.OrderInput) (*core.Order, error) {
					return nil, tt.err
				},
			}
			h := newTestHandler(t, orders)
			rec := doRequest(t, h, http.MethodPost, "/api/orders", signToken(t, 1, 1), `{"customer_id": 1}`)
			if rec.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if code := decodeError(t, rec); code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, code)
			}
		})
	}
}

func TestBadIDParam(t *testing.T) {
	h := newTestHandler(t, &stubOrders{})
	rec := doRequest(t, h, http.MethodGet, "/api/orders/banana", signToken(t, 1, 1), "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-numeric id, got %d", rec.Code)
	}
}

func TestMalformedJSONBody(t *testing.T) {
	h := newTestHandler(t, &stubOrders{})
	rec := doRequest(t, h, http.MethodPost, "/api/orders", signToken(t, 1, 1), `{"customer_id": `)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "BAD_REQUEST" {
		t.Errorf("Expected BAD_REQUEST, got %s", code)
	}
}

func TestCancelOrderRoute(t *testing.T) {
	orders := &stubOrders{
		cancelFn: func(ctx context.Context, orgID, orderID, userID int64) (*core.Order, error) {
			return &core.Order{ID: orderID, Status: core.StatusCancelled}, nil
		},
	}
	h := newTestHandler(t, orders)
	rec := doRequest(t, h, http.MethodPost, "/api/orders/5/cancel", signToken(t, 1, 1), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var order core.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatal(err)
	}
	if order.Status != core.StatusCancelled {
		t.Errorf("Expected cancelled, got %s", order.Status)
	}
}

func TestStatusUpdateRoute(t *testing.T) {
	orders := &stubOrders{
		statusFn: func(ctx context.Context, orgID, orderID, userID int64, to core.OrderStatus) (*core.Order, error) {
			return &core.Order{ID: orderID, Status: to}, nil
		},
	}
	h := newTestHandler(t, orders)
	rec := doRequest(t, h, http.MethodPatch, "/api/orders/5/status", signToken(t, 1, 1), `{"status": "confirmed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteOrderReturnsOK(t *testing.T) {
	orders := &stubOrders{
		deleteFn: func(ctx context.Context, orgID, orderID, userID int64) error {
			return nil
		},
	}
	h := newTestHandler(t, orders)
	rec := doRequest(t, h, http.MethodDelete, "/api/orders/5", signToken(t, 1, 1), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if resp.Message == "" {
		t.Error("Expected a confirmation message body")
	}
}

func TestListOrdersQueryParams(t *testing.T) {
	var got core.OrderFilter
	orders := &stubOrders{
		listFn: func(ctx context.Context, orgID int64, filter core.OrderFilter) ([]core.Order, error) {
			got = filter
			return nil, nil
		},
	}
	h := newTestHandler(t, orders)

	rec := doRequest(t, h, http.MethodGet,
		"/api/orders?status=confirmed&payment_status=paid&customer_id=4&date_from=2026-01-01&date_to=2026-06-30&search=rush&limit=5&offset=10",
		signToken(t, 1, 1), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if got.Status == nil || *got.Status != core.StatusConfirmed {
		t.Errorf("status not threaded: %+v", got.Status)
	}
	if got.PaymentStatus == nil || *got.PaymentStatus != core.PaymentPaid {
		t.Errorf("payment_status not threaded: %+v", got.PaymentStatus)
	}
	if got.CustomerID == nil || *got.CustomerID != 4 {
		t.Errorf("customer_id not threaded: %+v", got.CustomerID)
	}
	if got.DateFrom != "2026-01-01" || got.DateTo != "2026-06-30" {
		t.Errorf("date range not threaded: %q .. %q", got.DateFrom, got.DateTo)
	}
	if got.Search != "rush" {
		t.Errorf("search not threaded: %q", got.Search)
	}
	if got.Limit != 5 || got.Offset != 10 {
		t.Errorf("pagination not threaded: limit=%d offset=%d", got.Limit, got.Offset)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/orders?status=bogus", signToken(t, 1, 1), "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown status filter, got %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestHandler(t, &stubOrders{})

	rec := doRequest(t, h, http.MethodGet, "/api/health", "", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected generated X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "client-supplied-123")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if got := rec2.Header().Get("X-Request-ID"); got != "client-supplied-123" {
		t.Errorf("Expected echoed request id, got %q", got)
	}
}
