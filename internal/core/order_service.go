package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"orderhub/internal/audit"
)

// OrderService manages the order lifecycle. Every mutating operation runs in
// a single transaction so order state and stock levels can never diverge: a
// failed reservation rolls back the whole order, a cancellation releases all
// of it or none.
type OrderService interface {
	CreateOrder(ctx context.Context, orgID, userID int64, in OrderInput) (*Order, error)
	// EditOrder replaces header fields and, when Items is non-nil, the whole
	// item set. Stock held by the old items is released and the new items are
	// reserved inside the same transaction.
	EditOrder(ctx context.Context, orgID, orderID, userID int64, upd OrderUpdate) (*Order, error)
	UpdateStatus(ctx context.Context, orgID, orderID, userID int64, to OrderStatus) (*Order, error)
	UpdatePayment(ctx context.Context, orgID, orderID, userID int64, to PaymentStatus, paidAmount *decimal.Decimal) (*Order, error)
	// CancelOrder releases all reserved stock and marks the order cancelled.
	CancelOrder(ctx context.Context, orgID, orderID, userID int64) (*Order, error)
	// DeleteOrder soft-deletes the order, releasing stock unless the order
	// was already cancelled (its stock is back on the shelf).
	DeleteOrder(ctx context.Context, orgID, orderID, userID int64) error

	GetOrder(ctx context.Context, orgID, orderID int64) (*Order, error)
	ListOrders(ctx context.Context, orgID int64, filter OrderFilter) ([]Order, error)
}

type orderService struct {
	pool  *pgxpool.Pool
	inv   InventoryService
	audit audit.Sink
}

func NewOrderService(pool *pgxpool.Pool, inv InventoryService, sink audit.Sink) OrderService {
	return &orderService{pool: pool, inv: inv, audit: sink}
}

// pricedItem is an order line with its product snapshot and computed amounts.
type pricedItem struct {
	productID int64
	sku       string
	name      string
	quantity  int
	unitPrice decimal.Decimal
	taxRate   decimal.Decimal
	discount  decimal.Decimal
	amounts   LineAmounts
}

// ── Order Lifecycle ──────────────────────────────────────────────────────────

func (s *orderService) CreateOrder(ctx context.Context, orgID, userID int64, in OrderInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, validationErr("items", "order must have at least one item")
	}
	orderDate, err := normalizeDate(in.OrderDate)
	if err != nil {
		return nil, validationErr("order_date", "must be YYYY-MM-DD, got %q", in.OrderDate)
	}
	if in.ExpectedDeliveryDate != nil {
		if _, err := normalizeDate(*in.ExpectedDeliveryDate); err != nil {
			return nil, validationErr("expected_delivery_date", "must be YYYY-MM-DD, got %q", *in.ExpectedDeliveryDate)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Resolve customer. A customer in another organization is reported as
	// not found, never as forbidden.
	var customerID int64
	err = tx.QueryRow(ctx,
		"SELECT id FROM customers WHERE id = $1 AND org_id = $2",
		in.CustomerID, orgID,
	).Scan(&customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundErr("customer", in.CustomerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	priced, err := s.priceItems(ctx, tx, orgID, in.Items)
	if err != nil {
		return nil, err
	}

	totals, err := computeTotals(priced, in.DiscountPercentage, in.DiscountAmount)
	if err != nil {
		return nil, err
	}

	orderNumber, err := NextOrderNumberTx(ctx, tx, orgID, time.Now())
	if err != nil {
		return nil, err
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (org_id, customer_id, order_number, order_date, expected_delivery_date,
		                    status, payment_status, payment_method, shipping_address, billing_address,
		                    subtotal, discount_percentage, discount_amount, tax_amount, total,
		                    notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`, orgID, customerID, orderNumber, orderDate, in.ExpectedDeliveryDate,
		StatusDraft, PaymentPending, in.PaymentMethod, in.ShippingAddress, in.BillingAddress,
		Round2(totals.Subtotal), in.DiscountPercentage, Round2(totals.DiscountAmount),
		Round2(totals.TaxAmount), Round2(totals.Total),
		in.Notes, userID).Scan(&orderID)
	if err != nil {
		return nil, asConflict(err, fmt.Sprintf("order number %s already exists", orderNumber))
	}

	if err := s.insertItems(ctx, tx, orderID, priced); err != nil {
		return nil, err
	}
	for _, item := range priced {
		if err := s.inv.ReserveTx(ctx, tx, orgID, item.productID, item.quantity, orderID, userID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	s.audit.Record(ctx, audit.NewEvent(orgID, userID, "order.created", "order", orderID, orderNumber))
	return s.GetOrder(ctx, orgID, orderID)
}

func (s *orderService) EditOrder(ctx context.Context, orgID, orderID, userID int64, upd OrderUpdate) (*Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cur, err := s.lockOrder(ctx, tx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	if cur.Status == StatusCancelled {
		return nil, invalidStateErr("cancelled orders cannot be edited")
	}
	if isClosed(cur.Status, cur.PaymentStatus) {
		return nil, invalidStateErr("delivered and fully paid orders cannot be edited")
	}

	status := cur.Status
	if upd.Status != nil && *upd.Status != cur.Status {
		if !ValidOrderStatus(*upd.Status) {
			return nil, validationErr("status", "unknown status %q", *upd.Status)
		}
		if !CanTransition(cur.Status, *upd.Status) {
			return nil, invalidStateErr("cannot change status from %s to %s", cur.Status, *upd.Status)
		}
		status = *upd.Status
	}

	payment := cur.PaymentStatus
	paidAmount := cur.PaidAmount
	if upd.PaymentStatus != nil && *upd.PaymentStatus != cur.PaymentStatus {
		if !ValidPaymentStatus(*upd.PaymentStatus) {
			return nil, validationErr("payment_status", "unknown payment status %q", *upd.PaymentStatus)
		}
		if !CanTransitionPayment(cur.PaymentStatus, *upd.PaymentStatus) {
			return nil, invalidStateErr("cannot change payment status from %s to %s", cur.PaymentStatus, *upd.PaymentStatus)
		}
		payment = *upd.PaymentStatus
	}
	if upd.PaidAmount != nil {
		paidAmount = *upd.PaidAmount
	}

	paymentMethod := cur.PaymentMethod
	if upd.PaymentMethod != nil {
		paymentMethod = *upd.PaymentMethod
	}
	expectedDelivery := cur.ExpectedDeliveryDate
	if upd.ExpectedDeliveryDate != nil {
		if *upd.ExpectedDeliveryDate == "" {
			expectedDelivery = nil
		} else {
			if _, err := normalizeDate(*upd.ExpectedDeliveryDate); err != nil {
				return nil, validationErr("expected_delivery_date", "must be YYYY-MM-DD, got %q", *upd.ExpectedDeliveryDate)
			}
			expectedDelivery = upd.ExpectedDeliveryDate
		}
	}
	notes := cur.Notes
	if upd.Notes != nil {
		notes = *upd.Notes
	}
	discountPct := cur.DiscountPercentage
	if upd.DiscountPercentage != nil {
		discountPct = *upd.DiscountPercentage
	}
	discountAmt := cur.DiscountAmount
	if upd.DiscountAmount != nil {
		discountAmt = *upd.DiscountAmount
	}

	var priced []pricedItem
	if upd.Items != nil {
		if len(*upd.Items) == 0 {
			return nil, validationErr("items", "order must have at least one item")
		}
		// Give back what the old items hold before reserving the new set, so
		// reducing a line's quantity never fails on its own reservation.
		for _, item := range cur.Items {
			if err := s.inv.ReleaseTx(ctx, tx, orgID, item.ProductID, item.Quantity, orderID, userID); err != nil {
				return nil, err
			}
		}
		if _, err := tx.Exec(ctx, "DELETE FROM order_items WHERE order_id = $1", orderID); err != nil {
			return nil, fmt.Errorf("failed to clear order items: %w", err)
		}

		priced, err = s.priceItems(ctx, tx, orgID, *upd.Items)
		if err != nil {
			return nil, err
		}
		if err := s.insertItems(ctx, tx, orderID, priced); err != nil {
			return nil, err
		}
		for _, item := range priced {
			if err := s.inv.ReserveTx(ctx, tx, orgID, item.productID, item.quantity, orderID, userID); err != nil {
				return nil, err
			}
		}
	} else {
		priced = pricedFromItems(cur.Items)
	}

	totals, err := computeTotals(priced, discountPct, discountAmt)
	if err != nil {
		return nil, err
	}
	if paidAmount.IsNegative() {
		return nil, validationErr("paid_amount", "cannot be negative, got %s", paidAmount)
	}
	if paidAmount.GreaterThan(Round2(totals.Total)) {
		return nil, validationErr("paid_amount", "cannot exceed order total %s, got %s", Round2(totals.Total), paidAmount)
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET status = $1, payment_status = $2, payment_method = $3, paid_amount = $4,
		    expected_delivery_date = $5, notes = $6,
		    subtotal = $7, discount_percentage = $8, discount_amount = $9,
		    tax_amount = $10, total = $11, updated_at = NOW()
		WHERE id = $12
	`, status, payment, paymentMethod, paidAmount,
		expectedDelivery, notes,
		Round2(totals.Subtotal), discountPct, Round2(totals.DiscountAmount),
		Round2(totals.TaxAmount), Round2(totals.Total), orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order edit: %w", err)
	}

	s.audit.Record(ctx, audit.NewEvent(orgID, userID, "order.updated", "order", orderID, cur.OrderNumber))
	return s.GetOrder(ctx, orgID, orderID)
}

func (s *orderService) UpdateStatus(ctx context.Context, orgID, orderID, userID int64, to OrderStatus) (*Order, error) {
	if !ValidOrderStatus(to) {
		return nil, validationErr("status", "unknown status %q", to)
	}
	if to == StatusCancelled {
		return nil, validationErr("status", "use the cancel operation to cancel an order")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cur, err := s.lockOrder(ctx, tx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(cur.Status, to) {
		return nil, invalidStateErr("cannot change status from %s to %s", cur.Status, to)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		to, orderID,
	); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	s.audit.Record(ctx, audit.NewEvent(orgID, userID, "order.status_changed", "order", orderID,
		fmt.Sprintf("%s → %s", cur.Status, to)))
	return s.GetOrder(ctx, orgID, orderID)
}

func (s *orderService) UpdatePayment(ctx context.Context, orgID, orderID, userID int64, to PaymentStatus, paidAmount *decimal.Decimal) (*Order, error) {
	if !ValidPaymentStatus(to) {
		return nil, validationErr("payment_status", "unknown payment status %q", to)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cur, err := s.lockOrder(ctx, tx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	if cur.Status == StatusCancelled {
		return nil, invalidStateErr("cancelled orders cannot take payments")
	}
	if !CanTransitionPayment(cur.PaymentStatus, to) {
		return nil, invalidStateErr("cannot change payment status from %s to %s", cur.PaymentStatus, to)
	}

	// An omitted amount settles the full total, whatever the target status.
	amount := cur.Total
	if paidAmount != nil {
		amount = *paidAmount
	}
	if amount.IsNegative() {
		return nil, validationErr("paid_amount", "cannot be negative, got %s", amount)
	}
	if amount.GreaterThan(cur.Total) {
		return nil, validationErr("paid_amount", "cannot exceed order total %s, got %s", cur.Total, amount)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE orders SET payment_status = $1, paid_amount = $2, updated_at = NOW() WHERE id = $3",
		to, amount, orderID,
	); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment update: %w", err)
	}

	s.audit.Record(ctx, audit.NewEvent(orgID, userID, "order.payment_changed", "order", orderID,
		fmt.Sprintf("%s → %s", cur.PaymentStatus, to)))
	return s.GetOrder(ctx, orgID, orderID)
}

func (s *orderService) CancelOrder(ctx context.Context, orgID, orderID, userID int64) (*Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cur, err := s.lockOrder(ctx, tx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	if cur.Status == StatusCancelled {
		return nil, invalidStateErr("order is already cancelled")
	}
	if cur.Status == StatusDelivered {
		return nil, invalidStateErr("delivered orders cannot be cancelled")
	}

	for _, item := range cur.Items {
		if err := s.inv.ReleaseTx(ctx, tx, orgID, item.ProductID, item.Quantity, orderID, userID); err != nil {
			return nil, err
		}
	}
	if _, err := tx.Exec(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		StatusCancelled, orderID,
	); err != nil {
		return nil, fmt.Errorf("failed to cancel order %d: %w", orderID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	s.audit.Record(ctx, audit.NewEvent(orgID, userID, "order.cancelled", "order", orderID, cur.OrderNumber))
	return s.GetOrder(ctx, orgID, orderID)
}

func (s *orderService) DeleteOrder(ctx context.Context, orgID, orderID, userID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cur, err := s.lockOrder(ctx, tx, orgID, orderID)
	if err != nil {
		return err
	}

	// A cancelled order already gave its stock back; releasing again would
	// double-count.
	if cur.Status != StatusCancelled {
		for _, item := range cur.Items {
			if err := s.inv.ReleaseTx(ctx, tx, orgID, item.ProductID, item.Quantity, orderID, userID); err != nil {
				return err
			}
		}
	}
	if _, err := tx.Exec(ctx,
		"UPDATE orders SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1",
		orderID,
	); err != nil {
		return fmt.Errorf("failed to delete order %d: %w", orderID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deletion: %w", err)
	}

	s.audit.Record(ctx, audit.NewEvent(orgID, userID, "order.deleted", "order", orderID, cur.OrderNumber))
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

const orderColumns = `o.id, o.org_id, o.customer_id, c.name, o.order_number, o.order_date,
       o.expected_delivery_date, o.status, o.payment_status, o.payment_method, o.paid_amount,
       o.shipping_address, o.billing_address, o.subtotal, o.discount_percentage,
       o.discount_amount, o.tax_amount, o.total, o.notes, o.created_by, o.created_at, o.updated_at`

func (s *orderService) GetOrder(ctx context.Context, orgID, orderID int64) (*Order, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1 AND o.org_id = $2 AND o.deleted_at IS NULL
	`, orderID, orgID)

	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundErr("order", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}

	items, err := s.loadItems(ctx, s.pool, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, orgID int64, filter OrderFilter) ([]Order, error) {
	where := []string{"o.org_id = $1", "o.deleted_at IS NULL"}
	args := []any{orgID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if filter.PaymentStatus != nil {
		args = append(args, *filter.PaymentStatus)
		where = append(where, fmt.Sprintf("o.payment_status = $%d", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		where = append(where, fmt.Sprintf("o.customer_id = $%d", len(args)))
	}
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		where = append(where, fmt.Sprintf("o.order_date >= $%d", len(args)))
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		where = append(where, fmt.Sprintf("o.order_date <= $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(o.order_number ILIKE $%d OR o.notes ILIKE $%d)", len(args), len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT `+orderColumns+`
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE %s
		ORDER BY o.id DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(where, " AND "), len(args)-1, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

// lockOrder fetches an order header and its items under FOR UPDATE so
// concurrent lifecycle operations on the same order serialize.
func (s *orderService) lockOrder(ctx context.Context, tx pgx.Tx, orgID, orderID int64) (*Order, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1 AND o.org_id = $2 AND o.deleted_at IS NULL
		FOR UPDATE OF o
	`, orderID, orgID)

	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundErr("order", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock order %d: %w", orderID, err)
	}

	items, err := s.loadItems(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// priceItems resolves each requested line against the catalog and computes
// its amounts. Prices and tax rates default to the product's current values
// and are snapshotted onto the line.
func (s *orderService) priceItems(ctx context.Context, tx pgx.Tx, orgID int64, items []OrderItemInput) ([]pricedItem, error) {
	priced := make([]pricedItem, 0, len(items))
	for _, in := range items {
		if in.Quantity <= 0 {
			return nil, validationErr("quantity", "must be greater than zero, got %d", in.Quantity)
		}

		var sku, name string
		var basePrice, taxRate decimal.Decimal
		err := tx.QueryRow(ctx, `
			SELECT sku, name, base_price, tax_rate
			FROM products
			WHERE id = $1 AND org_id = $2 AND deleted_at IS NULL AND is_active = true
		`, in.ProductID, orgID).Scan(&sku, &name, &basePrice, &taxRate)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundErr("product", in.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product %d: %w", in.ProductID, err)
		}

		unitPrice := basePrice
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}
		rate := taxRate
		if in.TaxRate != nil {
			rate = *in.TaxRate
		}

		amounts, err := ComputeLineItem(in.Quantity, unitPrice, rate, in.DiscountAmount)
		if err != nil {
			return nil, err
		}
		priced = append(priced, pricedItem{
			productID: in.ProductID,
			sku:       sku,
			name:      name,
			quantity:  in.Quantity,
			unitPrice: unitPrice,
			taxRate:   rate,
			discount:  in.DiscountAmount,
			amounts:   amounts,
		})
	}
	return priced, nil
}

func (s *orderService) insertItems(ctx context.Context, tx pgx.Tx, orderID int64, items []pricedItem) error {
	for _, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, tax_rate,
			                         discount_amount, subtotal, tax_amount, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, orderID, item.productID, item.quantity, item.unitPrice, item.taxRate,
			item.discount, Round2(item.amounts.Subtotal), Round2(item.amounts.TaxAmount), Round2(item.amounts.Total))
		if err != nil {
			return fmt.Errorf("failed to insert order item for product %d: %w", item.productID, err)
		}
	}
	return nil
}

func (s *orderService) loadItems(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, orderID int64) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, p.sku, p.name, i.quantity, i.unit_price,
		       i.tax_rate, i.discount_amount, i.subtotal, i.tax_amount, i.total, i.created_at
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductSKU, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.TaxRate, &it.DiscountAmount,
			&it.Subtotal, &it.TaxAmount, &it.Total, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var orderDate time.Time
	var expected *time.Time
	err := row.Scan(
		&o.ID, &o.OrgID, &o.CustomerID, &o.CustomerName, &o.OrderNumber, &orderDate,
		&expected, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.PaidAmount,
		&o.ShippingAddress, &o.BillingAddress, &o.Subtotal, &o.DiscountPercentage,
		&o.DiscountAmount, &o.TaxAmount, &o.Total, &o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.OrderDate = orderDate.Format("2006-01-02")
	if expected != nil {
		d := expected.Format("2006-01-02")
		o.ExpectedDeliveryDate = &d
	}
	return &o, nil
}

// computeTotals bridges priced lines into ComputeOrderTotals.
func computeTotals(items []pricedItem, discountPct, discountAmt decimal.Decimal) (OrderAmounts, error) {
	lines := make([]LineAmounts, len(items))
	for i, item := range items {
		lines[i] = item.amounts
	}
	return ComputeOrderTotals(lines, discountPct, discountAmt)
}

// pricedFromItems rebuilds priced lines from persisted order items so an edit
// that only touches discounts can still recompute totals.
func pricedFromItems(items []OrderItem) []pricedItem {
	priced := make([]pricedItem, len(items))
	for i, it := range items {
		priced[i] = pricedItem{
			productID: it.ProductID,
			sku:       it.ProductSKU,
			name:      it.ProductName,
			quantity:  it.Quantity,
			unitPrice: it.UnitPrice,
			taxRate:   it.TaxRate,
			discount:  it.DiscountAmount,
			amounts: LineAmounts{
				Subtotal:  it.Subtotal,
				TaxAmount: it.TaxAmount,
				Total:     it.Total,
			},
		}
	}
	return priced
}

// normalizeDate validates a YYYY-MM-DD date, defaulting empty to today.
func normalizeDate(s string) (string, error) {
	if s == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", err
	}
	return s, nil
}
