package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InventoryService guards the stock_quantity counter on products. Every
// mutation goes through a conditional UPDATE so the counter can never go
// negative, and every mutation appends a stock_movements row.
type InventoryService interface {
	// Standalone operations (manage their own transactions).
	Reserve(ctx context.Context, orgID, productID int64, quantity int, userID int64) error
	Release(ctx context.Context, orgID, productID int64, quantity int, userID int64) error
	Adjust(ctx context.Context, orgID, productID int64, newQuantity int, notes string, userID int64) error
	ListMovements(ctx context.Context, orgID, productID int64, limit int) ([]StockMovement, error)
	ListLowStock(ctx context.Context, orgID int64) ([]Product, error)

	// TX-scoped operations: work within a caller-provided transaction.
	// Used by OrderService to keep stock changes atomic with order writes.
	ReserveTx(ctx context.Context, tx pgx.Tx, orgID, productID int64, quantity int, orderID, userID int64) error
	ReleaseTx(ctx context.Context, tx pgx.Tx, orgID, productID int64, quantity int, orderID, userID int64) error
}

type inventoryService struct {
	pool *pgxpool.Pool
}

func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

// ── Standalone operations ─────────────────────────────────────────────────────

func (s *inventoryService) Reserve(ctx context.Context, orgID, productID int64, quantity int, userID int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return s.ReserveTx(ctx, tx, orgID, productID, quantity, 0, userID)
	})
}

func (s *inventoryService) Release(ctx context.Context, orgID, productID int64, quantity int, userID int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return s.ReleaseTx(ctx, tx, orgID, productID, quantity, 0, userID)
	})
}

// Adjust sets the stock counter to an absolute value (stock take, correction).
func (s *inventoryService) Adjust(ctx context.Context, orgID, productID int64, newQuantity int, notes string, userID int64) error {
	if newQuantity < 0 {
		return validationErr("stock_quantity", "cannot be negative, got %d", newQuantity)
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var oldQuantity int
		err := tx.QueryRow(ctx, `
			SELECT stock_quantity FROM products
			WHERE id = $1 AND org_id = $2 AND deleted_at IS NULL
			FOR UPDATE
		`, productID, orgID).Scan(&oldQuantity)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("product", productID)
		}
		if err != nil {
			return fmt.Errorf("failed to lock product %d: %w", productID, err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE products SET stock_quantity = $1, updated_at = NOW()
			WHERE id = $2
		`, newQuantity, productID)
		if err != nil {
			return fmt.Errorf("failed to adjust stock for product %d: %w", productID, err)
		}

		return s.recordMovement(ctx, tx, orgID, productID, nil, MovementAdjust,
			newQuantity-oldQuantity,
			fmt.Sprintf("Stock adjusted from %d to %d: %s", oldQuantity, newQuantity, notes),
			userID)
	})
}

func (s *inventoryService) ListMovements(ctx context.Context, orgID, productID int64, limit int) ([]StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, org_id, product_id, order_id, movement_type, quantity, notes, created_by, created_at
		FROM stock_movements
		WHERE org_id = $1 AND product_id = $2
		ORDER BY id DESC
		LIMIT $3
	`, orgID, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	var movements []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.OrgID, &m.ProductID, &m.OrderID, &m.MovementType,
			&m.Quantity, &m.Notes, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (s *inventoryService) ListLowStock(ctx context.Context, orgID int64) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE org_id = $1 AND deleted_at IS NULL AND is_active = true
		  AND stock_quantity <= low_stock_threshold
		ORDER BY sku
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// ── TX-scoped operations ──────────────────────────────────────────────────────

// ReserveTx decrements stock for a sale. The decrement and the availability
// check are one statement: the UPDATE only matches when enough stock remains,
// so concurrent reservations cannot oversell even without an explicit lock.
func (s *inventoryService) ReserveTx(ctx context.Context, tx pgx.Tx, orgID, productID int64, quantity int, orderID, userID int64) error {
	if quantity <= 0 {
		return validationErr("quantity", "must be greater than zero, got %d", quantity)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND org_id = $3 AND deleted_at IS NULL
		  AND stock_quantity >= $1
	`, quantity, productID, orgID)
	if err != nil {
		return fmt.Errorf("failed to reserve stock for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing product from an insufficient one.
		var sku string
		var available int
		err := tx.QueryRow(ctx, `
			SELECT sku, stock_quantity FROM products
			WHERE id = $1 AND org_id = $2 AND deleted_at IS NULL
		`, productID, orgID).Scan(&sku, &available)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("product", productID)
		}
		if err != nil {
			return fmt.Errorf("failed to inspect product %d after reserve miss: %w", productID, err)
		}
		return &InsufficientStockError{ProductID: productID, SKU: sku, Requested: quantity, Available: available}
	}

	return s.recordMovement(ctx, tx, orgID, productID, orderRef(orderID), MovementReserve, -quantity,
		reserveNote(orderID), userID)
}

// ReleaseTx returns previously reserved stock (cancellation, edit, delete).
func (s *inventoryService) ReleaseTx(ctx context.Context, tx pgx.Tx, orgID, productID int64, quantity int, orderID, userID int64) error {
	if quantity <= 0 {
		return validationErr("quantity", "must be greater than zero, got %d", quantity)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = NOW()
		WHERE id = $2 AND org_id = $3 AND deleted_at IS NULL
	`, quantity, productID, orgID)
	if err != nil {
		return fmt.Errorf("failed to release stock for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundErr("product", productID)
	}

	return s.recordMovement(ctx, tx, orgID, productID, orderRef(orderID), MovementRelease, quantity,
		releaseNote(orderID), userID)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *inventoryService) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *inventoryService) recordMovement(ctx context.Context, tx pgx.Tx, orgID, productID int64,
	orderID *int64, movementType string, quantity int, notes string, userID int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_movements (org_id, product_id, order_id, movement_type, quantity, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, orgID, productID, orderID, movementType, quantity, notes, userID)
	if err != nil {
		return fmt.Errorf("failed to insert stock movement: %w", err)
	}
	return nil
}

func orderRef(orderID int64) *int64 {
	if orderID == 0 {
		return nil
	}
	return &orderID
}

func reserveNote(orderID int64) string {
	if orderID == 0 {
		return "Stock reserved"
	}
	return fmt.Sprintf("Stock reserved for order ID %d", orderID)
}

func releaseNote(orderID int64) string {
	if orderID == 0 {
		return "Stock released"
	}
	return fmt.Sprintf("Stock released for order ID %d", orderID)
}
