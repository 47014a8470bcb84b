package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, org_id, sku, name, description, base_price, cost_price, tax_rate,
       stock_quantity, low_stock_threshold, is_active, created_at, updated_at, deleted_at`

// ProductService manages the product catalog. Deletes are soft: the row keeps
// its history (order items reference it) but disappears from reads, and its
// SKU becomes reusable.
type ProductService interface {
	Create(ctx context.Context, orgID int64, in ProductInput) (*Product, error)
	Update(ctx context.Context, orgID, id int64, in ProductInput) (*Product, error)
	Delete(ctx context.Context, orgID, id int64) error
	Get(ctx context.Context, orgID, id int64) (*Product, error)
	List(ctx context.Context, orgID int64, filter ProductFilter) ([]Product, error)
}

type productService struct {
	pool *pgxpool.Pool
}

func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

func validateProductInput(in ProductInput) error {
	if strings.TrimSpace(in.SKU) == "" {
		return validationErr("sku", "is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return validationErr("name", "is required")
	}
	if in.BasePrice.IsNegative() {
		return validationErr("base_price", "cannot be negative, got %s", in.BasePrice)
	}
	if in.CostPrice.IsNegative() {
		return validationErr("cost_price", "cannot be negative, got %s", in.CostPrice)
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) {
		return validationErr("tax_rate", "must be between 0 and 100, got %s", in.TaxRate)
	}
	if in.StockQuantity < 0 {
		return validationErr("stock_quantity", "cannot be negative, got %d", in.StockQuantity)
	}
	if in.LowStockThreshold < 0 {
		return validationErr("low_stock_threshold", "cannot be negative, got %d", in.LowStockThreshold)
	}
	return nil
}

func (s *productService) Create(ctx context.Context, orgID int64, in ProductInput) (*Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (org_id, sku, name, description, base_price, cost_price, tax_rate,
		                      stock_quantity, low_stock_threshold, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, orgID, in.SKU, in.Name, in.Description, in.BasePrice, in.CostPrice, in.TaxRate,
		in.StockQuantity, in.LowStockThreshold, in.IsActive).Scan(&id)
	if err != nil {
		return nil, asConflict(err, fmt.Sprintf("a product with SKU %s already exists", in.SKU))
	}
	return s.Get(ctx, orgID, id)
}

// Update replaces the catalog fields. Stock is deliberately excluded: it only
// moves through InventoryService so every change leaves a movement record.
func (s *productService) Update(ctx context.Context, orgID, id int64, in ProductInput) (*Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET sku = $1, name = $2, description = $3, base_price = $4, cost_price = $5,
		    tax_rate = $6, low_stock_threshold = $7, is_active = $8, updated_at = NOW()
		WHERE id = $9 AND org_id = $10 AND deleted_at IS NULL
	`, in.SKU, in.Name, in.Description, in.BasePrice, in.CostPrice,
		in.TaxRate, in.LowStockThreshold, in.IsActive, id, orgID)
	if err != nil {
		return nil, asConflict(err, fmt.Sprintf("a product with SKU %s already exists", in.SKU))
	}
	if tag.RowsAffected() == 0 {
		return nil, notFoundErr("product", id)
	}
	return s.Get(ctx, orgID, id)
}

func (s *productService) Delete(ctx context.Context, orgID, id int64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE products SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND org_id = $2 AND deleted_at IS NULL
	`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundErr("product", id)
	}
	return nil
}

func (s *productService) Get(ctx context.Context, orgID, id int64) (*Product, error) {
	var p Product
	err := s.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1 AND org_id = $2 AND deleted_at IS NULL
	`, id, orgID).Scan(
		&p.ID, &p.OrgID, &p.SKU, &p.Name, &p.Description, &p.BasePrice, &p.CostPrice, &p.TaxRate,
		&p.StockQuantity, &p.LowStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundErr("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	p.derive()
	return &p, nil
}

func (s *productService) List(ctx context.Context, orgID int64, filter ProductFilter) ([]Product, error) {
	where := []string{"org_id = $1", "deleted_at IS NULL"}
	args := []any{orgID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(sku ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.LowStock {
		where = append(where, "stock_quantity <= low_stock_threshold")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT `+productColumns+`
		FROM products
		WHERE %s
		ORDER BY sku
		LIMIT $%d OFFSET $%d
	`, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.OrgID, &p.SKU, &p.Name, &p.Description, &p.BasePrice, &p.CostPrice, &p.TaxRate,
			&p.StockQuantity, &p.LowStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.derive()
		products = append(products, p)
	}
	return products, rows.Err()
}
