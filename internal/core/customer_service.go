package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerService manages the customer master.
type CustomerService interface {
	Create(ctx context.Context, orgID int64, in CustomerInput) (*Customer, error)
	Update(ctx context.Context, orgID, id int64, in CustomerInput) (*Customer, error)
	Get(ctx context.Context, orgID, id int64) (*Customer, error)
	List(ctx context.Context, orgID int64, search string, limit, offset int) ([]Customer, error)
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

func validateCustomerInput(in CustomerInput) error {
	if strings.TrimSpace(in.Code) == "" {
		return validationErr("code", "is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return validationErr("name", "is required")
	}
	return nil
}

func (s *customerService) Create(ctx context.Context, orgID int64, in CustomerInput) (*Customer, error) {
	if err := validateCustomerInput(in); err != nil {
		return nil, err
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (org_id, code, name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, orgID, in.Code, in.Name, in.Email, in.Phone, in.Address).Scan(&id)
	if err != nil {
		return nil, asConflict(err, fmt.Sprintf("a customer with code %s already exists", in.Code))
	}
	return s.Get(ctx, orgID, id)
}

func (s *customerService) Update(ctx context.Context, orgID, id int64, in CustomerInput) (*Customer, error) {
	if err := validateCustomerInput(in); err != nil {
		return nil, err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE customers
		SET code = $1, name = $2, email = $3, phone = $4, address = $5
		WHERE id = $6 AND org_id = $7
	`, in.Code, in.Name, in.Email, in.Phone, in.Address, id, orgID)
	if err != nil {
		return nil, asConflict(err, fmt.Sprintf("a customer with code %s already exists", in.Code))
	}
	if tag.RowsAffected() == 0 {
		return nil, notFoundErr("customer", id)
	}
	return s.Get(ctx, orgID, id)
}

func (s *customerService) Get(ctx context.Context, orgID, id int64) (*Customer, error) {
	var c Customer
	err := s.pool.QueryRow(ctx, `
		SELECT id, org_id, code, name, email, phone, address, is_active, created_at
		FROM customers
		WHERE id = $1 AND org_id = $2
	`, id, orgID).Scan(&c.ID, &c.OrgID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundErr("customer", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer %d: %w", id, err)
	}
	return &c, nil
}

func (s *customerService) List(ctx context.Context, orgID int64, search string, limit, offset int) ([]Customer, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	where := "org_id = $1"
	args := []any{orgID}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(" AND (code ILIKE $%d OR name ILIKE $%d)", len(args), len(args))
	}
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, org_id, code, name, email, phone, address, is_active, created_at
		FROM customers
		WHERE %s
		ORDER BY code
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
