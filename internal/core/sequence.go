package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// NextOrderNumberTx allocates the next order number for an organization
// within the caller's transaction. The upsert takes a row lock on the
// (org_id, year) counter that is held until the transaction commits, so two
// concurrent creators in the same organization serialize and can never
// observe the same number. The number counts up per organization per year:
//
//	ORD-{orgID}-{year}-{seq:06d}
func NextOrderNumberTx(ctx context.Context, tx pgx.Tx, orgID int64, now time.Time) (string, error) {
	year := now.Year()
	var seq int64
	err := tx.QueryRow(ctx, `
		INSERT INTO order_sequences (org_id, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (org_id, year)
		DO UPDATE SET last_number = order_sequences.last_number + 1
		RETURNING last_number
	`, orgID, year).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("failed to advance order sequence: %w", err)
	}
	return FormatOrderNumber(orgID, year, seq), nil
}

// FormatOrderNumber renders an allocated sequence value as an order number.
func FormatOrderNumber(orgID int64, year int, seq int64) string {
	return fmt.Sprintf("ORD-%d-%d-%06d", orgID, year, seq)
}
