package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS payment_orders (
		order_id     TEXT PRIMARY KEY,
		merchant_id  TEXT NOT NULL,
		amount       NUMERIC(12, 2) NOT NULL,
		currency     TEXT NOT NULL,
		student_name TEXT NOT NULL DEFAULT '',
		phone        TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS fee_submissions (
		id               UUID PRIMARY KEY,
		submitted_at     TIMESTAMPTZ NOT NULL,
		student_name     TEXT NOT NULL,
		admission_no     TEXT NOT NULL,
		parent_name      TEXT NOT NULL,
		grade            TEXT NOT NULL,
		medium           TEXT NOT NULL,
		phone            TEXT NOT NULL,
		fees_type        TEXT NOT NULL,
		month            TEXT NOT NULL,
		payment_method   TEXT NOT NULL,
		amount           NUMERIC(12, 2) NOT NULL,
		receipt_url      TEXT NOT NULL DEFAULT '',
		payhere_order_id TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_fee_submissions_payhere_order
		ON fee_submissions (payhere_order_id) WHERE payment_method = 'payhere'`,
}

// Migrate creates the tables used by the service if they do not exist.
func Migrate(ctx context.Context, q Querier) error {
	for _, stmt := range schema {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
