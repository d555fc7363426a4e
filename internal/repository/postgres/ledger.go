package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"feeportal/internal/domain"
	"feeportal/internal/repository"
)

// uniqueViolation is the Postgres SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// LedgerRepository is a PostgreSQL implementation of repository.LedgerRepository.
type LedgerRepository struct {
	q Querier
}

// NewLedgerRepository creates a new PostgreSQL ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{q: db}
}

// Append adds a submission row, mapping the PayHere order uniqueness
// violation to repository.ErrDuplicate.
func (r *LedgerRepository) Append(ctx context.Context, s *domain.FeeSubmission) error {
	query := `
		INSERT INTO fee_submissions (
			id, submitted_at, student_name, admission_no, parent_name, grade, medium,
			phone, fees_type, month, payment_method, amount, receipt_url, payhere_order_id, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.q.ExecContext(ctx, query,
		s.ID,
		s.Timestamp,
		s.StudentName,
		s.AdmissionNo,
		s.ParentName,
		s.Grade,
		s.Medium,
		s.Phone,
		s.FeesType,
		s.Month,
		s.PaymentMethod,
		s.Amount,
		s.ReceiptURL,
		s.PayHereOrderID,
		s.Status,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// ListByOrderID returns the submissions recorded against a PayHere order,
// oldest first.
func (r *LedgerRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.FeeSubmission, error) {
	query := `
		SELECT id, submitted_at, student_name, admission_no, parent_name, grade, medium,
		       phone, fees_type, month, payment_method, amount, receipt_url, payhere_order_id, status
		FROM fee_submissions
		WHERE payhere_order_id = $1
		ORDER BY submitted_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []*domain.FeeSubmission
	for rows.Next() {
		var s domain.FeeSubmission
		if err := rows.Scan(
			&s.ID,
			&s.Timestamp,
			&s.StudentName,
			&s.AdmissionNo,
			&s.ParentName,
			&s.Grade,
			&s.Medium,
			&s.Phone,
			&s.FeesType,
			&s.Month,
			&s.PaymentMethod,
			&s.Amount,
			&s.ReceiptURL,
			&s.PayHereOrderID,
			&s.Status,
		); err != nil {
			return nil, err
		}
		submissions = append(submissions, &s)
	}

	return submissions, rows.Err()
}
