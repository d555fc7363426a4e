package repository

import (
	"context"

	"feeportal/internal/domain"
)

// LedgerRepository is the append-only record of fee submissions.
type LedgerRepository interface {
	// Append adds a submission row. A second PayHere row for the same order
	// returns ErrDuplicate.
	Append(ctx context.Context, submission *domain.FeeSubmission) error

	// ListByOrderID returns the submissions recorded against a PayHere order.
	ListByOrderID(ctx context.Context, orderID string) ([]*domain.FeeSubmission, error)
}
