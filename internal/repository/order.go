package repository

import (
	"context"

	"feeportal/internal/domain"
)

// OrderRepository defines the persistence operations for payment orders.
type OrderRepository interface {
	// Create persists a new order and reports whether a row was inserted.
	// Creating an order id that already exists leaves the stored order
	// untouched and returns false, since orders are immutable.
	Create(ctx context.Context, order *domain.PaymentOrder) (bool, error)

	// GetByID retrieves an order by its order id.
	GetByID(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
}
