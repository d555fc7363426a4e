package postgres

import (
	"context"
	"database/sql"
	"errors"

	"feeportal/internal/domain"
	"feeportal/internal/repository"
)

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{q: db}
}

// Create persists a new order, ignoring duplicates. It reports false when the
// order id already existed.
func (r *OrderRepository) Create(ctx context.Context, order *domain.PaymentOrder) (bool, error) {
	query := `
		INSERT INTO payment_orders (order_id, merchant_id, amount, currency, student_name, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id) DO NOTHING
	`

	result, err := r.q.ExecContext(ctx, query,
		order.OrderID,
		order.MerchantID,
		order.Amount,
		order.Currency,
		order.StudentName,
		order.Phone,
		order.CreatedAt,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// GetByID retrieves an order by its order id.
func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	query := `
		SELECT order_id, merchant_id, amount, currency, student_name, phone, created_at
		FROM payment_orders WHERE order_id = $1
	`

	var order domain.PaymentOrder
	err := r.q.QueryRowContext(ctx, query, orderID).Scan(
		&order.OrderID,
		&order.MerchantID,
		&order.Amount,
		&order.Currency,
		&order.StudentName,
		&order.Phone,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &order, nil
}
