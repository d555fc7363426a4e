package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"feeportal/internal/domain"
)

const statusKeyPrefix = "payhere:status:"

// StatusStore persists orderId -> OrderStatus in Redis.
// Keys never expire.
type StatusStore struct {
	client *redis.Client
}

// NewStatusStore creates a new StatusStore.
func NewStatusStore(client *redis.Client) *StatusStore {
	return &StatusStore{client: client}
}

// GetStatus returns the stored status, or Pending if the order is unknown.
func (s *StatusStore) GetStatus(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	value, err := s.client.Get(ctx, statusKeyPrefix+orderID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.OrderStatusPending, nil
		}
		return "", err
	}
	return domain.ParseOrderStatus(value), nil
}

// SetStatus overwrites the status for an order.
func (s *StatusStore) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return s.client.Set(ctx, statusKeyPrefix+orderID, string(status), 0).Err()
}
