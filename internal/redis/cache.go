package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"feeportal/internal/domain"
)

// OrderCacheTTL bounds how long order details stay cached. Orders are
// immutable, so the TTL only limits memory use.
const OrderCacheTTL = 24 * time.Hour

const orderCachePrefix = "cache:order:"

// OrderCache caches payment orders for the notification path.
type OrderCache struct {
	client *redis.Client
}

// NewOrderCache creates a new OrderCache.
func NewOrderCache(client *redis.Client) *OrderCache {
	return &OrderCache{client: client}
}

// cachedOrder is the JSON form of a domain.PaymentOrder.
type cachedOrder struct {
	OrderID     string          `json:"order_id"`
	MerchantID  string          `json:"merchant_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	StudentName string          `json:"student_name"`
	Phone       string          `json:"phone"`
	CreatedAt   time.Time       `json:"created_at"`
}

// GetOrder retrieves an order from cache. Returns nil, nil on a miss.
func (s *OrderCache) GetOrder(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	data, err := s.client.Get(ctx, orderCachePrefix+orderID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var c cachedOrder
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &domain.PaymentOrder{
		OrderID:     c.OrderID,
		MerchantID:  c.MerchantID,
		Amount:      c.Amount,
		Currency:    c.Currency,
		StudentName: c.StudentName,
		Phone:       c.Phone,
		CreatedAt:   c.CreatedAt,
	}, nil
}

// SetOrder stores an order in cache.
func (s *OrderCache) SetOrder(ctx context.Context, order *domain.PaymentOrder) error {
	data, err := json.Marshal(cachedOrder{
		OrderID:     order.OrderID,
		MerchantID:  order.MerchantID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		StudentName: order.StudentName,
		Phone:       order.Phone,
		CreatedAt:   order.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, orderCachePrefix+order.OrderID, data, OrderCacheTTL).Err()
}
