package redis

import (
	"context"
	"time"

	"feeportal/internal/domain"
)

// StatusStoreInterface defines order status persistence.
type StatusStoreInterface interface {
	GetStatus(ctx context.Context, orderID string) (domain.OrderStatus, error)
	SetStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

// ClaimStoreInterface defines one-shot claims for side effects.
type ClaimStoreInterface interface {
	Claim(ctx context.Context, kind, id string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, kind, id string) error
}

// OrderCacheInterface defines payment order caching.
type OrderCacheInterface interface {
	GetOrder(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	SetOrder(ctx context.Context, order *domain.PaymentOrder) error
}

// Ensure concrete types implement interfaces.
var (
	_ StatusStoreInterface = (*StatusStore)(nil)
	_ ClaimStoreInterface  = (*ClaimStore)(nil)
	_ OrderCacheInterface  = (*OrderCache)(nil)
)
