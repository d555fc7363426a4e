package service

import (
	"context"
	"strings"

	"feeportal/internal/domain"
	internalRedis "feeportal/internal/redis"
)

// StatusService answers order status queries.
type StatusService struct {
	statusStore internalRedis.StatusStoreInterface
}

// NewStatusService creates a new StatusService.
func NewStatusService(statusStore internalRedis.StatusStoreInterface) *StatusService {
	return &StatusService{statusStore: statusStore}
}

// GetStatus returns the status of an order, Pending if unknown.
func (s *StatusService) GetStatus(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	if strings.TrimSpace(orderID) == "" {
		return "", ErrInvalidOrderID
	}
	return s.statusStore.GetStatus(ctx, orderID)
}
