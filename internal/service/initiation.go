package service

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"feeportal/internal/domain"
	"feeportal/internal/payhere"
	internalRedis "feeportal/internal/redis"
	"feeportal/internal/repository"
)

// InitiationService signs payment-initiation requests and records orders.
type InitiationService struct {
	signer    *payhere.Signer
	orderRepo repository.OrderRepository
	cache     internalRedis.OrderCacheInterface
	sandbox   bool
	notifyURL string
}

// InitiationConfig carries gateway settings for the initiation service.
type InitiationConfig struct {
	MerchantSecret string
	Sandbox        bool
	NotifyURL      string
}

// NewInitiationService creates a new InitiationService. An empty merchant
// secret is accepted here and reported as ErrConfiguration per request.
// cache may be nil.
func NewInitiationService(cfg InitiationConfig, orderRepo repository.OrderRepository, cache internalRedis.OrderCacheInterface) *InitiationService {
	signer, err := payhere.NewSigner(cfg.MerchantSecret)
	if err != nil {
		log.Printf("[PayHere] merchant secret not set, payment initiation disabled")
	}
	return &InitiationService{
		signer:    signer,
		orderRepo: orderRepo,
		cache:     cache,
		sandbox:   cfg.Sandbox,
		notifyURL: cfg.NotifyURL,
	}
}

// InitiateRequest contains the parameters for a payment initiation.
type InitiateRequest struct {
	MerchantID  string
	OrderID     string
	Amount      string
	Currency    string
	StudentName string
	Phone       string
}

// SessionDescriptor is handed to the payment widget.
type SessionDescriptor struct {
	MerchantID string
	OrderID    string
	Amount     string
	Currency   string
	Hash       string
	Items      string
	Sandbox    bool
	NotifyURL  string
}

// Initiate validates the request, signs it over the two-decimal amount and
// records the order.
func (s *InitiationService) Initiate(ctx context.Context, req InitiateRequest) (*SessionDescriptor, error) {
	if err := requireFields(map[string]string{
		"merchant_id": req.MerchantID,
		"order_id":    req.OrderID,
		"amount":      req.Amount,
		"currency":    req.Currency,
	}); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if s.signer == nil {
		return nil, ErrConfiguration
	}

	order := &domain.PaymentOrder{
		OrderID:     req.OrderID,
		MerchantID:  req.MerchantID,
		Amount:      amount,
		Currency:    req.Currency,
		StudentName: req.StudentName,
		Phone:       req.Phone,
		CreatedAt:   time.Now().UTC(),
	}

	inserted, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}
	if inserted {
		if s.cache != nil {
			if err := s.cache.SetOrder(ctx, order); err != nil {
				log.Printf("[PayHere] failed to cache order %s: %v", order.OrderID, err)
			}
		}
	} else {
		// Re-initiation signs the stored order, never the new request.
		stored, err := s.orderRepo.GetByID(ctx, order.OrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to load order %s: %w", order.OrderID, err)
		}
		if !stored.SameTerms(order) {
			log.Printf("[PayHere] rejected re-initiation of %s with different details", order.OrderID)
			return nil, ErrOrderConflict
		}
		order = stored
	}

	formatted := order.FormattedAmount()

	log.Printf("[PayHere] Generating hash for: ID=%s, Order=%s, Amt=%s, Curr=%s",
		order.MerchantID, order.OrderID, formatted, order.Currency)

	hash, err := s.signer.CheckoutHash(order.MerchantID, order.OrderID, formatted, order.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return &SessionDescriptor{
		MerchantID: order.MerchantID,
		OrderID:    order.OrderID,
		Amount:     formatted,
		Currency:   order.Currency,
		Hash:       hash,
		Items:      "Student Fees",
		Sandbox:    s.sandbox,
		NotifyURL:  s.notifyURL,
	}, nil
}

// requireFields returns ErrMissingField listing every empty field.
func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
}
