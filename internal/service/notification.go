package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"feeportal/internal/domain"
	internalRedis "feeportal/internal/redis"
	"feeportal/internal/repository"
	"feeportal/internal/sms"
)

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

const (
	// paidSMSClaim keys the one-shot claim taken before a payment SMS is sent.
	paidSMSClaim = "sms-paid"
	paidSMSTTL   = 24 * time.Hour

	supportLine = "070 707 2072"
)

// NewSMSLimiter paces SMS sends to perSec messages a second. A perSec of zero
// or less disables pacing rather than blocking every send after the first.
func NewSMSLimiter(perSec float64) *rate.Limiter {
	if perSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSec), 1)
}

// ErrOrderDetailsUnavailable is returned when no contact details exist for an order.
var ErrOrderDetailsUnavailable = errors.New("order details unavailable")

// NotificationService turns payment events into SMS messages.
type NotificationService struct {
	sender    SMSSender
	claims    internalRedis.ClaimStoreInterface
	orderRepo repository.OrderRepository
	cache     internalRedis.OrderCacheInterface
	limiter   *rate.Limiter
}

// NewNotificationService creates a new NotificationService. claims, cache and
// limiter may be nil.
func NewNotificationService(
	sender SMSSender,
	claims internalRedis.ClaimStoreInterface,
	orderRepo repository.OrderRepository,
	cache internalRedis.OrderCacheInterface,
	limiter *rate.Limiter,
) *NotificationService {
	return &NotificationService{
		sender:    sender,
		claims:    claims,
		orderRepo: orderRepo,
		cache:     cache,
		limiter:   limiter,
	}
}

// PaymentSuccessMessage is sent once an online payment settles.
func PaymentSuccessMessage(studentName, amount string) string {
	return fmt.Sprintf("Dear %s, we have received your payment of Rs. %s. For urgent queries, call %s. Thank you! edus.lk",
		studentName, amount, supportLine)
}

// BankSubmissionMessage is sent when a bank-transfer receipt is submitted.
func BankSubmissionMessage(studentName string) string {
	return fmt.Sprintf("Dear %s, we have received your payment update. Please allow us some time to verify and once approved, "+
		"our Student Admin will call you and add you to the class with full details. For urgent queries, call %s. - EDUS Online Institute.",
		studentName, supportLine)
}

// Handle dispatches an event to the matching notification.
func (s *NotificationService) Handle(ctx context.Context, evt domain.PaymentEvent) error {
	switch evt.Type {
	case domain.EventPaymentPaid:
		return s.NotifyPaymentPaid(ctx, evt)
	case domain.EventBankSubmissionReceived:
		return s.NotifyBankSubmission(ctx, evt)
	default:
		return fmt.Errorf("unknown event type %q", evt.Type)
	}
}

// NotifyPaymentPaid sends the payment-success SMS at most once per order.
// The claim is released if sending fails so a redelivery can retry.
func (s *NotificationService) NotifyPaymentPaid(ctx context.Context, evt domain.PaymentEvent) error {
	if s.claims != nil {
		ok, err := s.claims.Claim(ctx, paidSMSClaim, evt.OrderID, paidSMSTTL)
		if err != nil {
			log.Printf("[SMS] claim check failed for Order %s, sending anyway: %v", evt.OrderID, err)
		} else if !ok {
			log.Printf("[SMS] payment SMS already sent for Order %s", evt.OrderID)
			return nil
		}
	}

	err := s.sendPaymentSuccess(ctx, evt)
	if err != nil && s.claims != nil {
		if relErr := s.claims.Release(ctx, paidSMSClaim, evt.OrderID); relErr != nil {
			log.Printf("[SMS] failed to release claim for Order %s: %v", evt.OrderID, relErr)
		}
	}
	return err
}

func (s *NotificationService) sendPaymentSuccess(ctx context.Context, evt domain.PaymentEvent) error {
	phone, name, amount := evt.Phone, evt.StudentName, evt.Amount
	if phone == "" {
		order, err := s.lookupOrder(ctx, evt.OrderID)
		if err != nil {
			log.Printf("[SMS] Could not fetch details for Order %s: %v", evt.OrderID, err)
			return err
		}
		phone, name = order.Phone, order.StudentName
		if amount == "" {
			amount = order.FormattedAmount()
		}
	}
	if phone == "" {
		log.Printf("[SMS] Order %s has no phone number", evt.OrderID)
		return ErrOrderDetailsUnavailable
	}

	return s.send(ctx, evt, phone, PaymentSuccessMessage(name, amount))
}

// NotifyBankSubmission acknowledges a bank-transfer submission.
func (s *NotificationService) NotifyBankSubmission(ctx context.Context, evt domain.PaymentEvent) error {
	if evt.Phone == "" {
		return ErrOrderDetailsUnavailable
	}
	return s.send(ctx, evt, evt.Phone, BankSubmissionMessage(evt.StudentName))
}

// lookupOrder reads order details from cache, falling back to the repository.
func (s *NotificationService) lookupOrder(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	if s.cache != nil {
		order, err := s.cache.GetOrder(ctx, orderID)
		if err != nil {
			log.Printf("[SMS] order cache read failed for %s: %v", orderID, err)
		} else if order != nil {
			return order, nil
		}
	}

	if s.orderRepo == nil {
		return nil, ErrOrderDetailsUnavailable
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderDetailsUnavailable
		}
		return nil, err
	}
	return order, nil
}

// send delivers one SMS, honouring the rate limiter.
func (s *NotificationService) send(ctx context.Context, evt domain.PaymentEvent, phone, message string) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("sms rate limiter: %w", err)
		}
	}

	log.Printf("[NOTIFICATION] Type=%s, Order=%s, Recipient=%s", evt.Type, evt.OrderID, phone)

	if err := s.sender.Send(ctx, phone, message); err != nil {
		if errors.Is(err, sms.ErrNotConfigured) {
			log.Printf("[SMS] SMS credentials missing. Skipping SMS.")
		}
		return err
	}
	return nil
}
