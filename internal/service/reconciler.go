package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"feeportal/internal/domain"
	"feeportal/internal/payhere"
	internalRedis "feeportal/internal/redis"
)

// EventPublisher accepts post-commit events.
type EventPublisher interface {
	Publish(evt domain.PaymentEvent) error
}

// ReconcilerService ingests payment-result notifications and keeps the
// status store in line with them.
type ReconcilerService struct {
	signer      *payhere.Signer
	statusStore internalRedis.StatusStoreInterface
	publisher   EventPublisher
	sticky      bool
}

// NewReconcilerService creates a new ReconcilerService. With sticky set,
// terminal statuses are never overwritten except Paid -> Chargedback.
// publisher may be nil.
func NewReconcilerService(merchantSecret string, statusStore internalRedis.StatusStoreInterface, publisher EventPublisher, sticky bool) *ReconcilerService {
	signer, err := payhere.NewSigner(merchantSecret)
	if err != nil {
		log.Printf("[PayHere Notify] merchant secret not set, notifications will be rejected")
	}
	return &ReconcilerService{
		signer:      signer,
		statusStore: statusStore,
		publisher:   publisher,
		sticky:      sticky,
	}
}

// ReconcileResult describes the outcome of a verified notification.
type ReconcileResult struct {
	OrderID string
	Status  domain.OrderStatus
	Applied bool
}

// HandleNotification verifies a form-encoded notification and applies it.
// Nothing is written unless the signature verifies.
func (s *ReconcilerService) HandleNotification(ctx context.Context, body []byte) (*ReconcileResult, error) {
	if s.signer == nil {
		log.Printf("[PayHere Notify] MERCHANT_SECRET is not set")
		return nil, ErrConfiguration
	}

	n, err := payhere.ParseNotification(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
	}

	log.Printf("[PayHere Notify] Received for Order: %s, Status: %s", n.OrderID, n.StatusCode)

	if !s.signer.VerifyNotification(n) {
		log.Printf("[PayHere Notify] Signature mismatch for Order %s. Local: %s vs Received: %s",
			n.OrderID, s.signer.NotificationSignature(n), n.Signature)
		return nil, ErrSignatureMismatch
	}

	next := n.Status()
	current, err := s.statusStore.GetStatus(ctx, n.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to read status for %s: %w", n.OrderID, err)
	}

	resolved, changed := current.Resolve(next, s.sticky)
	if resolved != next {
		log.Printf("[PayHere Notify] Ignoring %s for Order %s, already %s", next, n.OrderID, current)
	}

	if changed {
		log.Printf("[PayHere Notify] Updating order %s to status: %s", n.OrderID, resolved)
		if err := s.statusStore.SetStatus(ctx, n.OrderID, resolved); err != nil {
			return nil, fmt.Errorf("failed to write status for %s: %w", n.OrderID, err)
		}
	}

	// Every Paid delivery emits an event; the consumer deduplicates sends.
	if next == domain.OrderStatusPaid && resolved == domain.OrderStatusPaid {
		s.emit(domain.PaymentEvent{
			Type:       domain.EventPaymentPaid,
			OrderID:    n.OrderID,
			Amount:     n.Amount,
			OccurredAt: time.Now().UTC(),
		})
	}

	return &ReconcileResult{OrderID: n.OrderID, Status: resolved, Applied: changed}, nil
}

func (s *ReconcilerService) emit(evt domain.PaymentEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(evt); err != nil {
		log.Printf("[PayHere Notify] failed to queue %s for Order %s: %v", evt.Type, evt.OrderID, err)
	}
}
