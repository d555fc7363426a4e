package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"feeportal/internal/domain"
)

const (
	// DefaultPollInterval is the wait between status polls.
	DefaultPollInterval = 3 * time.Second
	// DefaultMaxAttempts is the total number of status polls.
	DefaultMaxAttempts = 10
)

var (
	// ErrVerificationTimeout is returned when the order is still Pending after the last poll.
	ErrVerificationTimeout = errors.New("payment verification timed out, please contact support")

	// ErrPaymentNotCompleted is returned when the order reached a non-Paid terminal status.
	ErrPaymentNotCompleted = errors.New("payment not completed")

	// ErrTransport is returned when a status poll could not be made.
	ErrTransport = errors.New("payment verification failed")
)

// StatusSource reports the current status of an order.
type StatusSource interface {
	QueryStatus(ctx context.Context, orderID string) (domain.OrderStatus, error)
}

// Poller waits for the server to learn an order's outcome after the payment
// widget reports completion. The widget's own completion signal is never
// trusted; only the status the server recorded from the gateway counts.
type Poller struct {
	Source      StatusSource
	Interval    time.Duration
	MaxAttempts int
}

// NewPoller creates a Poller with the default 3s x 10 schedule.
func NewPoller(source StatusSource) *Poller {
	return &Poller{
		Source:      source,
		Interval:    DefaultPollInterval,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Outcome is a settled verification.
type Outcome struct {
	OrderID  string
	Status   domain.OrderStatus
	Attempts int
}

// Await polls until the order is Paid, reaches another terminal status, the
// attempt budget runs out or ctx is done. Transport errors fail immediately.
func (p *Poller) Await(ctx context.Context, orderID string) (*Outcome, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		status, err := p.Source.QueryStatus(ctx, orderID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}

		log.Printf("[Verify] Order %s attempt %d: %s", orderID, attempt, status)

		switch status {
		case domain.OrderStatusPaid:
			return &Outcome{OrderID: orderID, Status: status, Attempts: attempt}, nil
		case domain.OrderStatusFailed, domain.OrderStatusCanceled, domain.OrderStatusChargedback:
			return nil, &NotCompletedError{OrderID: orderID, Status: status}
		}

		if attempt >= maxAttempts {
			return nil, ErrVerificationTimeout
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// NotCompletedError carries the terminal status that ended verification.
type NotCompletedError struct {
	OrderID string
	Status  domain.OrderStatus
}

func (e *NotCompletedError) Error() string {
	return fmt.Sprintf("payment %s", e.Status)
}

func (e *NotCompletedError) Unwrap() error {
	return ErrPaymentNotCompleted
}
