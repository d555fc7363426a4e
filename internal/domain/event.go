package domain

import "time"

// PaymentEventType identifies a post-commit event.
type PaymentEventType string

const (
	EventPaymentPaid            PaymentEventType = "PAYMENT_PAID"
	EventBankSubmissionReceived PaymentEventType = "BANK_SUBMISSION_RECEIVED"
)

// PaymentEvent is emitted after a state change has been persisted.
// Phone, StudentName and Amount are optional; consumers look them up by
// OrderID when absent.
type PaymentEvent struct {
	Type        PaymentEventType
	OrderID     string
	Phone       string
	StudentName string
	Amount      string
	OccurredAt  time.Time
}
