package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the settlement status of a payment order.
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "Pending"
	OrderStatusPaid        OrderStatus = "Paid"
	OrderStatusCanceled    OrderStatus = "Canceled"
	OrderStatusFailed      OrderStatus = "Failed"
	OrderStatusChargedback OrderStatus = "Chargedback"
)

// Status codes posted by the payment provider.
const (
	ProviderCodePaid        = 2
	ProviderCodePending     = 0
	ProviderCodeCanceled    = -1
	ProviderCodeFailed      = -2
	ProviderCodeChargedback = -3
)

// StatusFromProviderCode maps a provider status code to an OrderStatus.
// Unknown codes map to Pending.
func StatusFromProviderCode(code int) OrderStatus {
	switch code {
	case ProviderCodePaid:
		return OrderStatusPaid
	case ProviderCodeCanceled:
		return OrderStatusCanceled
	case ProviderCodeFailed:
		return OrderStatusFailed
	case ProviderCodeChargedback:
		return OrderStatusChargedback
	default:
		return OrderStatusPending
	}
}

// ParseOrderStatus converts a stored string back into an OrderStatus.
// Empty or unrecognised values are treated as Pending.
func ParseOrderStatus(s string) OrderStatus {
	switch OrderStatus(s) {
	case OrderStatusPaid, OrderStatusCanceled, OrderStatusFailed, OrderStatusChargedback:
		return OrderStatus(s)
	default:
		return OrderStatusPending
	}
}

// IsTerminal reports whether no further transition is expected.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusCanceled, OrderStatusFailed, OrderStatusChargedback:
		return true
	default:
		return false
	}
}

// Resolve decides the status to persist when a notification carrying next
// arrives for an order currently in s. With sticky set, terminal states are
// never left, except Paid -> Chargedback. It returns the resulting status and
// whether it differs from s.
func (s OrderStatus) Resolve(next OrderStatus, sticky bool) (OrderStatus, bool) {
	if !sticky || !s.IsTerminal() {
		return next, next != s
	}
	if s == OrderStatusPaid && next == OrderStatusChargedback {
		return next, true
	}
	return s, false
}

// PaymentOrder represents one online payment attempt.
type PaymentOrder struct {
	OrderID     string
	MerchantID  string
	Amount      decimal.Decimal
	Currency    string
	StudentName string
	Phone       string
	CreatedAt   time.Time
}

// FormattedAmount returns the amount as a fixed two-decimal string, the form
// the provider signs over.
func (o *PaymentOrder) FormattedAmount() string {
	return o.Amount.StringFixed(2)
}

// SameTerms reports whether other describes the same payment: merchant,
// two-decimal amount, currency and contact details.
func (o *PaymentOrder) SameTerms(other *PaymentOrder) bool {
	return o.MerchantID == other.MerchantID &&
		o.Amount.Round(2).Equal(other.Amount.Round(2)) &&
		o.Currency == other.Currency &&
		o.StudentName == other.StudentName &&
		o.Phone == other.Phone
}
