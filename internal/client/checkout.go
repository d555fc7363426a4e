package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"feeportal/internal/payhere"
)

// ErrInitiationFailed is returned when a checkout could not be signed.
var ErrInitiationFailed = errors.New("failed to initiate payment")

// CompletionHandler receives the result of one checkout attempt. Exactly one
// method is called per attempt.
type CompletionHandler interface {
	OnSuccess(orderID string)
	OnDismissed()
	OnError(err error)
}

// SignatureRequester signs checkouts.
type SignatureRequester interface {
	RequestSignature(ctx context.Context, req SignatureRequest) (*SignatureResponse, error)
}

// Checkout starts payment attempts for one merchant.
type Checkout struct {
	api        SignatureRequester
	ids        *payhere.OrderIDGenerator
	poller     *Poller
	merchantID string
	currency   string
}

// NewCheckout creates a new Checkout.
func NewCheckout(api SignatureRequester, ids *payhere.OrderIDGenerator, poller *Poller, merchantID, currency string) *Checkout {
	if currency == "" {
		currency = "LKR"
	}
	return &Checkout{
		api:        api,
		ids:        ids,
		poller:     poller,
		merchantID: merchantID,
		currency:   currency,
	}
}

// StartRequest describes the payment to start.
type StartRequest struct {
	Amount      decimal.Decimal
	StudentName string
	Phone       string
}

// PaymentSession is what the payment widget needs to open.
type PaymentSession struct {
	MerchantID string `json:"merchant_id"`
	OrderID    string `json:"order_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Hash       string `json:"hash"`
	Items      string `json:"items"`
	Sandbox    bool   `json:"sandbox"`
	NotifyURL  string `json:"notify_url,omitempty"`
}

// Start generates an order id, gets it signed and returns an Attempt bound to
// that order and handler.
func (c *Checkout) Start(ctx context.Context, req StartRequest, handler CompletionHandler) (*Attempt, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInitiationFailed)
	}

	orderID := c.ids.NewOrderID()
	amount := req.Amount.StringFixed(2)

	sig, err := c.api.RequestSignature(ctx, SignatureRequest{
		MerchantID:  c.merchantID,
		OrderID:     orderID,
		Amount:      amount,
		Currency:    c.currency,
		StudentName: req.StudentName,
		Phone:       req.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitiationFailed, err)
	}

	return &Attempt{
		Session: PaymentSession{
			MerchantID: c.merchantID,
			OrderID:    orderID,
			Amount:     amount,
			Currency:   c.currency,
			Hash:       sig.Hash,
			Items:      "Student Fees",
			Sandbox:    sig.Sandbox,
			NotifyURL:  sig.NotifyURL,
		},
		poller:  c.poller,
		handler: handler,
	}, nil
}

// Attempt is one payment attempt. Its callbacks are scoped to its own order,
// so concurrent attempts never see each other's results.
type Attempt struct {
	Session PaymentSession

	poller   *Poller
	handler  CompletionHandler
	once     sync.Once
	resolved atomic.Bool
}

// OrderID returns the attempt's order id.
func (a *Attempt) OrderID() string {
	return a.Session.OrderID
}

// Resolved reports whether the handler has been called.
func (a *Attempt) Resolved() bool {
	return a.resolved.Load()
}

// Completed is called when the widget reports completion. It verifies the
// payment with the server and reports the verified result.
func (a *Attempt) Completed(ctx context.Context) {
	if a.Resolved() {
		return
	}

	outcome, err := a.poller.Await(ctx, a.Session.OrderID)
	a.resolve(func() {
		if err != nil {
			a.handler.OnError(err)
			return
		}
		a.handler.OnSuccess(outcome.OrderID)
	})
}

// Dismissed is called when the user closes the widget.
func (a *Attempt) Dismissed() {
	a.resolve(a.handler.OnDismissed)
}

// Failed is called when the widget reports an error.
func (a *Attempt) Failed(reason string) {
	a.resolve(func() {
		a.handler.OnError(errors.New(reason))
	})
}

func (a *Attempt) resolve(fn func()) {
	a.once.Do(func() {
		a.resolved.Store(true)
		fn()
	})
}
