package payhere

import (
	"errors"
	"net/url"
	"strconv"

	"feeportal/internal/domain"
)

// ErrMalformedNotification is returned when the notification body cannot be parsed.
var ErrMalformedNotification = errors.New("payhere: malformed notification")

// Form field names posted by the provider.
const (
	FieldMerchantID = "merchant_id"
	FieldOrderID    = "order_id"
	FieldAmount     = "payhere_amount"
	FieldCurrency   = "payhere_currency"
	FieldStatusCode = "status_code"
	FieldSignature  = "md5sig"
)

// Notification is a payment-result callback. Amount and StatusCode are kept
// exactly as received because the signature covers their textual form.
type Notification struct {
	MerchantID string
	OrderID    string
	Amount     string
	Currency   string
	StatusCode string
	Signature  string
}

// ParseNotification decodes an application/x-www-form-urlencoded body.
func ParseNotification(body []byte) (*Notification, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, errors.Join(ErrMalformedNotification, err)
	}

	n := &Notification{
		MerchantID: values.Get(FieldMerchantID),
		OrderID:    values.Get(FieldOrderID),
		Amount:     values.Get(FieldAmount),
		Currency:   values.Get(FieldCurrency),
		StatusCode: values.Get(FieldStatusCode),
		Signature:  values.Get(FieldSignature),
	}
	if n.OrderID == "" {
		return nil, ErrMalformedNotification
	}
	return n, nil
}

// Status maps the notification's status code to an OrderStatus. Only the
// canonical spelling of a code counts; "+2", "02" or " 2" are Pending.
func (n *Notification) Status() domain.OrderStatus {
	code, err := strconv.Atoi(n.StatusCode)
	if err != nil || strconv.Itoa(code) != n.StatusCode {
		return domain.OrderStatusPending
	}
	return domain.StatusFromProviderCode(code)
}

// Encode renders the notification as a form body, the way the provider posts it.
func (n *Notification) Encode() string {
	values := url.Values{}
	values.Set(FieldMerchantID, n.MerchantID)
	values.Set(FieldOrderID, n.OrderID)
	values.Set(FieldAmount, n.Amount)
	values.Set(FieldCurrency, n.Currency)
	values.Set(FieldStatusCode, n.StatusCode)
	values.Set(FieldSignature, n.Signature)
	return values.Encode()
}

func (n *Notification) notificationFields() []string {
	return []string{n.MerchantID, n.OrderID, n.Amount, n.Currency, n.StatusCode}
}
