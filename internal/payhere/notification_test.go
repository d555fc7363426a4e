package payhere

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feeportal/internal/domain"
)

func TestParseNotification(t *testing.T) {
	body := "merchant_id=1221149&order_id=ORD-1&payhere_amount=2500.00&payhere_currency=LKR&status_code=2&md5sig=ABC&method=VISA"

	n, err := ParseNotification([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "1221149", n.MerchantID)
	assert.Equal(t, "ORD-1", n.OrderID)
	assert.Equal(t, "2500.00", n.Amount)
	assert.Equal(t, "LKR", n.Currency)
	assert.Equal(t, "2", n.StatusCode)
	assert.Equal(t, "ABC", n.Signature)
	assert.Equal(t, domain.OrderStatusPaid, n.Status())
}

func TestParseNotification_Malformed(t *testing.T) {
	cases := map[string]string{
		"bad escape":    "order_id=%zz",
		"missing order": "merchant_id=1&status_code=2",
		"empty":         "",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseNotification([]byte(body))
			assert.ErrorIs(t, err, ErrMalformedNotification)
		})
	}
}

func TestNotificationStatus_UnknownCodesArePending(t *testing.T) {
	for _, code := range []string{"99", "", "abc", "1", "+2", "02", " 2", "2 ", "-02", "-0"} {
		n := &Notification{StatusCode: code}
		assert.Equal(t, domain.OrderStatusPending, n.Status(), "code %q", code)
	}
}

func TestNotificationStatus_CanonicalCodes(t *testing.T) {
	want := map[string]domain.OrderStatus{
		"2":  domain.OrderStatusPaid,
		"0":  domain.OrderStatusPending,
		"-1": domain.OrderStatusCanceled,
		"-2": domain.OrderStatusFailed,
		"-3": domain.OrderStatusChargedback,
	}
	for code, status := range want {
		n := &Notification{StatusCode: code}
		assert.Equal(t, status, n.Status(), "code %q", code)
	}
}

func TestNotificationEncode_RoundTrips(t *testing.T) {
	n := &Notification{
		MerchantID: "1221149",
		OrderID:    "ORD-1",
		Amount:     "2500.00",
		Currency:   "LKR",
		StatusCode: "-1",
		Signature:  "DEADBEEF",
	}

	parsed, err := ParseNotification([]byte(n.Encode()))
	require.NoError(t, err)
	assert.Equal(t, n, parsed)
}
