package testutil

import (
	"feeportal/internal/payhere"
)

// SignedNotificationBody builds a form-encoded notification signed with secret,
// as the gateway would post it.
func SignedNotificationBody(secret, merchantID, orderID, amount, currency, statusCode string) string {
	n := &payhere.Notification{
		MerchantID: merchantID,
		OrderID:    orderID,
		Amount:     amount,
		Currency:   currency,
		StatusCode: statusCode,
	}
	signer, err := payhere.NewSigner(secret)
	if err != nil {
		panic(err)
	}
	n.Signature = signer.NotificationSignature(n)
	return n.Encode()
}
