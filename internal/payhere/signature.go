// Package payhere holds the provider-specific primitives: request signing,
// notification parsing and order id generation.
package payhere

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrMissingSecret is returned when the merchant secret is not configured.
	ErrMissingSecret = errors.New("payhere: merchant secret not configured")

	// ErrMissingMerchantID is returned when the merchant id is empty.
	ErrMissingMerchantID = errors.New("payhere: merchant id not configured")
)

// Signer computes and verifies provider signatures with a shared secret.
type Signer struct {
	secretDigest string
}

// NewSigner creates a Signer. The secret is trimmed before use.
func NewSigner(secret string) (*Signer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Signer{secretDigest: SecretDigest(secret)}, nil
}

// SecretDigest returns the upper-case hex MD5 of the trimmed secret.
func SecretDigest(secret string) string {
	return digest(strings.TrimSpace(secret))
}

// Sign returns the upper-case hex digest over fields followed by the secret digest.
func (s *Signer) Sign(fields ...string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f)
	}
	b.WriteString(s.secretDigest)
	return digest(b.String())
}

// Verify reports whether candidate is the signature of fields.
// Comparison is case-sensitive.
func (s *Signer) Verify(candidate string, fields ...string) bool {
	expected := s.Sign(fields...)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1
}

// CheckoutHash signs a payment-initiation request. amount must already be
// formatted with two decimals.
func (s *Signer) CheckoutHash(merchantID, orderID, amount, currency string) (string, error) {
	if merchantID == "" {
		return "", ErrMissingMerchantID
	}
	return s.Sign(merchantID, orderID, amount, currency), nil
}

// VerifyNotification checks the md5sig of a webhook notification.
func (s *Signer) VerifyNotification(n *Notification) bool {
	return s.Verify(n.Signature, n.notificationFields()...)
}

// NotificationSignature computes the signature the provider is expected to
// send for n. Used for audit logging and by the sandbox tooling.
func (s *Signer) NotificationSignature(n *Notification) string {
	return s.Sign(n.notificationFields()...)
}

func digest(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
