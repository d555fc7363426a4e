package payhere

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func TestSecretDigest_TrimsAndUppercases(t *testing.T) {
	// md5("abc") = 900150983cd24fb0d6963f7d28e17f72
	assert.Equal(t, "900150983CD24FB0D6963F7D28E17F72", SecretDigest("abc"))
	assert.Equal(t, SecretDigest("abc"), SecretDigest("  abc\n"))
}

func TestNewSigner_RejectsBlankSecret(t *testing.T) {
	for _, secret := range []string{"", "   ", "\t\n"} {
		_, err := NewSigner(secret)
		assert.ErrorIs(t, err, ErrMissingSecret, "secret %q", secret)
	}
}

func TestCheckoutHash_FieldOrder(t *testing.T) {
	signer, err := NewSigner("s3cr3t")
	require.NoError(t, err)

	hash, err := signer.CheckoutHash("1221149", "ORD-1", "2500.00", "LKR")
	require.NoError(t, err)

	want := md5Upper("1221149" + "ORD-1" + "2500.00" + "LKR" + md5Upper("s3cr3t"))
	assert.Equal(t, want, hash)
}

func TestCheckoutHash_MissingMerchantIsConfigurationError(t *testing.T) {
	signer, err := NewSigner("s3cr3t")
	require.NoError(t, err)

	_, err = signer.CheckoutHash("", "ORD-1", "2500.00", "LKR")
	assert.ErrorIs(t, err, ErrMissingMerchantID)
}

func TestVerify_RoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		secret string
		fields []string
	}{
		{"plain", "secret", []string{"1221149", "ORD-1", "2500.00", "LKR"}},
		{"padded secret", "  secret  ", []string{"1221149", "ORD-2", "0.01", "USD"}},
		{"unicode order", "k3y", []string{"m", "ORD-සිංහල", "10.50", "LKR", "2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signer, err := NewSigner(tc.secret)
			require.NoError(t, err)
			assert.True(t, signer.Verify(signer.Sign(tc.fields...), tc.fields...))
		})
	}
}

func TestVerify_IsCaseSensitive(t *testing.T) {
	signer, err := NewSigner("secret")
	require.NoError(t, err)

	sig := signer.Sign("a", "b")
	assert.False(t, signer.Verify(strings.ToLower(sig), "a", "b"))
}

func TestSign_DifferentSecretsDiffer(t *testing.T) {
	a, _ := NewSigner("secret-one")
	b, _ := NewSigner("secret-two")

	fields := []string{"1221149", "ORD-1", "2500.00", "LKR"}
	assert.NotEqual(t, a.Sign(fields...), b.Sign(fields...))
}

func TestSign_AmountFormattingIsLoadBearing(t *testing.T) {
	signer, _ := NewSigner("secret")

	h1, _ := signer.CheckoutHash("1221149", "ORD-1", "100", "LKR")
	h2, _ := signer.CheckoutHash("1221149", "ORD-1", "100.00", "LKR")
	assert.NotEqual(t, h1, h2)
}

func TestVerifyNotification(t *testing.T) {
	signer, _ := NewSigner("secret")

	n := &Notification{
		MerchantID: "1221149",
		OrderID:    "ORD-1",
		Amount:     "2500.00",
		Currency:   "LKR",
		StatusCode: "2",
	}
	n.Signature = signer.NotificationSignature(n)
	assert.Equal(t, md5Upper("1221149ORD-12500.00LKR2"+md5Upper("secret")), n.Signature)
	assert.True(t, signer.VerifyNotification(n))

	tampered := *n
	tampered.Amount = "25.00"
	assert.False(t, signer.VerifyNotification(&tampered))

	wrongCode := *n
	wrongCode.StatusCode = "-2"
	assert.False(t, signer.VerifyNotification(&wrongCode))
}
