package service_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"feeportal/internal/domain"
	"feeportal/internal/service"
	"feeportal/internal/testutil"
)

const (
	testSecret     = "test-merchant-secret"
	testMerchantID = "1211149"
)

func newReconciler(sticky bool) (*service.ReconcilerService, *testutil.MockStatusStore, *testutil.MockPublisher) {
	store := testutil.NewMockStatusStore()
	pub := testutil.NewMockPublisher()
	return service.NewReconcilerService(testSecret, store, pub, sticky), store, pub
}

func TestHandleNotification_PaidUpdatesStore(t *testing.T) {
	rec, store, pub := newReconciler(true)
	body := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-1", "2500.00", "LKR", "2")

	result, err := rec.HandleNotification(context.Background(), []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.OrderStatusPaid || !result.Applied {
		t.Errorf("expected applied Paid, got %+v", result)
	}

	status, _ := store.GetStatus(context.Background(), "ORD-1")
	if status != domain.OrderStatusPaid {
		t.Errorf("expected stored Paid, got %s", status)
	}

	events := pub.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != domain.EventPaymentPaid || events[0].OrderID != "ORD-1" || events[0].Amount != "2500.00" {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestHandleNotification_StatusCodes(t *testing.T) {
	testCases := []struct {
		code     string
		expected domain.OrderStatus
	}{
		{"2", domain.OrderStatusPaid},
		{"0", domain.OrderStatusPending},
		{"-1", domain.OrderStatusCanceled},
		{"-2", domain.OrderStatusFailed},
		{"-3", domain.OrderStatusChargedback},
		{"7", domain.OrderStatusPending},
		{"+2", domain.OrderStatusPending},
		{"02", domain.OrderStatusPending},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			rec, store, _ := newReconciler(true)
			body := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-9", "100.00", "LKR", tc.code)

			if _, err := rec.HandleNotification(context.Background(), []byte(body)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			status, _ := store.GetStatus(context.Background(), "ORD-9")
			if status != tc.expected {
				t.Errorf("code %s: expected %s, got %s", tc.code, tc.expected, status)
			}
		})
	}
}

func TestHandleNotification_TamperedAmountRejected(t *testing.T) {
	rec, store, pub := newReconciler(true)
	body := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-2", "2500.00", "LKR", "2")
	tampered := strings.Replace(body, "payhere_amount=2500.00", "payhere_amount=25.00", 1)

	_, err := rec.HandleNotification(context.Background(), []byte(tampered))
	if !errors.Is(err, service.ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
	if store.Len() != 0 || store.SetCallCount != 0 {
		t.Errorf("store must not be touched on mismatch")
	}
	if len(pub.Events()) != 0 {
		t.Errorf("no event expected on mismatch")
	}
}

func TestHandleNotification_LowercaseSignatureRejected(t *testing.T) {
	rec, store, _ := newReconciler(true)
	body := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-3", "10.00", "LKR", "2")

	values, _ := url.ParseQuery(body)
	values.Set("md5sig", strings.ToLower(values.Get("md5sig")))
	lowered := values.Encode()

	_, err := rec.HandleNotification(context.Background(), []byte(lowered))
	if !errors.Is(err, service.ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store must not be touched")
	}
}

func TestHandleNotification_WrongSecretRejected(t *testing.T) {
	rec, _, _ := newReconciler(true)
	body := testutil.SignedNotificationBody("another-secret", testMerchantID, "ORD-4", "10.00", "LKR", "2")

	if _, err := rec.HandleNotification(context.Background(), []byte(body)); !errors.Is(err, service.ErrSignatureMismatch) {
		t.Errorf("expected ErrSignatureMismatch, got %v", err)
	}
}

func TestHandleNotification_MissingSecret(t *testing.T) {
	store := testutil.NewMockStatusStore()
	rec := service.NewReconcilerService("  ", store, nil, true)
	body := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-5", "10.00", "LKR", "2")

	_, err := rec.HandleNotification(context.Background(), []byte(body))
	if !errors.Is(err, service.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store must not be touched")
	}
}

func TestHandleNotification_Malformed(t *testing.T) {
	rec, _, _ := newReconciler(true)

	testCases := []string{
		"%zz",
		"merchant_id=1&status_code=2",
	}
	for _, body := range testCases {
		if _, err := rec.HandleNotification(context.Background(), []byte(body)); !errors.Is(err, service.ErrMalformedNotification) {
			t.Errorf("body %q: expected ErrMalformedNotification, got %v", body, err)
		}
	}
}

func TestHandleNotification_RedeliveryIsIdempotent(t *testing.T) {
	rec, store, pub := newReconciler(true)
	body := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-6", "500.00", "LKR", "2")

	first, err := rec.HandleNotification(context.Background(), []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := rec.HandleNotification(context.Background(), []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.Applied || second.Applied {
		t.Errorf("expected first applied and second no-op, got %v / %v", first.Applied, second.Applied)
	}
	if store.SetCallCount != 1 {
		t.Errorf("expected 1 write, got %d", store.SetCallCount)
	}
	// Both deliveries publish; the SMS consumer deduplicates.
	if got := len(pub.Events()); got != 2 {
		t.Errorf("expected 2 events, got %d", got)
	}
}

func TestHandleNotification_StickyTerminal(t *testing.T) {
	rec, store, pub := newReconciler(true)
	ctx := context.Background()

	paid := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-7", "500.00", "LKR", "2")
	failed := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-7", "500.00", "LKR", "-2")
	chargeback := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-7", "500.00", "LKR", "-3")

	if _, err := rec.HandleNotification(ctx, []byte(paid)); err != nil {
		t.Fatal(err)
	}
	result, err := rec.HandleNotification(ctx, []byte(failed))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != domain.OrderStatusPaid || result.Applied {
		t.Errorf("Failed after Paid must be ignored, got %+v", result)
	}

	result, err = rec.HandleNotification(ctx, []byte(chargeback))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != domain.OrderStatusChargedback || !result.Applied {
		t.Errorf("Chargedback after Paid must apply, got %+v", result)
	}

	status, _ := store.GetStatus(ctx, "ORD-7")
	if status != domain.OrderStatusChargedback {
		t.Errorf("expected Chargedback, got %s", status)
	}
	if got := len(pub.Events()); got != 1 {
		t.Errorf("expected only the Paid event, got %d", got)
	}
}

func TestHandleNotification_LastWriteWins(t *testing.T) {
	rec, store, _ := newReconciler(false)
	ctx := context.Background()

	paid := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-8", "500.00", "LKR", "2")
	failed := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-8", "500.00", "LKR", "-2")

	for _, body := range []string{paid, failed} {
		if _, err := rec.HandleNotification(ctx, []byte(body)); err != nil {
			t.Fatal(err)
		}
	}

	status, _ := store.GetStatus(ctx, "ORD-8")
	if status != domain.OrderStatusFailed {
		t.Errorf("expected Failed, got %s", status)
	}
}

func TestHandleNotification_PublishFailureIsSwallowed(t *testing.T) {
	rec, store, pub := newReconciler(true)
	pub.PublishError = service.ErrEventQueueFull
	body := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-10", "1.00", "LKR", "2")

	if _, err := rec.HandleNotification(context.Background(), []byte(body)); err != nil {
		t.Fatalf("publish failure must not fail the webhook: %v", err)
	}
	if status, _ := store.GetStatus(context.Background(), "ORD-10"); status != domain.OrderStatusPaid {
		t.Errorf("expected Paid, got %s", status)
	}
}

func TestHandleNotification_StoreFailure(t *testing.T) {
	rec, store, pub := newReconciler(true)
	store.SetError = errors.New("redis down")
	body := testutil.SignedNotificationBody(testSecret, testMerchantID, "ORD-11", "1.00", "LKR", "2")

	if _, err := rec.HandleNotification(context.Background(), []byte(body)); err == nil {
		t.Fatal("expected error")
	}
	if len(pub.Events()) != 0 {
		t.Errorf("no event expected when the write failed")
	}
}
