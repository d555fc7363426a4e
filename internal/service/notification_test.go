package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"feeportal/internal/domain"
	"feeportal/internal/service"
	"feeportal/internal/sms"
	"feeportal/internal/testutil"
)

type notificationFixture struct {
	svc    *service.NotificationService
	sender *testutil.MockSMSSender
	claims *testutil.MockClaimStore
	repo   *testutil.MockOrderRepository
	cache  *testutil.MockOrderCache
}

func newNotificationFixture() *notificationFixture {
	f := &notificationFixture{
		sender: testutil.NewMockSMSSender(),
		claims: testutil.NewMockClaimStore(),
		repo:   testutil.NewMockOrderRepository(),
		cache:  testutil.NewMockOrderCache(),
	}
	f.svc = service.NewNotificationService(f.sender, f.claims, f.repo, f.cache, nil)
	return f
}

func testOrder(id string) *domain.PaymentOrder {
	return &domain.PaymentOrder{
		OrderID:     id,
		MerchantID:  testMerchantID,
		Amount:      decimal.RequireFromString("2500"),
		Currency:    "LKR",
		StudentName: "Nimali",
		Phone:       "0701234567",
		CreatedAt:   time.Now(),
	}
}

func paidEvent(orderID string) domain.PaymentEvent {
	return domain.PaymentEvent{Type: domain.EventPaymentPaid, OrderID: orderID, Amount: "2500.00", OccurredAt: time.Now()}
}

func TestNotifyPaymentPaid_UsesCachedOrder(t *testing.T) {
	f := newNotificationFixture()
	_ = f.cache.SetOrder(context.Background(), testOrder("ORD-1"))

	if err := f.svc.Handle(context.Background(), paidEvent("ORD-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := f.sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 SMS, got %d", len(sent))
	}
	want := service.PaymentSuccessMessage("Nimali", "2500.00")
	if sent[0].Phone != "0701234567" || sent[0].Message != want {
		t.Errorf("unexpected SMS %+v", sent[0])
	}
	if f.repo.GetByIDCallCount != 0 {
		t.Errorf("repository should not be read on cache hit")
	}
}

func TestNotifyPaymentPaid_FallsBackToRepository(t *testing.T) {
	f := newNotificationFixture()
	f.repo.AddOrder(testOrder("ORD-2"))

	if err := f.svc.Handle(context.Background(), paidEvent("ORD-2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.sender.Sent()) != 1 {
		t.Errorf("expected 1 SMS")
	}
}

func TestNotifyPaymentPaid_SentOncePerOrder(t *testing.T) {
	f := newNotificationFixture()
	f.repo.AddOrder(testOrder("ORD-3"))

	for i := 0; i < 3; i++ {
		if err := f.svc.Handle(context.Background(), paidEvent("ORD-3")); err != nil {
			t.Fatalf("delivery %d: unexpected error: %v", i, err)
		}
	}
	if got := len(f.sender.Sent()); got != 1 {
		t.Errorf("expected 1 SMS across redeliveries, got %d", got)
	}
}

func TestNotifyPaymentPaid_FailureReleasesClaim(t *testing.T) {
	f := newNotificationFixture()
	f.repo.AddOrder(testOrder("ORD-4"))
	f.sender.SendError = errors.New("gateway timeout")

	if err := f.svc.Handle(context.Background(), paidEvent("ORD-4")); err == nil {
		t.Fatal("expected send error")
	}
	if f.claims.Held("sms-paid", "ORD-4") {
		t.Fatal("claim must be released after a failed send")
	}

	f.sender.SendError = nil
	if err := f.svc.Handle(context.Background(), paidEvent("ORD-4")); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(f.sender.Sent()) != 1 {
		t.Errorf("expected the retry to send")
	}
}

func TestNotifyPaymentPaid_UnknownOrder(t *testing.T) {
	f := newNotificationFixture()

	err := f.svc.Handle(context.Background(), paidEvent("ORD-missing"))
	if !errors.Is(err, service.ErrOrderDetailsUnavailable) {
		t.Errorf("expected ErrOrderDetailsUnavailable, got %v", err)
	}
	if f.sender.SendCallCount != 0 {
		t.Errorf("no SMS expected")
	}
	if f.claims.Held("sms-paid", "ORD-missing") {
		t.Errorf("claim must be released")
	}
}

func TestNotifyPaymentPaid_ClaimStoreDown(t *testing.T) {
	f := newNotificationFixture()
	f.repo.AddOrder(testOrder("ORD-5"))
	f.claims.ClaimError = errors.New("redis down")

	if err := f.svc.Handle(context.Background(), paidEvent("ORD-5")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.sender.Sent()) != 1 {
		t.Errorf("expected SMS to be sent when claims are unavailable")
	}
}

func TestNotifyBankSubmission(t *testing.T) {
	f := newNotificationFixture()

	err := f.svc.Handle(context.Background(), domain.PaymentEvent{
		Type:        domain.EventBankSubmissionReceived,
		Phone:       "0771234567",
		StudentName: "Kasun",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := f.sender.Sent()
	if len(sent) != 1 || sent[0].Message != service.BankSubmissionMessage("Kasun") {
		t.Errorf("unexpected SMS %+v", sent)
	}
	if f.claims.ClaimCallCount != 0 {
		t.Errorf("bank acknowledgements are not claimed")
	}
}

func TestHandle_NotConfiguredAndUnknownType(t *testing.T) {
	f := newNotificationFixture()
	f.sender.SendError = sms.ErrNotConfigured

	err := f.svc.Handle(context.Background(), domain.PaymentEvent{
		Type: domain.EventBankSubmissionReceived, Phone: "0771234567", StudentName: "Kasun",
	})
	if !errors.Is(err, sms.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}

	if err := f.svc.Handle(context.Background(), domain.PaymentEvent{Type: "REFUNDED"}); err == nil {
		t.Errorf("expected error for unknown event type")
	}
}

func TestNewSMSLimiter_NonPositiveRateDoesNotStall(t *testing.T) {
	for _, perSec := range []float64{0, -1} {
		sender := testutil.NewMockSMSSender()
		svc := service.NewNotificationService(sender, nil, testutil.NewMockOrderRepository(), nil, service.NewSMSLimiter(perSec))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		for i := 0; i < 3; i++ {
			err := svc.NotifyBankSubmission(ctx, domain.PaymentEvent{
				Type: domain.EventBankSubmissionReceived, Phone: "0771234567", StudentName: "Kasun",
			})
			if err != nil {
				t.Errorf("rate %v, send %d: %v", perSec, i, err)
			}
		}
		cancel()

		if got := len(sender.Sent()); got != 3 {
			t.Errorf("rate %v: expected 3 SMS, got %d", perSec, got)
		}
	}
}

func TestNewSMSLimiter_PacesPositiveRate(t *testing.T) {
	limiter := service.NewSMSLimiter(2)
	if limiter.Limit() != 2 || limiter.Burst() != 1 {
		t.Errorf("expected 2/s with burst 1, got %v/%d", limiter.Limit(), limiter.Burst())
	}
}
