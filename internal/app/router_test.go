package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feeportal/internal/handler"
	"feeportal/internal/middleware"
	"feeportal/internal/service"
	"feeportal/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryResponses struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryResponses) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryResponses) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

type routerFixture struct {
	router *gin.Engine
	ledger *testutil.MockLedgerRepository
}

func newRouterFixture(origins []string, limiter *middleware.IPRateLimiter) *routerFixture {
	status := testutil.NewMockStatusStore()
	ledger := testutil.NewMockLedgerRepository()
	events := testutil.NewMockPublisher()

	router := NewRouter(RouterDeps{
		PayHereHandler: handler.NewPayHereHandler(
			service.NewInitiationService(service.InitiationConfig{MerchantSecret: "router-secret", Sandbox: true}, testutil.NewMockOrderRepository(), nil),
			service.NewReconcilerService("router-secret", status, events, true),
			service.NewStatusService(status),
		),
		SubmissionHandler: handler.NewSubmissionHandler(
			service.NewSubmissionService(ledger, status, events),
			service.NewReceiptService(testutil.NewMockReceiptStore(), 1024),
		),
		ResponseStore:  &memoryResponses{data: make(map[string][]byte)},
		StatusLimiter:  limiter,
		AllowedOrigins: origins,
	})
	return &routerFixture{router: router, ledger: ledger}
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(nil, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_CORSAllowsConfiguredOrigin(t *testing.T) {
	f := newRouterFixture([]string{"https://fees.example.lk"}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/payhere/hash", nil)
	req.Header.Set("Origin", "https://fees.example.lk")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := f.do(req)

	assert.Equal(t, "https://fees.example.lk", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")

	req = httptest.NewRequest(http.MethodOptions, "/api/payhere/hash", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = f.do(req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_StatusIsRateLimited(t *testing.T) {
	f := newRouterFixture(nil, middleware.NewIPRateLimiter(0.001, 2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/payhere/status", strings.NewReader(`{"order_id":"ORD-1"}`))
		req.Header.Set("Content-Type", "application/json")
		codes = append(codes, f.do(req).Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_SubmitFormReplaysIdempotencyKey(t *testing.T) {
	f := newRouterFixture(nil, nil)
	body := `{
		"studentName":"Nimali","admissionNo":"A-1","parentName":"Sunil","grade":"10","medium":"English",
		"phone":"0701234567","feesType":"Monthly","month":"October","paymentMethod":"bank",
		"amount":"2500","receiptUrl":"https://receipts.test/r.pdf"}`

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/submit-form", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "form-1")
		w := f.do(req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	assert.Len(t, f.ledger.Rows(), 1)
}
