// Package testutil provides in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"feeportal/internal/domain"
	"feeportal/internal/redis"
	"feeportal/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK ORDER REPOSITORY
// ──────────────────────────────────────────────

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.PaymentOrder

	// Counters for verification
	CreateCallCount  int32
	GetByIDCallCount int32

	// Error injection
	CreateError  error
	GetByIDError error
}

// NewMockOrderRepository creates a new mock order repository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*domain.PaymentOrder),
	}
}

// AddOrder adds an order to the mock repository.
func (m *MockOrderRepository) AddOrder(order *domain.PaymentOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.OrderID] = order
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.PaymentOrder) (bool, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return false, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.orders[order.OrderID]; exists {
		return false, nil
	}
	copy := *order
	m.orders[order.OrderID] = &copy
	return true, nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *order
	return &copy, nil
}

// GetOrder returns an order for test assertions.
func (m *MockOrderRepository) GetOrder(orderID string) *domain.PaymentOrder {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[orderID]
}

// ──────────────────────────────────────────────
// MOCK LEDGER REPOSITORY
// ──────────────────────────────────────────────

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	mu   sync.RWMutex
	rows []*domain.FeeSubmission

	AppendCallCount int32
	AppendError     error
	ListError       error
}

// NewMockLedgerRepository creates a new mock ledger repository.
func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) Append(ctx context.Context, submission *domain.FeeSubmission) error {
	atomic.AddInt32(&m.AppendCallCount, 1)
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if submission.PaymentMethod == domain.PaymentMethodPayHere {
		for _, row := range m.rows {
			if row.PaymentMethod == domain.PaymentMethodPayHere && row.PayHereOrderID == submission.PayHereOrderID {
				return repository.ErrDuplicate
			}
		}
	}
	copy := *submission
	m.rows = append(m.rows, &copy)
	return nil
}

func (m *MockLedgerRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.FeeSubmission, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.FeeSubmission
	for _, row := range m.rows {
		if row.PayHereOrderID == orderID {
			copy := *row
			result = append(result, &copy)
		}
	}
	return result, nil
}

// Rows returns every appended submission.
func (m *MockLedgerRepository) Rows() []*domain.FeeSubmission {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.FeeSubmission(nil), m.rows...)
}

// ──────────────────────────────────────────────
// MOCK STATUS STORE
// ──────────────────────────────────────────────

// MockStatusStore is an in-memory StatusStoreInterface.
type MockStatusStore struct {
	mu       sync.RWMutex
	statuses map[string]domain.OrderStatus

	SetCallCount int32

	GetError error
	SetError error
}

// NewMockStatusStore creates a new mock status store.
func NewMockStatusStore() *MockStatusStore {
	return &MockStatusStore{
		statuses: make(map[string]domain.OrderStatus),
	}
}

func (m *MockStatusStore) GetStatus(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	if m.GetError != nil {
		return "", m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.statuses[orderID]
	if !ok {
		return domain.OrderStatusPending, nil
	}
	return status, nil
}

func (m *MockStatusStore) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[orderID] = status
	return nil
}

// Len returns the number of stored keys.
func (m *MockStatusStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.statuses)
}

// ──────────────────────────────────────────────
// MOCK CLAIM STORE
// ──────────────────────────────────────────────

// MockClaimStore is an in-memory ClaimStoreInterface.
type MockClaimStore struct {
	mu     sync.Mutex
	claims map[string]bool

	ClaimCallCount   int32
	ReleaseCallCount int32

	ClaimError error
}

// NewMockClaimStore creates a new mock claim store.
func NewMockClaimStore() *MockClaimStore {
	return &MockClaimStore{
		claims: make(map[string]bool),
	}
}

func (m *MockClaimStore) Claim(ctx context.Context, kind, id string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.ClaimCallCount, 1)
	if m.ClaimError != nil {
		return false, m.ClaimError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := kind + ":" + id
	if m.claims[key] {
		return false, nil
	}
	m.claims[key] = true
	return true, nil
}

func (m *MockClaimStore) Release(ctx context.Context, kind, id string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, kind+":"+id)
	return nil
}

// Held reports whether a claim is currently taken.
func (m *MockClaimStore) Held(kind, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims[kind+":"+id]
}

// ──────────────────────────────────────────────
// MOCK ORDER CACHE
// ──────────────────────────────────────────────

// MockOrderCache is an in-memory OrderCacheInterface.
type MockOrderCache struct {
	mu     sync.RWMutex
	orders map[string]*domain.PaymentOrder

	SetCallCount int32

	GetError error
	SetError error
}

// NewMockOrderCache creates a new mock order cache.
func NewMockOrderCache() *MockOrderCache {
	return &MockOrderCache{
		orders: make(map[string]*domain.PaymentOrder),
	}
}

func (m *MockOrderCache) GetOrder(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	copy := *order
	return &copy, nil
}

func (m *MockOrderCache) SetOrder(ctx context.Context, order *domain.PaymentOrder) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *order
	m.orders[order.OrderID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK SMS SENDER
// ──────────────────────────────────────────────

// SentSMS is one message captured by MockSMSSender.
type SentSMS struct {
	Phone   string
	Message string
}

// MockSMSSender records messages instead of sending them.
type MockSMSSender struct {
	mu   sync.Mutex
	sent []SentSMS

	SendCallCount int32

	// SendError, when set, is returned from every Send call.
	SendError error
}

// NewMockSMSSender creates a new mock SMS sender.
func NewMockSMSSender() *MockSMSSender {
	return &MockSMSSender{}
}

func (m *MockSMSSender) Send(ctx context.Context, phone, message string) error {
	atomic.AddInt32(&m.SendCallCount, 1)
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentSMS{Phone: phone, Message: message})
	return nil
}

// Sent returns the delivered messages.
func (m *MockSMSSender) Sent() []SentSMS {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentSMS(nil), m.sent...)
}

// ──────────────────────────────────────────────
// MOCK EVENT PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []domain.PaymentEvent

	PublishError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(evt domain.PaymentEvent) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

// Events returns the published events.
func (m *MockPublisher) Events() []domain.PaymentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PaymentEvent(nil), m.events...)
}

// ──────────────────────────────────────────────
// MOCK RECEIPT STORE
// ──────────────────────────────────────────────

// MockReceiptStore keeps uploaded objects in memory.
type MockReceiptStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	PutError error
}

// ErrMockStorage is a generic storage failure for error injection.
var ErrMockStorage = errors.New("mock storage failure")

// NewMockReceiptStore creates a new mock receipt store.
func NewMockReceiptStore() *MockReceiptStore {
	return &MockReceiptStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *MockReceiptStore) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if m.PutError != nil {
		return "", m.PutError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	m.types[key] = contentType
	return "https://receipts.test/" + key, nil
}

// ContentType returns the content type an object was stored with.
func (m *MockReceiptStore) ContentType(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.types[key]
}

// Ensure mocks implement interfaces.
var (
	_ repository.OrderRepository  = (*MockOrderRepository)(nil)
	_ repository.LedgerRepository = (*MockLedgerRepository)(nil)
	_ redis.StatusStoreInterface  = (*MockStatusStore)(nil)
	_ redis.ClaimStoreInterface   = (*MockClaimStore)(nil)
	_ redis.OrderCacheInterface   = (*MockOrderCache)(nil)
)
