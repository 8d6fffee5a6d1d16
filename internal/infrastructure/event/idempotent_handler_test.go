package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/parcelhub/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockEventHandler is a mock implementation of shared.EventHandler
type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Unmark(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newCashEvent() *ledger.CashEntryRequestedEvent {
	return ledger.NewCashEntryRequestedEvent(ledger.CashEntry{
		DebtID:          uuid.New(),
		Reason:          ledger.CashReasonDebtCreated,
		TransactionType: ledger.TransactionExpense,
		Amount:          decimal.NewFromInt(5000),
		Description:     "Debt opened with branch Harbor",
		BranchID:        1,
		AddedByUserID:   uuid.New(),
		TransactionDate: time.Now(),
	})
}

func newStore(t *testing.T) *cache.InMemoryIdempotencyStore {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotentHandler_Handle_NewEvent(t *testing.T) {
	mockHandler := new(MockEventHandler)
	event := newCashEvent()
	mockHandler.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(mockHandler, newStore(t), zap.NewNop())
	require.NoError(t, handler.Handle(context.Background(), event))

	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(0), handler.metrics.EventsDuplicate.Load())
}

func TestIdempotentHandler_Handle_DuplicateEvent(t *testing.T) {
	mockHandler := new(MockEventHandler)
	event := newCashEvent()
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(mockHandler, newStore(t), zap.NewNop())
	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(2), handler.metrics.EventsDuplicate.Load())
}

func TestIdempotentHandler_Handle_FailureAllowsRetry(t *testing.T) {
	store := newStore(t)
	mockHandler := new(MockEventHandler)
	event := newCashEvent()
	expectedErr := errors.New("cash book unavailable")

	mockHandler.On("Handle", mock.Anything, event).Return(expectedErr).Once()
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(mockHandler, store, zap.NewNop())

	err := handler.Handle(context.Background(), event)
	assert.Equal(t, expectedErr, err)
	processed, _ := store.IsProcessed(context.Background(), event.EventID().String())
	assert.False(t, processed)

	require.NoError(t, handler.Handle(context.Background(), event))
	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.metrics.EventsFailed.Load())
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
}

func TestIdempotentHandler_Handle_UnmarkError(t *testing.T) {
	store := new(MockIdempotencyStore)
	mockHandler := new(MockEventHandler)
	event := newCashEvent()
	id := event.EventID().String()

	store.On("MarkProcessed", mock.Anything, id, mock.Anything).Return(true, nil)
	store.On("Unmark", mock.Anything, id).Return(errors.New("redis down"))
	mockHandler.On("Handle", mock.Anything, event).Return(errors.New("boom"))

	handler := NewIdempotentHandler(mockHandler, store, nil)
	err := handler.Handle(context.Background(), event)
	assert.EqualError(t, err, "boom")
	store.AssertExpectations(t)
}

func TestIdempotentHandler_Handle_StoreError(t *testing.T) {
	store := new(MockIdempotencyStore)
	mockHandler := new(MockEventHandler)
	event := newCashEvent()

	store.On("MarkProcessed", mock.Anything, event.EventID().String(), mock.Anything).
		Return(false, errors.New("store error"))
	mockHandler.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(mockHandler, store, zap.NewNop())
	require.NoError(t, handler.Handle(context.Background(), event))

	store.AssertExpectations(t)
	mockHandler.AssertExpectations(t)
}

func TestIdempotentHandler_Handle_Disabled(t *testing.T) {
	mockHandler := new(MockEventHandler)
	event := newCashEvent()
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Times(3)

	cfg := shared.DefaultIdempotencyConfig()
	cfg.Enabled = false
	handler := NewIdempotentHandler(mockHandler, newStore(t), zap.NewNop(), WithIdempotencyConfig(cfg))

	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}
	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(0), handler.metrics.EventsProcessed.Load())
}

func TestIdempotentHandler_Delegation(t *testing.T) {
	mockHandler := new(MockEventHandler)
	mockHandler.On("EventTypes").Return([]string{ledger.EventTypeCashEntryRequested})

	handler := NewIdempotentHandler(mockHandler, newStore(t), zap.NewNop())
	assert.Equal(t, []string{ledger.EventTypeCashEntryRequested}, handler.EventTypes())
	assert.Equal(t, mockHandler, handler.GetWrappedHandler())
}

func TestIdempotentHandler_SharedMetrics(t *testing.T) {
	store := newStore(t)
	metrics := &IdempotencyMetrics{}

	h1, h2 := new(MockEventHandler), new(MockEventHandler)
	e1, e2 := newCashEvent(), newCashEvent()
	h1.On("Handle", mock.Anything, e1).Return(nil)
	h2.On("Handle", mock.Anything, e2).Return(nil)

	wrapped := WrapHandlersWithIdempotency([]shared.EventHandler{h1, h2}, store, zap.NewNop(), WithIdempotencyMetrics(metrics))
	require.Len(t, wrapped, 2)
	require.NoError(t, wrapped[0].Handle(context.Background(), e1))
	require.NoError(t, wrapped[1].Handle(context.Background(), e2))

	stats := metrics.Stats()
	assert.Equal(t, int64(2), stats.EventsProcessed)
	assert.Equal(t, int64(0), stats.EventsFailed)
}

func TestIdempotentHandler_ConcurrentDuplicates(t *testing.T) {
	mockHandler := new(MockEventHandler)
	event := newCashEvent()
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(mockHandler, newStore(t), zap.NewNop())

	const workers = 50
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() { errs <- handler.Handle(context.Background(), event) }()
	}
	for i := 0; i < workers; i++ {
		assert.NoError(t, <-errs)
	}

	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(workers-1), handler.metrics.EventsDuplicate.Load())
}
