package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *MockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, before, limit)
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*shared.OutboxEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockOutboxRepository) RequeueDead(ctx context.Context, eventTypes ...string) (int64, error) {
	args := m.Called(ctx, eventTypes)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxRepository) DeleteSentBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[shared.OutboxStatus]int64), args.Error(1)
}

func deadCashEntry() *shared.OutboxEntry {
	return &shared.OutboxEntry{
		ID:            uuid.New(),
		EventID:       uuid.New(),
		EventType:     ledger.EventTypeCashEntryRequested,
		AggregateID:   uuid.New(),
		AggregateType: "Debt",
		Payload:       []byte(`{"amount":"5000","transaction_type":"EXPENSE"}`),
		Status:        shared.OutboxStatusDead,
		RetryCount:    5,
		MaxRetries:    5,
		LastError:     "cash book unavailable",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	return de.Code
}

func TestDeliveryService_ListDeadEntries(t *testing.T) {
	repo := new(MockOutboxRepository)
	svc := NewDeliveryService(repo, zap.NewNop())

	entries := []*shared.OutboxEntry{deadCashEntry(), deadCashEntry()}
	repo.On("FindDead", mock.Anything, 1, 20).Return(entries, int64(2), nil)

	result, err := svc.ListDeadEntries(context.Background(), OutboxFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 20, result.PageSize)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "DEAD", result.Entries[0].Status)
	assert.JSONEq(t, `{"amount":"5000","transaction_type":"EXPENSE"}`, string(result.Entries[0].Payload))
	repo.AssertExpectations(t)
}

func TestDeliveryService_ListDeadEntriesCapsPageSize(t *testing.T) {
	repo := new(MockOutboxRepository)
	svc := NewDeliveryService(repo, nil)
	repo.On("FindDead", mock.Anything, 3, 100).Return([]*shared.OutboxEntry{}, int64(0), nil)

	_, err := svc.ListDeadEntries(context.Background(), OutboxFilter{Page: 3, PageSize: 500})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeliveryService_ListDeadEntriesStoreFailure(t *testing.T) {
	repo := new(MockOutboxRepository)
	svc := NewDeliveryService(repo, nil)
	repo.On("FindDead", mock.Anything, 1, 20).Return(nil, int64(0), errors.New("timeout"))

	_, err := svc.ListDeadEntries(context.Background(), OutboxFilter{})
	assert.Equal(t, CodePersistence, domainCode(t, err))
}

func TestDeliveryService_RetryDeadEntry(t *testing.T) {
	repo := new(MockOutboxRepository)
	svc := NewDeliveryService(repo, zap.NewNop())
	entry := deadCashEntry()

	repo.On("FindByID", mock.Anything, entry.ID).Return(entry, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(e *shared.OutboxEntry) bool {
		return e.ID == entry.ID && e.Status == shared.OutboxStatusPending
	})).Return(nil)

	result, err := svc.RetryDeadEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", result.Status)
	assert.Equal(t, 0, result.RetryCount)
	assert.Empty(t, result.LastError)
	repo.AssertExpectations(t)
}

func TestDeliveryService_RetryDeadEntryNotFound(t *testing.T) {
	repo := new(MockOutboxRepository)
	svc := NewDeliveryService(repo, zap.NewNop())
	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.RetryDeadEntry(context.Background(), id)
	assert.Equal(t, CodeEntryNotFound, domainCode(t, err))
}

func TestDeliveryService_RetryDeadEntryNotDead(t *testing.T) {
	repo := new(MockOutboxRepository)
	svc := NewDeliveryService(repo, zap.NewNop())
	entry := deadCashEntry()
	entry.Status = shared.OutboxStatusSent
	repo.On("FindByID", mock.Anything, entry.ID).Return(entry, nil)

	_, err := svc.RetryDeadEntry(context.Background(), entry.ID)
	assert.Equal(t, CodeInvalidState, domainCode(t, err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeliveryService_RetryDeadCashEntries(t *testing.T) {
	repo := new(MockOutboxRepository)
	svc := NewDeliveryService(repo, zap.NewNop())
	repo.On("RequeueDead", mock.Anything, []string{ledger.EventTypeCashEntryRequested}).Return(int64(3), nil)

	n, err := svc.RetryDeadCashEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	repo.AssertExpectations(t)
}

func TestDeliveryService_GetStats(t *testing.T) {
	repo := new(MockOutboxRepository)
	svc := NewDeliveryService(repo, zap.NewNop())
	repo.On("CountByStatus", mock.Anything).Return(map[shared.OutboxStatus]int64{
		shared.OutboxStatusPending:    2,
		shared.OutboxStatusProcessing: 1,
		shared.OutboxStatusSent:       3,
		shared.OutboxStatusFailed:     1,
		shared.OutboxStatusDead:       1,
	}, nil)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(3), stats.Sent)
	assert.Equal(t, int64(1), stats.Dead)
	assert.Equal(t, int64(8), stats.Total)
}
