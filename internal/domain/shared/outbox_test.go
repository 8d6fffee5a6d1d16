package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvent struct {
	BaseDomainEvent
}

func TestNewOutboxEntry(t *testing.T) {
	aggID := uuid.New()
	evt := &stubEvent{BaseDomainEvent: NewBaseDomainEvent("CashEntryRequested", "Debt", aggID)}

	entry := NewOutboxEntry(evt, []byte(`{}`))

	assert.Equal(t, evt.EventID(), entry.EventID)
	assert.Equal(t, "CashEntryRequested", entry.EventType)
	assert.Equal(t, aggID, entry.AggregateID)
	assert.Equal(t, "Debt", entry.AggregateType)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
	assert.Zero(t, entry.RetryCount)
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusPending}
	require.NoError(t, entry.MarkProcessing())
	assert.Equal(t, OutboxStatusProcessing, entry.Status)

	entry.Status = OutboxStatusSent
	assert.Error(t, entry.MarkProcessing())
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	t.Run("resets dead letter entry for retry", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:         uuid.New(),
			EventID:    uuid.New(),
			EventType:  "CashEntryRequested",
			Status:     OutboxStatusDead,
			RetryCount: 5,
			MaxRetries: 5,
			LastError:  "cash ledger unavailable",
			CreatedAt:  time.Now().Add(-time.Hour),
			UpdatedAt:  time.Now().Add(-time.Minute),
		}

		err := entry.ResetForRetry()
		assert.NoError(t, err)
		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Equal(t, 0, entry.RetryCount)
		assert.Empty(t, entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
	})

	t.Run("fails for non-dead entry", func(t *testing.T) {
		for _, status := range []OutboxStatus{
			OutboxStatusPending,
			OutboxStatusProcessing,
			OutboxStatusSent,
			OutboxStatusFailed,
		} {
			entry := &OutboxEntry{Status: status}
			assert.Error(t, entry.ResetForRetry(), status)
		}
	})
}

func TestOutboxEntry_MarkFailed_MovesToDeadAfterMaxRetries(t *testing.T) {
	entry := &OutboxEntry{
		Status:     OutboxStatusProcessing,
		RetryCount: 4,
		MaxRetries: 5,
	}

	entry.MarkFailed("final error")

	assert.Equal(t, OutboxStatusDead, entry.Status)
	assert.Equal(t, 5, entry.RetryCount)
	assert.Equal(t, "final error", entry.LastError)
	assert.Nil(t, entry.NextRetryAt)
	assert.True(t, entry.IsDead())
	assert.False(t, entry.CanRetry())
}

func TestOutboxEntry_MarkFailedWithBackoff(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing, MaxRetries: 10}

	entry.MarkFailedWithBackoff("error 1", 2*time.Second)
	assert.Equal(t, OutboxStatusFailed, entry.Status)
	require.NotNil(t, entry.NextRetryAt)
	first := time.Until(*entry.NextRetryAt)
	assert.True(t, first > time.Second && first <= 2*time.Second)
	assert.True(t, entry.CanRetry())

	entry.MarkFailedWithBackoff("error 2", 2*time.Second)
	second := time.Until(*entry.NextRetryAt)
	assert.True(t, second > 3*time.Second && second <= 4*time.Second)

	entry.RetryCount = 8
	entry.MarkFailedWithBackoff("error 9", time.Minute)
	capped := time.Until(*entry.NextRetryAt)
	assert.True(t, capped <= maxBackoff)
}
