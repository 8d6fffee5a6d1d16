package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOutboxMaintainer struct {
	mock.Mock
}

func (m *MockOutboxMaintainer) DeleteSentBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxMaintainer) RequeueDead(ctx context.Context, eventTypes ...string) (int64, error) {
	args := m.Called(ctx, eventTypes)
	return args.Get(0).(int64), args.Error(1)
}

func TestScheduler_RegisterRejectsBadSpecs(t *testing.T) {
	s := New(time.Minute, zap.NewNop())

	err := s.Register("broken", "every now and then", func(context.Context) (int64, error) { return 0, nil })
	assert.ErrorIs(t, err, ErrInvalidConfig)

	require.NoError(t, s.Register("ok", "@every 1h", func(context.Context) (int64, error) { return 0, nil }))
	err = s.Register("ok", "@every 2h", func(context.Context) (int64, error) { return 0, nil })
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestScheduler_RunNowRecordsOutcome(t *testing.T) {
	s := New(time.Minute, zap.NewNop())
	require.NoError(t, s.Register("good", "0 3 * * *", func(context.Context) (int64, error) { return 4, nil }))
	require.NoError(t, s.Register("bad", "0 3 * * *", func(context.Context) (int64, error) { return 0, errors.New("db down") }))

	runs := s.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, JobStatusNeverRun, runs[0].Status)

	run, err := s.RunNow("good")
	require.NoError(t, err)
	assert.Equal(t, JobStatusSuccess, run.Status)
	assert.Equal(t, int64(4), run.Affected)
	assert.NotNil(t, run.CompletedAt)

	run, err = s.RunNow("bad")
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, run.Status)
	assert.Equal(t, "db down", run.Error)

	_, err = s.RunNow("missing")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestScheduler_JobTimeout(t *testing.T) {
	s := New(20*time.Millisecond, zap.NewNop())
	require.NoError(t, s.Register("slow", "@every 1h", func(ctx context.Context) (int64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}))

	run, err := s.RunNow("slow")
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, run.Status)
	assert.Contains(t, run.Error, "deadline exceeded")
}

func TestScheduler_StartFiresAndStops(t *testing.T) {
	s := New(time.Minute, zap.NewNop())
	var mu sync.Mutex
	calls := 0
	require.NoError(t, s.Register("tick", "@every 1s", func(context.Context) (int64, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return 0, nil
	}))

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= 1
	}, 3*time.Second, 50*time.Millisecond)

	runs := s.Runs()
	require.Len(t, runs, 1)
	assert.NotNil(t, runs[0].NextRunAt)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestPurgeSentJob_UsesRetentionCutoff(t *testing.T) {
	repo := new(MockOutboxMaintainer)
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	repo.On("DeleteSentBefore", mock.Anything, now.Add(-48*time.Hour)).Return(int64(12), nil)

	n, err := PurgeSentJob(repo, 48*time.Hour, func() time.Time { return now })(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	repo.AssertExpectations(t)
}

func TestRequeueDeadJob_PassesEventTypes(t *testing.T) {
	repo := new(MockOutboxMaintainer)
	repo.On("RequeueDead", mock.Anything, []string{"CashEntryRequested"}).Return(int64(2), nil)

	n, err := RequeueDeadJob(repo, zap.NewNop(), "CashEntryRequested")(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	repo.AssertExpectations(t)
}

func TestRegisterOutboxMaintenance(t *testing.T) {
	s := New(time.Minute, zap.NewNop())
	repo := new(MockOutboxMaintainer)
	repo.On("RequeueDead", mock.Anything, []string{"CashEntryRequested"}).Return(int64(0), nil)

	require.NoError(t, RegisterOutboxMaintenance(s, repo, OutboxMaintenanceConfig{
		RequeueEventTypes: []string{"CashEntryRequested"},
	}, nil))

	runs := s.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, JobPurgeSentOutbox, runs[0].Name)
	assert.Equal(t, "@every 1h", runs[0].Schedule)
	assert.Equal(t, JobRequeueDeadCash, runs[1].Name)
	assert.Equal(t, "0 3 * * *", runs[1].Schedule)

	run, err := s.RunNow(JobRequeueDeadCash)
	require.NoError(t, err)
	assert.Equal(t, JobStatusSuccess, run.Status)

	err = RegisterOutboxMaintenance(New(time.Minute, nil), repo, OutboxMaintenanceConfig{PurgeSchedule: "nope"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
