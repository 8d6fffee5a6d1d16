package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBranchDirectory struct {
	mock.Mock
}

func (m *MockBranchDirectory) Resolve(ctx context.Context, id int64) (*ledger.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Branch), args.Error(1)
}

func (m *MockBranchDirectory) ResolveMany(ctx context.Context, ids []int64) (map[int64]*ledger.Branch, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*ledger.Branch), args.Error(1)
}

func (m *MockBranchDirectory) List(ctx context.Context) ([]ledger.Branch, error) {
	args := m.Called(ctx)
	return args.Get(0).([]ledger.Branch), args.Error(1)
}

type failingCache struct{}

func (failingCache) Get(context.Context, int64) (*ledger.Branch, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (failingCache) Set(context.Context, *ledger.Branch) error { return errors.New("connection refused") }
func (failingCache) Delete(context.Context, int64) error      { return nil }

func TestInMemoryBranchCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryBranchCache(20 * time.Millisecond)

	_, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, &ledger.Branch{ID: 1, Name: "Downtown", IsActive: true}))
	b, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Downtown", b.Name)

	time.Sleep(30 * time.Millisecond)
	_, ok, _ = c.Get(ctx, 1)
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestCachedBranchDirectory_Resolve(t *testing.T) {
	ctx := context.Background()
	source := new(MockBranchDirectory)
	dir := NewCachedBranchDirectory(source, NewInMemoryBranchCache(time.Minute), nil)

	source.On("Resolve", mock.Anything, int64(2)).Return(&ledger.Branch{ID: 2, Name: "Harbor"}, nil).Once()

	for i := 0; i < 3; i++ {
		b, err := dir.Resolve(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Harbor", b.Name)
	}
	source.AssertNumberOfCalls(t, "Resolve", 1)

	require.NoError(t, dir.Invalidate(ctx, 2))
	source.On("Resolve", mock.Anything, int64(2)).Return(&ledger.Branch{ID: 2, Name: "Harbor East"}, nil).Once()
	b, err := dir.Resolve(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Harbor East", b.Name)
}

func TestCachedBranchDirectory_ResolveMany(t *testing.T) {
	ctx := context.Background()
	source := new(MockBranchDirectory)
	cache := NewInMemoryBranchCache(time.Minute)
	require.NoError(t, cache.Set(ctx, &ledger.Branch{ID: 1, Name: "Downtown"}))
	dir := NewCachedBranchDirectory(source, cache, nil)

	source.On("ResolveMany", mock.Anything, []int64{2, 3}).
		Return(map[int64]*ledger.Branch{2: {ID: 2, Name: "Harbor"}}, nil)

	got, err := dir.ResolveMany(ctx, []int64{1, 2, 1, 3})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Downtown", got[1].Name)
	assert.Equal(t, "Harbor", got[2].Name)
	_, found := got[3]
	assert.False(t, found)

	// second call is served from cache for the known ids
	got, err = dir.ResolveMany(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	source.AssertNumberOfCalls(t, "ResolveMany", 1)
}

func TestCachedBranchDirectory_CacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	source := new(MockBranchDirectory)
	dir := NewCachedBranchDirectory(source, failingCache{}, nil)
	source.On("Resolve", mock.Anything, int64(5)).Return(&ledger.Branch{ID: 5, Name: "Airport"}, nil)

	b, err := dir.Resolve(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Airport", b.Name)
}

func TestCachedBranchDirectory_SourceError(t *testing.T) {
	source := new(MockBranchDirectory)
	dir := NewCachedBranchDirectory(source, NewInMemoryBranchCache(time.Minute), nil)
	source.On("Resolve", mock.Anything, int64(9)).Return(nil, errors.New("db down"))

	_, err := dir.Resolve(context.Background(), 9)
	assert.Error(t, err)
}
