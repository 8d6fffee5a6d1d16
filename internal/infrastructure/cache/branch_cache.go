package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultBranchCacheTTL = 5 * time.Minute
	branchKeyPrefix       = "ledger:branch:"
)

// BranchCache stores branch directory entries by id
type BranchCache interface {
	Get(ctx context.Context, id int64) (*ledger.Branch, bool, error)
	Set(ctx context.Context, branch *ledger.Branch) error
	Delete(ctx context.Context, id int64) error
}

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e *cacheEntry[T]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryBranchCache is a process-local TTL cache
type InMemoryBranchCache struct {
	entries sync.Map
	ttl     time.Duration
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewInMemoryBranchCache creates a cache whose entries live for ttl
func NewInMemoryBranchCache(ttl time.Duration) *InMemoryBranchCache {
	if ttl <= 0 {
		ttl = defaultBranchCacheTTL
	}
	return &InMemoryBranchCache{ttl: ttl}
}

func (c *InMemoryBranchCache) Get(_ context.Context, id int64) (*ledger.Branch, bool, error) {
	v, ok := c.entries.Load(id)
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}
	entry := v.(*cacheEntry[ledger.Branch])
	if entry.expired(time.Now()) {
		c.entries.Delete(id)
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	b := entry.value
	return &b, true, nil
}

func (c *InMemoryBranchCache) Set(_ context.Context, branch *ledger.Branch) error {
	c.entries.Store(branch.ID, &cacheEntry[ledger.Branch]{
		value:     *branch,
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}

func (c *InMemoryBranchCache) Delete(_ context.Context, id int64) error {
	c.entries.Delete(id)
	return nil
}

// Stats returns hit and miss counts
func (c *InMemoryBranchCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// RedisBranchCache shares branch entries between instances
type RedisBranchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBranchCache creates a cache on an open client
func NewRedisBranchCache(client *redis.Client, ttl time.Duration) *RedisBranchCache {
	if ttl <= 0 {
		ttl = defaultBranchCacheTTL
	}
	return &RedisBranchCache{client: client, ttl: ttl}
}

func (c *RedisBranchCache) key(id int64) string {
	return branchKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *RedisBranchCache) Get(ctx context.Context, id int64) (*ledger.Branch, bool, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read branch %d from cache: %w", id, err)
	}
	var b ledger.Branch
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached branch %d: %w", id, err)
	}
	return &b, true, nil
}

func (c *RedisBranchCache) Set(ctx context.Context, branch *ledger.Branch) error {
	raw, err := json.Marshal(branch)
	if err != nil {
		return fmt.Errorf("failed to encode branch: %w", err)
	}
	return c.client.Set(ctx, c.key(branch.ID), raw, c.ttl).Err()
}

func (c *RedisBranchCache) Delete(ctx context.Context, id int64) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

// CachedBranchDirectory looks branches up in the cache before the source directory.
// Cache failures are logged and the lookup goes to the source.
type CachedBranchDirectory struct {
	source ledger.BranchDirectory
	cache  BranchCache
	logger *zap.Logger
}

// NewCachedBranchDirectory wraps source with cache
func NewCachedBranchDirectory(source ledger.BranchDirectory, cache BranchCache, logger *zap.Logger) *CachedBranchDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedBranchDirectory{source: source, cache: cache, logger: logger}
}

func (d *CachedBranchDirectory) Resolve(ctx context.Context, branchID int64) (*ledger.Branch, error) {
	if b, ok := d.lookup(ctx, branchID); ok {
		return b, nil
	}
	b, err := d.source.Resolve(ctx, branchID)
	if err != nil {
		return nil, err
	}
	d.store(ctx, b)
	return b, nil
}

func (d *CachedBranchDirectory) ResolveMany(ctx context.Context, ids []int64) (map[int64]*ledger.Branch, error) {
	out := make(map[int64]*ledger.Branch, len(ids))
	var missing []int64
	for _, id := range ids {
		if _, seen := out[id]; seen {
			continue
		}
		if b, ok := d.lookup(ctx, id); ok {
			out[id] = b
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	found, err := d.source.ResolveMany(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, b := range found {
		out[id] = b
		d.store(ctx, b)
	}
	return out, nil
}

// List always reads the source
func (d *CachedBranchDirectory) List(ctx context.Context) ([]ledger.Branch, error) {
	branches, err := d.source.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range branches {
		d.store(ctx, &branches[i])
	}
	return branches, nil
}

// Invalidate drops one branch from the cache
func (d *CachedBranchDirectory) Invalidate(ctx context.Context, branchID int64) error {
	return d.cache.Delete(ctx, branchID)
}

func (d *CachedBranchDirectory) lookup(ctx context.Context, id int64) (*ledger.Branch, bool) {
	b, ok, err := d.cache.Get(ctx, id)
	if err != nil {
		d.logger.Warn("branch cache read failed", zap.Int64("branch_id", id), zap.Error(err))
		return nil, false
	}
	return b, ok
}

func (d *CachedBranchDirectory) store(ctx context.Context, b *ledger.Branch) {
	if err := d.cache.Set(ctx, b); err != nil {
		d.logger.Warn("branch cache write failed", zap.Int64("branch_id", b.ID), zap.Error(err))
	}
}

var (
	_ BranchCache            = (*InMemoryBranchCache)(nil)
	_ BranchCache            = (*RedisBranchCache)(nil)
	_ ledger.BranchDirectory = (*CachedBranchDirectory)(nil)
)
