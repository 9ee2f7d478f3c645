package storage

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/ristretto"
)

const snapshotKey = "stats:snapshot"

// CachedStats 在 Stats 前加一层本地缓存，写入时失效
type CachedStats struct {
	next  Stats
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCachedStats 创建带缓存的战绩存储
func NewCachedStats(next Stats, ttl time.Duration) (*CachedStats, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 ristretto 缓存失败: %w", err)
	}
	return &CachedStats{next: next, cache: cache, ttl: ttl}, nil
}

// IncrementWins 胜场 +1
func (c *CachedStats) IncrementWins(ctx context.Context, userID string) error {
	defer c.cache.Del(snapshotKey)
	return c.next.IncrementWins(ctx, userID)
}

// IncrementLosses 负场 +1
func (c *CachedStats) IncrementLosses(ctx context.Context, userID string) error {
	defer c.cache.Del(snapshotKey)
	return c.next.IncrementLosses(ctx, userID)
}

// List 优先返回缓存的快照
func (c *CachedStats) List(ctx context.Context) ([]Record, error) {
	if v, ok := c.cache.Get(snapshotKey); ok {
		if records, ok := v.([]Record); ok {
			return slices.Clone(records), nil
		}
	}

	records, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetWithTTL(snapshotKey, slices.Clone(records), int64(len(records))+1, c.ttl)
	c.cache.Wait()
	return records, nil
}

// Close 关闭缓存
func (c *CachedStats) Close() {
	c.cache.Close()
}
