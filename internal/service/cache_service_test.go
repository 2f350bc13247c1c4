package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCacheServiceRoundTrip(t *testing.T) {
	metrics := NewMetricsService()
	repo := &memoryCacheRepo{}
	cache := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)

	var value int64
	hit, err := cache.Get(context.Background(), "nbpa:7", &value)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(context.Background(), "nbpa:7", int64(12), 0))
	hit, err = cache.Get(context.Background(), "nbpa:7", &value)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(12), value)

	require.NoError(t, cache.Delete(context.Background(), "nbpa:7"))
	hit, _ = cache.Get(context.Background(), "nbpa:7", &value)
	assert.False(t, hit)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(2), snapshot.CacheMisses)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &memoryCacheRepo{}
	cache := NewCacheService(repo, nil, 0, nil, false)
	assert.False(t, cache.Enabled())

	require.NoError(t, cache.Set(context.Background(), "k", "v", 0))
	assert.Empty(t, repo.store)

	var nilCache *CacheService
	hit, err := nilCache.Get(context.Background(), "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceGetError(t *testing.T) {
	repo := &memoryCacheRepo{getErr: errors.New("redis down")}
	cache := NewCacheService(repo, nil, 0, nil, true)

	hit, err := cache.Get(context.Background(), "k", new(string))
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestCacheServiceInvalidate(t *testing.T) {
	repo := &memoryCacheRepo{}
	cache := NewCacheService(repo, nil, 0, nil, true)
	require.NoError(t, cache.Set(context.Background(), "flow:ranked:1", 1, 0))
	require.NoError(t, cache.Set(context.Background(), "nbpa:1", 1, 0))

	require.NoError(t, cache.Invalidate(context.Background(), "flow:ranked:*"))
	assert.Contains(t, repo.store, "nbpa:1")
	assert.NotContains(t, repo.store, "flow:ranked:1")
}
