package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ttl, zap.NewNop()), mr
}

func TestRedisStore(t *testing.T) {
	s, _ := newRedisStore(t, time.Hour)
	exerciseStore(t, s)
}

func TestRedisStoreKeysExpire(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, newRecord(t, "s-1", 3, baseTime)))

	assert.True(t, mr.Exists("session:s-1"))
	assert.Equal(t, "s-1", mustGet(t, mr, "user:3:session"))
	assert.Equal(t, time.Hour, mr.TTL("session:s-1"))

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists("session:s-1"))
	_, err := s.FindActive(ctx, 3)
	assert.Error(t, err)
}

func TestRedisStoreDefaultTTL(t *testing.T) {
	s, _ := newRedisStore(t, 0)
	assert.Equal(t, 24*time.Hour, s.ttl)
}

func TestRedisStoreRejectsCorruptDocument(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	require.NoError(t, mr.Set("session:bad", "{not json"))

	_, err := s.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding session bad")
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
