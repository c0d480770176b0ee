package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()
	now := time.Now()
	bl.now = func() time.Time { return now }

	require.NoError(t, bl.Add(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, bl.Add(ctx, "dead", now.Add(-time.Second)))

	ok, err := bl.Contains(ctx, "live")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = bl.Contains(ctx, "dead")
	assert.False(t, ok)
	ok, _ = bl.Contains(ctx, "never")
	assert.False(t, ok)

	assert.Equal(t, 1, bl.Cleanup())
	assert.Equal(t, 0, bl.Cleanup())
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisBlacklist(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	bl := NewRedisBlacklist(client)

	require.NoError(t, bl.Add(ctx, "tok", time.Now().Add(time.Minute)))
	ok, err := bl.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	// already-expired tokens are not stored
	require.NoError(t, bl.Add(ctx, "old", time.Now().Add(-time.Minute)))
	ok, err = bl.Contains(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = bl.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConnectRedis(t *testing.T) {
	mr, _ := newTestRedis(t)

	addr := mr.Addr()
	client, err := ConnectRedis(context.Background(), addr, 0)
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = ConnectRedis(context.Background(), addr, 0)
	assert.Error(t, err)
}
