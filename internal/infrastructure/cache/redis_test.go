package cache

import (
	"context"
	"testing"
	"time"

	"job-trail/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_DegradesWhenUnreachable(t *testing.T) {
	r := NewRedis(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: "1"}, nil)

	assert.ErrorIs(t, r.Ping(context.Background()), ErrUnavailable)
	require.NoError(t, r.Revoke(context.Background(), "jti-1", time.Minute))

	revoked, err := r.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, r.Close())
}

func TestRedis_NilReceiverIsSafe(t *testing.T) {
	var r *Redis
	revoked, err := r.IsRevoked(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, r.Revoke(context.Background(), "x", time.Minute))
}

func TestRedis_CommandErrorsSurface(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	r := NewRedisWithClient(client, nil)
	defer r.Close()

	_, err := r.IsRevoked(context.Background(), "jti-2")
	assert.Error(t, err)
	assert.Error(t, r.Revoke(context.Background(), "jti-2", time.Minute))
}

func TestRedis_RevokeSkipsExpiredOrBlank(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	r := NewRedisWithClient(client, nil)
	defer r.Close()

	// Neither call reaches the server.
	assert.NoError(t, r.Revoke(context.Background(), "jti-3", 0))
	assert.NoError(t, r.Revoke(context.Background(), "  ", time.Minute))
}

func TestRevokedKey(t *testing.T) {
	assert.Equal(t, "auth:revoked:abc", revokedKey("abc"))
}
