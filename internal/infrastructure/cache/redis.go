package cache

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"job-trail/internal/config"
	"job-trail/internal/pkg/logger"

	charmLog "github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

var ErrUnavailable = errors.New("redis unavailable")

// Redis backs the access/refresh token blocklist. When the server cannot be
// reached at startup every call degrades to a no-op.
type Redis struct {
	client redis.UniversalClient
	logger *charmLog.Logger

	warnedUnavailable atomic.Bool
}

func NewRedis(ctx context.Context, cfg config.RedisConfig, log *charmLog.Logger) *Redis {
	log = logger.OrDiscard(log).WithPrefix("cache")
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, token revocation disabled", "addr", cfg.Addr(), "err", err)
		_ = client.Close()
		return &Redis{logger: log}
	}

	log.Info("redis connected", "addr", cfg.Addr())
	return &Redis{client: client, logger: log}
}

// NewRedisWithClient wraps an existing client, e.g. a cluster client.
func NewRedisWithClient(client redis.UniversalClient, log *charmLog.Logger) *Redis {
	return &Redis{client: client, logger: logger.OrDiscard(log).WithPrefix("cache")}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis command failed", "err", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

// Revoke blocks the token id until ttl elapses. Tokens that have already
// expired need no entry.
func (r *Redis) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if r.isUnavailable() || jti == "" || ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKey(jti), "1", ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	jti = strings.TrimSpace(jti)
	if r.isUnavailable() || jti == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return n > 0, nil
}

func revokedKey(jti string) string {
	return revokedKeyPrefix + jti
}
