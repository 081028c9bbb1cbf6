package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

const (
	DefaultKeyPrefix = "acp-tracker:run:"
	DefaultTTL       = 6 * time.Hour
	releaseTimeout   = 5 * time.Second
)

// Deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisConfig holds connection settings for the shared run guard.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return rdb, nil
}

// RedisGuard holds a per-timeframe lock in Redis so that several tracker
// instances never run the same timeframe at once. The TTL bounds how long a
// crashed holder can block others.
type RedisGuard struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisGuard(client redis.UniversalClient, prefix string, ttl time.Duration, logger *zap.Logger) *RedisGuard {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisGuard{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "run_guard")),
	}
}

func (g *RedisGuard) key(tf domain.Timeframe) string {
	return g.prefix + string(tf)
}

func (g *RedisGuard) TryAcquire(ctx context.Context, tf domain.Timeframe) (func(), bool, error) {
	key := g.key(tf)
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire run lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		err := releaseScript.Run(ctx, g.client, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			g.logger.Warn("Failed to release run lock", zap.String("key", key), zap.Error(err))
		}
	}
	return release, true, nil
}
