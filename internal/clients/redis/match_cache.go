package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/utils"
)

// MatchCache holds one ranked result payload per user with a TTL. Matches
// are recomputable, so every cache failure degrades to a recompute.
type MatchCache interface {
	Get(ctx context.Context, userID string, out any) (bool, error)
	Set(ctx context.Context, userID string, payload any, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
	Close() error
}

type matchCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewMatchCache connects to REDIS_ADDR. Returns (nil, nil) when no address
// is configured; callers treat a nil cache as disabled.
func NewMatchCache(log *logger.Logger) (MatchCache, error) {
	addr := utils.GetEnv("REDIS_ADDR", "", log)
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: utils.GetEnv("REDIS_PASSWORD", "", nil),
		DB:       utils.GetEnvAsInt("REDIS_DB", 0, log),
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &matchCache{
		log:    log.With("service", "MatchCache"),
		rdb:    rdb,
		prefix: utils.GetEnv("REDIS_MATCH_PREFIX", "lexsona:matches:", nil),
	}, nil
}

func (c *matchCache) key(userID string) string {
	return c.prefix + userID
}

func (c *matchCache) Get(ctx context.Context, userID string, out any) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.rdb.Del(ctx, c.key(userID)).Err()
		return false, nil
	}
	return true, nil
}

func (c *matchCache) Set(ctx context.Context, userID string, payload any, ttl time.Duration) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(userID), raw, ttl).Err()
}

func (c *matchCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}

func (c *matchCache) Close() error {
	return c.rdb.Close()
}
