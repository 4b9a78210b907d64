package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/utils"
)

// Cache stores recent search results so rapid repeats of the same query
// don't burn provider quota. Misses and backend failures are both "not
// cached"; the chain never depends on it.
type Cache interface {
	Get(ctx context.Context, query string, count int) (*Result, bool)
	Set(ctx context.Context, query string, count int, result Result)
}

const cacheTTL = 5 * time.Minute

type redisCache struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRedisCache returns a Cache backed by redis, or (nil, nil) when
// REDIS_ADDR is not configured.
func NewRedisCache(log *logger.Logger) (Cache, error) {
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCache{
		log: log.With("service", "SearchCache"),
		rdb: rdb,
	}, nil
}

func cacheKey(query string, count int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", count, query)))
	return "search:" + hex.EncodeToString(sum[:16])
}

func (c *redisCache) Get(ctx context.Context, query string, count int) (*Result, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(query, count)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Debug("cache get failed", "error", err)
		}
		return nil, false
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (c *redisCache) Set(ctx context.Context, query string, count int, result Result) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(query, count), raw, cacheTTL).Err(); err != nil {
		c.log.Debug("cache set failed", "error", err)
	}
}
