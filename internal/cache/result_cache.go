package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/invsim/internal/config"
	"github.com/andresuchdata/invsim/internal/simulation"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	resultKeyPrefix     = "inventory_sim:result"
	resultScanBatchSize = 100
)

// ResultCache stores simulation results keyed by their configuration.
type ResultCache interface {
	Get(ctx context.Context, cfg simulation.SimulationConfig) (*simulation.Result, bool, error)
	Set(ctx context.Context, cfg simulation.SimulationConfig, result *simulation.Result) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopResultCache struct{}

// NewResultCache connects to Redis when caching is enabled and falls back to
// a noop cache otherwise.
func NewResultCache(cfg config.CacheConfig) (ResultCache, error) {
	if !cfg.Enabled {
		return &noopResultCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisResultCache(client, ttl), nil
}

// NewRedisResultCache wraps an existing client.
func NewRedisResultCache(client *redis.Client, ttl time.Duration) ResultCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisResultCache{client: client, ttl: ttl}
}

func NewNoopResultCache() ResultCache {
	return &noopResultCache{}
}

func (c *redisResultCache) Get(ctx context.Context, cfg simulation.SimulationConfig) (*simulation.Result, bool, error) {
	payload, err := c.client.Get(ctx, BuildResultKey(cfg)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result simulation.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode simulation result cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisResultCache) Set(ctx context.Context, cfg simulation.SimulationConfig, result *simulation.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode simulation result cache: %w", err)
	}

	if err := c.client.Set(ctx, BuildResultKey(cfg), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisResultCache) InvalidateAll(ctx context.Context) error {
	deleted, err := scanDelete(ctx, c.client, resultKeyPrefix+":*", resultScanBatchSize)
	if err != nil {
		return err
	}
	log.Debug().Int("keys", deleted).Msg("cache: simulation results invalidated")
	return nil
}

func (c *redisResultCache) Close() error {
	return c.client.Close()
}

func (n *noopResultCache) Get(ctx context.Context, cfg simulation.SimulationConfig) (*simulation.Result, bool, error) {
	return nil, false, nil
}

func (n *noopResultCache) Set(ctx context.Context, cfg simulation.SimulationConfig, result *simulation.Result) error {
	return nil
}

func (n *noopResultCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func (n *noopResultCache) Close() error {
	return nil
}

// BuildResultKey hashes the canonical configuration key.
func BuildResultKey(cfg simulation.SimulationConfig) string {
	sum := sha1.Sum([]byte(cfg.Key()))
	return fmt.Sprintf("%s:%s", resultKeyPrefix, hex.EncodeToString(sum[:]))
}
