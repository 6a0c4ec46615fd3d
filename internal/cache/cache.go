// Package cache provides the caching layer used for hot lookups such
// as authenticated identities and the service class list. Redis backs
// the cache when configured; otherwise an in-memory store is used.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"mahberhub/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache defines the operations the service layer depends on.
// Values are JSON-serializable.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
	Health(ctx context.Context) error
	Close() error
}

// New returns a redis-backed cache when a URL is configured,
// otherwise the in-memory implementation.
func New(cfg *config.RedisConfig, logger *zap.Logger) (Cache, error) {
	if cfg == nil || cfg.URL == "" {
		logger.Info("redis not configured, using in-memory cache")
		return NewMemoryCache(logger), nil
	}
	return NewRedisCache(cfg, logger)
}

// ===============================
// IN-MEMORY IMPLEMENTATION
// ===============================

type memoryCache struct {
	mu      sync.RWMutex
	items   map[string]memoryItem
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped sync.Once
}

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory cache with background expiry
func NewMemoryCache(logger *zap.Logger) Cache {
	c := &memoryCache{
		items:  make(map[string]memoryItem),
		logger: logger,
		stopCh: make(chan struct{}),
	}
	go c.janitor()
	return c
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(item.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(item.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = memoryItem{data: data, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Health(ctx context.Context) error {
	return nil
}

func (c *memoryCache) Close() error {
	c.stopped.Do(func() { close(c.stopCh) })
	return nil
}

func (c *memoryCache) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, item := range c.items {
				if now.After(item.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

// ===============================
// REDIS IMPLEMENTATION
// ===============================

type redisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache connects to redis and verifies the connection
func NewRedisCache(cfg *config.RedisConfig, logger *zap.Logger) (Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("redis cache connected", zap.String("addr", opts.Addr))
	return &redisCache{client: client, logger: logger}, nil
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *redisCache) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *redisCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
