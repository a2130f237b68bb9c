package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/escapetime/pkg/observability"
)

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend         string
	Dir             string
	RedisURL        string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open builds the backend named by cfg.Backend. The returned cache reports
// hits, misses and writes to [observability.Cache]. An empty backend means
// "file".
func Open(ctx context.Context, cfg Config) (Cache, error) {
	var (
		c   Cache
		err error
	)
	backend := cfg.Backend
	switch backend {
	case "", BackendFile:
		backend = BackendFile
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory configured")
		}
		c, err = NewFileCache(cfg.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, cfg.RedisURL)
	case BackendMongo:
		c, err = NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case BackendNone:
		c = NewNullCache()
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return &instrumented{Cache: c, backend: backend}, nil
}

// instrumented forwards to a backend and emits cache hooks.
type instrumented struct {
	Cache
	backend string
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, c.backend)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.backend)
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, c.backend, len(data))
	}
	return err
}

// Unwrap returns the backend behind an instrumented cache, or c itself.
func Unwrap(c Cache) Cache {
	if ic, ok := c.(*instrumented); ok {
		return ic.Cache
	}
	return c
}
