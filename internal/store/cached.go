package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openglam/tilegate/internal/core/observability"
	"github.com/openglam/tilegate/internal/store/redisstore"
)

// Cached layers a Redis byte cache over a backing tile store. Cache
// failures degrade to the backing store rather than failing the
// request.
type Cached struct {
	cache     *redisstore.Client
	backing   TileStore
	ttl       time.Duration
	opTimeout time.Duration
	log       *slog.Logger
}

func NewCached(cache *redisstore.Client, backing TileStore, ttl, opTimeout time.Duration, log *slog.Logger) *Cached {
	if log == nil {
		log = slog.Default()
	}
	if opTimeout <= 0 {
		opTimeout = 250 * time.Millisecond
	}
	return &Cached{cache: cache, backing: backing, ttl: ttl, opTimeout: opTimeout, log: log}
}

func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	b, found, err := c.cache.Get(opCtx, key)
	cancel()
	if err != nil {
		c.log.Warn("tile cache read failed, falling back", "key", key, "err", err)
	} else if found {
		observability.IncTileCacheHit()
		return b, nil
	} else {
		observability.IncTileCacheMiss()
	}

	b, err = c.backing.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	opCtx, cancel = context.WithTimeout(ctx, c.opTimeout)
	if err := c.cache.Set(opCtx, key, b, c.ttl); err != nil {
		c.log.Warn("tile cache fill failed", "key", key, "err", err)
	}
	cancel()
	return b, nil
}

// Purge drops cached bytes for an identifier after its tiles were
// re-generated. The pattern over-matches identifiers that end with the
// same text; an extra cache miss is harmless.
func (c *Cached) Purge(ctx context.Context, identifier string) (int, error) {
	if identifier == "" {
		return 0, errors.New("identifier is required")
	}
	return c.cache.DelByPattern(ctx, "*"+identifier+"/*")
}
