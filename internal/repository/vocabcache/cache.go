// Package vocabcache is the read-through cache in front of the in-domain
// vocabulary builder. Cached term sets are stored as JSON with a TTL and are
// explicitly invalidated on every catalog write.
package vocabcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resolvex/internal/db"
	"github.com/kailas-cloud/resolvex/internal/domain"
)

// Builder produces a tenant's in-domain vocabulary from source data.
type Builder interface {
	Build(ctx context.Context, tenant string) ([]string, error)
}

// store is the consumer interface for the vocabulary cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedBuilder caches vocabulary term sets in a key-value store.
type CachedBuilder struct {
	inner      Builder
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Builder,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedBuilder {
	return &CachedBuilder{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Build returns the cached term set or rebuilds it via the inner builder.
// Cache read/write failures degrade to a rebuild; they never fail the call.
func (c *CachedBuilder) Build(ctx context.Context, tenant string) ([]string, error) {
	key := domain.VocabKey(tenant)

	if terms, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return terms, nil
	}

	c.incCache("miss")

	terms, err := c.inner.Build(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}

	c.putToCache(ctx, key, terms)
	return terms, nil
}

// Invalidate drops a tenant's cached vocabulary. Called on catalog changes.
func (c *CachedBuilder) Invalidate(ctx context.Context, tenant string) error {
	if err := c.store.Del(ctx, domain.VocabKey(tenant)); err != nil {
		return fmt.Errorf("invalidate vocabulary for %s: %w", tenant, err)
	}
	return nil
}

func (c *CachedBuilder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedBuilder) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached vocabulary", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		c.logger.Warn("Failed to parse cached vocabulary", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return terms, true
}

func (c *CachedBuilder) putToCache(ctx context.Context, key string, terms []string) {
	data, err := json.Marshal(terms)
	if err != nil {
		c.logger.Warn("Failed to encode vocabulary", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache vocabulary", zap.String("key", key), zap.Error(err))
	}
}
