package scorecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/db"
)

// KeyPrefix namespaces relevance scores in the shared store.
const KeyPrefix = "docqa:score:"

// Categorizer is the decorated scoring client.
type Categorizer interface {
	TopCategoryScore(ctx context.Context, text string) (float64, error)
}

// store is the consumer interface for the score cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedCategorizer caches category scores in a key-value store.
type CachedCategorizer struct {
	inner      Categorizer
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Categorizer,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedCategorizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCategorizer{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger.Named("scorecache"),
	}
}

// TopCategoryScore returns a cached score or calls the inner categorizer.
// Only successful scores are stored; store failures fall through to the inner call.
func (c *CachedCategorizer) TopCategoryScore(ctx context.Context, text string) (float64, error) {
	key := cacheKey(text)

	if score, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return score, nil
	}

	c.incCache("miss")

	score, err := c.inner.TopCategoryScore(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("categorize: %w", err)
	}

	c.putToCache(ctx, key, score)
	return score, nil
}

func (c *CachedCategorizer) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return KeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedCategorizer) getFromCache(ctx context.Context, key string) (float64, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached score", zap.String("key", key), zap.Error(err))
		}
		return 0, false
	}

	score, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		c.logger.Warn("Failed to parse cached score", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return score, true
}

func (c *CachedCategorizer) putToCache(ctx context.Context, key string, score float64) {
	data := []byte(strconv.FormatFloat(score, 'g', -1, 64))
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache score", zap.String("key", key), zap.Error(err))
	}
}
