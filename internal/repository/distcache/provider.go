package distcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storelocator/internal/db"
	"github.com/kailas-cloud/storelocator/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "dist_cache:"

// store is the consumer interface for the distance cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// entry is the cached form of a successful provider answer.
type entry struct {
	DistanceMeters int           `json:"m"`
	Duration       time.Duration `json:"d"`
	DurationText   string        `json:"t,omitempty"`
}

// CachedProvider caches successful precise distance lookups in a key-value store.
// Cache failures never fail a lookup; they only cost a provider call.
type CachedProvider struct {
	inner      domain.DistanceProvider
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.DistanceProvider,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedProvider {
	return &CachedProvider{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Distance returns a cached answer or asks the inner provider.
// Only StatusOK answers are cached.
func (c *CachedProvider) Distance(ctx context.Context, req domain.DistanceRequest) (domain.DistanceResult, error) {
	key := cacheKey(req)

	if res, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return res, nil
	}

	c.incCache("miss")

	res, err := c.inner.Distance(ctx, req)
	if err != nil {
		return domain.DistanceResult{}, fmt.Errorf("precise distance: %w", err)
	}
	if res.Status == domain.StatusOK {
		c.putToCache(ctx, key, res)
	}
	return res, nil
}

func (c *CachedProvider) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey rounds both points to 5 decimals (about 1 m) so that repeated
// searches from the same place share entries.
func cacheKey(req domain.DistanceRequest) string {
	raw := fmt.Sprintf("%.5f,%.5f|%.5f,%.5f|%s|%s",
		req.Origin.Lat, req.Origin.Lng,
		req.Destination.Lat, req.Destination.Lng,
		req.Mode, req.Units,
	)
	h := sha256.Sum256([]byte(raw))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedProvider) getFromCache(ctx context.Context, key string) (domain.DistanceResult, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached distance", zap.String("key", key), zap.Error(err))
		}
		return domain.DistanceResult{}, false
	}
	if len(data) == 0 {
		return domain.DistanceResult{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Failed to parse cached distance", zap.String("key", key), zap.Error(err))
		return domain.DistanceResult{}, false
	}

	return domain.DistanceResult{
		Status:         domain.StatusOK,
		DistanceMeters: e.DistanceMeters,
		Duration:       e.Duration,
		DurationText:   e.DurationText,
	}, true
}

func (c *CachedProvider) putToCache(ctx context.Context, key string, res domain.DistanceResult) {
	data, err := json.Marshal(entry{
		DistanceMeters: res.DistanceMeters,
		Duration:       res.Duration,
		DurationText:   res.DurationText,
	})
	if err != nil {
		c.logger.Warn("Failed to encode distance", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache distance", zap.String("key", key), zap.Error(err))
	}
}
