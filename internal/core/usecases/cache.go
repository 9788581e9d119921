package usecases

import (
	"context"
	"encoding/json"

	"github.com/wanderguide/wanderguide/internal/core/ports"
	"github.com/wanderguide/wanderguide/internal/pkg/logging"
	"github.com/wanderguide/wanderguide/internal/pkg/metrics"
)

// readThrough returns the cached JSON value for key, or calls load and caches
// its result for ttlSeconds. A nil cache always loads. Cache errors never fail
// the call.
func readThrough[T any](ctx context.Context, cache ports.CacheService, op, key string, ttlSeconds int, load func() (T, error)) (T, error) {
	if cache != nil {
		if data, err := cache.Get(ctx, key); err == nil {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				metrics.CacheHits.WithLabelValues(op).Inc()
				return v, nil
			}
		}
		metrics.CacheMisses.WithLabelValues(op).Inc()
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if cache != nil {
		if data, err := json.Marshal(v); err == nil {
			if err := cache.Set(ctx, key, data, ttlSeconds); err != nil {
				logging.FromContext(ctx).Debug("cache set failed", "key", key, "error", err)
			}
		}
	}
	return v, nil
}

// invalidate drops keys from the cache, ignoring failures.
func invalidate(ctx context.Context, cache ports.CacheService, keys ...string) {
	if cache == nil {
		return
	}
	for _, k := range keys {
		if err := cache.Delete(ctx, k); err != nil {
			logging.FromContext(ctx).Debug("cache delete failed", "key", k, "error", err)
		}
	}
}
