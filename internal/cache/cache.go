// Package cache is the read-through cache in front of single record lookups.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/talkincode/storefront/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrMiss returned by Store.Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store holds encoded values with a lifetime
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Key per resource and id, e.g. product:42
func Key(resource string, id int64) string {
	return fmt.Sprintf("%s:%d", resource, id)
}

var group singleflight.Group

// Remember returns the cached value for key or runs load once for all concurrent
// callers and stores its result. Store failures degrade to calling load directly.
func Remember[T any](ctx context.Context, store Store, resource string, key string, ttl time.Duration, load func(ctx context.Context) (*T, error)) (*T, error) {
	if raw, err := store.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.RecordCacheLookup(resource, "hit")
			return &v, nil
		}
		zap.L().Warn("drop undecodable cache entry", zap.String("namespace", "cache"), zap.String("key", key))
		_ = store.Delete(ctx, key)
	} else if !errors.Is(err, ErrMiss) {
		metrics.RecordCacheLookup(resource, "error")
		zap.L().Warn("cache read failed", zap.String("namespace", "cache"), zap.String("key", key), zap.Error(err))
	}
	metrics.RecordCacheLookup(resource, "miss")

	// the shared load outlives any single caller
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := group.Do(key, func() (interface{}, error) {
		rec, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(rec)
		if err == nil {
			err = store.Set(loadCtx, key, raw, ttl)
		}
		if err != nil {
			zap.L().Warn("cache write failed", zap.String("namespace", "cache"), zap.String("key", key), zap.Error(err))
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	// every caller gets its own copy so eager loads do not race
	shared := v.(*T)
	raw, err := json.Marshal(shared)
	if err != nil {
		return shared, nil
	}
	var own T
	if err := json.Unmarshal(raw, &own); err != nil {
		return shared, nil
	}
	return &own, nil
}

// Forget evicts key, failures are logged only
func Forget(ctx context.Context, store Store, key string) {
	if err := store.Delete(ctx, key); err != nil {
		zap.L().Warn("cache evict failed", zap.String("namespace", "cache"), zap.String("key", key), zap.Error(err))
	}
}
