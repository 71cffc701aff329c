// Package cache is the time-windowed key/value port the gallery caches its
// read models in.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"forum-geni/pkg/metrics"
)

// Store keeps encoded values under string keys for a fixed time window
type Store interface {
	// Get returns the value stored under key; found is false on a miss or
	// after expiry
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Name identifies the backend in logs
	Name() string
}

var group singleflight.Group

// computeTimeout bounds a shared compute, which outlives the caller that
// started it
const computeTimeout = 5 * time.Minute

// GetOrCompute returns the cached value of key, or runs compute, stores its
// result for ttl and returns it. Concurrent misses on the same key share one
// compute call, which runs detached from any single caller: a caller whose
// ctx ends stops waiting while the others still get the value. Errors from
// compute are returned and never stored.
func GetOrCompute[T any](ctx context.Context, store Store, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if value, ok := lookup[T](ctx, store, key); ok {
		metrics.ObserveCache(key, true)
		return value, nil
	}
	metrics.ObserveCache(key, false)

	flightKey := fmt.Sprintf("%p:%s", store, key)
	ch := group.DoChan(flightKey, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()

		// A concurrent caller may have filled the entry meanwhile
		if value, ok := lookup[T](buildCtx, store, key); ok {
			return value, nil
		}

		value, err := compute(buildCtx)
		if err != nil {
			return zero, err
		}
		// best effort: a failed write only costs the next caller a rebuild
		_ = Put(buildCtx, store, key, value, ttl)
		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Put encodes value and stores it under key for ttl
func Put[T any](ctx context.Context, store Store, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := store.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("store cache entry %s: %w", key, err)
	}
	return nil
}

// lookup treats backend errors and undecodable entries as misses
func lookup[T any](ctx context.Context, store Store, key string) (T, bool) {
	var value T

	data, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false
	}
	return value, true
}
