package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a keyed store with per-entry expiry.
type Cache[V any] interface {
	// Get returns ErrNotFound when the key is missing or expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases background resources.
	Close() error
}

// Marshaler encodes values for byte-oriented backends.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSON is the default Marshaler.
type JSON[V any] struct{}

func (JSON[V]) Marshal(v V) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return b, nil
}

func (JSON[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// flighter is implemented by caches that own their singleflight group.
type flighter interface {
	flight() *singleflight.Group
}

// shared dedupes fills of Cache implementations from other packages. Keys
// are namespaced by the cache instance so unrelated caches never share a call.
var shared singleflight.Group

type fill[V any] struct {
	value V
	ttl   time.Duration
}

// GetOrSet returns the cached value for key, or calls fn to produce it.
// Concurrent misses on the same key of the same cache share one fn call.
// fn returns the value and its TTL; on error nothing is stored.
func GetOrSet[V any](
	ctx context.Context,
	c Cache[V],
	key string,
	fn func(ctx context.Context) (V, time.Duration, error),
) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	group, flightKey := &shared, fmt.Sprintf("%T@%p:%s", c, c, key)
	if f, ok := c.(flighter); ok {
		group, flightKey = f.flight(), key
	}

	res, err, _ := group.Do(flightKey, func() (any, error) {
		v, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		// A failed write only costs another fill later.
		_ = c.Set(ctx, key, v, ttl)
		return fill[V]{value: v, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	out, ok := res.(fill[V])
	if !ok {
		var zero V
		return zero, ErrFillType
	}
	return out.value, nil
}
