// Package cache provides the read-through cache used to memoize catalog
// query results, and the key serializer that names those results.
//
// # Overview
//
// Two interfaces are exported together with default implementations:
//
//   - CacheService: read-through GetOrFetch plus invalidation (Delete,
//     DeleteByPrefix, InvalidateKeys). NewCacheService returns the sturdyc
//     backed implementation.
//   - KeySerializer: builds a stable key from a method name and its scalar
//     arguments.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	keys := cache.NewDefaultKeySerializer()
//
//	key := keys.SerializeKey("FindAutosByYear", 2020)
//	autos, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) ([]model.Auto, error) {
//		return scanMirror(2020)
//	})
//
// # Key Format
//
// Keys are the method and each argument joined with KeySeparator. Callers
// sharing one CacheService prepend their own namespace. Strings are quoted
// so that a name containing the separator, or one that looks like a number,
// never collides with another argument list. Floats use the shortest representation that round-trips.
//
// # Errors
//
// Errors returned by a fetch function are handed back to the caller and are
// not stored, so "no results" outcomes are recomputed on the next call.
// GetOrFetch reports ErrInvalidResultType when a cached value has a
// different type than requested.
package cache
