package catalog

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-auto-catalog/cache"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache memoizes query results in svc. Keys are built by keys, or by the
// default serializer when keys is nil, and are namespaced per Store.
func WithCache(svc cache.CacheService, keys cache.KeySerializer) Option {
	return func(s *Store) {
		s.cache = svc
		s.keys = keys
	}
}

// WithMetrics reports mutations, queries and mirror sizes to m.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithReferentialChecks rejects markets whose city, and autos whose market,
// are not in the catalog. Off by default: dangling references are accepted
// and skipped by queries.
func WithReferentialChecks() Option {
	return func(s *Store) {
		s.checkRefs = true
	}
}
