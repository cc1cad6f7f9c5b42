package di

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/goliatone/go-auto-catalog/cache"
	"github.com/goliatone/go-auto-catalog/catalog"
)

// Container provides dependency injection for catalog stores.
// It manages singleton instances of the query cache, key serializer,
// logger and metrics, and opens stores wired to them.
type Container struct {
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	config        cache.Config
	logger        *zap.Logger
	metrics       *catalog.Metrics

	cacheDisabled bool
	registerer    prometheus.Registerer
}

// Option customizes a Container.
type Option func(*Container)

// WithLogger sets the logger handed to every store.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics registers catalog metrics with reg and reports every store to them.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Container) {
		c.registerer = reg
	}
}

// WithoutCache opens stores that scan the mirror on every query.
func WithoutCache() Option {
	return func(c *Container) {
		c.cacheDisabled = true
	}
}

// NewContainer creates a new DI container with the provided cache configuration.
// The configuration is ignored when WithoutCache is given.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	c := &Container{
		config: config,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.cacheDisabled {
		cacheService, err := cache.NewCacheService(config)
		if err != nil {
			return nil, fmt.Errorf("create cache service: %w", err)
		}
		c.cacheService = cacheService
		c.keySerializer = cache.NewDefaultKeySerializer()
	}

	if c.registerer != nil {
		metrics, err := catalog.NewMetrics(c.registerer)
		if err != nil {
			return nil, err
		}
		c.metrics = metrics
	}

	return c, nil
}

// NewContainerWithDefaults creates a new DI container using default cache configuration.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// CacheService returns the shared cache service, or nil when caching is off.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the shared key serializer, or nil when caching is off.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Metrics returns the shared collectors, or nil without WithMetrics.
func (c *Container) Metrics() *catalog.Metrics {
	return c.metrics
}

// OpenCatalog opens the catalog at location wired to the container's
// dependencies. opts are applied last and may override them.
func (c *Container) OpenCatalog(ctx context.Context, location string, opts ...catalog.Option) (*catalog.Store, error) {
	return catalog.Open(ctx, location, c.catalogOptions(opts)...)
}

// NewCatalog builds a store over an already opened backend.
func (c *Container) NewCatalog(ctx context.Context, backend catalog.Backend, opts ...catalog.Option) (*catalog.Store, error) {
	return catalog.New(ctx, backend, c.catalogOptions(opts)...)
}

func (c *Container) catalogOptions(extra []catalog.Option) []catalog.Option {
	opts := []catalog.Option{catalog.WithLogger(c.logger)}
	if c.cacheService != nil {
		opts = append(opts, catalog.WithCache(c.cacheService, c.keySerializer))
	}
	if c.metrics != nil {
		opts = append(opts, catalog.WithMetrics(c.metrics))
	}
	return append(opts, extra...)
}
