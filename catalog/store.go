package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-auto-catalog/cache"
	"github.com/goliatone/go-auto-catalog/model"
)

// AddResult tells an insert that happened apart from one skipped because the
// primary key was already taken.
type AddResult int

const (
	Added AddResult = iota + 1
	AlreadyExists
)

func (r AddResult) String() string {
	switch r {
	case Added:
		return "added"
	case AlreadyExists:
		return "already exists"
	default:
		return "unknown"
	}
}

// Store is the catalog: a write-through, in-memory mirror of the cities,
// auto markets and autos held by a Backend. Queries read the mirror only.
//
// A Store is meant to be used from one goroutine at a time.
type Store struct {
	backend   Backend
	mirror    *mirror
	logger    *zap.Logger
	metrics   *Metrics
	checkRefs bool

	cache       cache.CacheService
	keys        cache.KeySerializer
	namespace   string
	keyRegistry *xsync.MapOf[string, struct{}]

	closeOnce sync.Once
	closeErr  error
}

// Open opens the backing store at location and builds a Store over it.
func Open(ctx context.Context, location string, opts ...Option) (*Store, error) {
	backend, err := openSQLBackend(ctx, location)
	if err != nil {
		return nil, newError(KindStoreInit, "open", err)
	}
	s, err := New(ctx, backend, opts...)
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog opened",
		zap.String("driver", backend.db.Driver()),
		zap.String("location", backend.db.Location()),
	)
	return s, nil
}

// New takes ownership of backend, ensures its schema and loads the mirror.
// On failure the backend is closed and no Store is returned.
func New(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend:     backend,
		mirror:      newMirror(),
		logger:      zap.NewNop(),
		namespace:   uuid.NewString(),
		keyRegistry: xsync.NewMapOf[string, struct{}](),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache != nil && s.keys == nil {
		s.keys = cache.NewDefaultKeySerializer()
	}

	if err := s.init(ctx); err != nil {
		if cerr := backend.Close(); cerr != nil {
			s.logger.Warn("close backend after failed init", zap.Error(cerr))
		}
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if err := s.backend.EnsureSchema(ctx); err != nil {
		return newError(KindStoreInit, "ensure schema", err)
	}

	cities, err := s.backend.Cities().All(ctx)
	if err != nil {
		return newError(KindStoreInit, "load cities", err)
	}
	markets, err := s.backend.AutoMarkets().All(ctx)
	if err != nil {
		return newError(KindStoreInit, "load automarkets", err)
	}
	autos, err := s.backend.Autos().All(ctx)
	if err != nil {
		return newError(KindStoreInit, "load autos", err)
	}

	s.mirror.write(func() {
		for _, c := range cities {
			s.mirror.cities.add(c)
		}
		for _, m := range markets {
			s.mirror.autoMarkets.add(m)
		}
		for _, a := range autos {
			s.mirror.autos.add(a)
		}
	})

	s.logger.Debug("catalog loaded",
		zap.Int("cities", len(cities)),
		zap.Int("automarkets", len(markets)),
		zap.Int("autos", len(autos)),
	)
	s.reportSizes()
	return nil
}

// Close releases the backend. Only the first call does any work; a failure
// is logged and returned to every caller.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("close catalog backend", zap.Error(err))
			s.closeErr = fmt.Errorf("close catalog: %w", err)
		}
	})
	return s.closeErr
}

// AddCity inserts c unless a city with the same ID is stored.
func (s *Store) AddCity(ctx context.Context, c model.City) (AddResult, error) {
	return addEntity(ctx, s, insert[model.City]{
		op:     "add city",
		entity: entityCity,
		id:     c.ID,
		record: c,
		coll:   s.backend.Cities(),
		mirror: s.mirror.cities,
	})
}

// AddAutoMarket inserts m unless a market with the same ID is stored.
func (s *Store) AddAutoMarket(ctx context.Context, m model.AutoMarket) (AddResult, error) {
	return addEntity(ctx, s, insert[model.AutoMarket]{
		op:     "add automarket",
		entity: entityAutoMarket,
		id:     m.ID,
		record: m,
		coll:   s.backend.AutoMarkets(),
		mirror: s.mirror.autoMarkets,
		checkRef: func() error {
			if !s.mirror.cities.has(m.CityID) {
				return fmt.Errorf("city %d does not exist", m.CityID)
			}
			return nil
		},
	})
}

// AddAuto inserts a unless an auto with the same ID is stored.
func (s *Store) AddAuto(ctx context.Context, a model.Auto) (AddResult, error) {
	return addEntity(ctx, s, insert[model.Auto]{
		op:     "add auto",
		entity: entityAuto,
		id:     a.ID,
		record: a,
		coll:   s.backend.Autos(),
		mirror: s.mirror.autos,
		checkRef: func() error {
			if !s.mirror.autoMarkets.has(a.AutoMarketID) {
				return fmt.Errorf("automarket %d does not exist", a.AutoMarketID)
			}
			return nil
		},
	})
}

type validatable interface {
	Validate() error
}

type insert[T validatable] struct {
	op       string
	entity   string
	id       int64
	record   T
	coll     Collection[T]
	mirror   *collection[T]
	checkRef func() error
}

// addEntity is the write-through path shared by all entities: validate,
// check the backing store for the key, insert, then grow the mirror.
func addEntity[T validatable](ctx context.Context, s *Store, in insert[T]) (AddResult, error) {
	if err := in.record.Validate(); err != nil {
		s.metrics.mutation(in.entity, outcomeInvalid)
		return 0, invalidInput(in.op, err)
	}

	if s.checkRefs && in.checkRef != nil {
		var err error
		s.mirror.read(func() { err = in.checkRef() })
		if err != nil {
			s.metrics.mutation(in.entity, outcomeInvalid)
			return 0, invalidInput(in.op, err)
		}
	}

	exists, err := in.coll.Exists(ctx, in.id)
	if err != nil {
		s.metrics.mutation(in.entity, outcomeFailed)
		return 0, newError(KindStoreWrite, in.op, err)
	}
	if exists {
		s.logger.Info("skipping insert, primary key already exists",
			zap.String("entity", in.entity),
			zap.Int64("id", in.id),
		)
		s.metrics.mutation(in.entity, outcomeExists)
		return AlreadyExists, nil
	}

	if err := in.coll.Insert(ctx, in.record); err != nil {
		s.logger.Warn("insert failed",
			zap.String("entity", in.entity),
			zap.Int64("id", in.id),
			zap.Error(err),
		)
		s.metrics.mutation(in.entity, outcomeFailed)
		return 0, newError(KindStoreWrite, in.op, err)
	}

	s.mirror.write(func() { in.mirror.add(in.record) })
	s.invalidateQueries(ctx)
	s.metrics.mutation(in.entity, outcomeAdded)
	s.reportSizes()
	return Added, nil
}

func (s *Store) reportSizes() {
	if s.metrics == nil {
		return
	}
	counts := s.Counts()
	s.metrics.setEntries(entityCity, counts.Cities)
	s.metrics.setEntries(entityAutoMarket, counts.AutoMarkets)
	s.metrics.setEntries(entityAuto, counts.Autos)
}
