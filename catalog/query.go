package catalog

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/goliatone/go-auto-catalog/cache"
	"github.com/goliatone/go-auto-catalog/model"
)

// PriceComparison is the outcome of CompareAutoPrices.
type PriceComparison int

const (
	FirstCheaper PriceComparison = iota + 1
	SecondCheaper
	EqualPrice
)

func (p PriceComparison) String() string {
	switch p {
	case FirstCheaper:
		return "first cheaper"
	case SecondCheaper:
		return "second cheaper"
	case EqualPrice:
		return "equal"
	default:
		return "unknown"
	}
}

// Counts reports the size of each mirrored collection.
type Counts struct {
	Cities      int
	AutoMarkets int
	Autos       int
}

// foldName normalizes a name for case-insensitive comparison. cases.Caser
// is stateful, so each call gets its own.
func foldName(s string) string {
	return cases.Fold().String(s)
}

// FindAutosByCity returns the autos sold by markets located in a city named
// cityName, compared case-insensitively. Markets or autos whose references do
// not resolve are skipped.
func (s *Store) FindAutosByCity(ctx context.Context, cityName string) ([]model.Auto, error) {
	const op = "FindAutosByCity"
	want := foldName(cityName)

	return memoize(ctx, s, op, func() ([]model.Auto, error) {
		cityIDs := make(map[int64]struct{})
		for _, c := range s.mirror.cities.items {
			if foldName(c.Name) == want {
				cityIDs[c.ID] = struct{}{}
			}
		}

		marketIDs := make(map[int64]struct{})
		for _, m := range s.mirror.autoMarkets.items {
			if _, ok := cityIDs[m.CityID]; ok {
				marketIDs[m.ID] = struct{}{}
			}
		}

		autos := s.autosInMarkets(marketIDs)
		if len(autos) == 0 {
			return nil, notFound(op, "no autos in city %q", cityName)
		}
		return autos, nil
	}, want)
}

// FindAutosByAutomarket returns the autos offered by markets named
// marketName, compared case-insensitively.
func (s *Store) FindAutosByAutomarket(ctx context.Context, marketName string) ([]model.Auto, error) {
	const op = "FindAutosByAutomarket"
	want := foldName(marketName)

	return memoize(ctx, s, op, func() ([]model.Auto, error) {
		marketIDs := make(map[int64]struct{})
		for _, m := range s.mirror.autoMarkets.items {
			if foldName(m.Name) == want {
				marketIDs[m.ID] = struct{}{}
			}
		}

		autos := s.autosInMarkets(marketIDs)
		if len(autos) == 0 {
			return nil, notFound(op, "no autos in automarket %q", marketName)
		}
		return autos, nil
	}, want)
}

func (s *Store) autosInMarkets(marketIDs map[int64]struct{}) []model.Auto {
	var autos []model.Auto
	for _, a := range s.mirror.autos.items {
		if _, ok := marketIDs[a.AutoMarketID]; ok {
			autos = append(autos, a)
		}
	}
	return autos
}

// FindAutosByPriceRange returns autos priced within [minPrice, maxPrice].
// Inverted or NaN bounds are rejected before the catalog is scanned.
func (s *Store) FindAutosByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]model.Auto, error) {
	const op = "FindAutosByPriceRange"
	if math.IsNaN(minPrice) || math.IsNaN(maxPrice) {
		err := invalidInput(op, fmt.Errorf("price bounds must be numbers"))
		s.metrics.query(op, err)
		return nil, err
	}
	if minPrice > maxPrice {
		err := invalidInput(op, fmt.Errorf("min price %s exceeds max price %s",
			model.FormatPrice(minPrice), model.FormatPrice(maxPrice)))
		s.metrics.query(op, err)
		return nil, err
	}

	return memoize(ctx, s, op, func() ([]model.Auto, error) {
		var autos []model.Auto
		for _, a := range s.mirror.autos.items {
			if a.Price >= minPrice && a.Price <= maxPrice {
				autos = append(autos, a)
			}
		}
		if len(autos) == 0 {
			return nil, notFound(op, "no autos priced between %s and %s",
				model.FormatPrice(minPrice), model.FormatPrice(maxPrice))
		}
		return autos, nil
	}, minPrice, maxPrice)
}

// FindAutosByYear returns autos released in the given calendar year.
func (s *Store) FindAutosByYear(ctx context.Context, year int) ([]model.Auto, error) {
	const op = "FindAutosByYear"

	return memoize(ctx, s, op, func() ([]model.Auto, error) {
		var autos []model.Auto
		for _, a := range s.mirror.autos.items {
			if a.Year() == year {
				autos = append(autos, a)
			}
		}
		if len(autos) == 0 {
			return nil, notFound(op, "no autos released in %d", year)
		}
		return autos, nil
	}, year)
}

// ParseYear converts caller text into a year for FindAutosByYear.
func ParseYear(s string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, invalidInput("ParseYear", fmt.Errorf("year %q is not a whole number", s))
	}
	return year, nil
}

// ListAllCities returns a summary line per city in insertion order. An
// empty catalog is reported as KindNotFound.
func (s *Store) ListAllCities(ctx context.Context) ([]string, error) {
	const op = "ListAllCities"
	return memoize(ctx, s, op, func() ([]string, error) {
		return summaries(op, "cities", s.mirror.cities.items)
	})
}

// ListAllAutomarkets returns a summary line per auto market in insertion
// order. An empty catalog is reported as KindNotFound.
func (s *Store) ListAllAutomarkets(ctx context.Context) ([]string, error) {
	const op = "ListAllAutomarkets"
	return memoize(ctx, s, op, func() ([]string, error) {
		return summaries(op, "automarkets", s.mirror.autoMarkets.items)
	})
}

// ListAllAutos returns a summary line per auto in insertion order. An empty
// catalog is reported as KindNotFound.
func (s *Store) ListAllAutos(ctx context.Context) ([]string, error) {
	const op = "ListAllAutos"
	return memoize(ctx, s, op, func() ([]string, error) {
		return summaries(op, "autos", s.mirror.autos.items)
	})
}

func summaries[T interface{ Summary() string }](op, what string, items []T) ([]string, error) {
	if len(items) == 0 {
		return nil, notFound(op, "no %s in catalog", what)
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = item.Summary()
	}
	return lines, nil
}

// CompareAutoPrices compares the prices of two autos.
func (s *Store) CompareAutoPrices(_ context.Context, idA, idB int64) (PriceComparison, error) {
	const op = "CompareAutoPrices"

	var a, b model.Auto
	var okA, okB bool
	s.mirror.read(func() {
		a, okA = s.mirror.autos.get(idA)
		b, okB = s.mirror.autos.get(idB)
	})

	var err error
	switch {
	case !okA:
		err = notFound(op, "auto %d does not exist", idA)
	case !okB:
		err = notFound(op, "auto %d does not exist", idB)
	}
	s.metrics.query(op, err)
	if err != nil {
		return 0, err
	}

	switch {
	case a.Price < b.Price:
		return FirstCheaper, nil
	case a.Price > b.Price:
		return SecondCheaper, nil
	default:
		return EqualPrice, nil
	}
}

// Cities returns a copy of every city in insertion order.
func (s *Store) Cities() []model.City {
	var out []model.City
	s.mirror.read(func() { out = s.mirror.cities.all() })
	return out
}

// AutoMarkets returns a copy of every auto market in insertion order.
func (s *Store) AutoMarkets() []model.AutoMarket {
	var out []model.AutoMarket
	s.mirror.read(func() { out = s.mirror.autoMarkets.all() })
	return out
}

// Autos returns a copy of every auto in insertion order.
func (s *Store) Autos() []model.Auto {
	var out []model.Auto
	s.mirror.read(func() { out = s.mirror.autos.all() })
	return out
}

// Counts returns the size of each collection.
func (s *Store) Counts() Counts {
	var c Counts
	s.mirror.read(func() {
		c = Counts{
			Cities:      s.mirror.cities.len(),
			AutoMarkets: s.mirror.autoMarkets.len(),
			Autos:       s.mirror.autos.len(),
		}
	})
	return c
}

// memoize runs scan under the mirror read lock, through the query cache when
// one is configured. Callers always receive their own copy of the result.
func memoize[T any](ctx context.Context, s *Store, op string, scan func() ([]T, error), args ...any) ([]T, error) {
	locked := func(context.Context) ([]T, error) {
		var (
			res []T
			err error
		)
		s.mirror.read(func() { res, err = scan() })
		return res, err
	}

	var (
		res []T
		err error
	)
	if s.cache == nil {
		res, err = locked(ctx)
	} else {
		key := s.cacheKey(op, args...)
		s.keyRegistry.Store(key, struct{}{})
		res, err = cache.GetOrFetch[[]T](ctx, s.cache, key, locked)
	}

	s.metrics.query(op, err)
	if err != nil {
		return nil, err
	}
	return slices.Clone(res), nil
}

func (s *Store) cacheKey(op string, args ...any) string {
	return s.namespace + cache.KeySeparator + s.keys.SerializeKey(op, args...)
}

// invalidateQueries drops every memoized result this Store has produced.
func (s *Store) invalidateQueries(ctx context.Context) {
	if s.cache == nil {
		return
	}

	var keys []string
	s.keyRegistry.Range(func(key string, _ struct{}) bool {
		keys = append(keys, key)
		return true
	})
	if len(keys) == 0 {
		return
	}

	if err := s.cache.InvalidateKeys(ctx, keys); err != nil {
		s.logger.Warn("invalidate cached queries, dropping namespace", zap.Error(err))
		if err := s.cache.DeleteByPrefix(ctx, s.namespace); err != nil {
			s.logger.Error("drop cached queries", zap.Error(err))
		}
	}
	for _, key := range keys {
		s.keyRegistry.Delete(key)
	}
	s.logger.Debug("cached queries invalidated", zap.Int("keys", len(keys)))
}
