package catalog

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-auto-catalog/model"
	"github.com/goliatone/go-auto-catalog/pkg/testsupport"
)

func openStore(t *testing.T, location string, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), location, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *Store, sample testsupport.Sample) {
	t.Helper()
	ctx := context.Background()
	for _, c := range sample.Cities {
		res, err := s.AddCity(ctx, c)
		require.NoError(t, err)
		require.Equal(t, Added, res)
	}
	for _, m := range sample.AutoMarkets {
		res, err := s.AddAutoMarket(ctx, m)
		require.NoError(t, err)
		require.Equal(t, Added, res)
	}
	for _, a := range sample.Autos {
		res, err := s.AddAuto(ctx, a)
		require.NoError(t, err)
		require.Equal(t, Added, res)
	}
}

func TestOpen_CreatesEmptyCatalog(t *testing.T) {
	s := openStore(t, testsupport.TempLocation(t))

	assert.Equal(t, Counts{}, s.Counts())
	assert.Empty(t, s.Cities())
}

func TestOpen_UnreachableLocation(t *testing.T) {
	location := filepath.Join(t.TempDir(), "no", "such", "dir", "catalog.db")

	s, err := Open(context.Background(), location)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrStoreInit)
	assert.Equal(t, KindStoreInit, KindOf(err))
}

func TestOpen_MalformedStoredDate(t *testing.T) {
	ctx := context.Background()
	location := testsupport.TempLocation(t)

	s, err := Open(ctx, location)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	raw, err := sql.Open("sqlite3", location)
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx,
		`INSERT INTO "Autos" (id, name, automarket_id, price, year_of_release) VALUES (1, 'Broken', 10, 5, '01/02/2020')`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	s, err = Open(ctx, location)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrStoreInit)
}

func TestNew_InitFailuresCloseBackend(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeBackend)
	}{
		{name: "schema", setup: func(b *fakeBackend) { b.schemaErr = errInjected }},
		{name: "load cities", setup: func(b *fakeBackend) { b.cities.allErr = errInjected }},
		{name: "load automarkets", setup: func(b *fakeBackend) { b.autoMarkets.allErr = errInjected }},
		{name: "load autos", setup: func(b *fakeBackend) { b.autos.allErr = errInjected }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			tt.setup(backend)

			s, err := New(context.Background(), backend)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, ErrStoreInit)
			assert.ErrorIs(t, err, errInjected)
			assert.Equal(t, 1, backend.closed)
		})
	}
}

func TestAdd_InsertsIntoStoreAndMirror(t *testing.T) {
	s := openStore(t, testsupport.TempLocation(t))
	seed(t, s, testsupport.NewSample(t))

	assert.Equal(t, Counts{Cities: 2, AutoMarkets: 2, Autos: 3}, s.Counts())
}

func TestOpen_LogsDriverAndLocation(t *testing.T) {
	location := testsupport.TempLocation(t)
	core, logs := observer.New(zap.InfoLevel)

	openStore(t, location, WithLogger(zap.New(core)))

	opened := logs.FilterMessage("catalog opened").All()
	require.Len(t, opened, 1)
	fields := opened[0].ContextMap()
	assert.Equal(t, "sqlite3", fields["driver"])
	assert.Equal(t, location, fields["location"])
}

func TestAdd_DuplicateIsNoop(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	core, logs := observer.New(zap.InfoLevel)

	s, err := New(ctx, backend, WithLogger(zap.New(core)))
	require.NoError(t, err)

	res, err := s.AddCity(ctx, model.NewCity(1, "Metropolis"))
	require.NoError(t, err)
	require.Equal(t, Added, res)

	res, err = s.AddCity(ctx, model.NewCity(1, "Gotham"))
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, res)

	assert.Equal(t, 1, backend.cities.insertN, "duplicate must not reach the store")
	assert.Equal(t, []model.City{model.NewCity(1, "Metropolis")}, s.Cities())
	assert.Equal(t, 1, logs.FilterMessage("skipping insert, primary key already exists").Len())
}

func TestAdd_ExistenceCheckUsesBackingStore(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	s, err := New(ctx, backend)
	require.NoError(t, err)

	// Stored behind the mirror's back.
	backend.autoMarkets.rows = append(backend.autoMarkets.rows, model.NewAutoMarket(10, "CarWorld", 1))

	res, err := s.AddAutoMarket(ctx, model.NewAutoMarket(10, "Other", 1))
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, res)
	assert.Empty(t, s.AutoMarkets())
}

func TestAdd_WriteFailureLeavesMirrorUntouched(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	s, err := New(ctx, backend)
	require.NoError(t, err)

	backend.autos.insertErr = errInjected
	auto := model.NewAuto(100, "Sedan X", 10, 20000, testsupport.Date(t, "2020-01-01"))

	res, err := s.AddAuto(ctx, auto)
	assert.Zero(t, res)
	assert.ErrorIs(t, err, ErrStoreWrite)
	assert.ErrorIs(t, err, errInjected)
	assert.Empty(t, s.Autos())

	// Still usable.
	backend.autos.insertErr = nil
	res, err = s.AddAuto(ctx, auto)
	require.NoError(t, err)
	assert.Equal(t, Added, res)
	assert.Len(t, s.Autos(), 1)
}

func TestAdd_ExistenceCheckFailure(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	s, err := New(ctx, backend)
	require.NoError(t, err)

	backend.cities.existsErr = errInjected
	_, err = s.AddCity(ctx, model.NewCity(1, "Metropolis"))
	assert.ErrorIs(t, err, ErrStoreWrite)
	assert.Zero(t, backend.cities.insertN)
	assert.Empty(t, s.Cities())
}

func TestAdd_InvalidEntity(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	s, err := New(ctx, backend)
	require.NoError(t, err)

	_, err = s.AddCity(ctx, model.NewCity(1, "  "))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.AddAuto(ctx, model.NewAuto(1, "Sedan", 10, -5, testsupport.Date(t, "2020-01-01")))
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Zero(t, backend.cities.existsN, "validation happens before any lookup")
	assert.Zero(t, backend.autos.existsN)
}

func TestAdd_DanglingReferencesAcceptedByDefault(t *testing.T) {
	s := openStore(t, testsupport.TempLocation(t))
	ctx := context.Background()

	res, err := s.AddAutoMarket(ctx, model.NewAutoMarket(10, "Nowhere Motors", 99))
	require.NoError(t, err)
	assert.Equal(t, Added, res)

	res, err = s.AddAuto(ctx, model.NewAuto(1, "Ghost", 77, 1, testsupport.Date(t, "2020-01-01")))
	require.NoError(t, err)
	assert.Equal(t, Added, res)
}

func TestAdd_AcceptsAnyNonZeroKey(t *testing.T) {
	location := testsupport.TempLocation(t)
	s := openStore(t, location)
	ctx := context.Background()

	res, err := s.AddCity(ctx, model.NewCity(-3, "Smallville"))
	require.NoError(t, err)
	assert.Equal(t, Added, res)

	res, err = s.AddAutoMarket(ctx, model.NewAutoMarket(-10, "Kent Cars", 0))
	require.NoError(t, err)
	assert.Equal(t, Added, res)

	res, err = s.AddAuto(ctx, model.NewAuto(-1, "Tractor", 0, 500, testsupport.Date(t, "1999-05-01")))
	require.NoError(t, err)
	assert.Equal(t, Added, res)

	_, err = s.AddCity(ctx, model.NewCity(0, "Nowhere"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, s.Close())
	reloaded := openStore(t, location)
	assert.Equal(t, []model.City{model.NewCity(-3, "Smallville")}, reloaded.Cities())
	assert.Equal(t, []model.AutoMarket{model.NewAutoMarket(-10, "Kent Cars", 0)}, reloaded.AutoMarkets())
	require.Len(t, reloaded.Autos(), 1)
	assert.Equal(t, int64(-1), reloaded.Autos()[0].ID)
}

func TestAdd_ReferentialChecks(t *testing.T) {
	s := openStore(t, testsupport.TempLocation(t), WithReferentialChecks())
	ctx := context.Background()

	_, err := s.AddAutoMarket(ctx, model.NewAutoMarket(10, "CarWorld", 1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.AddCity(ctx, model.NewCity(1, "Metropolis"))
	require.NoError(t, err)
	_, err = s.AddAutoMarket(ctx, model.NewAutoMarket(10, "CarWorld", 1))
	require.NoError(t, err)

	_, err = s.AddAuto(ctx, model.NewAuto(100, "Sedan X", 11, 1, testsupport.Date(t, "2020-01-01")))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.AddAuto(ctx, model.NewAuto(100, "Sedan X", 10, 1, testsupport.Date(t, "2020-01-01")))
	require.NoError(t, err)

	assert.Equal(t, Counts{Cities: 1, AutoMarkets: 1, Autos: 1}, s.Counts())
}

func TestWriteThrough_ReloadYieldsIdenticalMirror(t *testing.T) {
	location := testsupport.TempLocation(t)
	first := openStore(t, location)
	seed(t, first, testsupport.NewSample(t))

	// Out-of-order keys keep their insertion position.
	_, err := first.AddCity(context.Background(), model.NewCity(5, "Smallville"))
	require.NoError(t, err)
	_, err = first.AddCity(context.Background(), model.NewCity(3, "Star City"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openStore(t, location)

	assert.Equal(t, first.Cities(), second.Cities())
	assert.Equal(t, first.AutoMarkets(), second.AutoMarkets())
	require.Len(t, second.Autos(), len(first.Autos()))
	for i, a := range first.Autos() {
		b := second.Autos()[i]
		assert.Equal(t, a.ID, b.ID)
		assert.Equal(t, a.Name, b.Name)
		assert.Equal(t, a.AutoMarketID, b.AutoMarketID)
		assert.Equal(t, a.Price, b.Price)
		assert.True(t, a.YearOfRelease.Equal(b.YearOfRelease))
	}
}

func TestWriteThrough_MirrorGrowsByOne(t *testing.T) {
	s := openStore(t, testsupport.TempLocation(t))
	ctx := context.Background()

	before := s.Counts()
	_, err := s.AddCity(ctx, model.NewCity(1, "Metropolis"))
	require.NoError(t, err)
	after := s.Counts()

	assert.Equal(t, before.Cities+1, after.Cities)
	assert.Equal(t, before.AutoMarkets, after.AutoMarkets)
	assert.Equal(t, before.Autos, after.Autos)
}

func TestClose_Once(t *testing.T) {
	backend := newFakeBackend()
	backend.closeErr = errInjected
	core, logs := observer.New(zap.ErrorLevel)

	s, err := New(context.Background(), backend, WithLogger(zap.New(core)))
	require.NoError(t, err)

	err1 := s.Close()
	err2 := s.Close()

	assert.ErrorIs(t, err1, errInjected)
	assert.Equal(t, err1, err2)
	assert.Equal(t, 1, backend.closed)
	assert.Equal(t, 1, logs.Len())
}

func TestAddResult_String(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "already exists", AlreadyExists.String())
	assert.Equal(t, "unknown", AddResult(0).String())
}

func TestErrors_KindMatching(t *testing.T) {
	cause := errors.New("disk full")
	err := newError(KindStoreWrite, "add city", cause)

	assert.ErrorIs(t, err, ErrStoreWrite)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindStoreWrite, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(cause))
	assert.Equal(t, "catalog: add city: store_write: disk full", err.Error())

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "add city", cerr.Op)
}

func TestErrors_Predicates(t *testing.T) {
	assert.True(t, IsNotFound(notFound("q", "none")))
	assert.False(t, IsNotFound(invalidInput("q", errInjected)))
	assert.True(t, IsInvalidInput(invalidInput("q", errInjected)))
	assert.False(t, IsInvalidInput(nil))
}
