package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-auto-catalog/model"
)

var errInjected = errors.New("injected failure")

// fakeCollection is an in-memory Collection with switchable failures.
type fakeCollection[T any] struct {
	mu        sync.Mutex
	rows      []T
	idOf      func(T) int64
	existsErr error
	insertErr error
	allErr    error
	existsN   int
	insertN   int
}

func (f *fakeCollection[T]) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsN++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, r := range f.rows {
		if f.idOf(r) == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCollection[T]) Insert(_ context.Context, record T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertN++
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, record)
	return nil
}

func (f *fakeCollection[T]) All(_ context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allErr != nil {
		return nil, f.allErr
	}
	return append([]T(nil), f.rows...), nil
}

type fakeBackend struct {
	schemaErr error
	closeErr  error
	closed    int

	cities      *fakeCollection[model.City]
	autoMarkets *fakeCollection[model.AutoMarket]
	autos       *fakeCollection[model.Auto]
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		cities:      &fakeCollection[model.City]{idOf: func(c model.City) int64 { return c.ID }},
		autoMarkets: &fakeCollection[model.AutoMarket]{idOf: func(m model.AutoMarket) int64 { return m.ID }},
		autos:       &fakeCollection[model.Auto]{idOf: func(a model.Auto) int64 { return a.ID }},
	}
}

func (b *fakeBackend) EnsureSchema(context.Context) error        { return b.schemaErr }
func (b *fakeBackend) Cities() Collection[model.City]             { return b.cities }
func (b *fakeBackend) AutoMarkets() Collection[model.AutoMarket] { return b.autoMarkets }
func (b *fakeBackend) Autos() Collection[model.Auto]             { return b.autos }

func (b *fakeBackend) Close() error {
	b.closed++
	return b.closeErr
}
