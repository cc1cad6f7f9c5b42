package catalog

import (
	"context"

	"github.com/goliatone/go-auto-catalog/internal/sqlstore"
	"github.com/goliatone/go-auto-catalog/model"
)

// Collection is one durable, primary-key indexed table. All returns rows
// in insertion order.
type Collection[T any] interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Insert(ctx context.Context, record T) error
	All(ctx context.Context) ([]T, error)
}

// Backend is the durable store a Store writes through to. A Store owns its
// backend and closes it.
type Backend interface {
	EnsureSchema(ctx context.Context) error
	Cities() Collection[model.City]
	AutoMarkets() Collection[model.AutoMarket]
	Autos() Collection[model.Auto]
	Close() error
}

// sqlBackend exposes a sqlstore.DB as a Backend.
type sqlBackend struct {
	db *sqlstore.DB
}

// OpenBackend opens the relational store at location: a SQLite file path,
// ":memory:", or a postgres:// URL.
func OpenBackend(ctx context.Context, location string) (Backend, error) {
	return openSQLBackend(ctx, location)
}

func openSQLBackend(ctx context.Context, location string) (*sqlBackend, error) {
	db, err := sqlstore.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	return &sqlBackend{db: db}, nil
}

func (b *sqlBackend) EnsureSchema(ctx context.Context) error {
	return b.db.EnsureSchema(ctx)
}

func (b *sqlBackend) Cities() Collection[model.City] {
	return b.db.Cities()
}

func (b *sqlBackend) AutoMarkets() Collection[model.AutoMarket] {
	return b.db.AutoMarkets()
}

func (b *sqlBackend) Autos() Collection[model.Auto] {
	return b.db.Autos()
}

func (b *sqlBackend) Close() error {
	return b.db.Close()
}
