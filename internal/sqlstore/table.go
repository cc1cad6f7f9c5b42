package sqlstore

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Table maps one entity type T onto its bun row model R. Reads and writes
// go through a go-repository-bun Repository; bun itself only creates the
// schema. All tables key their rows by an integer "id" column.
type Table[T any, R any] struct {
	db      *bun.DB
	repo    repository.Repository[*R]
	name    string
	toRow   func(T) *R
	fromRow func(*R) (T, error)
}

func newTable[T any, R any](db *bun.DB, name string, toRow func(T) *R, fromRow func(*R) (T, error)) *Table[T, R] {
	return &Table[T, R]{
		db:      db,
		repo:    repository.NewRepository[*R](db, rowHandlers[R]()),
		name:    name,
		toRow:   toRow,
		fromRow: fromRow,
	}
}

// rowHandlers describes integer keyed rows to the repository. Keys come
// from the caller, so GetID reports none and SetID never assigns one.
func rowHandlers[R any]() repository.ModelHandlers[*R] {
	return repository.ModelHandlers[*R]{
		NewRecord:     func() *R { return new(R) },
		GetID:         func(*R) uuid.UUID { return uuid.Nil },
		SetID:         func(*R, uuid.UUID) {},
		GetIdentifier: func() string { return "id" },
	}
}

// Name returns the table name.
func (t *Table[T, R]) Name() string {
	return t.name
}

// CreateIfNotExists creates the table unless it is already present.
func (t *Table[T, R]) CreateIfNotExists(ctx context.Context) error {
	if _, err := t.db.NewCreateTable().Model((*R)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create table %s: %w", t.name, err)
	}
	return nil
}

// Exists reports whether a row with the given primary key is stored.
func (t *Table[T, R]) Exists(ctx context.Context, id int64) (bool, error) {
	n, err := t.repo.Count(ctx, selectByKey(id))
	if err != nil {
		return false, fmt.Errorf("lookup %s id=%d: %w", t.name, id, err)
	}
	return n > 0, nil
}

// Insert stores a single record.
func (t *Table[T, R]) Insert(ctx context.Context, record T) error {
	if _, err := t.repo.Create(ctx, t.toRow(record)); err != nil {
		return fmt.Errorf("insert into %s: %w", t.name, err)
	}
	return nil
}

// All reads every row in insertion order.
func (t *Table[T, R]) All(ctx context.Context) ([]T, error) {
	rows, _, err := t.repo.List(ctx, selectAll(), t.insertionOrder())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.name, err)
	}

	records := make([]T, 0, len(rows))
	for _, row := range rows {
		rec, err := t.fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.name, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// insertionOrder orders by SQLite's implicit rowid, which follows insertion
// order because the primary key is not an INTEGER rowid alias. Other
// dialects fall back to primary key order.
func (t *Table[T, R]) insertionOrder() repository.SelectCriteria {
	if t.db.Dialect().Name() == dialect.SQLite {
		return repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("rowid ASC")
		})
	}
	return repository.SelectOrderAsc("id")
}

// selectByKey matches the integer primary key.
func selectByKey(id int64) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", id)
	}
}

// selectAll lifts the repository's default page size.
func selectAll() repository.SelectCriteria {
	return repository.SelectPaginate(0, 0)
}
