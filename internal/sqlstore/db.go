// Package sqlstore is the durable backing store of the catalog: three
// tables (Cities, AutoMarkets, Autos) accessed through bun. SQLite is the
// default engine; PostgreSQL is used when the location is a postgres URL.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-auto-catalog/model"
)

// Driver names understood by Open.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DB owns the connection to one catalog location.
type DB struct {
	bun      *bun.DB
	driver   string
	location string

	cities      *Table[model.City, cityRow]
	autoMarkets *Table[model.AutoMarket, autoMarketRow]
	autos       *Table[model.Auto, autoRow]
}

// DriverFor picks the driver for a location: postgres URLs go to lib/pq,
// everything else is treated as a SQLite file path or DSN.
func DriverFor(location string) string {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Open connects to location and verifies the connection. The file is
// created for SQLite locations that do not exist yet.
func Open(ctx context.Context, location string) (*DB, error) {
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("open catalog database: empty location")
	}

	driver := DriverFor(location)
	sqldb, err := sql.Open(driver, location)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	var db *bun.DB
	switch driver {
	case DriverPostgres:
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		// Single writer; also keeps ":memory:" databases on one connection.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s database: %w", driver, err)
	}

	return newDB(db, driver, location), nil
}

func newDB(db *bun.DB, driver, location string) *DB {
	return &DB{
		bun:         db,
		driver:      driver,
		location:    location,
		cities:      newTable(db, "Cities", cityToRow, cityFromRow),
		autoMarkets: newTable(db, "AutoMarkets", autoMarketToRow, autoMarketFromRow),
		autos:       newTable(db, "Autos", autoToRow, autoFromRow),
	}
}

// EnsureSchema creates any missing table. It is safe to call repeatedly.
func (d *DB) EnsureSchema(ctx context.Context) error {
	if err := d.cities.CreateIfNotExists(ctx); err != nil {
		return err
	}
	if err := d.autoMarkets.CreateIfNotExists(ctx); err != nil {
		return err
	}
	return d.autos.CreateIfNotExists(ctx)
}

func (d *DB) Cities() *Table[model.City, cityRow] {
	return d.cities
}

func (d *DB) AutoMarkets() *Table[model.AutoMarket, autoMarketRow] {
	return d.autoMarkets
}

func (d *DB) Autos() *Table[model.Auto, autoRow] {
	return d.autos
}

// Driver returns the database/sql driver name in use.
func (d *DB) Driver() string {
	return d.driver
}

// Location returns the location the database was opened with, with any
// password in a postgres URL masked so it can be logged.
func (d *DB) Location() string {
	if d.driver != DriverPostgres {
		return d.location
	}
	u, err := url.Parse(d.location)
	if err != nil {
		return "postgres://"
	}
	return u.Redacted()
}

// Bun exposes the underlying bun handle.
func (d *DB) Bun() *bun.DB {
	return d.bun
}

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.bun.Close()
}
