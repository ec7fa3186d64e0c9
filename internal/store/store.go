// Package store persists the visit counter. The counter lives in a
// database table so that every increment is a single atomic statement.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const visitsCounter = "visits"

// dialect holds the statements that differ between databases.
type dialect struct {
	driver    string
	createSQL string
	selectSQL string
	upsertSQL string
	// twoStep dialects cannot return the new value from the upsert and
	// read it back inside the same transaction.
	twoStep bool
}

var dialects = map[string]dialect{
	"sqlite": {
		driver: "sqlite",
		createSQL: `CREATE TABLE IF NOT EXISTS visit_counters (
			name TEXT PRIMARY KEY,
			hits INTEGER NOT NULL DEFAULT 0
		)`,
		selectSQL: `SELECT hits FROM visit_counters WHERE name = ?`,
		upsertSQL: `INSERT INTO visit_counters (name, hits) VALUES (?, 1)
			ON CONFLICT(name) DO UPDATE SET hits = hits + 1
			RETURNING hits`,
	},
	"postgres": {
		driver: "pgx",
		createSQL: `CREATE TABLE IF NOT EXISTS visit_counters (
			name TEXT PRIMARY KEY,
			hits BIGINT NOT NULL DEFAULT 0
		)`,
		selectSQL: `SELECT hits FROM visit_counters WHERE name = $1`,
		upsertSQL: `INSERT INTO visit_counters (name, hits) VALUES ($1, 1)
			ON CONFLICT (name) DO UPDATE SET hits = visit_counters.hits + 1
			RETURNING hits`,
	},
	"mysql": {
		driver: "mysql",
		createSQL: `CREATE TABLE IF NOT EXISTS visit_counters (
			name VARCHAR(64) PRIMARY KEY,
			hits BIGINT NOT NULL DEFAULT 0
		)`,
		selectSQL: `SELECT hits FROM visit_counters WHERE name = ?`,
		upsertSQL: `INSERT INTO visit_counters (name, hits) VALUES (?, 1)
			ON DUPLICATE KEY UPDATE hits = hits + 1`,
		twoStep: true,
	},
}

// Store wraps the counter database.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// NewStore opens (or creates) a SQLite database at dbPath. Use ":memory:"
// for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	return Open("sqlite", dbPath)
}

// Open connects to a sqlite, postgres or mysql database and ensures the
// counter table exists.
func Open(driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported store driver: %q", driver)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == "sqlite" {
		// One connection keeps ":memory:" databases shared and serializes writers.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(d.createSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db, dialect: d}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Visits returns the current visit count.
func (s *Store) Visits(ctx context.Context) (int64, error) {
	var hits int64
	err := s.db.QueryRowContext(ctx, s.dialect.selectSQL, visitsCounter).Scan(&hits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query visits: %w", err)
	}
	return hits, nil
}

// IncrementVisits adds one visit and returns the new count.
func (s *Store) IncrementVisits(ctx context.Context) (int64, error) {
	if !s.dialect.twoStep {
		var hits int64
		if err := s.db.QueryRowContext(ctx, s.dialect.upsertSQL, visitsCounter).Scan(&hits); err != nil {
			return 0, fmt.Errorf("increment visits: %w", err)
		}
		return hits, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.dialect.upsertSQL, visitsCounter); err != nil {
		return 0, fmt.Errorf("increment visits: %w", err)
	}
	var hits int64
	if err := tx.QueryRowContext(ctx, s.dialect.selectSQL, visitsCounter).Scan(&hits); err != nil {
		return 0, fmt.Errorf("read visits: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return hits, nil
}
