// Package store is the crawler's single consistency gate: it records which
// articles have been seen and hands new ones to the downstream relevancy
// store. All mutual exclusion between concurrent feed workers is delegated to
// the database's uniqueness constraints; no application-level locks exist.
package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

//go:embed schema.sql
var schema string

// Config represents storage configuration
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RetryDelay      time.Duration // fixed delay between transient-failure retries
}

// Store wraps the shared connection pool. Workers check out one Session per
// poll cycle and return it when the cycle ends.
type Store struct {
	db         *sqlx.DB
	retryDelay time.Duration
}

// Session is a dedicated pooled connection held by one worker for the
// duration of a poll cycle
type Session struct {
	conn       *sqlx.Conn
	retryDelay time.Duration
}

// New opens the database, configures the pool and applies the schema
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		cfg.DSN = "file:newstrail.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 250 * time.Millisecond
	}

	db, err := sqlx.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, retryDelay: cfg.RetryDelay}, nil
}

// Acquire checks a dedicated connection out of the shared pool, blocking the
// calling worker when the pool is exhausted
func (s *Store) Acquire(ctx context.Context) (*Session, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: conn, retryDelay: s.retryDelay}, nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Release returns the session's connection to the pool
func (s *Session) Release() error {
	return s.conn.Close()
}
