// Package database opens and migrates the local sqlite database backing
// the asset store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type Pool struct {
	db   *sql.DB
	path string
}

type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	BusyTimeout time.Duration
	EnableWAL   bool
	ForeignKeys bool
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpen:     4,
		MaxIdle:     2,
		MaxLifetime: time.Hour,
		BusyTimeout: 30 * time.Second,
		EnableWAL:   true,
		ForeignKeys: true,
	}
}

// Open opens (creating if needed) the database at path. A failure here is
// the single fatal store condition: callers report it once and do not
// attempt in-process recovery.
func Open(path string, config PoolConfig) (*Pool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	journalMode := "DELETE"
	if config.EnableWAL {
		journalMode = "WAL"
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=%s&_foreign_keys=%d",
		path,
		int(config.BusyTimeout.Milliseconds()),
		journalMode,
		boolToInt(config.ForeignKeys),
	)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpen)
	db.SetMaxIdleConns(config.MaxIdle)
	db.SetConnMaxLifetime(config.MaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Pool{db: db, path: path}, nil
}

func (p *Pool) DB() *sql.DB {
	return p.db
}

func (p *Pool) Path() string {
	return p.path
}

func (p *Pool) Close() error {
	return p.db.Close()
}

// Version reads the schema version from PRAGMA user_version.
func (p *Pool) Version() (int, error) {
	var version int
	if err := p.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

// Transaction runs fn inside a transaction, rolling back on error.
func (p *Pool) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
