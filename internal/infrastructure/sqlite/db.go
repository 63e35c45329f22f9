// Package sqlite persists settings and per-document view state in SQLite.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/smartmd/internal/log"
)

// BusyTimeout is the busy_timeout pragma in milliseconds.
const BusyTimeout = 5000

// DB wraps the connection and hands out repositories.
type DB struct {
	conn *sql.DB
}

// NewDB opens (creating if needed) the database at path and migrates it.
// An existing file is copied to path+".bak" before migrations run.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		if err := backup(path, path+".bak"); err != nil {
			return nil, fmt.Errorf("backup database: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(wal)",
		path, BusyTimeout)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	db, err := Open(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Info(log.CatDB, "Database ready", "path", path)
	return db, nil
}

// NewMemoryDB returns a migrated private in-memory database.
func NewMemoryDB() (*DB, error) {
	conn, err := sql.Open("sqlite3", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open memory database: %w", err)
	}
	// every pooled connection would otherwise see its own empty database
	conn.SetMaxOpenConns(1)
	db, err := Open(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Open migrates an already opened connection. The DB takes ownership of conn.
func Open(conn *sql.DB) (*DB, error) {
	if err := migrateUp(conn); err != nil {
		return nil, err
	}
	return &DB{conn: conn}, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// SettingsRepository returns the settings repository.
func (db *DB) SettingsRepository() *SettingsRepository {
	return newSettingsRepository(db.conn)
}

// DocumentStateRepository returns the per-document view state repository.
func (db *DB) DocumentStateRepository() *DocumentStateRepository {
	return newDocumentStateRepository(db.conn)
}

func backup(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // path comes from config
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) //nolint:gosec // derived from src
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
