package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLite - хранилище в файле SQLite (драйвер modernc, без cgo).
type SQLite struct {
	db *sql.DB
}

// OpenSQLite открывает (и при необходимости создаёт) файл хранилища.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("создание каталога хранилища: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}
	// Одна запись за раз: sqlite не любит конкурентных писателей
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("создание схемы kv: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Get возвращает значение или ErrNotFound.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("чтение %q: %w", key, err)
	}
	return v, nil
}

const (
	upsertSQL = `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	deleteSQL = `DELETE FROM kv WHERE key = ?`
)

// execer - общее у *sql.DB и *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func set(ctx context.Context, db execer, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := db.ExecContext(ctx, upsertSQL, key, value); err != nil {
		return fmt.Errorf("запись %q: %w", key, err)
	}
	return nil
}

func del(ctx context.Context, db execer, key string) error {
	if _, err := db.ExecContext(ctx, deleteSQL, key); err != nil {
		return fmt.Errorf("удаление %q: %w", key, err)
	}
	return nil
}

// Set сохраняет значение, заменяя прежнее.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, s.db, key, value)
}

// Delete удаляет ключ.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	return del(ctx, s.db, key)
}

// Apply применяет пакет в одной транзакции.
func (s *SQLite) Apply(ctx context.Context, b *Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции kv: %w", err)
	}
	defer tx.Rollback()

	for _, o := range b.ops {
		if o.delete {
			err = del(ctx, tx, o.key)
		} else {
			err = set(ctx, tx, o.key, o.value)
		}
		if err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("фиксация транзакции kv: %w", err)
	}
	return nil
}

// Close закрывает файл хранилища.
func (s *SQLite) Close() error {
	return s.db.Close()
}
