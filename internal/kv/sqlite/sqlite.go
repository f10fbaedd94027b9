package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/tvandenbrink/tafel-racer/internal/kv"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type store struct {
	db *sql.DB
}

// New returns a kv.Store backed by the kv_entries table. The caller owns db;
// Close is a no-op.
func New(db *sql.DB) kv.Store {
	return &store{db: db}
}

func (s *store) Get(ctx context.Context, key string) (string, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_sqlite")

	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("key not found: %s", key)
		return "", false, nil
	}
	if err != nil {
		log.Error("failed to get key %s: %v", key, err)
		return "", false, err
	}
	return v, true, nil
}

func (s *store) Set(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx).WithPrefix("kv_sqlite")
	log.Debug("setting key: %s (%d bytes)", key, len(value))

	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv_entries (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`, key, value)
	if err != nil {
		log.Error("failed to set key %s: %v", key, err)
	}
	return err
}

func (s *store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	log := logger.FromContext(ctx).WithPrefix("kv_sqlite")
	log.Debug("deleting keys: %v", keys)

	query, args, err := sqlBuilder.Delete("kv_entries").Where(squirrel.Eq{"key": keys}).ToSql()
	if err != nil {
		log.Error("failed to build delete: %v", err)
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to delete keys: %v", err)
		return err
	}
	return nil
}

func (s *store) Close() error { return nil }
