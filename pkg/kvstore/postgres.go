package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresStore keeps documents in a single JSONB table keyed by name.
type PostgresStore struct {
	db    *sqlx.DB
	table string
}

// NewPostgresStore returns a store bound to table (default kv_store).
func NewPostgresStore(db *sqlx.DB, table string) (*PostgresStore, error) {
	if table == "" {
		table = "kv_store"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid kv table name %q", table)
	}
	return &PostgresStore{db: db, table: table}, nil
}

// EnsureSchema creates the backing table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table)
	var value []byte
	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, s.table)
	if _, err := s.db.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
