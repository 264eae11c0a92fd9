package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PGQuerier is the subset of pgxpool.Pool used by PostgresStore.
type PGQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore persists the registry as one row of the pulse_kv table.
type PostgresStore struct {
	db  PGQuerier
	key string
}

// NewPostgresStore constructs a PostgresStore. An empty key selects DefaultStoreKey.
func NewPostgresStore(db PGQuerier, key string) *PostgresStore {
	if key == "" {
		key = DefaultStoreKey
	}
	return &PostgresStore{db: db, key: key}
}

// EnsureSchema creates the backing table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS pulse_kv (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	if err != nil {
		return fmt.Errorf("rbac: ensure pulse_kv: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM pulse_kv WHERE key = $1`, s.key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("rbac: postgres load: %w", err)
	}
	return data, nil
}

func (s *PostgresStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.Exec(ctx, `INSERT INTO pulse_kv (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, s.key, data)
	if err != nil {
		return fmt.Errorf("rbac: postgres save: %w", err)
	}
	return nil
}

// isUndefinedTable reports a missing pulse_kv, which happens before the first
// EnsureSchema on a fresh database.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}
