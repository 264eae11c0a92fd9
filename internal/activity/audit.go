package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrAuditTableMissing is returned by PGSink.Write when audit_logs has not been
// created.
var ErrAuditTableMissing = errors.New("activity: audit_logs table missing")

// Execer is the subset of pgxpool.Pool and pgx.Tx used by PGSink.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGSink writes feed entries into audit_logs.
type PGSink struct {
	db Execer
}

// NewPGSink returns a sink backed by db.
func NewPGSink(db Execer) *PGSink {
	return &PGSink{db: db}
}

// EnsureSchema creates audit_logs when missing.
func (s *PGSink) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS audit_logs (
	id BIGSERIAL PRIMARY KEY,
	actor_id BIGINT NOT NULL,
	action TEXT NOT NULL,
	entity TEXT NOT NULL,
	meta JSONB,
	occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	if err != nil {
		return fmt.Errorf("activity: ensure audit_logs: %w", err)
	}
	return nil
}

// Write persists the entry.
func (s *PGSink) Write(ctx context.Context, entry Entry) error {
	if s == nil || s.db == nil {
		return errors.New("activity: sink not initialised")
	}
	if entry.Action == "" || entry.Target == "" {
		return errors.New("activity: entry requires action and target")
	}
	meta, err := json.Marshal(map[string]any{"actor": entry.User.Name, "feedId": entry.ID})
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, entity, meta, occurred_at) VALUES ($1, $2, $3, $4, $5)`,
		entry.User.ID, entry.Action, entry.Target, meta, entry.Timestamp)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
			return ErrAuditTableMissing
		}
		return fmt.Errorf("activity: insert audit log: %w", err)
	}
	return nil
}
