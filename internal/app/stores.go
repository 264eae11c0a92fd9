package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/platform/db"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/shared"
)

// RoleStore returns the backend selected by ROLE_STORE. pool may be nil unless
// the postgres backend is selected.
func RoleStore(cfg *Config, client *redis.Client, pool *pgxpool.Pool) (rbac.Store, error) {
	switch cfg.RoleStore {
	case RoleStoreRedis:
		return rbac.NewRedisStore(client, cfg.RoleStoreKey), nil
	case RoleStorePostgres:
		if pool == nil {
			return nil, fmt.Errorf("app: role store %q needs a database", cfg.RoleStore)
		}
		return rbac.NewPostgresStore(pool, cfg.RoleStoreKey), nil
	case RoleStoreMemory:
		return rbac.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("app: unknown role store %q", cfg.RoleStore)
	}
}

// IdempotencyStore returns the Postgres-backed key store when a pool is
// configured and the Redis SETNX store otherwise.
func IdempotencyStore(client *redis.Client, pool *pgxpool.Pool) shared.IdempotencyStore {
	if pool != nil {
		return shared.NewPGIdempotencyStore(pool)
	}
	return shared.NewRedisIdempotencyStore(client, 0)
}

// EnsureSchema creates the key-value, audit and idempotency tables in one
// transaction.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, roleKey string) error {
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		if err := rbac.NewPostgresStore(tx, roleKey).EnsureSchema(ctx); err != nil {
			return err
		}
		if err := activity.NewPGSink(tx).EnsureSchema(ctx); err != nil {
			return err
		}
		return shared.NewPGIdempotencyStore(tx).EnsureSchema(ctx)
	})
}
