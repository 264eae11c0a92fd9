package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/tabdeel/pulse/internal/platform/cache"
	"github.com/tabdeel/pulse/internal/platform/httpx"
)

// IdempotencyHeader carries the client-chosen key of a create request.
const IdempotencyHeader = "Idempotency-Key"

// DefaultIdempotencyTTL bounds how long a Redis-held key blocks replays.
const DefaultIdempotencyTTL = 24 * time.Hour

var (
	// ErrIdempotencyConflict indicates a duplicate key.
	ErrIdempotencyConflict = errors.New("shared: idempotent request already processed")
	// ErrIdempotencyKeyInvalid rejects empty module names and keys outside 1-255 characters.
	ErrIdempotencyKeyInvalid = errors.New("shared: idempotency key must be 1-255 characters")
)

// IdempotencyStore claims request keys per module. Claim returns
// ErrIdempotencyConflict when the key was already claimed; Release frees a key
// whose request did not succeed.
type IdempotencyStore interface {
	Claim(ctx context.Context, module, key string) error
	Release(ctx context.Context, module, key string) error
}

// Execer is the subset of pgxpool.Pool and pgx.Tx used by PGIdempotencyStore.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGIdempotencyStore persists processed keys in idempotency_keys.
type PGIdempotencyStore struct {
	db Execer
}

// NewPGIdempotencyStore constructs the store.
func NewPGIdempotencyStore(db Execer) *PGIdempotencyStore {
	return &PGIdempotencyStore{db: db}
}

// EnsureSchema creates idempotency_keys when missing.
func (s *PGIdempotencyStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS idempotency_keys (
	module TEXT NOT NULL,
	key TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (module, key)
)`)
	if err != nil {
		return fmt.Errorf("shared: ensure idempotency_keys: %w", err)
	}
	return nil
}

// Claim ensures key uniqueness per module.
func (s *PGIdempotencyStore) Claim(ctx context.Context, module, key string) error {
	if err := validateIdempotency(module, key); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `INSERT INTO idempotency_keys (module, key, created_at) VALUES ($1, $2, $3)`, module, key, time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrIdempotencyConflict
		}
		return fmt.Errorf("shared: claim idempotency key: %w", err)
	}
	return nil
}

// Release deletes a claimed key.
func (s *PGIdempotencyStore) Release(ctx context.Context, module, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE module = $1 AND key = $2`, module, key); err != nil {
		return fmt.Errorf("shared: release idempotency key: %w", err)
	}
	return nil
}

// RedisIdempotencyStore claims keys with SETNX and a TTL.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyStore constructs the store. A non-positive ttl selects
// DefaultIdempotencyTTL.
func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

// Claim sets the key only when absent.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, module, key string) error {
	if err := validateIdempotency(module, key); err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, cache.Key("idempotency", module, key), time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("shared: claim idempotency key: %w", err)
	}
	if !ok {
		return ErrIdempotencyConflict
	}
	return nil
}

// Release deletes a claimed key.
func (s *RedisIdempotencyStore) Release(ctx context.Context, module, key string) error {
	if err := s.client.Del(ctx, cache.Key("idempotency", module, key)).Err(); err != nil {
		return fmt.Errorf("shared: release idempotency key: %w", err)
	}
	return nil
}

func validateIdempotency(module, key string) error {
	if module == "" || key == "" || len(key) > 255 {
		return ErrIdempotencyKeyInvalid
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Idempotent rejects a replayed Idempotency-Key with 409. Requests without the
// header pass through. A key whose request fails (status >= 400) is released so
// the client can retry with a corrected body. A nil store disables the check.
func Idempotent(store IdempotencyStore, module string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if err := store.Claim(r.Context(), module, key); err != nil {
				switch {
				case errors.Is(err, ErrIdempotencyConflict):
					httpx.Problem(w, http.StatusConflict, "Duplicate Request", "this "+IdempotencyHeader+" was already used")
				case errors.Is(err, ErrIdempotencyKeyInvalid):
					httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
				default:
					logger.Error("claim idempotency key", slog.String("module", module), slog.Any("error", err))
					httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "could not check "+IdempotencyHeader)
				}
				return
			}
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status >= http.StatusBadRequest {
				if err := store.Release(context.WithoutCancel(r.Context()), module, key); err != nil {
					logger.Warn("release idempotency key", slog.String("module", module), slog.Any("error", err))
				}
			}
		})
	}
}
