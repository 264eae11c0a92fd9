package rbac

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "")
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	reg := NewRegistry(store, nil, nil)
	reg.Load(ctx)
	_, err = reg.UpdateRolePermissions(ctx, "Manager", []Permission{PermUsersRead})
	require.NoError(t, err)

	raw, err := mr.Get(DefaultStoreKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"id":"Manager"`)
	assert.Contains(t, raw, `"financialLimit":50000`)

	reloaded := NewRegistry(store, nil, nil)
	reloaded.Load(ctx)
	manager, ok := reloaded.Role("Manager")
	require.True(t, ok)
	assert.Equal(t, []Permission{PermUsersRead}, manager.Permissions)
}

func TestRedisStoreLoadError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	_, err := NewRedisStore(client, "roles").Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)
}

type fakeRow struct {
	data []byte
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.data
	return nil
}

type fakePG struct {
	rows     map[string][]byte
	execs    []string
	queryErr error
}

func (f *fakePG) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if f.queryErr != nil {
		return fakeRow{err: f.queryErr}
	}
	data, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{data: data}
}

func (f *fakePG) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	if strings.HasPrefix(sql, "INSERT") {
		f.rows[args[0].(string)] = args[1].([]byte)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := &fakePG{rows: map[string][]byte{}}
	store := NewPostgresStore(db, "")
	require.NoError(t, store.EnsureSchema(ctx))

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	reg := NewRegistry(store, nil, nil)
	reg.Load(ctx)
	_, err = reg.CreateRole(ctx, "Auditor", "Read only", []Permission{PermUsersRead})
	require.NoError(t, err)

	require.Contains(t, db.rows, DefaultStoreKey)
	reloaded := NewRegistry(store, nil, nil)
	reloaded.Load(ctx)
	assert.True(t, reloaded.Exists("auditor"))
	assert.Len(t, db.execs, 2)
}

func TestPostgresStoreMissingTable(t *testing.T) {
	ctx := context.Background()
	db := &fakePG{rows: map[string][]byte{}, queryErr: &pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: `relation "pulse_kv" does not exist`}}

	_, err := NewPostgresStore(db, "").Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	db.queryErr = &pgconn.PgError{Code: pgerrcode.InsufficientPrivilege}
	_, err = NewPostgresStore(db, "").Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)
}

func TestUnmarshalRejectsDuplicates(t *testing.T) {
	_, err := Unmarshal([]byte(`[{"id":"A","name":"A"},{"id":"A","name":"B"}]`))
	require.Error(t, err)

	_, err = Unmarshal([]byte(`null`))
	require.Error(t, err)

	roles, err := Unmarshal([]byte(`[{"id":"A","name":"A","permissions":["users:read","users:read"]}]`))
	require.NoError(t, err)
	assert.Equal(t, []Permission{PermUsersRead}, roles[0].Permissions)
}

func TestMarshalEmptyRegistry(t *testing.T) {
	data, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
