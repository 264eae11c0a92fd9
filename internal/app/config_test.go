package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdeel/pulse/internal/rbac"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, RoleStoreRedis, cfg.RoleStore)
	assert.Equal(t, rbac.DefaultStoreKey, cfg.RoleStoreKey)
	assert.Equal(t, 3, cfg.ReminderLeadDays)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsBadRoleStore(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")

	t.Setenv("ROLE_STORE", "etcd")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "unknown ROLE_STORE")

	t.Setenv("ROLE_STORE", "postgres")
	t.Setenv("PG_DSN", "")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "PG_DSN")
}

func TestRoleStoreSelection(t *testing.T) {
	store, err := RoleStore(&Config{RoleStore: RoleStoreMemory}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &rbac.MemoryStore{}, store)

	_, err = RoleStore(&Config{RoleStore: RoleStorePostgres}, nil, nil)
	assert.Error(t, err)
}
