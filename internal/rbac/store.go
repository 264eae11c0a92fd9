package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// DefaultStoreKey is the key under which the registry is persisted.
const DefaultStoreKey = "tabdeel-pulse-roles"

// ErrNoSnapshot indicates the store holds no registry entry.
var ErrNoSnapshot = errors.New("rbac: no persisted snapshot")

// Store is a durable key-value slot holding the serialised registry.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Marshal serialises roles as a JSON array.
func Marshal(roles []Role) ([]byte, error) {
	if roles == nil {
		roles = []Role{}
	}
	return json.Marshal(roles)
}

// Unmarshal decodes a registry snapshot. Unknown permission tags fail the decode.
func Unmarshal(data []byte) ([]Role, error) {
	var roles []Role
	if err := json.Unmarshal(data, &roles); err != nil {
		return nil, err
	}
	if roles == nil {
		return nil, errors.New("rbac: snapshot is not an array")
	}
	seen := make(map[string]struct{}, len(roles))
	for i := range roles {
		if roles[i].ID == "" {
			return nil, errors.New("rbac: snapshot role without id")
		}
		if _, dup := seen[roles[i].ID]; dup {
			return nil, errors.New("rbac: snapshot has duplicate role id " + roles[i].ID)
		}
		seen[roles[i].ID] = struct{}{}
		roles[i].Permissions = Normalize(roles[i].Permissions)
	}
	return roles, nil
}

// MemoryStore keeps the snapshot in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), s.data...), nil
}

func (s *MemoryStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}
