// Package projects keeps the project register referenced by collections and jobs.
package projects

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrNotFound indicates an unknown project id.
	ErrNotFound = errors.New("projects: not found")
	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("projects: invalid status")
	// ErrDuplicateName is returned when another project already uses the name.
	ErrDuplicateName = errors.New("projects: name already in use")
	// ErrInvalidProject is returned when name or client is blank.
	ErrInvalidProject = errors.New("projects: name and client required")
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusActive    Status = "Active"
	StatusOnHold    Status = "On Hold"
	StatusCompleted Status = "Completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOnHold, StatusCompleted:
		return true
	}
	return false
}

// Project is a client engagement.
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Client string `json:"client"`
	Status Status `json:"status"`
}

// Store is the in-memory project register.
type Store struct {
	mu    sync.RWMutex
	items []Project
	seq   int
}

// NewStore seeds a store. New ids continue after the highest seeded number.
func NewStore(seed []Project) *Store {
	s := &Store{items: append([]Project(nil), seed...)}
	for _, p := range seed {
		if n, err := strconv.Atoi(strings.TrimPrefix(p.ID, "PROJ-")); err == nil && n > s.seq {
			s.seq = n
		}
	}
	return s
}

// SeedProjects returns the initial register.
func SeedProjects() []Project {
	return []Project{
		{ID: "PROJ-001", Name: "Al Quoz Labour Camp Internet", Client: "Al Naboodah Construction", Status: StatusActive},
		{ID: "PROJ-002", Name: "Jebel Ali Labour Village Connectivity", Client: "DP World", Status: StatusActive},
		{ID: "PROJ-003", Name: "ICD Brookfield Place Security System Upgrade", Client: "ICD Brookfield", Status: StatusActive},
		{ID: "PROJ-004", Name: "City Walk Building 7 BMS", Client: "Meraas", Status: StatusOnHold},
		{ID: "PROJ-005", Name: "Dubai Hills Villa ELV Integration", Client: "Emaar Properties", Status: StatusCompleted},
	}
}

// List returns a copy of all projects.
func (s *Store) List() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Project(nil), s.items...)
}

// Get returns project id.
func (s *Store) Get(id string) (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	return Project{}, false
}

// ProjectExists reports whether a project with the given name is registered.
func (s *Store) ProjectExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nameIndexLocked(name, "") >= 0
}

// Add registers a project. An empty status defaults to Active.
func (s *Store) Add(p Project) (Project, error) {
	if p.Status == "" {
		p.Status = StatusActive
	}
	if err := normalize(&p); err != nil {
		return Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameIndexLocked(p.Name, "") >= 0 {
		return Project{}, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
	}
	s.seq++
	p.ID = fmt.Sprintf("PROJ-%03d", s.seq)
	s.items = append(s.items, p)
	return p, nil
}

// Update replaces name, client and status of p.ID.
func (s *Store) Update(p Project) (Project, error) {
	if err := normalize(&p); err != nil {
		return Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(p.ID)
	if i < 0 {
		return Project{}, ErrNotFound
	}
	if s.nameIndexLocked(p.Name, p.ID) >= 0 {
		return Project{}, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
	}
	s.items[i] = p
	return p, nil
}

// Delete removes project id and returns it.
func (s *Store) Delete(id string) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Project{}, ErrNotFound
	}
	p := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return p, nil
}

// ActiveCount counts projects in the Active state.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.items {
		if p.Status == StatusActive {
			n++
		}
	}
	return n
}

func normalize(p *Project) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Client = strings.TrimSpace(p.Client)
	if p.Name == "" || p.Client == "" {
		return ErrInvalidProject
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}
	return nil
}

func (s *Store) indexLocked(id string) int {
	for i, p := range s.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) nameIndexLocked(name, except string) int {
	name = strings.TrimSpace(name)
	for i, p := range s.items {
		if p.ID != except && strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}
