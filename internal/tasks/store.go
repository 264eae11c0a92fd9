// Package tasks holds the shared to-do list shown in the header and task page.
package tasks

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DateLayout is the wire format of task deadlines.
const DateLayout = "2006-01-02"

var (
	// ErrNotFound indicates an unknown task id.
	ErrNotFound = errors.New("tasks: not found")
	// ErrInvalidTask is returned for an empty description or malformed deadline.
	ErrInvalidTask = errors.New("tasks: invalid task")
)

// Task is one to-do entry.
type Task struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	IsCompleted bool   `json:"isCompleted"`
}

// Split is the task list partitioned by completion.
type Split struct {
	Incomplete []Task `json:"incomplete"`
	Completed  []Task `json:"completed"`
}

// Store keeps tasks newest first.
type Store struct {
	mu    sync.RWMutex
	items []Task
	seq   int
}

// NewStore seeds a store. Seed order is preserved.
func NewStore(seed []Task) *Store {
	items := make([]Task, len(seed))
	copy(items, seed)
	return &Store{items: items, seq: len(seed)}
}

// SeedTasks returns the initial task list.
func SeedTasks() []Task {
	return []Task{
		{ID: "task-1", Description: "Review Q3 budget proposals", Deadline: "2024-07-25"},
		{ID: "task-2", Description: "Follow up with Al Naboodah on pending invoice", Deadline: "2024-07-24"},
		{ID: "task-3", Description: "Prepare for weekly sync meeting", Deadline: "2024-07-23", IsCompleted: true},
		{ID: "task-4", Description: "Onboard new technician hires", Deadline: "2024-07-26"},
	}
}

// List returns a copy of all tasks, newest first.
func (s *Store) List() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, len(s.items))
	copy(out, s.items)
	return out
}

// Split partitions the list into incomplete and completed tasks.
func (s *Store) Split() Split {
	out := Split{Incomplete: []Task{}, Completed: []Task{}}
	for _, t := range s.List() {
		if t.IsCompleted {
			out.Completed = append(out.Completed, t)
		} else {
			out.Incomplete = append(out.Incomplete, t)
		}
	}
	return out
}

// Add prepends a new incomplete task.
func (s *Store) Add(description, deadline string) (Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Task{}, fmt.Errorf("%w: description required", ErrInvalidTask)
	}
	if _, err := time.Parse(DateLayout, deadline); err != nil {
		return Task{}, fmt.Errorf("%w: deadline %q", ErrInvalidTask, deadline)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task := Task{ID: fmt.Sprintf("task-%d", s.seq), Description: description, Deadline: deadline}
	s.items = append([]Task{task}, s.items...)
	return task, nil
}

// Toggle flips the completion flag of id.
func (s *Store) Toggle(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsCompleted = !s.items[i].IsCompleted
			return s.items[i], nil
		}
	}
	return Task{}, ErrNotFound
}

// Pending counts incomplete tasks.
func (s *Store) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.items {
		if !t.IsCompleted {
			n++
		}
	}
	return n
}
