package tasks

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPrependsAndSplit(t *testing.T) {
	s := NewStore(SeedTasks())

	task, err := s.Add("  Renew trade licence ", "2024-08-01")
	require.NoError(t, err)
	assert.Equal(t, "task-5", task.ID)
	assert.Equal(t, "Renew trade licence", task.Description)
	assert.False(t, task.IsCompleted)

	list := s.List()
	require.Len(t, list, 5)
	assert.Equal(t, task.ID, list[0].ID)

	split := s.Split()
	assert.Len(t, split.Incomplete, 4)
	require.Len(t, split.Completed, 1)
	assert.Equal(t, "task-3", split.Completed[0].ID)
	assert.Equal(t, 4, s.Pending())
}

func TestAddValidates(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Add(" ", "2024-08-01")
	assert.ErrorIs(t, err, ErrInvalidTask)
	_, err = s.Add("x", "01/08/2024")
	assert.ErrorIs(t, err, ErrInvalidTask)
	assert.Empty(t, s.List())
}

func TestToggle(t *testing.T) {
	s := NewStore(SeedTasks())
	task, err := s.Toggle("task-3")
	require.NoError(t, err)
	assert.False(t, task.IsCompleted)
	task, err = s.Toggle("task-3")
	require.NoError(t, err)
	assert.True(t, task.IsCompleted)

	_, err = s.Toggle("task-99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentAddsGetDistinctIDs(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Add("call supplier", "2024-08-01")
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, task := range s.List() {
		seen[task.ID] = true
	}
	assert.Len(t, seen, 20)
}
