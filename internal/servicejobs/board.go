package servicejobs

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Board holds jobs and their comments in memory.
type Board struct {
	mu         sync.RWMutex
	jobs       []Job
	comments   map[string][]Comment
	jobSeq     int
	commentSeq int64
}

// NewBoard seeds a board. The job counter continues after the highest seeded id.
func NewBoard(jobs []Job, comments []Comment) *Board {
	b := &Board{comments: make(map[string][]Comment)}
	for _, j := range jobs {
		b.jobs = append(b.jobs, j)
		var n int
		if _, err := fmt.Sscanf(j.ID, "SJ-%d", &n); err == nil && n > b.jobSeq {
			b.jobSeq = n
		}
	}
	for _, c := range comments {
		b.comments[c.JobID] = append(b.comments[c.JobID], c)
		if c.ID > b.commentSeq {
			b.commentSeq = c.ID
		}
	}
	return b
}

// List returns every job in insertion order.
func (b *Board) List() []Job {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Job, len(b.jobs))
	copy(out, b.jobs)
	return out
}

// Board groups jobs per column, always returning all four columns.
func (b *Board) Board() []Column {
	jobs := b.List()
	out := make([]Column, len(Columns))
	for i, status := range Columns {
		out[i] = Column{Status: status, Jobs: []Job{}}
		for _, j := range jobs {
			if j.Status == status {
				out[i].Jobs = append(out[i].Jobs, j)
			}
		}
	}
	return out
}

// Get returns the job with id.
func (b *Board) Get(id string) (Job, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, j := range b.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return Job{}, false
}

// Add stores a new Assigned job for technician.
func (b *Board) Add(in NewJob, technician Person) (Job, error) {
	title := strings.TrimSpace(in.Title)
	project := strings.TrimSpace(in.Project)
	if title == "" || project == "" || technician.Name == "" {
		return Job{}, ErrInvalidJob
	}
	priority := in.Priority
	switch priority {
	case "":
		priority = PriorityMedium
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return Job{}, fmt.Errorf("%w: priority %q", ErrInvalidJob, priority)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobSeq++
	job := Job{
		ID:         fmt.Sprintf("SJ-%d", b.jobSeq),
		Title:      title,
		Project:    project,
		Technician: technician,
		Status:     StatusAssigned,
		Priority:   priority,
	}
	b.jobs = append(b.jobs, job)
	return job, nil
}

// Move puts job id into the status column. It returns the updated job and the
// column it left.
func (b *Board) Move(id string, status Status) (Job, Status, error) {
	if !status.Valid() {
		return Job{}, "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.jobs {
		if b.jobs[i].ID == id {
			prev := b.jobs[i].Status
			b.jobs[i].Status = status
			return b.jobs[i], prev, nil
		}
	}
	return Job{}, "", ErrNotFound
}

// Resolve closes a Completed job with mandatory remarks.
func (b *Board) Resolve(id, remarks string) (Job, error) {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return Job{}, ErrRemarksRequired
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.jobs {
		j := &b.jobs[i]
		if j.ID != id {
			continue
		}
		if j.Status != StatusCompleted {
			return Job{}, ErrNotCompleted
		}
		j.Status = StatusResolved
		j.Resolution = remarks
		return *j, nil
	}
	return Job{}, ErrNotFound
}

// AddComment appends a comment by author to job id.
func (b *Board) AddComment(id string, author Person, text string, at time.Time) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, ErrEmptyComment
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasJobLocked(id) {
		return Comment{}, ErrNotFound
	}
	b.commentSeq++
	c := Comment{ID: b.commentSeq, JobID: id, User: author, Text: text, Timestamp: at}
	b.comments[id] = append(b.comments[id], c)
	return c, nil
}

// Comments lists the comments of job id, oldest first.
func (b *Board) Comments(id string) ([]Comment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.hasJobLocked(id) {
		return nil, ErrNotFound
	}
	out := make([]Comment, len(b.comments[id]))
	copy(out, b.comments[id])
	return out, nil
}

// ActiveCount counts jobs that are not Resolved.
func (b *Board) ActiveCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, j := range b.jobs {
		if j.Status != StatusResolved {
			n++
		}
	}
	return n
}

func (b *Board) hasJobLocked(id string) bool {
	for _, j := range b.jobs {
		if j.ID == id {
			return true
		}
	}
	return false
}
