// Package servicejobs runs the technician kanban board.
package servicejobs

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates an unknown job id.
	ErrNotFound = errors.New("servicejobs: not found")
	// ErrInvalidStatus is returned for a column outside the board.
	ErrInvalidStatus = errors.New("servicejobs: invalid status")
	// ErrInvalidJob is returned for a job without title, project or technician.
	ErrInvalidJob = errors.New("servicejobs: invalid job")
	// ErrUnknownTechnician is returned when assigning a missing or disabled user.
	ErrUnknownTechnician = errors.New("servicejobs: unknown technician")
	// ErrNotCompleted is returned when resolving a job that is not Completed.
	ErrNotCompleted = errors.New("servicejobs: job is not completed")
	// ErrRemarksRequired is returned when resolving without remarks.
	ErrRemarksRequired = errors.New("servicejobs: resolution remarks required")
	// ErrAlreadyResolved is returned when escalating a resolved job.
	ErrAlreadyResolved = errors.New("servicejobs: job already resolved")
	// ErrEmptyComment is returned for blank comments.
	ErrEmptyComment = errors.New("servicejobs: comment text required")
)

// Status is a board column.
type Status string

const (
	StatusAssigned   Status = "Assigned"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusResolved   Status = "Resolved"
)

// Columns lists the board columns in display order.
var Columns = []Status{StatusAssigned, StatusInProgress, StatusCompleted, StatusResolved}

// Valid reports whether s is a board column.
func (s Status) Valid() bool {
	for _, c := range Columns {
		if s == c {
			return true
		}
	}
	return false
}

// Priority ranks a job.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Person is the display reference of a user on a job or comment.
type Person struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// Job is one card on the board.
type Job struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Project    string   `json:"project"`
	Technician Person   `json:"technician"`
	Status     Status   `json:"status"`
	Priority   Priority `json:"priority"`
	Resolution string   `json:"resolution,omitempty"`
}

// NewJob carries the fields accepted when creating a job.
type NewJob struct {
	Title        string
	Project      string
	TechnicianID int64
	Priority     Priority
}

// Comment is a note left on a job.
type Comment struct {
	ID        int64     `json:"id"`
	JobID     string    `json:"jobId"`
	User      Person    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Column is one board column with its cards.
type Column struct {
	Status Status `json:"status"`
	Jobs   []Job  `json:"jobs"`
}
