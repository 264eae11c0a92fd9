package servicejobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/users"
)

// Technicians resolves assignable users.
type Technicians interface {
	Get(id int64) (users.User, bool)
}

// ThreadOpener starts a message thread with management for an escalated job.
type ThreadOpener interface {
	OpenEscalation(ctx context.Context, actor users.Profile, title, text string) (threadID string, err error)
}

// Service applies board rules and records activity.
type Service struct {
	board       *Board
	technicians Technicians
	threads     ThreadOpener
	feed        *activity.Feed
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs a Service. threads may be nil, which disables escalation.
func NewService(board *Board, technicians Technicians, threads ThreadOpener, feed *activity.Feed, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{board: board, technicians: technicians, threads: threads, feed: feed, logger: logger, now: time.Now}
}

// Board exposes the underlying board for read paths.
func (s *Service) Board() *Board {
	return s.board
}

// Create assigns a new job to an active technician.
func (s *Service) Create(ctx context.Context, actor users.Profile, in NewJob) (Job, error) {
	tech, ok := s.technicians.Get(in.TechnicianID)
	if !ok || tech.Status != users.StatusActive {
		return Job{}, fmt.Errorf("%w: %d", ErrUnknownTechnician, in.TechnicianID)
	}
	job, err := s.board.Add(in, Person{ID: tech.ID, Name: tech.Name, AvatarURL: tech.AvatarURL})
	if err != nil {
		return Job{}, err
	}
	s.record(ctx, actor, "created a new job: "+job.Title+" for", job.Project)
	return job, nil
}

// Move changes the column of job id.
func (s *Service) Move(ctx context.Context, actor users.Profile, id string, status Status) (Job, error) {
	job, prev, err := s.board.Move(id, status)
	if err != nil {
		return Job{}, err
	}
	if prev != status {
		s.record(ctx, actor, fmt.Sprintf("updated status to %q for job #%s on", string(status), job.ID), job.Project)
	}
	return job, nil
}

// Resolve closes a Completed job.
func (s *Service) Resolve(ctx context.Context, actor users.Profile, id, remarks string) (Job, error) {
	job, err := s.board.Resolve(id, remarks)
	if err != nil {
		return Job{}, err
	}
	s.record(ctx, actor, "resolved service job #"+job.ID+" for", job.Project)
	return job, nil
}

// Comment adds a note from actor to job id.
func (s *Service) Comment(ctx context.Context, actor users.Profile, id, text string) (Comment, error) {
	return s.board.AddComment(id, Person{ID: actor.ID, Name: actor.Name, AvatarURL: actor.AvatarURL}, text, s.now().UTC())
}

// Escalate opens a management thread about an unresolved job.
func (s *Service) Escalate(ctx context.Context, actor users.Profile, id string) (string, error) {
	job, ok := s.board.Get(id)
	if !ok {
		return "", ErrNotFound
	}
	if job.Status == StatusResolved {
		return "", ErrAlreadyResolved
	}
	if s.threads == nil {
		return "", fmt.Errorf("servicejobs: escalation unavailable")
	}
	title := fmt.Sprintf("Escalation: %s (#%s)", job.Title, job.ID)
	text := fmt.Sprintf("%s needs management help with job #%s on %s (status %s, technician %s).",
		actor.Name, job.ID, job.Project, job.Status, job.Technician.Name)
	threadID, err := s.threads.OpenEscalation(ctx, actor, title, text)
	if err != nil {
		return "", fmt.Errorf("open escalation thread: %w", err)
	}
	s.record(ctx, actor, "escalated service job #"+job.ID+" on", job.Project)
	return threadID, nil
}

func (s *Service) record(ctx context.Context, actor users.Profile, action, target string) {
	if s.feed == nil {
		return
	}
	s.feed.Record(ctx, actor.Actor(), action, target)
}
