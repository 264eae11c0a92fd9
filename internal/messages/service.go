package messages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/users"
)

// ErrUnknownParticipant is returned when a participant id is not an active user.
var ErrUnknownParticipant = errors.New("messages: unknown participant")

// Service resolves participants against the directory and records activity.
type Service struct {
	store     *Store
	directory *users.Directory
	feed      *activity.Feed
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(store *Store, directory *users.Directory, feed *activity.Feed, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, directory: directory, feed: feed, logger: logger, now: time.Now}
}

// Store exposes the thread store for read paths.
func (s *Service) Store() *Store {
	return s.store
}

// Start opens a thread from actor to the given users.
func (s *Service) Start(ctx context.Context, actor users.Profile, title, text string, participantIDs []int64) (Thread, error) {
	members := make([]Participant, 0, len(participantIDs))
	for _, id := range participantIDs {
		u, ok := s.directory.Get(id)
		if !ok || u.Status != users.StatusActive {
			return Thread{}, fmt.Errorf("%w: %d", ErrUnknownParticipant, id)
		}
		members = append(members, participant(u))
	}
	thread, err := s.store.CreateThread(participant(actor.User), title, text, members, s.now().UTC())
	if err != nil {
		return Thread{}, err
	}
	if s.feed != nil {
		s.feed.Record(ctx, actor.Actor(), "started a new thread", thread.Title)
	}
	return thread, nil
}

// Send posts text to thread id as actor.
func (s *Service) Send(ctx context.Context, actor users.Profile, id, text string) (Message, error) {
	return s.store.Send(id, participant(actor.User), text, s.now().UTC())
}

// OpenEscalation starts a thread between actor and every active user allowed
// to manage staff.
func (s *Service) OpenEscalation(ctx context.Context, actor users.Profile, title, text string) (string, error) {
	var managers []int64
	for _, u := range s.directory.List() {
		if u.ID == actor.ID || u.Status != users.StatusActive {
			continue
		}
		if s.directory.Profile(u).Gate().HasPermission(rbac.PermUsersUpdate) {
			managers = append(managers, u.ID)
		}
	}
	if len(managers) == 0 {
		return "", fmt.Errorf("%w: no managers available", ErrInvalidThread)
	}
	thread, err := s.Start(ctx, actor, title, text, managers)
	if err != nil {
		return "", err
	}
	s.logger.Info("escalation thread opened", slog.String("thread_id", thread.ID), slog.Int("participants", len(thread.Participants)))
	return thread.ID, nil
}

func participant(u users.User) Participant {
	return Participant{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}
