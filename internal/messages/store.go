// Package messages implements internal discussion threads.
package messages

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates an unknown thread or one the viewer does not take part in.
	ErrNotFound = errors.New("messages: thread not found")
	// ErrInvalidThread is returned for threads without title, message or participants.
	ErrInvalidThread = errors.New("messages: invalid thread")
	// ErrEmptyMessage is returned for blank messages.
	ErrEmptyMessage = errors.New("messages: message text required")
)

// Participant is the display reference of a user in a thread.
type Participant struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// Message is one chat line.
type Message struct {
	ID        int64       `json:"id"`
	User      Participant `json:"user"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
}

// Thread is a conversation as seen by one viewer. UnreadCount is the viewer's.
type Thread struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages,omitempty"`
	LastMessage  string        `json:"lastMessage"`
	Timestamp    time.Time     `json:"timestamp"`
	UnreadCount  int           `json:"unreadCount"`
}

type thread struct {
	id           string
	title        string
	participants []Participant
	messages     []Message
	unread       map[int64]int
}

func (t *thread) hasParticipant(id int64) bool {
	return slices.ContainsFunc(t.participants, func(p Participant) bool { return p.ID == id })
}

func (t *thread) view(viewer int64, withMessages bool) Thread {
	out := Thread{
		ID:           t.id,
		Title:        t.title,
		Participants: append([]Participant(nil), t.participants...),
		UnreadCount:  t.unread[viewer],
	}
	if n := len(t.messages); n > 0 {
		out.LastMessage = t.messages[n-1].Text
		out.Timestamp = t.messages[n-1].Timestamp
	}
	if withMessages {
		out.Messages = append([]Message(nil), t.messages...)
	}
	return out
}

// SeedThread describes an initial thread. Unread maps user id to unread count.
type SeedThread struct {
	ID           string
	Title        string
	Participants []Participant
	Messages     []Message
	Unread       map[int64]int
}

// Store keeps threads in memory.
type Store struct {
	mu      sync.RWMutex
	threads []*thread
	newID   func() string
}

// NewStore seeds a store.
func NewStore(seed []SeedThread) *Store {
	s := &Store{newID: func() string { return uuid.NewString() }}
	for _, st := range seed {
		t := &thread{
			id:           st.ID,
			title:        st.Title,
			participants: append([]Participant(nil), st.Participants...),
			messages:     append([]Message(nil), st.Messages...),
			unread:       make(map[int64]int),
		}
		for id, n := range st.Unread {
			t.unread[id] = n
		}
		s.threads = append(s.threads, t)
	}
	return s
}

// List returns the viewer's threads without messages, most recent first.
func (s *Store) List(viewer int64) []Thread {
	s.mu.RLock()
	out := make([]Thread, 0, len(s.threads))
	for _, t := range s.threads {
		if t.hasParticipant(viewer) {
			out = append(out, t.view(viewer, false))
		}
	}
	s.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b Thread) int { return b.Timestamp.Compare(a.Timestamp) })
	return out
}

// Get returns thread id with its messages when viewer takes part in it.
func (s *Store) Get(viewer int64, id string) (Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.findLocked(id)
	if t == nil || !t.hasParticipant(viewer) {
		return Thread{}, ErrNotFound
	}
	return t.view(viewer, true), nil
}

// CreateThread starts a thread from creator with a first message. The creator
// is always a participant; duplicates are dropped.
func (s *Store) CreateThread(creator Participant, title, text string, participants []Participant, at time.Time) (Thread, error) {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)
	members := []Participant{creator}
	for _, p := range participants {
		if !slices.ContainsFunc(members, func(m Participant) bool { return m.ID == p.ID }) {
			members = append(members, p)
		}
	}
	switch {
	case title == "":
		return Thread{}, errors.Join(ErrInvalidThread, errors.New("title required"))
	case text == "":
		return Thread{}, errors.Join(ErrInvalidThread, errors.New("first message required"))
	case len(members) < 2:
		return Thread{}, errors.Join(ErrInvalidThread, errors.New("at least one other participant required"))
	}

	t := &thread{
		title:        title,
		participants: members,
		messages:     []Message{{ID: 1, User: creator, Text: text, Timestamp: at}},
		unread:       make(map[int64]int),
	}
	for _, m := range members[1:] {
		t.unread[m.ID] = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t.id = s.newID()
	s.threads = append(s.threads, t)
	return t.view(creator.ID, true), nil
}

// Send appends a message from sender. Every other participant gains one unread message.
func (s *Store) Send(id string, sender Participant, text string, at time.Time) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findLocked(id)
	if t == nil || !t.hasParticipant(sender.ID) {
		return Message{}, ErrNotFound
	}
	msg := Message{ID: int64(len(t.messages) + 1), User: sender, Text: text, Timestamp: at}
	t.messages = append(t.messages, msg)
	for _, p := range t.participants {
		if p.ID != sender.ID {
			t.unread[p.ID]++
		}
	}
	return msg, nil
}

// MarkRead zeroes the viewer's unread count on thread id.
func (s *Store) MarkRead(viewer int64, id string) (Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findLocked(id)
	if t == nil || !t.hasParticipant(viewer) {
		return Thread{}, ErrNotFound
	}
	delete(t.unread, viewer)
	return t.view(viewer, false), nil
}

// Unread totals the viewer's unread messages across threads.
func (s *Store) Unread(viewer int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, t := range s.threads {
		total += t.unread[viewer]
	}
	return total
}

func (s *Store) findLocked(id string) *thread {
	for _, t := range s.threads {
		if t.id == id {
			return t
		}
	}
	return nil
}
