// Package activity keeps the recent-activity feed shown on the dashboard.
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultCapacity bounds the in-memory feed.
const DefaultCapacity = 50

// Actor identifies who performed an action.
type Actor struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// Entry is one feed line, rendered as "<actor> <action> <target>".
type Entry struct {
	ID        int64     `json:"id"`
	User      Actor     `json:"user"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives every recorded entry, e.g. an audit table.
type Sink interface {
	Write(ctx context.Context, entry Entry) error
}

// Feed is a bounded ring of recent entries.
type Feed struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
	seq     int64
	sink    Sink
	logger  *slog.Logger
	now     func() time.Time
}

// NewFeed builds a feed holding at most capacity entries. sink may be nil.
func NewFeed(capacity int, sink Sink, logger *slog.Logger) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{entries: make([]Entry, capacity), sink: sink, logger: logger, now: time.Now}
}

// Record appends an entry. Sink failures are logged and never surface to the caller.
func (f *Feed) Record(ctx context.Context, actor Actor, action, target string) Entry {
	f.mu.Lock()
	f.seq++
	entry := Entry{ID: f.seq, User: actor, Action: action, Target: target, Timestamp: f.now().UTC()}
	f.entries[f.next] = entry
	f.next = (f.next + 1) % len(f.entries)
	if f.next == 0 {
		f.full = true
	}
	f.mu.Unlock()

	if f.sink != nil {
		if err := f.sink.Write(ctx, entry); err != nil {
			f.logger.Warn("activity sink write", slog.Any("error", err), slog.String("action", action))
		}
	}
	return entry
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (f *Feed) Recent(limit int) []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	size := f.next
	if f.full {
		size = len(f.entries)
	}
	if limit <= 0 || limit > size {
		limit = size
	}
	out := make([]Entry, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (f.next - 1 - i + len(f.entries)) % len(f.entries)
		out = append(out, f.entries[idx])
	}
	return out
}
