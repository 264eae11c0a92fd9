// Package dashboard aggregates the landing-page indicators from the live stores.
package dashboard

import (
	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/finance"
	"github.com/tabdeel/pulse/internal/platform/money"
)

// DefaultActivityLimit is the number of feed entries returned when unspecified.
const DefaultActivityLimit = 10

// Finance reports the money side of the dashboard.
type Finance interface {
	CollectedRevenue() float64
	PendingApprovals() finance.PendingSummary
}

// Counter reports a single count, e.g. active jobs or pending tasks.
type Counter interface {
	ActiveCount() int
}

// Inbox reports unread messages for a user.
type Inbox interface {
	Unread(viewer int64) int
}

// TaskList reports incomplete tasks.
type TaskList interface {
	Pending() int
}

// Sources groups the stores the dashboard reads.
type Sources struct {
	Finance  Finance
	Jobs     Counter
	Projects Counter
	Inbox    Inbox
	Tasks    TaskList
	Feed     *activity.Feed
}

// Amount is a currency value with its display form.
type Amount struct {
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

// Approvals summarises instructions awaiting a decision.
type Approvals struct {
	Count  int    `json:"count"`
	Amount Amount `json:"amount"`
}

// Summary is the dashboard payload.
type Summary struct {
	CollectedRevenue Amount           `json:"collectedRevenue"`
	PendingApprovals Approvals        `json:"pendingApprovals"`
	ActiveJobs       int              `json:"activeJobs"`
	ActiveProjects   int              `json:"activeProjects"`
	UnreadMessages   int              `json:"unreadMessages"`
	PendingTasks     int              `json:"pendingTasks"`
	Activity         []activity.Entry `json:"activity"`
}

// Service computes summaries on demand.
type Service struct {
	src Sources
}

// NewService builds a Service. Nil sources report zero.
func NewService(src Sources) *Service {
	return &Service{src: src}
}

// Summary computes the indicators for viewer with up to activityLimit feed entries.
func (s *Service) Summary(viewer int64, activityLimit int) Summary {
	if activityLimit <= 0 {
		activityLimit = DefaultActivityLimit
	}
	out := Summary{
		CollectedRevenue: amount(0),
		PendingApprovals: Approvals{Amount: amount(0)},
		Activity:         []activity.Entry{},
	}
	if s.src.Finance != nil {
		out.CollectedRevenue = amount(s.src.Finance.CollectedRevenue())
		pending := s.src.Finance.PendingApprovals()
		out.PendingApprovals = Approvals{Count: pending.Count, Amount: amount(pending.Amount)}
	}
	if s.src.Jobs != nil {
		out.ActiveJobs = s.src.Jobs.ActiveCount()
	}
	if s.src.Projects != nil {
		out.ActiveProjects = s.src.Projects.ActiveCount()
	}
	if s.src.Inbox != nil {
		out.UnreadMessages = s.src.Inbox.Unread(viewer)
	}
	if s.src.Tasks != nil {
		out.PendingTasks = s.src.Tasks.Pending()
	}
	if s.src.Feed != nil {
		out.Activity = s.src.Feed.Recent(activityLimit)
	}
	return out
}

func amount(v float64) Amount {
	return Amount{Value: v, Formatted: money.Format(v)}
}
