package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/finance"
	"github.com/tabdeel/pulse/internal/messages"
	"github.com/tabdeel/pulse/internal/projects"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/servicejobs"
	"github.com/tabdeel/pulse/internal/tasks"
	"github.com/tabdeel/pulse/internal/users"
)

func newSeededService(feed *activity.Feed) *Service {
	return NewService(Sources{
		Finance:  finance.NewLedger(finance.SeedData()),
		Jobs:     servicejobs.NewBoard(servicejobs.SeedJobs(), servicejobs.SeedComments()),
		Projects: projects.NewStore(projects.SeedProjects()),
		Inbox:    messages.NewStore(messages.SeedThreads()),
		Tasks:    tasks.NewStore(tasks.SeedTasks()),
		Feed:     feed,
	})
}

func TestSummaryFromSeededStores(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	feed := activity.NewFeed(20, nil, logger)
	for i := 0; i < 12; i++ {
		feed.Record(context.Background(), activity.Actor{Name: "Shiraj"}, "logged a deposit of AED 1,000 to", "Main Operations")
	}

	s := newSeededService(feed).Summary(1, 0)
	assert.Equal(t, Amount{Value: 250000, Formatted: "AED 250,000.00"}, s.CollectedRevenue)
	assert.Equal(t, 1, s.PendingApprovals.Count)
	assert.Equal(t, "AED 15,500.00", s.PendingApprovals.Amount.Formatted)
	assert.Equal(t, 7, s.ActiveJobs)
	assert.Equal(t, 3, s.ActiveProjects)
	assert.Equal(t, 1, s.UnreadMessages)
	assert.Equal(t, 3, s.PendingTasks)
	assert.Len(t, s.Activity, DefaultActivityLimit)

	assert.Equal(t, 0, newSeededService(feed).Summary(4, 5).UnreadMessages)
}

func TestSummaryWithoutSources(t *testing.T) {
	s := NewService(Sources{}).Summary(1, 3)
	assert.Equal(t, "AED 0.00", s.CollectedRevenue.Formatted)
	assert.Equal(t, "AED 0.00", s.PendingApprovals.Amount.Formatted)
	assert.NotNil(t, s.Activity)
}

func TestHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := users.NewDirectory(rbac.NewRegistry(nil, logger, nil), users.SeedUsers(""))
	semeem, ok := dir.ProfileByID(1)
	require.True(t, ok)
	feed := activity.NewFeed(20, nil, logger)
	feed.Record(context.Background(), semeem.Actor(), "approved payment to", "DEWA")

	router := func(signedIn bool) http.Handler {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if signedIn {
					ctx := users.ContextWithProfile(req.Context(), semeem)
					req = req.WithContext(rbac.ContextWithGate(ctx, semeem.Gate()))
				}
				next.ServeHTTP(w, req)
			})
		})
		NewHandler(newSeededService(feed), rbac.Middleware{Logger: logger}).MountRoutes(r)
		return r
	}

	res := httptest.NewRecorder()
	router(false).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = httptest.NewRecorder()
	router(true).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/dashboard?activity=5", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var body Summary
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Activity, 1)
	assert.Equal(t, "DEWA", body.Activity[0].Target)
	assert.Equal(t, "Mohammed Semeem", body.Activity[0].User.Name)

	res = httptest.NewRecorder()
	router(true).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/dashboard?activity=500", nil))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}
