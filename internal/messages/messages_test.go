package messages

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/users"
)

type fixture struct {
	service *Service
	feed    *activity.Feed
	dir     *users.Directory
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := users.NewDirectory(rbac.NewRegistry(nil, logger, nil), users.SeedUsers(""))
	feed := activity.NewFeed(20, nil, logger)
	store := NewStore(SeedThreads())
	ids := 0
	store.newID = func() string {
		ids++
		return "thread-new-" + strconv.Itoa(ids)
	}
	svc := NewService(store, dir, feed, logger)
	svc.now = func() time.Time { return time.Date(2024, time.July, 23, 9, 0, 0, 0, time.UTC) }
	return fixture{service: svc, feed: feed, dir: dir}
}

func (f fixture) profile(t *testing.T, id int64) users.Profile {
	t.Helper()
	p, ok := f.dir.ProfileByID(id)
	require.True(t, ok)
	return p
}

func TestListShowsOnlyViewerThreads(t *testing.T) {
	f := newFixture(t)
	store := f.service.Store()

	semeem := store.List(1)
	require.Len(t, semeem, 2)
	assert.Equal(t, "thread-1", semeem[0].ID, "most recent first")
	assert.Equal(t, 1, semeem[0].UnreadCount)
	assert.True(t, strings.HasPrefix(semeem[0].LastMessage, "Here are the updated budget figures"))
	assert.Nil(t, semeem[0].Messages)

	shiraj := store.List(4)
	require.Len(t, shiraj, 1)
	assert.Equal(t, "Q3 Marketing Campaign", shiraj[0].Title)
	assert.Equal(t, 0, shiraj[0].UnreadCount)

	assert.Empty(t, store.List(7))
	_, err := store.Get(7, "thread-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendUpdatesLastMessageAndUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.service.Send(ctx, f.profile(t, 2), "thread-1", "  Budget approved.  ")
	require.NoError(t, err)
	assert.Equal(t, int64(4), msg.ID)
	assert.Equal(t, "Budget approved.", msg.Text)

	thread, err := f.service.Store().Get(1, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "Budget approved.", thread.LastMessage)
	assert.Equal(t, msg.Timestamp, thread.Timestamp)
	assert.Equal(t, 2, thread.UnreadCount)
	assert.Len(t, thread.Messages, 4)
	assert.Equal(t, 2, f.service.Store().Unread(1))
	assert.Equal(t, 0, f.service.Store().Unread(2), "sender gains nothing")

	_, err = f.service.Send(ctx, f.profile(t, 2), "thread-1", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = f.service.Send(ctx, f.profile(t, 4), "thread-1", "hi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkReadClearsViewerCount(t *testing.T) {
	f := newFixture(t)
	store := f.service.Store()

	thread, err := store.MarkRead(1, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, 0, thread.UnreadCount)
	assert.Equal(t, 0, store.Unread(1))

	_, err = store.MarkRead(1, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartThread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	semeem := f.profile(t, 1)

	thread, err := f.service.Start(ctx, semeem, "Site handover", "Handover is on Thursday.", []int64{3, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, "thread-new-1", thread.ID)
	require.Len(t, thread.Participants, 2)
	assert.Equal(t, int64(1), thread.Participants[0].ID)
	assert.Equal(t, int64(3), thread.Participants[1].ID)
	assert.Equal(t, "Handover is on Thursday.", thread.LastMessage)
	assert.Equal(t, 0, thread.UnreadCount)
	assert.Equal(t, 1, f.service.Store().Unread(3))

	recent := f.feed.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "started a new thread", recent[0].Action)
	assert.Equal(t, "Site handover", recent[0].Target)

	_, err = f.service.Start(ctx, semeem, "Solo", "talking to myself", []int64{1})
	assert.ErrorIs(t, err, ErrInvalidThread)
	_, err = f.service.Start(ctx, semeem, "", "text", []int64{3})
	assert.ErrorIs(t, err, ErrInvalidThread)
	_, err = f.service.Start(ctx, semeem, "Nakul", "text", []int64{8})
	assert.ErrorIs(t, err, ErrUnknownParticipant)
}

func TestOpenEscalationIncludesManagers(t *testing.T) {
	f := newFixture(t)
	benhur := f.profile(t, 7)

	id, err := f.service.OpenEscalation(context.Background(), benhur, "Escalation: Fix CCTV (#SJ-9812)", "Need help on site.")
	require.NoError(t, err)

	thread, err := f.service.Store().Get(7, id)
	require.NoError(t, err)
	var ids []int64
	for _, p := range thread.Participants {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []int64{7, 1, 11, 2, 3, 5}, ids)
	assert.Equal(t, 1, f.service.Store().Unread(2))
}

func newTestRouter(t *testing.T, actor *users.Profile) (http.Handler, fixture) {
	t.Helper()
	f := newFixture(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if actor != nil {
				ctx := users.ContextWithProfile(req.Context(), *actor)
				req = req.WithContext(rbac.ContextWithGate(ctx, actor.Gate()))
			}
			next.ServeHTTP(w, req)
		})
	})
	NewHandler(logger, f.service, rbac.Middleware{Logger: logger}).MountRoutes(r)
	return r, f
}

func send(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(method, path, reader))
	return res
}

func TestHandlerFlow(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	assert.Equal(t, http.StatusUnauthorized, send(h, http.MethodGet, "/messages/threads", "").Code)

	f := newFixture(t)
	semeem := f.profile(t, 1)
	h, _ = newTestRouter(t, &semeem)

	res := send(h, http.MethodGet, "/messages/threads", "")
	require.Equal(t, http.StatusOK, res.Code)
	var list struct {
		Threads []Thread `json:"threads"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
	assert.Len(t, list.Threads, 2)

	res = send(h, http.MethodPost, "/messages/threads/thread-1/messages", `{"text":"Thanks, looks good."}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = send(h, http.MethodPost, "/messages/threads/thread-1/read", "")
	require.Equal(t, http.StatusOK, res.Code)

	res = send(h, http.MethodGet, "/messages/unread", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"unread":0}`, res.Body.String())

	res = send(h, http.MethodPost, "/messages/threads", `{"title":"Kickoff","message":"Monday 9am","participantIds":[2,4]}`)
	require.Equal(t, http.StatusCreated, res.Code)
	var created Thread
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.Len(t, created.Participants, 3)

	res = send(h, http.MethodPost, "/messages/threads", `{"title":"Kickoff","message":"Monday 9am","participantIds":[]}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = send(h, http.MethodPost, "/messages/threads", `{"title":"Kickoff","message":"Monday 9am","participantIds":[99]}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "participantIds")

	assert.Equal(t, http.StatusNotFound, send(h, http.MethodGet, "/messages/threads/nope", "").Code)
}
