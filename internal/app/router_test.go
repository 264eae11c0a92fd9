package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tabdeel/pulse/internal/auth"
	"github.com/tabdeel/pulse/internal/observability"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/session"
	"github.com/tabdeel/pulse/internal/shared"
	"github.com/tabdeel/pulse/jobs"
	_ "github.com/tabdeel/pulse/testing"
)

type discardEnqueuer struct{ tasks []*asynq.Task }

func (d *discardEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	d.tasks = append(d.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Queue: jobs.QueueDefault}, nil
}

func (d *discardEnqueuer) Close() error { return nil }

// client is a minimal cookie- and CSRF-aware API client.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
	csrf   string
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.csrf != "" {
		req.Header.Set(shared.CSRFHeader, c.csrf)
	}
	res := httptest.NewRecorder()
	c.h.ServeHTTP(res, req)
	for _, ck := range res.Result().Cookies() {
		if ck.Name == "pulse_session" {
			c.cookie = ck
		}
	}
	return res
}

func (c *client) view(res *httptest.ResponseRecorder) session.View {
	c.t.Helper()
	var v session.View
	require.NoError(c.t, json.Unmarshal(res.Body.Bytes(), &v))
	if v.CSRFToken != "" {
		c.csrf = v.CSRFToken
	}
	return v
}

func newTestApp(t *testing.T) (http.Handler, *Workspace) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second, RateLimitPerMinute: 1000}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	ws := NewWorkspace(context.Background(), WorkspaceConfig{
		RoleStore:    rbac.NewRedisStore(redisClient, ""),
		PasswordHash: string(hash),
		Logger:       logger,
	})
	metrics := observability.NewMetrics()
	sessions := shared.NewSessionManager(redisClient, "pulse_session", "secret", time.Hour, false)
	identities := session.NewManager(ws.Directory, logger, metrics)
	mailer := jobs.NewClientWith(&discardEnqueuer{}, "http://localhost:8080")
	authService := auth.NewService(ws.Directory, auth.NewRedisTokenStore(redisClient, time.Hour), mailer, logger, bcrypt.MinCost)

	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		Workspace:      ws,
		SessionManager: sessions,
		CSRFManager:    shared.NewCSRFManager("csrf-secret"),
		Identities:     identities,
		AuthService:    authService,
		Metrics:        metrics,
		Idempotency:    IdempotencyStore(redisClient, nil),
	}), ws
}

func TestHealthzAndQueueHealth(t *testing.T) {
	h, _ := newTestApp(t)
	c := &client{t: t, h: h}

	res := c.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())
	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
	assert.Empty(t, res.Result().Cookies())

	res = c.do(http.MethodGet, "/jobs/queue/health", "")
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestUnsafeRequestsNeedCSRFToken(t *testing.T) {
	h, _ := newTestApp(t)
	c := &client{t: t, h: h}

	res := c.do(http.MethodPost, "/api/auth/login", `{"email":"semeem@tabdeel.io","password":"password123"}`)
	assert.Equal(t, http.StatusForbidden, res.Code)

	c.view(c.do(http.MethodGet, "/api/auth/session", ""))
	require.NotEmpty(t, c.csrf)
	res = c.do(http.MethodPost, "/api/auth/login", `{"email":"semeem@tabdeel.io","password":"password123"}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, c.view(res).Authenticated)
}

func TestAdminImpersonatesTechnician(t *testing.T) {
	h, ws := newTestApp(t)
	c := &client{t: t, h: h}

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/dashboard", "").Code)

	c.view(c.do(http.MethodGet, "/api/auth/session", ""))
	c.view(c.do(http.MethodPost, "/api/auth/login", `{"email":"semeem@tabdeel.io","password":"password123"}`))

	res := c.do(http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"formatted":"AED 250,000.00"`)

	res = c.do(http.MethodPost, "/api/session/switch/6", "")
	require.Equal(t, http.StatusOK, res.Code)
	v := c.view(res)
	require.True(t, v.Impersonating)
	assert.Equal(t, "NOUMAN", v.User.Name)

	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/api/users", "").Code)
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/api/finance/instructions/PI-00124/approve", "").Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/jobs", "").Code)

	res = c.do(http.MethodPost, "/api/session/return", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.False(t, c.view(res).Impersonating)

	res = c.do(http.MethodPost, "/api/finance/instructions/PI-00124/approve", `{"remarks":"ok"}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 0, ws.Finance.Ledger().PendingApprovals().Count)
	assert.Equal(t, "approved payment to", ws.Feed.Recent(1)[0].Action)

	metrics := c.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `pulse_authz_denials_total{permission="finance:approve"} 1`)
	assert.Contains(t, metrics.Body.String(), `pulse_identity_switches_total{direction="switch"} 1`)
}
