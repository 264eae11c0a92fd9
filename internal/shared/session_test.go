package shared_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdeel/pulse/internal/shared"
)

func newSessionManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "pulse_session", "secret", time.Hour, false), mr
}

func serveWithSession(sm *shared.SessionManager, h http.HandlerFunc, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	res := httptest.NewRecorder()
	sm.Middleware(nil)(h).ServeHTTP(res, req)
	return res
}

func TestAnonymousRequestsLeaveNoSession(t *testing.T) {
	sm, mr := newSessionManager(t)
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

	for range 50 {
		res := serveWithSession(sm, ok, nil)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Empty(t, res.Result().Cookies())
	}
	assert.Empty(t, mr.Keys())

	// An unknown cookie is not adopted or stored either.
	res := serveWithSession(sm, ok, &http.Cookie{Name: "pulse_session", Value: "forged"})
	assert.Empty(t, res.Result().Cookies())
	assert.Empty(t, mr.Keys())
}

func TestSessionWithDataIsStored(t *testing.T) {
	sm, mr := newSessionManager(t)

	res := serveWithSession(sm, func(w http.ResponseWriter, r *http.Request) {
		shared.SessionFromContext(r.Context()).Set(shared.CSRFSessionKey, "token")
		w.WriteHeader(http.StatusOK)
	}, nil)
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, mr.Exists("pulse:session:"+cookies[0].Value))

	res = serveWithSession(sm, func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		assert.Equal(t, "token", sess.Get(shared.CSRFSessionKey))
		w.WriteHeader(http.StatusNoContent)
	}, cookies[0])
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.Len(t, mr.Keys(), 1)

	res = serveWithSession(sm, func(w http.ResponseWriter, r *http.Request) {
		shared.SessionFromContext(r.Context()).SetIdentity(7, 7)
		w.WriteHeader(http.StatusOK)
	}, nil)
	require.Len(t, res.Result().Cookies(), 1)
	assert.Len(t, mr.Keys(), 2)
}
