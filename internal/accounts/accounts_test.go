package accounts

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/users"
)

func TestMaskAccountNumber(t *testing.T) {
	masked, err := MaskAccountNumber("AE07 0331 2345 6789 0123 456")
	require.NoError(t, err)
	assert.Equal(t, "**** **** **** 3456", masked)

	_, err = MaskAccountNumber("12a")
	assert.ErrorIs(t, err, ErrInvalidAccountNumber)
}

func TestMaskAccountNumberNonLatinDigits(t *testing.T) {
	masked, err := MaskAccountNumber("١٢٣٤٥٦")
	require.NoError(t, err)
	assert.Equal(t, "**** **** **** ٣٤٥٦", masked)
	assert.True(t, utf8.ValidString(masked))

	_, err = MaskAccountNumber("१२")
	require.ErrorIs(t, err, ErrInvalidAccountNumber)
}

func TestStoreApprovalFlow(t *testing.T) {
	s := NewStore(SeedAccountHeads())
	assert.True(t, s.ActiveAccountHead("main operations"))
	assert.False(t, s.ActiveAccountHead("Petty Cash Account"))

	h, err := s.Add("Site Imprest", "Mashreq", "0199887766")
	require.NoError(t, err)
	assert.Equal(t, "AH-004", h.ID)
	assert.Equal(t, StatusPendingApproval, h.Status)
	assert.Equal(t, "**** **** **** 7766", h.AccountNumber)
	assert.False(t, s.ActiveAccountHead("Site Imprest"))

	h, err = s.Approve("AH-004")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, h.Status)
	assert.True(t, s.ActiveAccountHead("Site Imprest"))
	_, err = s.Approve("AH-004")
	assert.ErrorIs(t, err, ErrAlreadyActive)

	h, err = s.Update("AH-004", "Site Imprest", "Mashreq Bank", "")
	require.NoError(t, err)
	assert.Equal(t, "**** **** **** 7766", h.AccountNumber)
	h, err = s.Update("AH-004", "Site Imprest", "Mashreq Bank", "55554444")
	require.NoError(t, err)
	assert.Equal(t, "**** **** **** 4444", h.AccountNumber)

	_, err = s.Delete("AH-004")
	require.NoError(t, err)
	_, err = s.Approve("AH-004")
	assert.ErrorIs(t, err, ErrNotFound)
}

func newTestRouter(t *testing.T, userID int64) (http.Handler, *activity.Feed) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := users.NewDirectory(rbac.NewRegistry(nil, logger, nil), users.SeedUsers(""))
	profile, ok := dir.ProfileByID(userID)
	require.True(t, ok)
	feed := activity.NewFeed(10, nil, logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := users.ContextWithProfile(req.Context(), profile)
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithGate(ctx, profile.Gate())))
		})
	})
	NewHandler(logger, NewStore(SeedAccountHeads()), feed, rbac.Middleware{Logger: logger}).MountRoutes(r)
	return r, feed
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

func TestFinanceUserCannotManageHeads(t *testing.T) {
	h, _ := newTestRouter(t, 4)
	assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/accounts", "").Code)
	assert.Equal(t, http.StatusForbidden, send(h, http.MethodPost, "/accounts/AH-003/approve", "").Code)
	assert.Equal(t, http.StatusForbidden, send(h, http.MethodPost, "/accounts", `{"name":"A","bankName":"B","accountNumber":"12345"}`).Code)
	assert.Equal(t, http.StatusForbidden, send(h, http.MethodDelete, "/accounts/AH-001", "").Code)
}

func TestAdminCreatesAndApproves(t *testing.T) {
	h, feed := newTestRouter(t, 1)

	res := send(h, http.MethodPost, "/accounts", `{"name":"Retention","bankName":"ADCB","accountNumber":"9876543210"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Contains(t, res.Body.String(), `"accountNumber":"**** **** **** 3210"`)
	assert.Contains(t, res.Body.String(), `"status":"Pending Approval"`)

	res = send(h, http.MethodPost, "/accounts/AH-004/approve", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, http.StatusConflict, send(h, http.MethodPost, "/accounts/AH-004/approve", "").Code)
	assert.Equal(t, "approved account head", feed.Recent(1)[0].Action)

	res = send(h, http.MethodPost, "/accounts", `{"name":"Bad","bankName":"ADCB","accountNumber":"ab-cd"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "accountNumber")

	assert.Equal(t, http.StatusNoContent, send(h, http.MethodDelete, "/accounts/AH-004", "").Code)
	assert.Equal(t, http.StatusNotFound, send(h, http.MethodGet, "/accounts/AH-004", "").Code)
}
