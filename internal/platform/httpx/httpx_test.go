package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdeel/pulse/internal/platform/httpx"
)

type payload struct {
	Name   string  `json:"name" validate:"required"`
	Email  string  `json:"email" validate:"omitempty,email"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

func TestBindRejectsMalformedJSON(t *testing.T) {
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))

	var p payload
	require.False(t, httpx.Bind(res, req, &p))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
}

func TestBindReportsFieldErrors(t *testing.T) {
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","amount":0}`))

	var p payload
	require.False(t, httpx.Bind(res, req, &p))
	require.Equal(t, http.StatusBadRequest, res.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "is required", body.Errors["name"])
	assert.Equal(t, "must be a valid email address", body.Errors["email"])
	assert.Equal(t, "must be greater than 0", body.Errors["amount"])
}

func TestBindAcceptsValidBody(t *testing.T) {
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Semeem","amount":12.5}`))

	var p payload
	require.True(t, httpx.Bind(res, req, &p))
	assert.Equal(t, "Semeem", p.Name)
	assert.Equal(t, 12.5, p.Amount)
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"fields", fmt.Errorf("wrap: %w", httpx.FieldErrors{"title": "is required"}), http.StatusBadRequest},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := httptest.NewRecorder()
			httpx.RespondError(res, tc.err)
			assert.Equal(t, tc.status, res.Code)
			assert.NotContains(t, res.Body.String(), "boom")
		})
	}
}

func TestJSONDisablesCaching(t *testing.T) {
	res := httptest.NewRecorder()
	httpx.JSON(res, http.StatusCreated, map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, "application/json", res.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", res.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"id":7}`, res.Body.String())
}
