package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/foliohq/folio-server/internal/errors"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestUnauthorized(t *testing.T) {
	w := httptest.NewRecorder()

	Unauthorized(w, "missing bearer token", discard())

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	env := decode(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	assert.Equal(t, "missing bearer token", env.Error.Message)
}

func TestTooManyRequests_SetsRetryAfter(t *testing.T) {
	w := httptest.NewRecorder()

	TooManyRequests(w, "3", discard())

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decode(t, w).Error.Code)
}

func TestHandleError_DomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"forbidden", domainerrors.Forbidden("you do not own this book"), http.StatusForbidden, "FORBIDDEN"},
		{"not found", domainerrors.NotFound("book not found"), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate", domainerrors.DuplicateReview("book-1"), http.StatusConflict, "DUPLICATE_REVIEW"},
		{"store", domainerrors.StoreUnavailable("get book", errors.New("disk full")), http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, discard())

			assert.Equal(t, tt.status, w.Code)
			env := decode(t, w)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotContains(t, w.Body.String(), "disk full")
		})
	}
}

func TestHandleError_UnknownIs500(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("secret internals"), discard())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret internals")
	assert.Equal(t, "INTERNAL", decode(t, w).Error.Code)
}

func TestNilLoggerIsTolerated(t *testing.T) {
	w := httptest.NewRecorder()
	assert.NotPanics(t, func() { NotFound(w, "nope", nil) })
	assert.NotPanics(t, func() { MethodNotAllowed(httptest.NewRecorder(), nil) })
}
