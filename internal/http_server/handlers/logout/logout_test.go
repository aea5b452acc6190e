package logout_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blog_service/internal/http_server/handlers/logout"
	"blog_service/internal/models"
	"blog_service/internal/session"
	"blog_service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct{}

func (fakeUsers) UserByID(context.Context, int64) (models.User, error) {
	return models.User{}, storage.ErrUserNotFound
}

func TestLogout_ClearsCookie(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.New(log, fakeUsers{}, "secret", time.Hour, 720*time.Hour)
	handler := logout.New(log, sessions)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestLogout_WithoutSessionStillSucceeds(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.New(log, fakeUsers{}, "secret", time.Hour, 720*time.Hour)
	handler := logout.New(log, sessions)

	// no cookie on the request at all
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// and a second time, still fine
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
