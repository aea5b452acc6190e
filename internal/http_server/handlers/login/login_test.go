package login_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blog_service/internal/auth"
	"blog_service/internal/http_server/handlers/login"
	"blog_service/internal/models"
	"blog_service/internal/session"
	"blog_service/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	nextID int64
	users  map[int64]models.User
}

func (s *fakeStore) SaveUser(_ context.Context, email, username string, passHash []byte) (int64, error) {
	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return 0, storage.ErrUserExists
		}
	}

	s.nextID++
	s.users[s.nextID] = models.User{
		ID:        s.nextID,
		Email:     email,
		Username:  username,
		PassHash:  passHash,
		ImageFile: models.DefaultImageFile,
	}

	return s.nextID, nil
}

func (s *fakeStore) UpdateUser(_ context.Context, user models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrUserNotFound
	}

	s.users[user.ID] = user

	return nil
}

func (s *fakeStore) UserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *fakeStore) UserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

type nopPublisher struct{}

func (nopPublisher) SendMessage(context.Context, models.Message) error { return nil }

func newHandler(t *testing.T) (http.HandlerFunc, *session.Manager) {
	t.Helper()

	store := &fakeStore{users: make(map[int64]models.User)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	authService := auth.New(log, store, store, nopPublisher{}, "secret", 30*time.Minute, 4)
	sessions := session.New(log, store, "secret", time.Hour, 720*time.Hour)

	_, err := authService.Register(context.Background(), "alice@example.com", "alice", "hunter22")
	require.NoError(t, err)

	return login.New(log, validator.New(), sessions, authService), sessions
}

func postLogin(handler http.HandlerFunc, body map[string]any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)

	return rec
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	handler, sessions := newHandler(t)

	rec := postLogin(handler, map[string]any{
		"email":    "alice@example.com",
		"password": "hunter22",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1, "a session cookie must be set")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	user, err := sessions.CurrentUser(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestLogin_RedirectsToNext(t *testing.T) {
	t.Parallel()

	handler, _ := newHandler(t)

	rec := postLogin(handler, map[string]any{
		"email":    "alice@example.com",
		"password": "hunter22",
		"next":     "/account",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp login.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/account", resp.Redirect)
}

func TestLogin_IgnoresForeignNext(t *testing.T) {
	t.Parallel()

	handler, _ := newHandler(t)

	rec := postLogin(handler, map[string]any{
		"email":    "alice@example.com",
		"password": "hunter22",
		"next":     "https://evil.example.com/",
	})

	var resp login.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/", resp.Redirect)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	handler, _ := newHandler(t)

	rec := postLogin(handler, map[string]any{
		"email":    "alice@example.com",
		"password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "no session may be established")
}

func TestLogin_UnknownEmailSameOutcome(t *testing.T) {
	t.Parallel()

	handler, _ := newHandler(t)

	wrongPass := postLogin(handler, map[string]any{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	unknown := postLogin(handler, map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever",
	})

	assert.Equal(t, wrongPass.Code, unknown.Code)
	assert.JSONEq(t, wrongPass.Body.String(), unknown.Body.String(),
		"the response must not reveal whether the email exists")
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()

	handler, _ := newHandler(t)

	rec := postLogin(handler, map[string]any{"email": "alice@example.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
