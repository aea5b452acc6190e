package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sl "blog_service/internal/lib/logger"
	"blog_service/internal/models"
	"blog_service/internal/storage"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned whenever the caller cannot be resolved to an
// identity: no cookie, a malformed or expired proof, or an account that
// was deleted after the proof was issued.
var ErrNoSession = errors.New("no active session")

const (
	cookieName   = "session"
	proofPurpose = "session"
)

type UserProvider interface {
	UserByID(ctx context.Context, id int64) (models.User, error)
}

// Manager issues and resolves session proofs. The proof is a signed
// cookie holding the user id and an expiry, nothing is stored server
// side.
type Manager struct {
	log         *slog.Logger
	users       UserProvider
	secret      string
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

func New(
	log *slog.Logger,
	users UserProvider,
	secret string,
	sessionTTL, rememberTTL time.Duration,
) *Manager {
	return &Manager{
		log:         log,
		users:       users,
		secret:      secret,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
	}
}

// Login establishes a session proof for userID. With remember the
// cookie carries a Max-Age and survives client restarts, otherwise it
// is a browser-session cookie.
func (m *Manager) Login(w http.ResponseWriter, userID int64, remember bool) error {
	const op = "session.Login"

	ttl := m.sessionTTL
	if remember {
		ttl = m.rememberTTL
	}

	claims := jwt.MapClaims{
		"sub":     userID,
		"purpose": proofPurpose,
		"exp":     time.Now().Add(ttl).Unix(),
	}

	proof, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
	if err != nil {
		m.log.Error("failed to sign session proof", sl.Err(err))
		return err
	}

	cookie := &http.Cookie{
		Name:     cookieName,
		Value:    proof,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = int(ttl.Seconds())
	}

	http.SetCookie(w, cookie)

	return nil
}

// Logout destroys the session proof unconditionally. Calling it with no
// session established is a no-op.
func (m *Manager) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// CurrentUser resolves the request's session proof to an identity.
func (m *Manager) CurrentUser(ctx context.Context, r *http.Request) (models.User, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return models.User{}, ErrNoSession
	}

	userID, err := parseProof(cookie.Value, m.secret)
	if err != nil {
		return models.User{}, ErrNoSession
	}

	user, err := m.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrNoSession
		}

		return models.User{}, err
	}

	return user, nil
}

func parseProof(proof, secret string) (int64, error) {
	claims := jwt.MapClaims{}

	parsed, err := jwt.ParseWithClaims(proof, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrNoSession
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrNoSession
	}

	if purpose, ok := claims["purpose"].(string); !ok || purpose != proofPurpose {
		return 0, ErrNoSession
	}

	subFloat, ok := claims["sub"].(float64)
	if !ok {
		return 0, ErrNoSession
	}

	return int64(subFloat), nil
}
