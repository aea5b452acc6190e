package reset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blog_service/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every possible verification failure: a bad
// signature, an undecodable payload, a foreign purpose claim and plain
// expiry all collapse into it. Callers must not be able to tell an
// expired token from a forged one.
var ErrInvalidToken = errors.New("invalid or expired token")

const tokenPurpose = "password_reset"

// DefaultTokenTTL is how long a reset token stays valid unless the
// configuration overrides it.
const DefaultTokenTTL = 30 * time.Minute

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

// SendResetEmail issues a reset token for userID and hands the mail
// queue a message with the confirmation link. Delivery is fire and
// forget, a publish failure is logged but not surfaced.
func SendResetEmail(
	ctx context.Context,
	log *slog.Logger,
	pub Publisher,
	tokenTTL time.Duration,
	tokenSecret string,
	userID int64,
	baseURL, email string,
) error {
	token, err := NewToken(userID, tokenTTL, tokenSecret)
	if err != nil {
		log.Error("failed to generate token", slog.Any("err", err))

		return err
	}

	resetLink := fmt.Sprintf("%s/reset_password?token=%s", baseURL, token)

	msg := models.Message{
		Email:   email,
		Link:    resetLink,
		Subject: "Password Reset Request",
	}

	if err := pub.SendMessage(ctx, msg); err != nil {
		log.Error("failed to send reset link", slog.Any("err", err))
	}

	return nil
}

// ParseToken checks the signature, purpose and expiry of a reset token
// and returns the user id it was issued for.
func ParseToken(tokenStr, secret string) (int64, error) {
	claims := jwt.MapClaims{}

	parsedToken, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, ErrInvalidToken
	}

	if !parsedToken.Valid {
		return 0, ErrInvalidToken
	}

	if purpose, ok := claims["purpose"].(string); !ok || purpose != tokenPurpose {
		return 0, ErrInvalidToken
	}

	if expFloat, ok := claims["exp"].(float64); ok {
		if time.Now().Unix() > int64(expFloat) {
			return 0, ErrInvalidToken
		}
	} else {
		return 0, ErrInvalidToken
	}

	subFloat, ok := claims["sub"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	return int64(subFloat), nil
}

// NewToken produces a self-contained signed token embedding the user id
// and an expiry. Nothing is stored server side and nothing is revoked:
// a token stays valid until its expiry regardless of what happens to
// the account in between.
func NewToken(userID int64, tokenTTL time.Duration, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":     userID,
		"purpose": tokenPurpose,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}
