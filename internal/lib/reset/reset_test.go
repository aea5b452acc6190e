package reset

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewTokenAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := "super-secret"
	userID := int64(42)

	tok, err := NewToken(userID, time.Hour, secret)
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	gotUserID, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if gotUserID != userID {
		t.Fatalf("userID mismatch: got %d want %d", gotUserID, userID)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := NewToken(1, -1*time.Second, "secret")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	_, err = ParseToken(tok, "secret")
	if err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseToken_ExpiresAfterDelay(t *testing.T) {
	t.Parallel()

	tok, err := NewToken(7, 1*time.Second, "secret")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	if _, err := ParseToken(tok, "secret"); err != nil {
		t.Fatalf("fresh token must verify, got %v", err)
	}

	time.Sleep(2 * time.Second)

	_, err = ParseToken(tok, "secret")
	if err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewToken(2, time.Hour, "right-secret")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	_, err = ParseToken(tok, "wrong-secret")
	if err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", "k")
	if err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestParseToken_WrongPurpose(t *testing.T) {
	t.Parallel()

	claims := jwt.MapClaims{
		"sub":     int64(3),
		"purpose": "session",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	_, err = ParseToken(tok, "secret")
	if err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for foreign purpose, got %v", err)
	}
}
