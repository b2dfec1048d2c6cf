package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pawmart/support-system/internal/core/domain"
)

func newTestTokenService() *TokenService {
	return NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestTokenService_AccessTokenRoundtrip(t *testing.T) {
	svc := newTestTokenService()
	user := &domain.User{ID: "user-1", Username: "alice"}

	token, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected signed token, got empty string")
	}

	principal, err := svc.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken returned error: %v", err)
	}
	if principal.UserID != "user-1" || principal.Username != "alice" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestTokenService_SecretsAreSeparate(t *testing.T) {
	svc := newTestTokenService()
	user := &domain.User{ID: "user-1", Username: "alice"}

	refresh, err := svc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("IssueRefreshToken returned error: %v", err)
	}

	// A refresh token must not verify as an access token, and vice versa.
	if _, err := svc.VerifyAccessToken(refresh); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	access, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}
	if _, err := svc.VerifyRefreshToken(access); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_VerifyGarbage(t *testing.T) {
	svc := newTestTokenService()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.VerifyAccessToken(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestTokenService_VerifyExpired(t *testing.T) {
	svc := newTestTokenService()

	claims := jwt.MapClaims{
		"sub":      "user-1",
		"username": "alice",
		"iat":      time.Now().Add(-time.Hour).Unix(),
		"exp":      time.Now().Add(-30 * time.Minute).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.VerifyAccessToken(expired); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenService_VerifyMissingSubject(t *testing.T) {
	svc := newTestTokenService()

	claims := jwt.MapClaims{
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.VerifyAccessToken(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for token without subject, got %v", err)
	}
}
