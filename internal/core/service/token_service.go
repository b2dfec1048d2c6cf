package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pawmart/support-system/internal/core/domain"
)

// TokenService issues and verifies the two JWT kinds. Access and refresh
// tokens are signed with distinct secrets so a leak of one does not
// compromise the other, and the short access TTL bounds the exposure window
// of a stolen bearer token.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RefreshTTL exposes the refresh-token lifetime so the auth service can set
// the matching row expiry in the store.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssueAccessToken signs a short-lived access token for the user.
func (s *TokenService) IssueAccessToken(user *domain.User) (string, error) {
	return s.sign(user, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken signs a day-scale refresh token for the user.
func (s *TokenService) IssueRefreshToken(user *domain.User) (string, error) {
	return s.sign(user, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) sign(user *domain.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken decodes an access token into its principal. It returns
// domain.ErrInvalidToken for any signature, expiry or shape problem; it
// never panics.
func (s *TokenService) VerifyAccessToken(token string) (*domain.Principal, error) {
	return s.verify(token, s.accessSecret)
}

// VerifyRefreshToken decodes a refresh token into its principal.
func (s *TokenService) VerifyRefreshToken(token string) (*domain.Principal, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) verify(token string, secret []byte) (*domain.Principal, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	if sub == "" {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Principal{UserID: sub, Username: username}, nil
}
