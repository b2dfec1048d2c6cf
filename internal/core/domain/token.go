package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInvalidReset = errors.New("invalid or expired reset code")
)

// TokenPair is what a successful login returns: a short-lived access token
// and a longer-lived refresh token, both signed with distinct secrets.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken is the persisted session record backing a refresh token.
// A user may hold several live tokens at once (one per device).
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Principal is the identity decoded from a verified access token.
type Principal struct {
	UserID   string
	Username string
}
