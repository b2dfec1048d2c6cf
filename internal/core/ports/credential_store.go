package ports

import (
	"context"
	"time"

	"github.com/pawmart/support-system/internal/core/domain"
)

// CredentialStore defines the persistence interface for users and refresh
// tokens. Implementations distinguish "not found" (domain sentinels) from
// storage failures (wrapped errors).
type CredentialStore interface {
	// GetUser looks an account up by username or email.
	GetUser(ctx context.Context, usernameOrEmail string) (*domain.User, error)
	// AddUser persists a new account. Returns domain.ErrUserExists when the
	// username is already taken (store-level uniqueness is the final arbiter).
	AddUser(ctx context.Context, username, email, passwordHash string) (*domain.User, error)
	// UpdateUserPasswordByID replaces the stored password hash.
	UpdateUserPasswordByID(ctx context.Context, userID, passwordHash string) error

	// TokenExists reports whether a live (non-expired) refresh token row exists.
	TokenExists(ctx context.Context, token string) (bool, error)
	// AddRefreshToken binds a refresh token to a user with an expiry.
	AddRefreshToken(ctx context.Context, token, userID string, expiresAt time.Time) error
	// RemoveRefreshToken deletes a single token row. Removing an absent token
	// is not an error.
	RemoveRefreshToken(ctx context.Context, token string) error
	// RemoveAllUserRefreshTokens revokes every session for a user.
	RemoveAllUserRefreshTokens(ctx context.Context, userID string) error
	// RemoveExpiredRefreshTokens prunes rows past their expiry, returning the
	// number deleted.
	RemoveExpiredRefreshTokens(ctx context.Context) (int64, error)
}

// ResetCodeStore persists one-time password-reset codes. At most one code is
// active per user; storing a new one replaces the previous.
type ResetCodeStore interface {
	StoreResetCode(ctx context.Context, userID, code string, ttl time.Duration) error
	// VerifyResetCode reports whether the code matches the stored, unexpired
	// one for the user.
	VerifyResetCode(ctx context.Context, userID, code string) (bool, error)
	DeleteResetCode(ctx context.Context, userID string) error
}
