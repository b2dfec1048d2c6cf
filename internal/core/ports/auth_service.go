package ports

import (
	"context"

	"github.com/pawmart/support-system/internal/core/domain"
)

// AuthService orchestrates the credential lifecycle: registration, login,
// token refresh, logout and password reset.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	// Login returns domain.ErrInvalidCredentials for both unknown-user and
	// wrong-password; the two are deliberately indistinguishable.
	Login(ctx context.Context, username, password string) (*domain.TokenPair, error)
	// Refresh exchanges a stored refresh token for a fresh access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Logout revokes a refresh token. Idempotent.
	Logout(ctx context.Context, refreshToken string) error
	// RequestPasswordReset issues a one-time code when the user exists. The
	// returned code is for development responses only; callers must not
	// expose it in production. It never reveals whether the user exists.
	RequestPasswordReset(ctx context.Context, username string) (code string, err error)
	// ResetPassword sets a new password and revokes all outstanding refresh
	// tokens for the user.
	ResetPassword(ctx context.Context, username, code, newPassword string) error
}

// TokenVerifier is the synchronous request-gate used by the auth middleware.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*domain.Principal, error)
}
