package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawmart/support-system/internal/core/domain"
	"github.com/pawmart/support-system/internal/core/ports"
)

const (
	resetCodeDigits = 6
	resetCodeTTL    = 15 * time.Minute
)

// AuthService implements the credential lifecycle over a CredentialStore and
// a ResetCodeStore. It holds no state beyond configuration; the stores are
// the single source of truth.
type AuthService struct {
	store      ports.CredentialStore
	resetStore ports.ResetCodeStore
	tokens     *TokenService
	bcryptCost int
	logger     zerolog.Logger
}

func NewAuthService(store ports.CredentialStore, resetStore ports.ResetCodeStore, tokens *TokenService, bcryptCost int, logger zerolog.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		store:      store,
		resetStore: resetStore,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a new account. Policy validation runs before the
// uniqueness lookup so invalid and taken usernames cannot be told apart by
// timing. The store's unique index is the final arbiter for races.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.store.GetUser(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Error().Err(err).Str("username", username).Msg("register: user lookup failed")
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("register: password hashing failed")
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user, err := s.store.AddUser(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		s.logger.Error().Err(err).Str("username", username).Msg("register: persist failed")
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Login authenticates a username/password pair. Unknown user and wrong
// password both yield ErrInvalidCredentials so callers cannot enumerate
// accounts; anything else is an internal failure, logged with its cause.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", username).Msg("login: user lookup failed")
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		// Malformed stored hash or similar: a real internal error, not a
		// credential problem.
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("login: password comparison failed")
		return nil, fmt.Errorf("login: compare password: %w", err)
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("login: access token issuance failed")
		return nil, fmt.Errorf("login: %w", err)
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("login: refresh token issuance failed")
		return nil, fmt.Errorf("login: %w", err)
	}

	expiresAt := time.Now().Add(s.tokens.RefreshTTL())
	if err := s.store.AddRefreshToken(ctx, refreshToken, user.ID, expiresAt); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("login: refresh token persist failed")
		return nil, fmt.Errorf("login: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user logged in")
	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh exchanges a refresh token for a new access token. The store
// lookup runs first so revoked or unknown tokens are rejected without any
// signature work. A token that is present but fails verification is stale:
// it is removed best-effort, and a failed removal is surfaced as a store
// error rather than swallowed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	exists, err := s.store.TokenExists(ctx, refreshToken)
	if err != nil {
		s.logger.Error().Err(err).Msg("refresh: token lookup failed")
		return "", fmt.Errorf("refresh: %w", err)
	}
	if !exists {
		return "", domain.ErrInvalidToken
	}

	principal, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		if removeErr := s.store.RemoveRefreshToken(ctx, refreshToken); removeErr != nil {
			s.logger.Error().Err(removeErr).Msg("refresh: failed to remove invalid token")
			return "", fmt.Errorf("refresh: remove invalid token: %w", removeErr)
		}
		return "", domain.ErrInvalidToken
	}

	accessToken, err := s.tokens.IssueAccessToken(&domain.User{ID: principal.UserID, Username: principal.Username})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.UserID).Msg("refresh: access token issuance failed")
		return "", fmt.Errorf("refresh: %w", err)
	}
	return accessToken, nil
}

// Logout revokes a refresh token. Logging out a token twice, or one that
// never existed, is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.store.RemoveRefreshToken(ctx, refreshToken); err != nil {
		s.logger.Error().Err(err).Msg("logout: token removal failed")
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// RequestPasswordReset issues a one-time 6-digit code with a short TTL.
// It reports success whether or not the user exists; only internal store
// failures surface as errors. The returned code is non-empty only when a
// code was actually issued, and is meant for development responses.
func (s *AuthService) RequestPasswordReset(ctx context.Context, username string) (string, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Generic success shape: do not reveal that the user is unknown.
			return "", nil
		}
		s.logger.Error().Err(err).Str("username", username).Msg("password reset request: user lookup failed")
		return "", fmt.Errorf("request password reset: %w", err)
	}

	// A new request replaces any prior code for the user.
	if err := s.resetStore.DeleteResetCode(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("password reset request: stale code cleanup failed")
		return "", fmt.Errorf("request password reset: %w", err)
	}

	code, err := generateResetCode()
	if err != nil {
		s.logger.Error().Err(err).Msg("password reset request: code generation failed")
		return "", fmt.Errorf("request password reset: %w", err)
	}

	if err := s.resetStore.StoreResetCode(ctx, user.ID, code, resetCodeTTL); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("password reset request: code persist failed")
		return "", fmt.Errorf("request password reset: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset code issued")
	return code, nil
}

// ResetPassword validates the one-time code, replaces the password hash and
// revokes every outstanding refresh token for the user, forcing re-login on
// all devices.
func (s *AuthService) ResetPassword(ctx context.Context, username, code, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("username", username).Msg("password reset: user lookup failed")
		return fmt.Errorf("reset password: %w", err)
	}

	valid, err := s.resetStore.VerifyResetCode(ctx, user.ID, code)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("password reset: code verification failed")
		return fmt.Errorf("reset password: %w", err)
	}
	if !valid {
		return domain.ErrInvalidReset
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("password reset: hashing failed")
		return fmt.Errorf("reset password: hash password: %w", err)
	}

	if err := s.store.UpdateUserPasswordByID(ctx, user.ID, string(hash)); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("password reset: persist failed")
		return fmt.Errorf("reset password: %w", err)
	}

	// Invariant: a password reset invalidates every existing session.
	if err := s.store.RemoveAllUserRefreshTokens(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("password reset: session revocation failed")
		return fmt.Errorf("reset password: revoke sessions: %w", err)
	}

	if err := s.resetStore.DeleteResetCode(ctx, user.ID); err != nil {
		// The code has a short TTL; failing to delete it early is not fatal.
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("password reset: code cleanup failed")
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset completed, all sessions revoked")
	return nil
}

// generateResetCode returns a fixed-length numeric one-time code.
func generateResetCode() (string, error) {
	upper := big.NewInt(1)
	for i := 0; i < resetCodeDigits; i++ {
		upper.Mul(upper, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}
