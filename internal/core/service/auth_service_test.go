package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawmart/support-system/internal/core/domain"
)

type stubCredentialStore struct {
	users  map[string]*domain.User
	tokens map[string]domain.RefreshToken

	removeTokenErr error
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{
		users:  make(map[string]*domain.User),
		tokens: make(map[string]domain.RefreshToken),
	}
}

func (s *stubCredentialStore) GetUser(_ context.Context, usernameOrEmail string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Username == usernameOrEmail || (u.Email != "" && u.Email == usernameOrEmail) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubCredentialStore) AddUser(_ context.Context, username, email, passwordHash string) (*domain.User, error) {
	if _, exists := s.users[username]; exists {
		return nil, domain.ErrUserExists
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           username + "-id",
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[username] = user
	clone := *user
	return &clone, nil
}

func (s *stubCredentialStore) UpdateUserPasswordByID(_ context.Context, userID, passwordHash string) error {
	for _, u := range s.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (s *stubCredentialStore) TokenExists(_ context.Context, token string) (bool, error) {
	row, ok := s.tokens[token]
	if !ok || time.Now().After(row.ExpiresAt) {
		return false, nil
	}
	return true, nil
}

func (s *stubCredentialStore) AddRefreshToken(_ context.Context, token, userID string, expiresAt time.Time) error {
	s.tokens[token] = domain.RefreshToken{Token: token, UserID: userID, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	return nil
}

func (s *stubCredentialStore) RemoveRefreshToken(_ context.Context, token string) error {
	if s.removeTokenErr != nil {
		return s.removeTokenErr
	}
	delete(s.tokens, token)
	return nil
}

func (s *stubCredentialStore) RemoveAllUserRefreshTokens(_ context.Context, userID string) error {
	for token, row := range s.tokens {
		if row.UserID == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}

func (s *stubCredentialStore) RemoveExpiredRefreshTokens(_ context.Context) (int64, error) {
	var removed int64
	for token, row := range s.tokens {
		if time.Now().After(row.ExpiresAt) {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed, nil
}

type stubResetStore struct {
	codes map[string]string
}

func newStubResetStore() *stubResetStore {
	return &stubResetStore{codes: make(map[string]string)}
}

func (s *stubResetStore) StoreResetCode(_ context.Context, userID, code string, _ time.Duration) error {
	s.codes[userID] = code
	return nil
}

func (s *stubResetStore) VerifyResetCode(_ context.Context, userID, code string) (bool, error) {
	stored, ok := s.codes[userID]
	return ok && stored == code, nil
}

func (s *stubResetStore) DeleteResetCode(_ context.Context, userID string) error {
	delete(s.codes, userID)
	return nil
}

func newTestAuthService(store *stubCredentialStore, resets *stubResetStore) *AuthService {
	tokens := NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return NewAuthService(store, resets, tokens, bcrypt.MinCost, zerolog.Nop())
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	store := newStubCredentialStore()
	svc := newTestAuthService(store, newStubResetStore())
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice_1", "alice@example.com", "Sunny4you")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.PasswordHash == "Sunny4you" {
		t.Fatalf("expected password to be hashed")
	}

	pair, err := svc.Login(ctx, "alice_1", "Sunny4you")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", pair)
	}

	exists, err := store.TokenExists(ctx, pair.RefreshToken)
	if err != nil || !exists {
		t.Fatalf("expected refresh token persisted, exists=%v err=%v", exists, err)
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc := newTestAuthService(newStubCredentialStore(), newStubResetStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob_2", "", "Sunny4you"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Login(ctx, "bob_2", "Wrong4you"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	svc := newTestAuthService(newStubCredentialStore(), newStubResetStore())

	// Unknown user and wrong password are indistinguishable.
	if _, err := svc.Login(context.Background(), "ghost", "Whatever1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newTestAuthService(newStubCredentialStore(), newStubResetStore())
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"username too short", "ab", "Sunny4you"},
		{"username too long", "abcdefghijklmnopqrstu", "Sunny4you"},
		{"username bad charset", "alice!", "Sunny4you"},
		{"password too short", "alice", "Ab1"},
		{"password no digit", "alice", "Sunnyday"},
		{"password no upper", "alice", "sunny4you"},
		{"password weak substring", "alice", "Password123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, "", tc.password)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc := newTestAuthService(newStubCredentialStore(), newStubResetStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol_3", "", "Sunny4you"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "carol_3", "", "Other4you"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_RefreshHappyPath(t *testing.T) {
	svc := newTestAuthService(newStubCredentialStore(), newStubResetStore())
	ctx := context.Background()

	_, _ = svc.Register(ctx, "dave_4", "", "Sunny4you")
	pair, err := svc.Login(ctx, "dave_4", "Sunny4you")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	access, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if access == "" {
		t.Fatalf("expected fresh access token")
	}
}

func TestAuthService_RefreshUnknownToken(t *testing.T) {
	svc := newTestAuthService(newStubCredentialStore(), newStubResetStore())

	// A token absent from the store is rejected without signature work.
	if _, err := svc.Refresh(context.Background(), "never-issued"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_RefreshStaleTokenIsRemoved(t *testing.T) {
	store := newStubCredentialStore()
	svc := newTestAuthService(store, newStubResetStore())
	ctx := context.Background()

	// Present in the store but not a valid signed token.
	_ = store.AddRefreshToken(ctx, "stale-token", "user-1", time.Now().Add(time.Hour))

	if _, err := svc.Refresh(ctx, "stale-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, ok := store.tokens["stale-token"]; ok {
		t.Fatalf("expected stale token removed from store")
	}
}

func TestAuthService_RefreshCleanupFailureSurfaces(t *testing.T) {
	store := newStubCredentialStore()
	svc := newTestAuthService(store, newStubResetStore())
	ctx := context.Background()

	_ = store.AddRefreshToken(ctx, "stale-token", "user-1", time.Now().Add(time.Hour))
	store.removeTokenErr = errors.New("store offline")

	_, err := svc.Refresh(ctx, "stale-token")
	if err == nil || errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected store error distinct from ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_LogoutIsIdempotent(t *testing.T) {
	svc := newTestAuthService(newStubCredentialStore(), newStubResetStore())
	ctx := context.Background()

	_, _ = svc.Register(ctx, "erin_5", "", "Sunny4you")
	pair, _ := svc.Login(ctx, "erin_5", "Sunny4you")

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("first logout failed: %v", err)
	}
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
	if err := svc.Logout(ctx, "never-issued"); err != nil {
		t.Fatalf("logout of unknown token failed: %v", err)
	}
}

func TestAuthService_RequestPasswordReset(t *testing.T) {
	resets := newStubResetStore()
	svc := newTestAuthService(newStubCredentialStore(), resets)
	ctx := context.Background()

	// Unknown user: generic success, no code issued.
	code, err := svc.RequestPasswordReset(ctx, "ghost")
	if err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if code != "" {
		t.Fatalf("expected no code for unknown user, got %q", code)
	}

	_, _ = svc.Register(ctx, "frank_6", "", "Sunny4you")
	code, err = svc.RequestPasswordReset(ctx, "frank_6")
	if err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	// A new request replaces the prior code.
	second, err := svc.RequestPasswordReset(ctx, "frank_6")
	if err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if ok, _ := resets.VerifyResetCode(ctx, "frank_6-id", second); !ok {
		t.Fatalf("expected latest code to be stored")
	}
	if second != code {
		if ok, _ := resets.VerifyResetCode(ctx, "frank_6-id", code); ok {
			t.Fatalf("expected prior code to be invalidated")
		}
	}
}

func TestAuthService_ResetPassword(t *testing.T) {
	store := newStubCredentialStore()
	resets := newStubResetStore()
	svc := newTestAuthService(store, resets)
	ctx := context.Background()

	_, _ = svc.Register(ctx, "grace_7", "", "Sunny4you")
	pair, _ := svc.Login(ctx, "grace_7", "Sunny4you")
	code, _ := svc.RequestPasswordReset(ctx, "grace_7")

	if err := svc.ResetPassword(ctx, "ghost", code, "Rainy5day"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "grace_7", "000000", "Rainy5day"); !errors.Is(err, domain.ErrInvalidReset) && code != "000000" {
		t.Fatalf("expected ErrInvalidReset, got %v", err)
	}

	if err := svc.ResetPassword(ctx, "grace_7", code, "Rainy5day"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}

	// Old password no longer works, new one does.
	if _, err := svc.Login(ctx, "grace_7", "Sunny4you"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := svc.Login(ctx, "grace_7", "Rainy5day"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	// Every session issued before the reset is revoked.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected pre-reset refresh token revoked, got %v", err)
	}

	// The code is one-time.
	if err := svc.ResetPassword(ctx, "grace_7", code, "Windy6day"); !errors.Is(err, domain.ErrInvalidReset) {
		t.Fatalf("expected used code rejected, got %v", err)
	}
}

func TestAuthService_ResetPasswordValidatesPolicy(t *testing.T) {
	svc := newTestAuthService(newStubCredentialStore(), newStubResetStore())

	err := svc.ResetPassword(context.Background(), "whoever", "123456", "weak")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
