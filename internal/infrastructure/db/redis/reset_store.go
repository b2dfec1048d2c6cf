package redis

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetCodeStore keeps one-time password-reset codes in Redis. The key TTL
// enforces code expiry, and SET on an existing key replaces the prior code,
// so at most one code is ever active per user.
// Key format: pwreset:<user_id>
type ResetCodeStore struct {
	client *redis.Client
}

// NewResetCodeStore creates a ResetCodeStore wrapping the given Redis client.
func NewResetCodeStore(client *redis.Client) *ResetCodeStore {
	return &ResetCodeStore{client: client}
}

// StoreResetCode saves the code for the user, replacing any prior one.
func (s *ResetCodeStore) StoreResetCode(ctx context.Context, userID, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(userID), code, ttl).Err(); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}
	return nil
}

// VerifyResetCode reports whether the given code matches the stored,
// unexpired one for the user. An expired key simply no longer exists.
func (s *ResetCodeStore) VerifyResetCode(ctx context.Context, userID, code string) (bool, error) {
	stored, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify reset code: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1, nil
}

// DeleteResetCode removes the user's code. Deleting an absent code is a no-op.
func (s *ResetCodeStore) DeleteResetCode(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete reset code: %w", err)
	}
	return nil
}

func (s *ResetCodeStore) key(userID string) string {
	return fmt.Sprintf("pwreset:%s", userID)
}
