package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pawmart/support-system/internal/core/domain"
)

const (
	usersCollection  = "users"
	tokensCollection = "refresh_tokens"
)

// CredentialRepository implements ports.CredentialStore on MongoDB.
type CredentialRepository struct {
	users  *mongo.Collection
	tokens *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{
		users:  db.Collection(usersCollection),
		tokens: db.Collection(tokensCollection),
	}
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email,omitempty"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

type tokenDoc struct {
	Token     string `bson:"token"`
	UserID    string `bson:"user_id"`
	ExpiresAt int64  `bson:"expires_at"`
	CreatedAt int64  `bson:"created_at"`
}

func (r *CredentialRepository) GetUser(ctx context.Context, usernameOrEmail string) (*domain.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": usernameOrEmail},
		bson.M{"email": usernameOrEmail},
	}}

	var doc userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CredentialRepository) AddUser(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	now := time.Now().UTC()
	doc := userDoc{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now.Unix(),
		UpdatedAt:    now.Unix(),
	}

	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	doc.ID = id
	return doc.toDomain(), nil
}

func (r *CredentialRepository) UpdateUserPasswordByID(ctx context.Context, userID, passwordHash string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC().Unix()}},
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *CredentialRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	filter := bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC().Unix()},
	}
	n, err := r.tokens.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("count tokens: %w", err)
	}
	return n > 0, nil
}

func (r *CredentialRepository) AddRefreshToken(ctx context.Context, token, userID string, expiresAt time.Time) error {
	doc := tokenDoc{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC().Unix(),
		CreatedAt: time.Now().UTC().Unix(),
	}
	if _, err := r.tokens.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *CredentialRepository) RemoveRefreshToken(ctx context.Context, token string) error {
	// Deleting an absent token is a no-op, keeping logout idempotent.
	if _, err := r.tokens.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (r *CredentialRepository) RemoveAllUserRefreshTokens(ctx context.Context, userID string) error {
	if _, err := r.tokens.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete user refresh tokens: %w", err)
	}
	return nil
}

func (r *CredentialRepository) RemoveExpiredRefreshTokens(ctx context.Context) (int64, error) {
	res, err := r.tokens.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now().UTC().Unix()}})
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return res.DeletedCount, nil
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    unixToTime(d.CreatedAt),
		UpdatedAt:    unixToTime(d.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
