package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenRepository defines the interface for auth token storage
type TokenRepository interface {
	SaveToken(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	UserToken(ctx context.Context, userID uuid.UUID) (string, error)
	UserIDForToken(ctx context.Context, token string) (uuid.UUID, error)
	DeleteUserToken(ctx context.Context, userID uuid.UUID) error
}

// RedisTokenRepository stores auth tokens in Redis.
// Each user has at most one live token: a lookup record keyed by the
// token hash and a reverse record keyed by the user ID.
type RedisTokenRepository struct {
	client *redis.Client
}

func NewRedisTokenRepository(client *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{client: client}
}

// tokenKey generates the Redis key for a token lookup record
func tokenKey(tokenHash string) string {
	return fmt.Sprintf("auth_token:%s", tokenHash)
}

// userTokenKey generates the Redis key for a user's current token
func userTokenKey(userID uuid.UUID) string {
	return fmt.Sprintf("user_token:%s", userID.String())
}

// SaveToken stores the token for a user. A ttl of zero stores the token
// without expiry.
func (r *RedisTokenRepository) SaveToken(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	pipe := r.client.Pipeline()
	pipe.Set(ctx, tokenKey(hashToken(token)), userID.String(), ttl)
	pipe.Set(ctx, userTokenKey(userID), token, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save auth token: %w", err)
	}

	return nil
}

// UserToken returns the user's current token, or ErrTokenNotFound
func (r *RedisTokenRepository) UserToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := r.client.Get(ctx, userTokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user token: %w", err)
	}

	return token, nil
}

// UserIDForToken resolves a presented token to the owning user,
// or ErrTokenNotFound if the token is unknown or expired
func (r *RedisTokenRepository) UserIDForToken(ctx context.Context, token string) (uuid.UUID, error) {
	value, err := r.client.Get(ctx, tokenKey(hashToken(token))).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up token: %w", err)
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse user ID in token record: %w", err)
	}

	return userID, nil
}

// DeleteUserToken removes a user's token and its lookup record
func (r *RedisTokenRepository) DeleteUserToken(ctx context.Context, userID uuid.UUID) error {
	token, err := r.UserToken(ctx, userID)
	if errors.Is(err, ErrTokenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, tokenKey(hashToken(token)))
	pipe.Del(ctx, userTokenKey(userID))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete auth token: %w", err)
	}

	return nil
}
