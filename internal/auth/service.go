package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenNotFound = errors.New("token not found")
)

// Service issues and verifies opaque bearer tokens.
// A user has exactly one live token; logging in again returns the
// existing one and refreshes its expiry.
type Service struct {
	repo          TokenRepository
	tokenDuration time.Duration
}

func NewService(repo TokenRepository, tokenDuration time.Duration) *Service {
	return &Service{
		repo:          repo,
		tokenDuration: tokenDuration,
	}
}

// IssueToken returns the user's auth token, creating one if none exists.
// The token's expiry is refreshed on every issue.
func (s *Service) IssueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.repo.UserToken(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrTokenNotFound) {
			return "", fmt.Errorf("failed to look up existing token: %w", err)
		}

		token, err = generateRandomToken()
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}
	}

	if err := s.repo.SaveToken(ctx, userID, token, s.tokenDuration); err != nil {
		return "", err
	}

	return token, nil
}

// VerifyToken resolves a presented token to the owning user's ID
func (s *Service) VerifyToken(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := s.repo.UserIDForToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return uuid.Nil, ErrInvalidToken
		}
		return uuid.Nil, err
	}

	return userID, nil
}

// RevokeToken invalidates the user's current token, if any
func (s *Service) RevokeToken(ctx context.Context, userID uuid.UUID) error {
	return s.repo.DeleteUserToken(ctx, userID)
}

// generateRandomToken creates a cryptographically secure random token
func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// hashToken returns the hex-encoded SHA-256 digest used as the storage key
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
