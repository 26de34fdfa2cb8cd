package user

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 5 characters")
	ErrNameRequired       = errors.New("name is required")
)

const minPasswordLen = 5

// Argon2id parameters - tuned for security vs performance balance
// Time: 3, Memory: 64MB, Threads: 4, KeyLen: 32 bytes
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// ProfileUpdate holds a profile update request. Nil fields were not
// supplied by the client.
type ProfileUpdate struct {
	Name     *string
	Password *string
}

// Service handles user business logic
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NormalizeEmail lower-cases the domain portion of an email address.
// The local part is preserved exactly. Applying it twice is a no-op.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// Register creates a new user account
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, error) {
	return s.createUser(ctx, email, password, name, false, false)
}

// CreateSuperuser creates a user with the staff and superuser flags set
func (s *Service) CreateSuperuser(ctx context.Context, email, password, name string) (*User, error) {
	return s.createUser(ctx, email, password, name, true, true)
}

func (s *Service) createUser(ctx context.Context, email, password, name string, isStaff, isSuperuser bool) (*User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(email) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if name == "" {
		return nil, ErrNameRequired
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Normalization happens exactly once, here. The stored value is
	// never re-normalized on later operations.
	newUser, err := s.repo.Create(ctx, NormalizeEmail(email), name, passwordHash, isStaff, isSuperuser)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Authenticate verifies the credentials and returns the matching user
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.verifyPassword(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return existingUser, nil
}

// GetProfile returns the user with the given ID
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile updates the caller's own profile. Email is read-only.
// When partial is false the name must be supplied; the password is
// optional on both full and partial updates.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate, partial bool) (*User, error) {
	if !partial && update.Name == nil {
		return nil, ErrNameRequired
	}
	if update.Name != nil && *update.Name == "" {
		return nil, ErrNameRequired
	}

	changes := ProfileChanges{Name: update.Name}

	if update.Password != nil {
		if *update.Password == "" {
			return nil, ErrPasswordRequired
		}
		if len(*update.Password) < minPasswordLen {
			return nil, ErrPasswordTooShort
		}

		passwordHash, err := s.hashPassword(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		changes.PasswordHash = &passwordHash
	}

	return s.repo.UpdateProfile(ctx, userID, changes)
}

// hashPassword creates an argon2id hash of the password
func (s *Service) hashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)

	// Encode as: $argon2id$v=19$m=65536,t=3,p=4$salt$hash
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		encodedSalt,
		encodedHash,
	), nil
}

// verifyPassword checks if a password matches the stored hash
func (s *Service) verifyPassword(encodedHash, password string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	var version int
	var memory, time uint32
	var threads uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads)
	if err != nil {
		return false
	}
	_, err = fmt.Sscanf(parts[2], "v=%d", &version)
	if err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	inputHash := argon2.IDKey(
		[]byte(password),
		salt,
		time,
		memory,
		threads,
		uint32(len(decodedHash)),
	)

	return subtle.ConstantTimeCompare(decodedHash, inputHash) == 1
}
