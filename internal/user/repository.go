package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"recipe-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// ProfileChanges holds the fields a profile update may touch.
// Nil fields are left unchanged.
type ProfileChanges struct {
	Name         *string
	PasswordHash *string
}

// Repository defines the interface for user persistence
type Repository interface {
	Create(ctx context.Context, email, name, passwordHash string, isStaff, isSuperuser bool) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, changes ProfileChanges) (*User, error)
}

// PostgresRepository handles user data persistence in Postgres
type PostgresRepository struct {
	db *bun.DB
}

func NewPostgresRepository(db *bun.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user into the database
func (r *PostgresRepository) Create(ctx context.Context, email, name, passwordHash string, isStaff, isSuperuser bool) (*User, error) {
	dbUser := &database.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsStaff:      isStaff,
		IsSuperuser:  isSuperuser,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// UpdateProfile applies the given changes in a single statement. The
// email column is never touched here.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id uuid.UUID, changes ProfileChanges) (*User, error) {
	if changes.Name == nil && changes.PasswordHash == nil {
		return r.GetByID(ctx, id)
	}

	dbUser := new(database.User)
	query := r.db.NewUpdate().
		Model(dbUser).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*")

	if changes.Name != nil {
		query = query.Set("name = ?", *changes.Name)
	}
	if changes.PasswordHash != nil {
		query = query.Set("password_hash = ?", *changes.PasswordHash)
	}

	result, err := query.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBUserToModel(dbUser), nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Email:        dbu.Email,
		Name:         dbu.Name,
		PasswordHash: dbu.PasswordHash,
		IsStaff:      dbu.IsStaff,
		IsSuperuser:  dbu.IsSuperuser,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
