package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"recipe-api/internal/database"
)

var ErrNotFound = errors.New("recipe not found")

// Repository defines the interface for recipe persistence. Every read
// and write is keyed by owner as well as ID, so a caller can never
// reach another user's rows through it.
type Repository interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Recipe, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*Recipe, error)
	Insert(ctx context.Context, rec *Recipe) (*Recipe, error)
	Update(ctx context.Context, rec *Recipe) (*Recipe, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// PostgresRepository handles recipe persistence in Postgres
type PostgresRepository struct {
	db *bun.DB
}

func NewPostgresRepository(db *bun.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByOwner returns the owner's recipes, most recently created first
func (r *PostgresRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Recipe, error) {
	var dbRecipes []*database.Recipe
	err := r.db.NewSelect().
		Model(&dbRecipes).
		Where("user_id = ?", ownerID).
		Order("created_at DESC", "id").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := make([]*Recipe, 0, len(dbRecipes))
	for _, dbRecipe := range dbRecipes {
		recipes = append(recipes, mapDBRecipeToModel(dbRecipe))
	}

	return recipes, nil
}

// FindByIDAndOwner returns the recipe only when it belongs to the owner.
// A recipe owned by someone else reads as ErrNotFound.
func (r *PostgresRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*Recipe, error) {
	dbRecipe := new(database.Recipe)
	err := r.db.NewSelect().
		Model(dbRecipe).
		Where("id = ?", id).
		Where("user_id = ?", ownerID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	return mapDBRecipeToModel(dbRecipe), nil
}

// Insert stores a new recipe
func (r *PostgresRepository) Insert(ctx context.Context, rec *Recipe) (*Recipe, error) {
	dbRecipe := mapModelToDBRecipe(rec)

	_, err := r.db.NewInsert().
		Model(dbRecipe).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	return mapDBRecipeToModel(dbRecipe), nil
}

// Update rewrites the writable columns of an owned recipe. The owner
// column is part of the WHERE clause, never of the SET list.
func (r *PostgresRepository) Update(ctx context.Context, rec *Recipe) (*Recipe, error) {
	dbRecipe := mapModelToDBRecipe(rec)

	result, err := r.db.NewUpdate().
		Model(dbRecipe).
		Set("title = ?", rec.Title).
		Set("time_minutes = ?", rec.TimeMinutes).
		Set("price = ?", rec.Price).
		Set("description = ?", rec.Description).
		Set("updated_at = NOW()").
		Where("id = ?", rec.ID).
		Where("user_id = ?", rec.UserID).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBRecipeToModel(dbRecipe), nil
}

// Delete removes an owned recipe permanently
func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Recipe)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", ownerID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBRecipeToModel converts database model to domain model
func mapDBRecipeToModel(dbr *database.Recipe) *Recipe {
	return &Recipe{
		ID:          dbr.ID,
		UserID:      dbr.UserID,
		Title:       dbr.Title,
		TimeMinutes: dbr.TimeMinutes,
		Price:       dbr.Price,
		Description: dbr.Description,
		Link:        dbr.Link,
		CreatedAt:   dbr.CreatedAt,
		UpdatedAt:   dbr.UpdatedAt,
	}
}

func mapModelToDBRecipe(rec *Recipe) *database.Recipe {
	return &database.Recipe{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Title:       rec.Title,
		TimeMinutes: rec.TimeMinutes,
		Price:       rec.Price,
		Description: rec.Description,
		Link:        rec.Link,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
