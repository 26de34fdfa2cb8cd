package recipe

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrTimeMinutesRequired = errors.New("time_minutes is required")
	ErrPriceRequired       = errors.New("price is required")
	ErrTimeMinutesNegative = errors.New("time_minutes must not be negative")
	ErrPriceNegative       = errors.New("price must not be negative")
	ErrOwnerReadOnly       = errors.New("recipe owner cannot be changed")
)

// CreateInput holds the client-supplied fields for a new recipe.
// Any owner or link value in the request is dropped before this point.
type CreateInput struct {
	Title       string
	TimeMinutes *int
	Price       *decimal.Decimal
	Description string
}

// UpdateInput holds a recipe update. Nil fields were not supplied.
// OwnerSupplied is set when the request body contained an owner field,
// whatever its value.
type UpdateInput struct {
	Title         *string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Description   *string
	OwnerSupplied bool
}

// Service enforces the ownership rules on every recipe operation: reads
// are scoped to the caller, creates force the caller as owner, and
// foreign recipes are indistinguishable from missing ones.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListForOwner returns the caller's recipes, newest first. A caller
// without recipes gets an empty slice, not an error.
func (s *Service) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*Recipe, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}

// Get returns a recipe owned by the caller. Recipes belonging to other
// users report ErrNotFound, never a permission error.
func (s *Service) Get(ctx context.Context, ownerID, recipeID uuid.UUID) (*Recipe, error) {
	return s.repo.FindByIDAndOwner(ctx, recipeID, ownerID)
}

// Create stores a new recipe owned by the caller. The link is assigned
// by the system from the new recipe's ID.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Recipe, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.TimeMinutes == nil {
		return nil, ErrTimeMinutesRequired
	}
	if *in.TimeMinutes < 0 {
		return nil, ErrTimeMinutesNegative
	}
	if in.Price == nil {
		return nil, ErrPriceRequired
	}
	if in.Price.IsNegative() {
		return nil, ErrPriceNegative
	}

	id := uuid.New()
	rec := &Recipe{
		ID:          id,
		UserID:      ownerID,
		Title:       in.Title,
		TimeMinutes: *in.TimeMinutes,
		Price:       *in.Price,
		Description: in.Description,
		Link:        fmt.Sprintf("/api/recipes/%s", id),
	}

	return s.repo.Insert(ctx, rec)
}

// Update modifies an owned recipe. With partial set, absent fields keep
// their stored values; without it, title, time_minutes and price must
// all be present and an absent description is cleared. An owner field
// in the input is rejected outright.
func (s *Service) Update(ctx context.Context, ownerID, recipeID uuid.UUID, in UpdateInput, partial bool) (*Recipe, error) {
	existing, err := s.repo.FindByIDAndOwner(ctx, recipeID, ownerID)
	if err != nil {
		return nil, err
	}

	if in.OwnerSupplied {
		return nil, ErrOwnerReadOnly
	}

	if !partial {
		if in.Title == nil {
			return nil, ErrTitleRequired
		}
		if in.TimeMinutes == nil {
			return nil, ErrTimeMinutesRequired
		}
		if in.Price == nil {
			return nil, ErrPriceRequired
		}
		if in.Description == nil {
			empty := ""
			in.Description = &empty
		}
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, ErrTitleRequired
		}
		existing.Title = *in.Title
	}
	if in.TimeMinutes != nil {
		if *in.TimeMinutes < 0 {
			return nil, ErrTimeMinutesNegative
		}
		existing.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, ErrPriceNegative
		}
		existing.Price = *in.Price
	}
	if in.Description != nil {
		existing.Description = *in.Description
	}

	return s.repo.Update(ctx, existing)
}

// Delete removes an owned recipe. Foreign and missing recipes both
// report ErrNotFound.
func (s *Service) Delete(ctx context.Context, ownerID, recipeID uuid.UUID) error {
	return s.repo.Delete(ctx, recipeID, ownerID)
}
