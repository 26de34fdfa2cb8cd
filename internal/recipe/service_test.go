package recipe

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	findByOwnerFn      func(ctx context.Context, ownerID uuid.UUID) ([]*Recipe, error)
	findByIDAndOwnerFn func(ctx context.Context, id, ownerID uuid.UUID) (*Recipe, error)
	insertFn           func(ctx context.Context, rec *Recipe) (*Recipe, error)
	updateFn           func(ctx context.Context, rec *Recipe) (*Recipe, error)
	deleteFn           func(ctx context.Context, id, ownerID uuid.UUID) error

	insertCalls int
	updateCalls int
}

func (m *mockRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Recipe, error) {
	return m.findByOwnerFn(ctx, ownerID)
}

func (m *mockRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*Recipe, error) {
	return m.findByIDAndOwnerFn(ctx, id, ownerID)
}

func (m *mockRepository) Insert(ctx context.Context, rec *Recipe) (*Recipe, error) {
	m.insertCalls++
	return m.insertFn(ctx, rec)
}

func (m *mockRepository) Update(ctx context.Context, rec *Recipe) (*Recipe, error) {
	m.updateCalls++
	return m.updateFn(ctx, rec)
}

func (m *mockRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return m.deleteFn(ctx, id, ownerID)
}

var _ Repository = (*mockRepository)(nil)

func intPtr(v int) *int                         { return &v }
func strPtr(v string) *string                   { return &v }
func decPtr(v decimal.Decimal) *decimal.Decimal { return &v }

func validCreateInput() CreateInput {
	return CreateInput{
		Title:       "Test recipe",
		TimeMinutes: intPtr(30),
		Price:       decPtr(decimal.RequireFromString("5.00")),
		Description: "This is a test recipe",
	}
}

func sampleRecipe(ownerID uuid.UUID) *Recipe {
	return &Recipe{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       "Old title",
		TimeMinutes: 30,
		Price:       decimal.RequireFromString("5.00"),
		Description: "Old description",
		Link:        "/api/recipes/old",
	}
}

func TestCreate(t *testing.T) {
	ownerID := uuid.New()

	t.Run("owner is always the caller", func(t *testing.T) {
		var inserted *Recipe
		repo := &mockRepository{
			insertFn: func(_ context.Context, rec *Recipe) (*Recipe, error) {
				inserted = rec
				return rec, nil
			},
		}

		created, err := NewService(repo).Create(context.Background(), ownerID, validCreateInput())
		require.NoError(t, err)

		assert.Equal(t, ownerID, inserted.UserID)
		assert.Equal(t, ownerID, created.UserID)
		assert.Equal(t, "Test recipe", created.Title)
		assert.Equal(t, 30, created.TimeMinutes)
		assert.True(t, created.Price.Equal(decimal.RequireFromString("5.00")))
	})

	t.Run("link is system assigned", func(t *testing.T) {
		repo := &mockRepository{
			insertFn: func(_ context.Context, rec *Recipe) (*Recipe, error) { return rec, nil },
		}

		created, err := NewService(repo).Create(context.Background(), ownerID, validCreateInput())
		require.NoError(t, err)
		assert.Equal(t, "/api/recipes/"+created.ID.String(), created.Link)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			mutate  func(in *CreateInput)
			wantErr error
		}{
			{"missing title", func(in *CreateInput) { in.Title = "" }, ErrTitleRequired},
			{"missing time_minutes", func(in *CreateInput) { in.TimeMinutes = nil }, ErrTimeMinutesRequired},
			{"negative time_minutes", func(in *CreateInput) { in.TimeMinutes = intPtr(-1) }, ErrTimeMinutesNegative},
			{"missing price", func(in *CreateInput) { in.Price = nil }, ErrPriceRequired},
			{"negative price", func(in *CreateInput) { in.Price = decPtr(decimal.RequireFromString("-0.01")) }, ErrPriceNegative},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := &mockRepository{
					insertFn: func(_ context.Context, rec *Recipe) (*Recipe, error) { return rec, nil },
				}

				in := validCreateInput()
				tt.mutate(&in)

				_, err := NewService(repo).Create(context.Background(), ownerID, in)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, repo.insertCalls)
			})
		}
	})

	t.Run("zero time and price are valid", func(t *testing.T) {
		repo := &mockRepository{
			insertFn: func(_ context.Context, rec *Recipe) (*Recipe, error) { return rec, nil },
		}

		in := validCreateInput()
		in.TimeMinutes = intPtr(0)
		in.Price = decPtr(decimal.Zero)

		_, err := NewService(repo).Create(context.Background(), ownerID, in)
		assert.NoError(t, err)
	})
}

func TestGet(t *testing.T) {
	ownerID := uuid.New()

	t.Run("owned recipe is returned", func(t *testing.T) {
		existing := sampleRecipe(ownerID)
		repo := &mockRepository{
			findByIDAndOwnerFn: func(_ context.Context, id, owner uuid.UUID) (*Recipe, error) {
				assert.Equal(t, existing.ID, id)
				assert.Equal(t, ownerID, owner)
				return existing, nil
			},
		}

		got, err := NewService(repo).Get(context.Background(), ownerID, existing.ID)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, got.ID)
	})

	t.Run("foreign recipe reads as not found", func(t *testing.T) {
		repo := &mockRepository{
			findByIDAndOwnerFn: func(context.Context, uuid.UUID, uuid.UUID) (*Recipe, error) {
				return nil, ErrNotFound
			},
		}

		_, err := NewService(repo).Get(context.Background(), ownerID, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListForOwner(t *testing.T) {
	ownerID := uuid.New()
	own := []*Recipe{sampleRecipe(ownerID), sampleRecipe(ownerID)}

	repo := &mockRepository{
		findByOwnerFn: func(_ context.Context, owner uuid.UUID) ([]*Recipe, error) {
			assert.Equal(t, ownerID, owner)
			return own, nil
		},
	}

	got, err := NewService(repo).ListForOwner(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUpdate(t *testing.T) {
	ownerID := uuid.New()

	newRepo := func(existing *Recipe) *mockRepository {
		return &mockRepository{
			findByIDAndOwnerFn: func(context.Context, uuid.UUID, uuid.UUID) (*Recipe, error) {
				if existing == nil {
					return nil, ErrNotFound
				}
				copied := *existing
				return &copied, nil
			},
			updateFn: func(_ context.Context, rec *Recipe) (*Recipe, error) {
				return rec, nil
			},
		}
	}

	t.Run("owner field in input is rejected", func(t *testing.T) {
		existing := sampleRecipe(ownerID)
		repo := newRepo(existing)

		_, err := NewService(repo).Update(context.Background(), ownerID, existing.ID, UpdateInput{
			Title:         strPtr("New title"),
			OwnerSupplied: true,
		}, true)

		assert.ErrorIs(t, err, ErrOwnerReadOnly)
		assert.Zero(t, repo.updateCalls)
	})

	t.Run("foreign recipe reads as not found before validation", func(t *testing.T) {
		repo := newRepo(nil)

		_, err := NewService(repo).Update(context.Background(), ownerID, uuid.New(), UpdateInput{
			OwnerSupplied: true,
		}, true)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("partial update keeps absent fields", func(t *testing.T) {
		existing := sampleRecipe(ownerID)
		repo := newRepo(existing)

		updated, err := NewService(repo).Update(context.Background(), ownerID, existing.ID, UpdateInput{
			Title: strPtr("New title"),
		}, true)
		require.NoError(t, err)

		assert.Equal(t, "New title", updated.Title)
		assert.Equal(t, existing.TimeMinutes, updated.TimeMinutes)
		assert.True(t, existing.Price.Equal(updated.Price))
		assert.Equal(t, existing.Description, updated.Description)
		assert.Equal(t, existing.UserID, updated.UserID)
	})

	t.Run("full update requires the writable fields", func(t *testing.T) {
		tests := []struct {
			name    string
			input   UpdateInput
			wantErr error
		}{
			{
				"missing title",
				UpdateInput{TimeMinutes: intPtr(60), Price: decPtr(decimal.RequireFromString("10.00"))},
				ErrTitleRequired,
			},
			{
				"missing time_minutes",
				UpdateInput{Title: strPtr("New title"), Price: decPtr(decimal.RequireFromString("10.00"))},
				ErrTimeMinutesRequired,
			},
			{
				"missing price",
				UpdateInput{Title: strPtr("New title"), TimeMinutes: intPtr(60)},
				ErrPriceRequired,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				existing := sampleRecipe(ownerID)
				repo := newRepo(existing)

				_, err := NewService(repo).Update(context.Background(), ownerID, existing.ID, tt.input, false)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, repo.updateCalls)
			})
		}
	})

	t.Run("full update replaces the description", func(t *testing.T) {
		existing := sampleRecipe(ownerID)
		repo := newRepo(existing)

		updated, err := NewService(repo).Update(context.Background(), ownerID, existing.ID, UpdateInput{
			Title:       strPtr("New title"),
			TimeMinutes: intPtr(60),
			Price:       decPtr(decimal.RequireFromString("10.00")),
		}, false)
		require.NoError(t, err)

		assert.Equal(t, "New title", updated.Title)
		assert.Equal(t, 60, updated.TimeMinutes)
		assert.Empty(t, updated.Description)
	})

	t.Run("negative values rejected", func(t *testing.T) {
		existing := sampleRecipe(ownerID)
		repo := newRepo(existing)

		_, err := NewService(repo).Update(context.Background(), ownerID, existing.ID, UpdateInput{
			TimeMinutes: intPtr(-10),
		}, true)
		assert.ErrorIs(t, err, ErrTimeMinutesNegative)
		assert.Zero(t, repo.updateCalls)
	})
}

func TestDelete(t *testing.T) {
	ownerID := uuid.New()

	t.Run("owned recipe is deleted", func(t *testing.T) {
		recipeID := uuid.New()
		repo := &mockRepository{
			deleteFn: func(_ context.Context, id, owner uuid.UUID) error {
				assert.Equal(t, recipeID, id)
				assert.Equal(t, ownerID, owner)
				return nil
			},
		}

		assert.NoError(t, NewService(repo).Delete(context.Background(), ownerID, recipeID))
	})

	t.Run("foreign recipe reads as not found", func(t *testing.T) {
		repo := &mockRepository{
			deleteFn: func(context.Context, uuid.UUID, uuid.UUID) error {
				return ErrNotFound
			},
		}

		err := NewService(repo).Delete(context.Background(), ownerID, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
