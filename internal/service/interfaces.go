package service

import (
	"context"

	"github.com/pageza/recipebook/backend/internal/model"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListAll(ctx context.Context) ([]model.Recipe, error)
	GetByID(ctx context.Context, id string) (*model.Recipe, error)
	SearchByName(ctx context.Context, query string) ([]model.Recipe, error)
	FilterByCategory(ctx context.Context, category string) ([]model.Recipe, error)
	ListFavorites(ctx context.Context) ([]model.Recipe, error)
	Paginate(ctx context.Context, req PageRequest) ([]model.Recipe, error)
	PopularIngredients(ctx context.Context, n int) ([]model.IngredientCount, error)
	FindByIngredients(ctx context.Context, ingredients []string) ([]model.Recipe, error)
	RecentSince(ctx context.Context, days int) ([]model.Recipe, error)

	Create(ctx context.Context, input CreateRecipeInput) (*model.Recipe, error)
	Update(ctx context.Context, id string, input UpdateRecipeInput) (*model.Recipe, error)
	Delete(ctx context.Context, id string) error
	AddReview(ctx context.Context, id string, input ReviewInput) (*model.Recipe, error)
	ToggleFavorite(ctx context.Context, id string) (*model.Recipe, error)
}

var _ IRecipeService = (*RecipeService)(nil)
