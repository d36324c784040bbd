package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebook/backend/internal/model"
	"github.com/pageza/recipebook/backend/internal/service"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) recipes(args mock.Arguments) ([]model.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockRecipeService) recipe(args mock.Arguments) (*model.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// ListAll mocks the ListAll method
func (m *MockRecipeService) ListAll(ctx context.Context) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx))
}

// GetByID mocks the GetByID method
func (m *MockRecipeService) GetByID(ctx context.Context, id string) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, id))
}

// SearchByName mocks the SearchByName method
func (m *MockRecipeService) SearchByName(ctx context.Context, query string) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx, query))
}

// FilterByCategory mocks the FilterByCategory method
func (m *MockRecipeService) FilterByCategory(ctx context.Context, category string) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx, category))
}

// ListFavorites mocks the ListFavorites method
func (m *MockRecipeService) ListFavorites(ctx context.Context) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx))
}

// Paginate mocks the Paginate method
func (m *MockRecipeService) Paginate(ctx context.Context, req service.PageRequest) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx, req))
}

// PopularIngredients mocks the PopularIngredients method
func (m *MockRecipeService) PopularIngredients(ctx context.Context, n int) ([]model.IngredientCount, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IngredientCount), args.Error(1)
}

// FindByIngredients mocks the FindByIngredients method
func (m *MockRecipeService) FindByIngredients(ctx context.Context, ingredients []string) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx, ingredients))
}

// RecentSince mocks the RecentSince method
func (m *MockRecipeService) RecentSince(ctx context.Context, days int) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx, days))
}

// Create mocks the Create method
func (m *MockRecipeService) Create(ctx context.Context, input service.CreateRecipeInput) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, input))
}

// Update mocks the Update method
func (m *MockRecipeService) Update(ctx context.Context, id string, input service.UpdateRecipeInput) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, id, input))
}

// Delete mocks the Delete method
func (m *MockRecipeService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// AddReview mocks the AddReview method
func (m *MockRecipeService) AddReview(ctx context.Context, id string, input service.ReviewInput) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, id, input))
}

// ToggleFavorite mocks the ToggleFavorite method
func (m *MockRecipeService) ToggleFavorite(ctx context.Context, id string) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, id))
}
