package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/larder-app/larder/backend/internal/access"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/types"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) recipe(args mock.Arguments) (*types.RecipeResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Enrich(ctx context.Context, recipe *models.Recipe, viewer *uuid.UUID) (*types.RecipeResponse, error) {
	return m.recipe(m.Called(ctx, recipe, viewer))
}

func (m *MockRecipeService) Find(ctx context.Context, id uuid.UUID) (*models.Recipe, access.Decision, error) {
	args := m.Called(ctx, id)
	var recipe *models.Recipe
	if args.Get(0) != nil {
		recipe = args.Get(0).(*models.Recipe)
	}
	return recipe, args.Get(1).(access.Decision), args.Error(2)
}

func (m *MockRecipeService) GetByID(ctx context.Context, id uuid.UUID) (*types.RecipeResponse, error) {
	return m.recipe(m.Called(ctx, id))
}

func (m *MockRecipeService) List(ctx context.Context, q types.ListRecipesQuery) ([]types.RecipeResponse, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, req *types.CreateRecipeRequest) (*types.RecipeResponse, error) {
	return m.recipe(m.Called(ctx, req))
}

func (m *MockRecipeService) Update(ctx context.Context, id uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error) {
	return m.recipe(m.Called(ctx, id, req))
}

func (m *MockRecipeService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecipeService) ToggleFavorite(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecipeService) MarkCooked(ctx context.Context, id uuid.UUID) (*types.RecipeResponse, error) {
	return m.recipe(m.Called(ctx, id))
}

func (m *MockRecipeService) SetImage(ctx context.Context, id uuid.UUID, data []byte, contentType string) (*types.RecipeResponse, error) {
	return m.recipe(m.Called(ctx, id, data, contentType))
}
