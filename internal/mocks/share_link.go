package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/types"
)

// MockShareLinkService is a mock implementation of the share link service
type MockShareLinkService struct {
	mock.Mock
}

func (m *MockShareLinkService) link(args mock.Arguments) (*models.ShareLink, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShareLink), args.Error(1)
}

func (m *MockShareLinkService) validation(args mock.Arguments) (*types.ShareCodeValidation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShareCodeValidation), args.Error(1)
}

func (m *MockShareLinkService) CreateLink(ctx context.Context, recipeID uuid.UUID, expiresInDays *int) (*models.ShareLink, error) {
	return m.link(m.Called(ctx, recipeID, expiresInDays))
}

func (m *MockShareLinkService) ValidateShareCode(ctx context.Context, code string) (*types.ShareCodeValidation, error) {
	return m.validation(m.Called(ctx, code))
}

func (m *MockShareLinkService) AccessByCode(ctx context.Context, code string) (*types.SharedRecipeView, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SharedRecipeView), args.Error(1)
}

func (m *MockShareLinkService) RecordAccess(ctx context.Context, code string) (*types.ShareCodeValidation, error) {
	return m.validation(m.Called(ctx, code))
}

func (m *MockShareLinkService) Revoke(ctx context.Context, linkID uuid.UUID) (*models.ShareLink, error) {
	return m.link(m.Called(ctx, linkID))
}

func (m *MockShareLinkService) Reactivate(ctx context.Context, linkID uuid.UUID) (*models.ShareLink, error) {
	return m.link(m.Called(ctx, linkID))
}

func (m *MockShareLinkService) DeleteLink(ctx context.Context, linkID uuid.UUID) error {
	return m.Called(ctx, linkID).Error(0)
}

func (m *MockShareLinkService) DeleteAllForRecipe(ctx context.Context, recipeID uuid.UUID) (int, error) {
	args := m.Called(ctx, recipeID)
	return args.Int(0), args.Error(1)
}

func (m *MockShareLinkService) ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]types.ShareLinkResponse, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ShareLinkResponse), args.Error(1)
}
