package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/larder-app/larder/backend/internal/models"
)

type mockShareLookup struct {
	mock.Mock
}

func (m *mockShareLookup) HasActiveShare(ctx context.Context, recipeID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, recipeID, userID)
	return args.Bool(0), args.Error(1)
}

func privateRecipe(owner uuid.UUID) *models.Recipe {
	return &models.Recipe{ID: uuid.New(), OwnerID: &owner, Title: "Private"}
}

func TestCanReadGlobalIsVisibleToAnonymous(t *testing.T) {
	shares := new(mockShareLookup)
	e := NewEvaluator(shares)

	ok, err := e.CanRead(context.Background(), &models.Recipe{ID: uuid.New(), IsGlobal: true}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	shares.AssertNotCalled(t, "HasActiveShare", mock.Anything, mock.Anything, mock.Anything)
}

func TestCanReadOwnerAndPublic(t *testing.T) {
	e := NewEvaluator(new(mockShareLookup))
	owner := uuid.New()
	recipe := privateRecipe(owner)

	ok, err := e.CanRead(context.Background(), recipe, &owner)
	require.NoError(t, err)
	assert.True(t, ok)

	recipe.IsPublic = true
	ok, err = e.CanRead(context.Background(), recipe, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanReadAnonymousPrivate(t *testing.T) {
	shares := new(mockShareLookup)
	e := NewEvaluator(shares)

	ok, err := e.CanRead(context.Background(), privateRecipe(uuid.New()), nil)
	require.NoError(t, err)
	assert.False(t, ok)
	shares.AssertNotCalled(t, "HasActiveShare", mock.Anything, mock.Anything, mock.Anything)
}

func TestCanReadUsesShares(t *testing.T) {
	shares := new(mockShareLookup)
	e := NewEvaluator(shares)
	recipe := privateRecipe(uuid.New())
	friend := uuid.New()
	stranger := uuid.New()

	shares.On("HasActiveShare", mock.Anything, recipe.ID, friend).Return(true, nil)
	shares.On("HasActiveShare", mock.Anything, recipe.ID, stranger).Return(false, nil)

	ok, err := e.CanRead(context.Background(), recipe, &friend)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.CanRead(context.Background(), recipe, &stranger)
	require.NoError(t, err)
	assert.False(t, ok)

	shares.AssertExpectations(t)
}

func TestDecide(t *testing.T) {
	shares := new(mockShareLookup)
	e := NewEvaluator(shares)
	recipe := privateRecipe(uuid.New())
	viewer := uuid.New()
	shares.On("HasActiveShare", mock.Anything, recipe.ID, viewer).Return(false, nil).Once()

	d, err := e.Decide(context.Background(), nil, &viewer)
	require.NoError(t, err)
	assert.Equal(t, NotFound, d)

	d, err = e.Decide(context.Background(), recipe, &viewer)
	require.NoError(t, err)
	assert.Equal(t, Denied, d)

	shares.On("HasActiveShare", mock.Anything, recipe.ID, viewer).Return(false, errors.New("db down")).Once()
	_, err = e.Decide(context.Background(), recipe, &viewer)
	assert.Error(t, err)
}

func TestGlobalRecipesAreImmutable(t *testing.T) {
	owner := uuid.New()
	recipe := &models.Recipe{ID: uuid.New(), OwnerID: &owner, IsGlobal: true}

	assert.False(t, CanModify(recipe, &owner))
	assert.False(t, CanDelete(recipe, &owner))
	other := uuid.New()
	assert.False(t, CanModify(recipe, &other))
	assert.False(t, CanModify(recipe, nil))
}

func TestCanModifyOwnerOnly(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	recipe := privateRecipe(owner)
	recipe.IsPublic = true

	assert.True(t, CanModify(recipe, &owner))
	assert.True(t, CanDelete(recipe, &owner))
	assert.False(t, CanModify(recipe, &other))
	assert.False(t, CanDelete(recipe, nil))
}
