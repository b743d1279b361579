package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/larder-app/larder/backend/internal/access"
	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/service"
	"github.com/larder-app/larder/backend/internal/testhelpers"
	"github.com/larder-app/larder/backend/internal/types"
)

type shareFixture struct {
	db     *gorm.DB
	clock  *testhelpers.Clock
	shares *service.ShareService
	owner  *models.User
	friend *models.User
	other  *models.User
	recipe *models.Recipe
}

func setupShareTest(t *testing.T) *shareFixture {
	db := testhelpers.NewSQLiteDB(t)
	clock := testhelpers.NewClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	f := &shareFixture{
		db:     db,
		clock:  clock,
		shares: service.NewShareService(db).WithNowFunc(clock.Now),
		owner:  testhelpers.CreateUser(t, db, "Owner"),
		friend: testhelpers.CreateUser(t, db, "Friend"),
		other:  testhelpers.CreateUser(t, db, "Other"),
	}
	testhelpers.MakeFriends(t, db, f.owner.ID, f.friend.ID)
	f.recipe = testhelpers.CreateRecipe(t, db, f.owner.ID, "Secret Curry")
	return f
}

func TestShareRules(t *testing.T) {
	f := setupShareTest(t)
	ownerCtx := testhelpers.AsUser(f.owner.ID)

	_, err := f.shares.Share(testhelpers.AsUser(f.friend.ID), f.recipe.ID, f.other.ID, shareOpts())
	assert.ErrorIs(t, err, apperr.ErrNotOwner)

	_, err = f.shares.Share(ownerCtx, f.recipe.ID, f.other.ID, shareOpts())
	assert.ErrorIs(t, err, apperr.ErrNotFriends)

	_, err = f.shares.Share(ownerCtx, uuid.New(), f.friend.ID, shareOpts())
	assert.ErrorIs(t, err, apperr.ErrRecipeNotFound)

	share, err := f.shares.Share(ownerCtx, f.recipe.ID, f.friend.ID, types.ShareOptions{Message: strPtr("try this")})
	require.NoError(t, err)
	assert.Equal(t, models.SharePermissionView, share.Permission)
	assert.Nil(t, share.ExpiresAt)

	_, err = f.shares.Share(ownerCtx, f.recipe.ID, f.friend.ID, shareOpts())
	assert.ErrorIs(t, err, apperr.ErrAlreadyShared)
}

func TestShareVisibility(t *testing.T) {
	f := setupShareTest(t)
	eval := access.NewEvaluator(f.shares)
	ctx := testhelpers.AsUser(f.owner.ID)

	canRead := func(id uuid.UUID) bool {
		ok, err := eval.CanRead(ctx, f.recipe, &id)
		require.NoError(t, err)
		return ok
	}
	assert.False(t, canRead(f.friend.ID))
	assert.False(t, canRead(f.other.ID))

	_, err := f.shares.Share(ctx, f.recipe.ID, f.friend.ID, types.ShareOptions{ExpiresInDays: intPtr(2)})
	require.NoError(t, err)
	assert.True(t, canRead(f.friend.ID))
	assert.False(t, canRead(f.other.ID))

	f.clock.Advance(48 * time.Hour)
	assert.False(t, canRead(f.friend.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.RecipeShare{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "expired shares are kept")
}

func TestShareRevalidatesFriendship(t *testing.T) {
	f := setupShareTest(t)
	_, err := f.shares.Share(testhelpers.AsUser(f.owner.ID), f.recipe.ID, f.friend.ID, shareOpts())
	require.NoError(t, err)

	// drop the friendship without the cleanup path
	require.NoError(t, f.db.Where("1 = 1").Delete(&models.Friendship{}).Error)

	ok, err := f.shares.HasActiveShare(testhelpers.AsUser(f.friend.ID), f.recipe.ID, f.friend.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	received, err := f.shares.ListReceived(testhelpers.AsUser(f.friend.ID))
	require.NoError(t, err)
	assert.Empty(t, received)
}

func TestShareWithMultiple(t *testing.T) {
	f := setupShareTest(t)
	ctx := testhelpers.AsUser(f.owner.ID)

	results, err := f.shares.ShareWithMultiple(ctx, f.recipe.ID,
		[]uuid.UUID{f.friend.ID, f.other.ID, f.friend.ID}, shareOpts())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.NotNil(t, results[0].ShareID)
	assert.False(t, results[1].Success)
	assert.Equal(t, apperr.ErrNotFriends.Code, results[1].Error)
	assert.False(t, results[2].Success)
	assert.Equal(t, apperr.ErrAlreadyShared.Code, results[2].Error)

	_, err = f.shares.ShareWithMultiple(testhelpers.AsUser(f.friend.ID), f.recipe.ID, []uuid.UUID{f.other.ID}, shareOpts())
	assert.ErrorIs(t, err, apperr.ErrNotOwner)

	_, err = f.shares.ShareWithMultiple(ctx, f.recipe.ID, nil, shareOpts())
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUnshare(t *testing.T) {
	f := setupShareTest(t)
	ctx := testhelpers.AsUser(f.owner.ID)
	third := testhelpers.CreateUser(t, f.db, "Third")
	testhelpers.MakeFriends(t, f.db, f.owner.ID, third.ID)

	_, err := f.shares.ShareWithMultiple(ctx, f.recipe.ID, []uuid.UUID{f.friend.ID, third.ID}, shareOpts())
	require.NoError(t, err)

	assert.ErrorIs(t, f.shares.Unshare(testhelpers.AsUser(f.friend.ID), f.recipe.ID, f.friend.ID), apperr.ErrNotOwner)
	require.NoError(t, f.shares.Unshare(ctx, f.recipe.ID, f.friend.ID))
	assert.ErrorIs(t, f.shares.Unshare(ctx, f.recipe.ID, f.friend.ID), apperr.ErrShareNotFound)

	list, err := f.shares.ListForRecipe(ctx, f.recipe.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Third", list[0].SharedWith.DisplayName)

	removed, err := f.shares.UnshareAll(ctx, f.recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestListReceived(t *testing.T) {
	f := setupShareTest(t)
	_, err := f.shares.Share(testhelpers.AsUser(f.owner.ID), f.recipe.ID, f.friend.ID, types.ShareOptions{Message: strPtr("enjoy")})
	require.NoError(t, err)

	received, err := f.shares.ListReceived(testhelpers.AsUser(f.friend.ID))
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "Secret Curry", received[0].RecipeTitle)
	assert.Equal(t, "Owner", received[0].Owner.DisplayName)
	assert.Equal(t, "enjoy", *received[0].Message)

	ids, err := f.shares.SharedRecipeIDs(testhelpers.AsUser(f.friend.ID), f.friend.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.recipe.ID}, ids)
}
