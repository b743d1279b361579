package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/service"
	"github.com/larder-app/larder/backend/internal/testhelpers"
)

type friendFixture struct {
	db      *gorm.DB
	friends *service.FriendService
	alice   *models.User
	bob     *models.User
}

func setupFriendTest(t *testing.T) *friendFixture {
	db := testhelpers.NewSQLiteDB(t)
	return &friendFixture{
		db:      db,
		friends: service.NewFriendService(db),
		alice:   testhelpers.CreateUser(t, db, "Alice"),
		bob:     testhelpers.CreateUser(t, db, "Bob"),
	}
}

func (f *friendFixture) status(t *testing.T, a, b uuid.UUID) models.FriendshipStatus {
	t.Helper()
	st, err := f.friends.StatusBetween(testhelpers.AsUser(a), a, b)
	require.NoError(t, err)
	return st
}

func TestSendRequestIsSymmetric(t *testing.T) {
	f := setupFriendTest(t)

	req, err := f.friends.SendRequest(testhelpers.AsUser(f.alice.ID), f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipPending, req.Status)
	assert.Equal(t, f.alice.ID, req.RequestedBy)

	assert.Equal(t, models.FriendshipPending, f.status(t, f.alice.ID, f.bob.ID))
	assert.Equal(t, models.FriendshipPending, f.status(t, f.bob.ID, f.alice.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.Friendship{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSendRequestErrors(t *testing.T) {
	f := setupFriendTest(t)
	ctx := testhelpers.AsUser(f.alice.ID)

	_, err := f.friends.SendRequest(ctx, f.alice.ID)
	assert.ErrorIs(t, err, apperr.ErrSelfFriendship)

	_, err = f.friends.SendRequest(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	_, err = f.friends.SendRequest(ctx, f.bob.ID)
	require.NoError(t, err)

	_, err = f.friends.SendRequest(ctx, f.bob.ID)
	assert.ErrorIs(t, err, apperr.ErrRequestPending)

	// the reverse direction maps onto the same pair
	_, err = f.friends.SendRequest(testhelpers.AsUser(f.bob.ID), f.alice.ID)
	assert.ErrorIs(t, err, apperr.ErrRequestPending)

	_, err = f.friends.SendRequest(anonymousCtx(), f.bob.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAcceptRequest(t *testing.T) {
	f := setupFriendTest(t)
	req, err := f.friends.SendRequest(testhelpers.AsUser(f.alice.ID), f.bob.ID)
	require.NoError(t, err)

	_, err = f.friends.AcceptRequest(testhelpers.AsUser(f.alice.ID), req.ID)
	assert.ErrorIs(t, err, apperr.ErrCannotAcceptOwnRequest)

	carol := testhelpers.CreateUser(t, f.db, "Carol")
	_, err = f.friends.AcceptRequest(testhelpers.AsUser(carol.ID), req.ID)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	_, err = f.friends.AcceptRequest(testhelpers.AsUser(f.bob.ID), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrFriendshipNotFound)

	accepted, err := f.friends.AcceptRequest(testhelpers.AsUser(f.bob.ID), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipAccepted, accepted.Status)
	assert.Equal(t, models.FriendshipAccepted, f.status(t, f.alice.ID, f.bob.ID))
	assert.Equal(t, models.FriendshipAccepted, f.status(t, f.bob.ID, f.alice.ID))

	_, err = f.friends.AcceptRequest(testhelpers.AsUser(f.bob.ID), req.ID)
	assert.ErrorIs(t, err, apperr.ErrNotPending)

	_, err = f.friends.SendRequest(testhelpers.AsUser(f.alice.ID), f.bob.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyFriends)
}

func TestRejectThenRequestAgain(t *testing.T) {
	f := setupFriendTest(t)
	req, err := f.friends.SendRequest(testhelpers.AsUser(f.alice.ID), f.bob.ID)
	require.NoError(t, err)

	require.NoError(t, f.friends.RejectRequest(testhelpers.AsUser(f.bob.ID), req.ID))
	assert.Equal(t, models.FriendshipNone, f.status(t, f.alice.ID, f.bob.ID))

	_, err = f.friends.SendRequest(testhelpers.AsUser(f.alice.ID), f.bob.ID)
	assert.NoError(t, err)
}

func TestCancelRequestRequiresRequester(t *testing.T) {
	f := setupFriendTest(t)
	req, err := f.friends.SendRequest(testhelpers.AsUser(f.alice.ID), f.bob.ID)
	require.NoError(t, err)

	err = f.friends.CancelRequest(testhelpers.AsUser(f.bob.ID), req.ID)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	require.NoError(t, f.friends.CancelRequest(testhelpers.AsUser(f.alice.ID), req.ID))
	assert.Equal(t, models.FriendshipNone, f.status(t, f.bob.ID, f.alice.ID))

	err = f.friends.CancelRequest(testhelpers.AsUser(f.alice.ID), req.ID)
	assert.ErrorIs(t, err, apperr.ErrFriendshipNotFound)
}

func TestRemoveFriendCascadesShares(t *testing.T) {
	f := setupFriendTest(t)
	testhelpers.MakeFriends(t, f.db, f.alice.ID, f.bob.ID)
	aliceRecipe := testhelpers.CreateRecipe(t, f.db, f.alice.ID, "Soup")
	bobRecipe := testhelpers.CreateRecipe(t, f.db, f.bob.ID, "Stew")

	shares := service.NewShareService(f.db)
	_, err := shares.Share(testhelpers.AsUser(f.alice.ID), aliceRecipe.ID, f.bob.ID, shareOpts())
	require.NoError(t, err)
	_, err = shares.Share(testhelpers.AsUser(f.bob.ID), bobRecipe.ID, f.alice.ID, shareOpts())
	require.NoError(t, err)

	require.NoError(t, f.friends.RemoveFriend(testhelpers.AsUser(f.bob.ID), f.alice.ID))
	assert.Equal(t, models.FriendshipNone, f.status(t, f.alice.ID, f.bob.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.RecipeShare{}).Count(&count).Error)
	assert.Zero(t, count)

	err = f.friends.RemoveFriend(testhelpers.AsUser(f.bob.ID), f.alice.ID)
	assert.ErrorIs(t, err, apperr.ErrFriendshipNotFound)
}

func TestBlockSupersedesPending(t *testing.T) {
	f := setupFriendTest(t)
	users := service.NewUserService(f.db)

	_, err := f.friends.SendRequest(testhelpers.AsUser(f.alice.ID), f.bob.ID)
	require.NoError(t, err)

	require.NoError(t, f.friends.BlockUser(testhelpers.AsUser(f.bob.ID), f.alice.ID))
	assert.Equal(t, models.FriendshipBlocked, f.status(t, f.alice.ID, f.bob.ID))

	_, err = f.friends.SendRequest(testhelpers.AsUser(f.alice.ID), f.bob.ID)
	assert.ErrorIs(t, err, apperr.ErrBlocked)

	found, err := users.SearchCandidates(testhelpers.AsUser(f.bob.ID), "ali")
	require.NoError(t, err)
	assert.Empty(t, found)

	// blocking again is a no-op for the blocker and refused for the blocked user
	assert.NoError(t, f.friends.BlockUser(testhelpers.AsUser(f.bob.ID), f.alice.ID))
	assert.ErrorIs(t, f.friends.BlockUser(testhelpers.AsUser(f.alice.ID), f.bob.ID), apperr.ErrBlocked)

	// only the blocker can lift the block
	assert.ErrorIs(t, f.friends.RemoveFriend(testhelpers.AsUser(f.alice.ID), f.bob.ID), apperr.ErrNotAuthorized)
	assert.ErrorIs(t, f.friends.UnblockUser(testhelpers.AsUser(f.alice.ID), f.bob.ID), apperr.ErrNotAuthorized)
	require.NoError(t, f.friends.UnblockUser(testhelpers.AsUser(f.bob.ID), f.alice.ID))
	assert.Equal(t, models.FriendshipNone, f.status(t, f.alice.ID, f.bob.ID))

	found, err = users.SearchCandidates(testhelpers.AsUser(f.bob.ID), "ali")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, f.alice.ID, found[0].ID)
}

func TestBlockDeletesShares(t *testing.T) {
	f := setupFriendTest(t)
	testhelpers.MakeFriends(t, f.db, f.alice.ID, f.bob.ID)
	recipe := testhelpers.CreateRecipe(t, f.db, f.alice.ID, "Soup")
	_, err := service.NewShareService(f.db).Share(testhelpers.AsUser(f.alice.ID), recipe.ID, f.bob.ID, shareOpts())
	require.NoError(t, err)

	require.NoError(t, f.friends.BlockUser(testhelpers.AsUser(f.alice.ID), f.bob.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.RecipeShare{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.ErrorIs(t, f.friends.BlockUser(testhelpers.AsUser(f.alice.ID), uuid.New()), apperr.ErrUserNotFound)
}

func TestListFriendsAndRequests(t *testing.T) {
	f := setupFriendTest(t)
	carol := testhelpers.CreateUser(t, f.db, "Carol")
	dave := testhelpers.CreateUser(t, f.db, "Dave")
	testhelpers.MakeFriends(t, f.db, f.alice.ID, f.bob.ID)

	_, err := f.friends.SendRequest(testhelpers.AsUser(carol.ID), f.alice.ID)
	require.NoError(t, err)
	_, err = f.friends.SendRequest(testhelpers.AsUser(f.alice.ID), dave.ID)
	require.NoError(t, err)

	ctx := testhelpers.AsUser(f.alice.ID)
	friends, err := f.friends.ListFriends(ctx)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, f.bob.ID, friends[0].User.ID)
	assert.Equal(t, "Bob", friends[0].User.DisplayName)

	requests, err := f.friends.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, requests.Incoming, 1)
	require.Len(t, requests.Outgoing, 1)
	assert.Equal(t, carol.ID, requests.Incoming[0].User.ID)
	assert.Equal(t, dave.ID, requests.Outgoing[0].User.ID)
}
