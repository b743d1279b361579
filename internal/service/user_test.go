package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/service"
	"github.com/larder-app/larder/backend/internal/testhelpers"
	"github.com/larder-app/larder/backend/internal/types"
)

func TestUpdateCurrentUpserts(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	users := service.NewUserService(db)
	id := uuid.New()
	ctx := testhelpers.AsUser(id)

	_, err := users.GetCurrent(ctx)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	created, err := users.UpdateCurrent(ctx, &types.UpdateUserRequest{DisplayName: " Ada ", Email: strPtr("ada@example.com")})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, "Ada", created.DisplayName)

	updated, err := users.UpdateCurrent(ctx, &types.UpdateUserRequest{DisplayName: "Ada L.", Email: strPtr("ada@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.DisplayName)

	other := testhelpers.AsUser(uuid.New())
	_, err = users.UpdateCurrent(other, &types.UpdateUserRequest{DisplayName: "Imposter", Email: strPtr("ada@example.com")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = users.GetCurrent(anonymousCtx())
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestSearchCandidates(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	users := service.NewUserService(db)
	me := testhelpers.CreateUser(t, db, "Sam Searcher")
	friend := testhelpers.CreateUser(t, db, "Sam Friend")
	pending := testhelpers.CreateUser(t, db, "Sam Pending")
	stranger := testhelpers.CreateUser(t, db, "Sam Stranger")
	testhelpers.CreateUser(t, db, "Percent%Person")
	testhelpers.MakeFriends(t, db, me.ID, friend.ID)

	_, err := service.NewFriendService(db).SendRequest(testhelpers.AsUser(pending.ID), me.ID)
	require.NoError(t, err)

	ctx := testhelpers.AsUser(me.ID)
	found, err := users.SearchCandidates(ctx, "sam")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stranger.ID, found[0].ID)

	found, err = users.SearchCandidates(ctx, "%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Percent%Person", found[0].DisplayName)

	found, err = users.SearchCandidates(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, found)
}
