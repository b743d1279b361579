package testhelpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larder-app/larder/backend/internal/models"
)

func TestNewSQLiteDBIsIsolated(t *testing.T) {
	first := NewSQLiteDB(t)
	second := NewSQLiteDB(t)

	CreateUser(t, first, "Ada")

	var count int64
	require.NoError(t, second.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFixtures(t *testing.T) {
	db := NewSQLiteDB(t)
	owner := CreateUser(t, db, "Ada")
	friend := CreateUser(t, db, "Grace")

	recipe := CreateRecipe(t, db, owner.ID, "Soup",
		WithIngredients(Ingredient("Leek", 2, ""), Ingredient("Salt", -1, "")),
		WithTags("winter"),
	)
	assert.Equal(t, 1, recipe.Ingredients[1].SortOrder)
	assert.Nil(t, recipe.Ingredients[1].Amount)

	f := MakeFriends(t, db, friend.ID, owner.ID)
	assert.True(t, f.Involves(owner.ID))
	assert.Equal(t, models.FriendshipAccepted, f.Status)
}

func TestClock(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(start)
	c.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), c.Now())
}

func TestPostgresDatabase(t *testing.T) {
	db := SetupPostgresDatabase(t)
	require.NoError(t, db.AutoMigrate(models.All()...))

	user := CreateUser(t, db, "Container User")
	assert.NotZero(t, user.ID)
}
