package database_test

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/larder-app/larder/backend/config"
	"github.com/larder-app/larder/backend/internal/database"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/testhelpers"
)

func sqliteConfig(t *testing.T) *config.Config {
	return &config.Config{
		Environment: config.Test,
		DBDriver:    "sqlite",
		SQLitePath:  filepath.Join(t.TempDir(), "larder.db"),
	}
}

func TestNewSQLiteAutoMigrates(t *testing.T) {
	db, err := database.New(sqliteConfig(t))
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, "does-not-matter"))

	user := testhelpers.CreateUser(t, db, "Ada")
	assert.NotZero(t, user.ID)
	assert.NoError(t, database.HealthCheck(context.Background(), db))
}

func TestErrorClassification(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	email := "ada@example.com"
	require.NoError(t, db.Create(&models.User{DisplayName: "Ada", Email: &email}).Error)

	err := db.Create(&models.User{DisplayName: "Imposter", Email: &email}).Error
	assert.True(t, database.IsUniqueViolation(err))
	assert.False(t, database.IsNotFound(err))

	err = db.First(&models.User{}, "display_name = ?", "Nobody").Error
	assert.True(t, database.IsNotFound(err))
	assert.False(t, database.IsUniqueViolation(err))

	assert.False(t, database.IsUniqueViolation(nil))
	assert.True(t, database.IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, database.IsNotFound(errors.Join(errors.New("lookup"), gorm.ErrRecordNotFound)))
}

func TestRunMigrationsPostgres(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	dir := filepath.Join("..", "..", "migrations")

	require.NoError(t, database.RunMigrations(db, dir))
	require.NoError(t, database.RunMigrations(db, dir), "already applied migrations are skipped")

	var names []string
	require.NoError(t, db.Table("schema_migrations").Order("name").Pluck("name", &names).Error)
	assert.Equal(t, []string{"0001_init.sql"}, names)

	owner := testhelpers.CreateUser(t, db, "Owner")
	recipe := testhelpers.CreateRecipe(t, db, owner.ID, "Soup")
	link := &models.ShareLink{OwnerID: owner.ID, RecipeID: recipe.ID, ShareCode: "ABCDEFGHI", IsActive: true}
	require.NoError(t, db.Create(link).Error)

	dup := &models.ShareLink{OwnerID: owner.ID, RecipeID: recipe.ID, ShareCode: "ABCDEFGHI", IsActive: true}
	assert.True(t, database.IsUniqueViolation(db.Create(dup).Error))

	first := &models.ShoppingList{OwnerID: owner.ID, Name: "One", IsActive: true}
	require.NoError(t, db.Create(first).Error)
	second := &models.ShoppingList{OwnerID: owner.ID, Name: "Two", IsActive: true}
	assert.True(t, database.IsUniqueViolation(db.Create(second).Error), "a user has at most one active list")
}

func TestNewRedisClient(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	host, port, err := net.SplitHostPort(client.Options().Addr)
	require.NoError(t, err)

	cfg := &config.Config{RedisHost: host, RedisPort: port}
	direct, err := database.NewRedisClient(cfg)
	require.NoError(t, err)
	defer direct.Close()

	cfg = &config.Config{RedisURL: "redis://" + net.JoinHostPort(host, port) + "/1"}
	fromURL, err := database.NewRedisClient(cfg)
	require.NoError(t, err)
	defer fromURL.Close()
	assert.Equal(t, 1, fromURL.Options().DB)
}

func TestNewRedisClientInvalidURL(t *testing.T) {
	_, err := database.NewRedisClient(&config.Config{RedisURL: "not-a-redis-url"})
	assert.Error(t, err)
}
