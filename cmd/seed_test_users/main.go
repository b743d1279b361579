package main

import (
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/larder-app/larder/backend/config"
	"github.com/larder-app/larder/backend/internal/database"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/service"
	"github.com/larder-app/larder/backend/internal/types"
)

// Fixed ids keep the printed tokens valid across reseeds.
var testUsers = []struct {
	id    string
	name  string
	email string
}{
	{"0b6f5a3e-2d1c-4c8e-9a47-1f2e3d4c5b6a", "John Doe", "john.doe@example.com"},
	{"1c7a6b4f-3e2d-4d9f-8b58-2a3f4e5d6c7b", "Jane Smith", "jane.smith@example.com"},
	{"2d8b7c5a-4f3e-4eaa-9c69-3b4a5f6e7d8c", "Bob Wilson", "bob.wilson@example.com"},
	{"3e9c8d6b-5a4f-4fbb-8d7a-4c5b6a7f8e9d", "Alice Cooper", "alice.cooper@example.com"},
}

func main() {
	ttl := flag.Duration("ttl", 24*time.Hour, "Lifetime of the printed bearer tokens")
	befriend := flag.Bool("friends", true, "Make the first two users friends")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set to issue test tokens")
	}
	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	auth := service.NewAuthService(cfg.JWTSecret, cfg.JWTIssuer)

	log.Println("Creating test users...")
	ids := make([]uuid.UUID, 0, len(testUsers))
	for _, data := range testUsers {
		id := uuid.MustParse(data.id)
		ids = append(ids, id)

		var existing models.User
		if err := db.Where("id = ?", id).First(&existing).Error; err == nil {
			log.Printf("User %s already exists, skipping...", data.email)
		} else {
			email := data.email
			user := models.User{ID: id, DisplayName: data.name, Email: &email}
			if err := db.Create(&user).Error; err != nil {
				log.Printf("Failed to create user %s: %v", data.email, err)
				continue
			}
			log.Printf("Created user: %s (%s)", data.name, data.email)
		}

		token, err := auth.GenerateToken(&types.TokenClaims{UserID: id}, *ttl)
		if err != nil {
			log.Fatalf("Failed to issue token for %s: %v", data.email, err)
		}
		log.Printf("  id=%s\n  token=%s", id, token)
	}

	if *befriend && len(ids) >= 2 {
		low, high := models.OrderedPair(ids[0], ids[1])
		var count int64
		db.Model(&models.Friendship{}).Where("user_low = ? AND user_high = ?", low, high).Count(&count)
		if count == 0 {
			f := models.Friendship{UserLow: low, UserHigh: high, Status: models.FriendshipAccepted, RequestedBy: ids[0]}
			if err := db.Create(&f).Error; err != nil {
				log.Printf("Failed to create friendship: %v", err)
			} else {
				log.Printf("%s and %s are now friends", testUsers[0].name, testUsers[1].name)
			}
		}
	}

	log.Println("Test users created successfully!")
}
