package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/larder-app/larder/backend/config"
	"github.com/larder-app/larder/backend/internal/database"
	"github.com/larder-app/larder/backend/internal/models"
)

// IngredientData is one catalog ingredient. Amount 0 means "to taste".
type IngredientData struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Optional bool    `json:"optional"`
}

// RecipeData is one entry of the global recipe catalog.
type RecipeData struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Servings     int              `json:"servings"`
	PrepMinutes  int              `json:"prep_minutes"`
	CookMinutes  int              `json:"cook_minutes"`
	Difficulty   string           `json:"difficulty"`
	Ingredients  []IngredientData `json:"ingredients"`
	Instructions []string         `json:"instructions"`
	Tags         []string         `json:"tags"`
}

var catalog = []RecipeData{
	{
		Title:       "Classic Tomato Soup",
		Description: "A smooth, comforting soup made with ripe tomatoes and fresh basil.",
		Servings:    4, PrepMinutes: 10, CookMinutes: 30, Difficulty: "easy",
		Ingredients: []IngredientData{
			{Name: "Tomatoes", Amount: 1, Unit: "kg"},
			{Name: "Onion", Amount: 1},
			{Name: "Garlic", Amount: 2, Unit: "cloves"},
			{Name: "Vegetable broth", Amount: 500, Unit: "ml"},
			{Name: "Olive oil", Amount: 2, Unit: "tbsp"},
			{Name: "Basil", Amount: 1, Unit: "handful", Optional: true},
			{Name: "Salt"},
		},
		Instructions: []string{
			"Soften the onion and garlic in olive oil.",
			"Add the tomatoes and broth and simmer for 25 minutes.",
			"Blend until smooth and season to taste.",
		},
		Tags: []string{"soup", "vegetarian"},
	},
	{
		Title:       "Spaghetti Aglio e Olio",
		Description: "Pasta tossed with garlic, chili and good olive oil.",
		Servings:    2, PrepMinutes: 5, CookMinutes: 15, Difficulty: "easy",
		Ingredients: []IngredientData{
			{Name: "Spaghetti", Amount: 200, Unit: "g"},
			{Name: "Garlic", Amount: 4, Unit: "cloves"},
			{Name: "Olive oil", Amount: 60, Unit: "ml"},
			{Name: "Chili flakes", Amount: 1, Unit: "tsp", Optional: true},
			{Name: "Parsley", Amount: 1, Unit: "tbsp"},
			{Name: "Parmesan", Amount: 30, Unit: "g", Optional: true},
		},
		Instructions: []string{
			"Cook the spaghetti in salted water until al dente.",
			"Gently fry sliced garlic and chili in the oil.",
			"Toss the pasta with the oil, a splash of pasta water and parsley.",
		},
		Tags: []string{"pasta", "quick"},
	},
	{
		Title:       "Banana Pancakes",
		Description: "Fluffy weekend pancakes with mashed banana.",
		Servings:    4, PrepMinutes: 10, CookMinutes: 15, Difficulty: "easy",
		Ingredients: []IngredientData{
			{Name: "Flour", Amount: 200, Unit: "g"},
			{Name: "Milk", Amount: 300, Unit: "ml"},
			{Name: "Eggs", Amount: 2},
			{Name: "Banana", Amount: 2},
			{Name: "Baking powder", Amount: 2, Unit: "tsp"},
			{Name: "Butter", Amount: 20, Unit: "g"},
			{Name: "Maple syrup", Optional: true},
		},
		Instructions: []string{
			"Mash the bananas and whisk in the eggs and milk.",
			"Fold in the flour and baking powder.",
			"Cook ladlefuls in a buttered pan until golden on both sides.",
		},
		Tags: []string{"breakfast", "vegetarian"},
	},
	{
		Title:       "Chicken Curry",
		Description: "A mild, creamy curry that works for a weeknight.",
		Servings:    4, PrepMinutes: 15, CookMinutes: 40, Difficulty: "medium",
		Ingredients: []IngredientData{
			{Name: "Chicken thighs", Amount: 600, Unit: "g"},
			{Name: "Onion", Amount: 2},
			{Name: "Ginger", Amount: 1, Unit: "tbsp"},
			{Name: "Garlic", Amount: 3, Unit: "cloves"},
			{Name: "Curry powder", Amount: 2, Unit: "tbsp"},
			{Name: "Coconut milk", Amount: 400, Unit: "ml"},
			{Name: "Rice", Amount: 300, Unit: "g"},
			{Name: "Cilantro", Optional: true},
		},
		Instructions: []string{
			"Brown the chicken and set aside.",
			"Cook the onion, ginger and garlic until soft, then add the curry powder.",
			"Return the chicken, pour in the coconut milk and simmer for 30 minutes.",
			"Serve over rice.",
		},
		Tags: []string{"curry", "dinner"},
	},
	{
		Title:       "Greek Salad",
		Description: "Crunchy vegetables, olives and feta with a simple dressing.",
		Servings:    2, PrepMinutes: 15, Difficulty: "easy",
		Ingredients: []IngredientData{
			{Name: "Cucumber", Amount: 1},
			{Name: "Tomatoes", Amount: 3},
			{Name: "Red onion", Amount: 0.5},
			{Name: "Kalamata olives", Amount: 80, Unit: "g"},
			{Name: "Feta", Amount: 150, Unit: "g"},
			{Name: "Olive oil", Amount: 3, Unit: "tbsp"},
			{Name: "Oregano", Amount: 1, Unit: "tsp"},
		},
		Instructions: []string{
			"Chop the vegetables into bite-sized pieces.",
			"Add the olives and top with the feta.",
			"Dress with olive oil and oregano.",
		},
		Tags: []string{"salad", "vegetarian", "quick"},
	},
	{
		Title:       "Lentil Stew",
		Description: "Hearty red lentil stew that keeps well for meal prep.",
		Servings:    6, PrepMinutes: 15, CookMinutes: 35, Difficulty: "easy",
		Ingredients: []IngredientData{
			{Name: "Red lentils", Amount: 300, Unit: "g"},
			{Name: "Carrot", Amount: 2},
			{Name: "Celery", Amount: 2, Unit: "stalks"},
			{Name: "Diced tomatoes", Amount: 400, Unit: "g"},
			{Name: "Vegetable stock", Amount: 1, Unit: "l"},
			{Name: "Cumin", Amount: 1, Unit: "tsp"},
			{Name: "Spinach", Amount: 100, Unit: "g", Optional: true},
		},
		Instructions: []string{
			"Sweat the carrot and celery until soft.",
			"Add the lentils, tomatoes, stock and cumin.",
			"Simmer for 30 minutes, stirring in the spinach at the end.",
		},
		Tags: []string{"stew", "vegan", "meal-prep"},
	},
}

func main() {
	file := flag.String("file", "", "Optional JSON file with additional catalog recipes")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	recipes := catalog
	if *file != "" {
		extra, err := loadCatalog(*file)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", *file, err)
		}
		recipes = append(recipes, extra...)
	}

	created := 0
	for _, data := range recipes {
		ok, err := seedRecipe(db, data)
		if err != nil {
			log.Printf("Failed to seed %q: %v", data.Title, err)
			continue
		}
		if !ok {
			log.Printf("Global recipe %q already exists, skipping...", data.Title)
			continue
		}
		created++
		log.Printf("Created global recipe: %s", data.Title)
	}
	log.Printf("Seeded %d of %d catalog recipes", created, len(recipes))
}

func loadCatalog(path string) ([]RecipeData, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recipes []RecipeData
	if err := json.Unmarshal(content, &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return recipes, nil
}

// seedRecipe inserts data as a global recipe unless one with the same title exists.
func seedRecipe(db *gorm.DB, data RecipeData) (bool, error) {
	var count int64
	if err := db.Model(&models.Recipe{}).Where("is_global = ? AND title = ?", true, data.Title).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	recipe := models.Recipe{
		Title:       data.Title,
		Description: data.Description,
		Servings:    data.Servings,
		IsGlobal:    true,
	}
	if recipe.Servings < 1 {
		recipe.Servings = 1
	}
	if data.PrepMinutes > 0 {
		recipe.PrepMinutes = &data.PrepMinutes
	}
	if data.CookMinutes > 0 {
		recipe.CookMinutes = &data.CookMinutes
	}
	if data.Difficulty != "" {
		d := models.Difficulty(data.Difficulty)
		recipe.Difficulty = &d
	}
	for i, ing := range data.Ingredients {
		ingredient := models.Ingredient{Name: ing.Name, IsOptional: ing.Optional, SortOrder: i}
		if ing.Amount > 0 {
			amount := ing.Amount
			ingredient.Amount = &amount
		}
		if ing.Unit != "" {
			unit := ing.Unit
			ingredient.Unit = &unit
		}
		recipe.Ingredients = append(recipe.Ingredients, ingredient)
	}
	for i, instruction := range data.Instructions {
		recipe.Steps = append(recipe.Steps, models.Step{StepNumber: i + 1, Instruction: instruction})
	}
	seen := make(map[string]bool)
	for _, tag := range data.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		recipe.Tags = append(recipe.Tags, models.RecipeTag{Tag: tag})
	}

	if err := db.Create(&recipe).Error; err != nil {
		return false, err
	}
	return true, nil
}
