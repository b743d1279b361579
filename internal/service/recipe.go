package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larder-app/larder/backend/internal/access"
	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/database"
	"github.com/larder-app/larder/backend/internal/identity"
	"github.com/larder-app/larder/backend/internal/logging"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/types"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// RecipeService handles recipe reads, visibility and owner mutations.
type RecipeService struct {
	db     *gorm.DB
	access *access.Evaluator
	shares *ShareService
	images ImageStore
	now    func() time.Time
}

// NewRecipeService creates a new RecipeService. images may be nil when
// object storage is not configured.
func NewRecipeService(db *gorm.DB, shares *ShareService, images ImageStore) *RecipeService {
	var lookup access.ShareLookup
	if shares != nil {
		lookup = shares
	}
	return &RecipeService{
		db:     db,
		access: access.NewEvaluator(lookup),
		shares: shares,
		images: images,
		now:    time.Now,
	}
}

func (s *RecipeService) WithNowFunc(now func() time.Time) *RecipeService {
	s.now = now
	return s
}

func preloadChildren(db *gorm.DB) *gorm.DB {
	return db.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order")
	}).Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_number")
	}).Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tag")
	})
}

// Find loads a recipe with its children and the caller's read decision.
func (s *RecipeService) Find(ctx context.Context, id uuid.UUID) (*models.Recipe, access.Decision, error) {
	var recipe models.Recipe
	if err := preloadChildren(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, access.NotFound, nil
		}
		return nil, access.NotFound, fmt.Errorf("failed to get recipe: %w", err)
	}
	decision, err := s.access.Decide(ctx, &recipe, identity.CurrentUserOrNull(ctx))
	if err != nil {
		return nil, decision, err
	}
	return &recipe, decision, nil
}

// GetByID returns the enriched recipe, or nil when it is missing or not
// visible to the caller.
func (s *RecipeService) GetByID(ctx context.Context, id uuid.UUID) (*types.RecipeResponse, error) {
	recipe, decision, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision != access.Allowed {
		return nil, nil
	}
	return s.Enrich(ctx, recipe, identity.CurrentUserOrNull(ctx))
}

// List returns recipes visible to the caller. Anonymous callers only see
// global recipes.
func (s *RecipeService) List(ctx context.Context, q types.ListRecipesQuery) ([]types.RecipeResponse, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	db := s.db.WithContext(ctx)
	principal := identity.CurrentUserOrNull(ctx)
	query := db.Model(&models.Recipe{})

	switch {
	case q.GlobalOnly || principal == nil:
		query = query.Where("is_global = ?", true)
	default:
		cond := db.Where("owner_id = ? AND is_global = ?", *principal, false)
		if q.IncludeShared && s.shares != nil {
			ids, err := s.shares.SharedRecipeIDs(ctx, *principal)
			if err != nil {
				return nil, err
			}
			if len(ids) > 0 {
				cond = cond.Or("id IN ?", ids)
			}
		}
		if q.IncludeGlobal {
			cond = cond.Or("is_global = ?", true)
		}
		query = query.Where(cond)
	}

	var recipes []models.Recipe
	if err := query.Order("updated_at DESC").Limit(limit).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return s.enrichMany(ctx, recipes, principal)
}

// Enrich attaches owner name, tags and image URL to one recipe.
func (s *RecipeService) Enrich(ctx context.Context, recipe *models.Recipe, viewer *uuid.UUID) (*types.RecipeResponse, error) {
	out, err := s.enrichMany(ctx, []models.Recipe{*recipe}, viewer)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// enrichMany fetches tags and owners for all recipes in one query each.
func (s *RecipeService) enrichMany(ctx context.Context, recipes []models.Recipe, viewer *uuid.UUID) ([]types.RecipeResponse, error) {
	out := make([]types.RecipeResponse, 0, len(recipes))
	if len(recipes) == 0 {
		return out, nil
	}
	db := s.db.WithContext(ctx)

	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	ownerIDs := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		if r.OwnerID != nil {
			ownerIDs = append(ownerIDs, *r.OwnerID)
		}
	}

	var tags []models.RecipeTag
	if err := db.Where("recipe_id IN ?", recipeIDs).Order("tag").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipe tags: %w", err)
	}
	tagsByRecipe := make(map[uuid.UUID][]models.RecipeTag, len(recipes))
	for _, t := range tags {
		tagsByRecipe[t.RecipeID] = append(tagsByRecipe[t.RecipeID], t)
	}
	owners, err := usersByID(db, ownerIDs)
	if err != nil {
		return nil, err
	}

	for i := range recipes {
		r := recipes[i]
		r.Tags = tagsByRecipe[r.ID]
		resp := types.NewRecipeResponse(&r, viewer)
		if r.OwnerID != nil {
			if owner, ok := owners[*r.OwnerID]; ok {
				resp.OwnerName = owner.DisplayName
			}
		}
		if r.ImageKey != nil && s.images != nil {
			url, err := s.images.PresignedURL(ctx, *r.ImageKey)
			if err != nil {
				logging.FromContext(ctx).Warn("failed to presign recipe image", "recipe_id", r.ID, "error", err)
			} else {
				resp.ImageURL = url
			}
		}
		out = append(out, resp)
	}
	return out, nil
}

func buildIngredients(inputs []types.IngredientInput) []models.Ingredient {
	out := make([]models.Ingredient, 0, len(inputs))
	for i, in := range inputs {
		out = append(out, models.Ingredient{
			Name:        strings.TrimSpace(in.Name),
			Amount:      in.Amount,
			Unit:        in.Unit,
			Preparation: in.Preparation,
			IsOptional:  in.IsOptional,
			SortOrder:   i,
		})
	}
	return out
}

func buildSteps(inputs []types.StepInput) []models.Step {
	out := make([]models.Step, 0, len(inputs))
	for i, in := range inputs {
		out = append(out, models.Step{
			StepNumber:   i + 1,
			Instruction:  in.Instruction,
			TimerMinutes: in.TimerMinutes,
			Tip:          in.Tip,
		})
	}
	return out
}

// buildTags lower-cases and de-duplicates tags, keeping first occurrence order.
func buildTags(inputs []string) []models.RecipeTag {
	seen := make(map[string]bool, len(inputs))
	out := make([]models.RecipeTag, 0, len(inputs))
	for _, raw := range inputs {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, models.RecipeTag{Tag: tag})
	}
	return out
}

// Create stores a new private or public recipe owned by the caller.
func (s *RecipeService) Create(ctx context.Context, req *types.CreateRecipeRequest) (*types.RecipeResponse, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	recipe := &models.Recipe{
		OwnerID:     &userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Servings:    req.Servings,
		PrepMinutes: req.PrepMinutes,
		CookMinutes: req.CookMinutes,
		IsPublic:    req.IsPublic,
		Ingredients: buildIngredients(req.Ingredients),
		Steps:       buildSteps(req.Steps),
		Tags:        buildTags(req.Tags),
	}
	if req.Difficulty != nil {
		d := models.Difficulty(*req.Difficulty)
		recipe.Difficulty = &d
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	return s.reload(ctx, recipe.ID)
}

func (s *RecipeService) reload(ctx context.Context, id uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := preloadChildren(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload recipe: %w", err)
	}
	return s.Enrich(ctx, &recipe, identity.CurrentUserOrNull(ctx))
}

// loadModifiable loads a recipe the caller may modify. Recipes the caller
// cannot read are reported as not found.
func (s *RecipeService) loadModifiable(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	if !access.CanModify(&recipe, &userID) {
		if recipe.IsGlobal || recipe.IsPublic {
			return nil, apperr.ErrNotOwner
		}
		return nil, apperr.ErrRecipeNotFound
	}
	return &recipe, nil
}

// Update applies the non-nil fields of req. Supplied collections replace
// the stored ones.
func (s *RecipeService) Update(ctx context.Context, id uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.loadModifiable(ctx, tx, id, userID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Servings != nil {
			updates["servings"] = *req.Servings
		}
		if req.PrepMinutes != nil {
			updates["prep_minutes"] = *req.PrepMinutes
		}
		if req.CookMinutes != nil {
			updates["cook_minutes"] = *req.CookMinutes
		}
		if req.Difficulty != nil {
			updates["difficulty"] = models.Difficulty(*req.Difficulty)
		}
		if req.IsPublic != nil {
			updates["is_public"] = *req.IsPublic
		}
		if len(updates) > 0 {
			if err := tx.Model(recipe).Omit("Ingredients", "Steps", "Tags").Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update recipe: %w", err)
			}
		}

		if req.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.Ingredient{}).Error; err != nil {
				return fmt.Errorf("failed to replace ingredients: %w", err)
			}
			if err := createChildren(tx, id, buildIngredients(*req.Ingredients)); err != nil {
				return err
			}
		}
		if req.Steps != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.Step{}).Error; err != nil {
				return fmt.Errorf("failed to replace steps: %w", err)
			}
			if err := createChildren(tx, id, buildSteps(*req.Steps)); err != nil {
				return err
			}
		}
		if req.Tags != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
				return fmt.Errorf("failed to replace tags: %w", err)
			}
			if err := createChildren(tx, id, buildTags(*req.Tags)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// createChildren inserts ingredient, step or tag rows for recipeID.
func createChildren[T models.Ingredient | models.Step | models.RecipeTag](tx *gorm.DB, recipeID uuid.UUID, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		switch row := any(&rows[i]).(type) {
		case *models.Ingredient:
			row.RecipeID = recipeID
		case *models.Step:
			row.RecipeID = recipeID
		case *models.RecipeTag:
			row.RecipeID = recipeID
		}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create recipe children: %w", err)
	}
	return nil
}

// Delete removes a recipe with its children, shares, links and list links.
// Shopping items that came from it are kept with the recipe cleared.
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return err
	}
	var oldKey *string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.loadModifiable(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		oldKey = recipe.ImageKey

		for _, model := range []interface{}{&models.Ingredient{}, &models.Step{}, &models.RecipeTag{}, &models.RecipeShare{}, &models.ShoppingListRecipe{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete recipe children: %w", err)
			}
		}
		var linkIDs []uuid.UUID
		if err := tx.Model(&models.ShareLink{}).Where("recipe_id = ?", id).Pluck("id", &linkIDs).Error; err != nil {
			return fmt.Errorf("failed to list share links: %w", err)
		}
		if err := deleteLinks(tx, linkIDs); err != nil {
			return err
		}
		if err := tx.Model(&models.ShoppingItem{}).Where("recipe_id = ?", id).Update("recipe_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach shopping items: %w", err)
		}
		if err := tx.Delete(recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if oldKey != nil && s.images != nil {
		if err := s.images.Delete(ctx, *oldKey); err != nil {
			logging.FromContext(ctx).Warn("failed to delete recipe image", "recipe_id", id, "error", err)
		}
	}
	return nil
}

// ToggleFavorite flips the owner's favorite flag and returns the new value.
func (s *RecipeService) ToggleFavorite(ctx context.Context, id uuid.UUID) (bool, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return false, err
	}
	var favorite bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.loadModifiable(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		favorite = !recipe.IsFavorite
		if err := tx.Model(recipe).Update("is_favorite", favorite).Error; err != nil {
			return fmt.Errorf("failed to update favorite: %w", err)
		}
		return nil
	})
	return favorite, err
}

// MarkCooked increments the cook count and stamps the last cooked time.
func (s *RecipeService) MarkCooked(ctx context.Context, id uuid.UUID) (*types.RecipeResponse, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.loadModifiable(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		err = tx.Model(recipe).Updates(map[string]interface{}{
			"cook_count":     gorm.Expr("cook_count + 1"),
			"last_cooked_at": s.now().UTC(),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to mark recipe cooked: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// SetImage uploads a new image for the recipe and replaces the stored key.
func (s *RecipeService) SetImage(ctx context.Context, id uuid.UUID, data []byte, contentType string) (*types.RecipeResponse, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, apperr.New(apperr.KindExhausted, "storage_unavailable", "image storage is not configured")
	}
	db := s.db.WithContext(ctx)
	recipe, err := s.loadModifiable(ctx, db, id, userID)
	if err != nil {
		return nil, err
	}
	key, contentType, err := imageKey(id, data, contentType)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidOperation, "invalid_image", err.Error())
	}
	if err := s.images.Upload(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	// Update writes the new key back into recipe, so capture the old one first.
	oldKey := recipe.ImageKey
	if err := db.Model(recipe).Update("image_key", key).Error; err != nil {
		return nil, fmt.Errorf("failed to save image key: %w", err)
	}
	if oldKey != nil && *oldKey != key {
		if err := s.images.Delete(ctx, *oldKey); err != nil {
			logging.FromContext(ctx).Warn("failed to delete previous recipe image", "recipe_id", id, "error", err)
		}
	}
	return s.reload(ctx, id)
}
