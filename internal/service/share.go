package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/database"
	"github.com/larder-app/larder/backend/internal/identity"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/types"
)

const maxShareTargets = 50

// ShareService manages direct, friend-scoped recipe shares.
type ShareService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewShareService(db *gorm.DB) *ShareService {
	return &ShareService{db: db, now: time.Now}
}

func (s *ShareService) WithNowFunc(now func() time.Time) *ShareService {
	s.now = now
	return s
}

// loadOwnedRecipe returns the recipe if userID owns it.
func loadOwnedRecipe(tx *gorm.DB, recipeID, userID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	if recipe.IsGlobal || !recipe.IsOwnedBy(userID) {
		return nil, apperr.ErrNotOwner
	}
	return &recipe, nil
}

func expiryFrom(now time.Time, days *int) *time.Time {
	if days == nil {
		return nil
	}
	at := now.UTC().Add(time.Duration(*days) * 24 * time.Hour)
	return &at
}

// Share grants friendID read access to one of the caller's recipes.
func (s *ShareService) Share(ctx context.Context, recipeID, friendID uuid.UUID, opts types.ShareOptions) (*models.RecipeShare, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}

	var share *models.RecipeShare
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedRecipe(tx, recipeID, userID); err != nil {
			return err
		}
		share, err = s.shareOne(tx, userID, recipeID, friendID, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

func (s *ShareService) shareOne(tx *gorm.DB, ownerID, recipeID, friendID uuid.UUID, opts types.ShareOptions) (*models.RecipeShare, error) {
	ok, err := areFriends(tx, ownerID, friendID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFriends
	}

	var count int64
	if err := tx.Model(&models.RecipeShare{}).
		Where("recipe_id = ? AND shared_with_id = ?", recipeID, friendID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing share: %w", err)
	}
	if count > 0 {
		return nil, apperr.ErrAlreadyShared
	}

	share := &models.RecipeShare{
		OwnerID:      ownerID,
		RecipeID:     recipeID,
		SharedWithID: friendID,
		Permission:   models.SharePermissionView,
		ExpiresAt:    expiryFrom(s.now(), opts.ExpiresInDays),
		Message:      opts.Message,
	}
	if err := tx.Create(share).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.ErrAlreadyShared
		}
		return nil, fmt.Errorf("failed to create share: %w", err)
	}
	return share, nil
}

// ShareWithMultiple shares one recipe with several friends and reports the
// outcome per friend. Ownership failures abort the whole call.
func (s *ShareService) ShareWithMultiple(ctx context.Context, recipeID uuid.UUID, friendIDs []uuid.UUID, opts types.ShareOptions) ([]types.ShareResult, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	if len(friendIDs) == 0 || len(friendIDs) > maxShareTargets {
		return nil, apperr.ErrInvalidInput
	}

	results := make([]types.ShareResult, 0, len(friendIDs))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedRecipe(tx, recipeID, userID); err != nil {
			return err
		}
		seen := make(map[uuid.UUID]bool, len(friendIDs))
		for _, friendID := range friendIDs {
			result := types.ShareResult{FriendID: friendID}
			if seen[friendID] {
				result.Error = apperr.ErrAlreadyShared.Code
				results = append(results, result)
				continue
			}
			seen[friendID] = true

			share, err := s.shareOne(tx, userID, recipeID, friendID, opts)
			switch {
			case err == nil:
				result.Success = true
				result.ShareID = &share.ID
			case apperr.KindOf(err) != apperr.KindInternal:
				result.Error = apperr.CodeOf(err)
			default:
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Unshare removes the share of recipeID with friendID.
func (s *ShareService) Unshare(ctx context.Context, recipeID, friendID uuid.UUID) error {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedRecipe(tx, recipeID, userID); err != nil {
			return err
		}
		res := tx.Where("recipe_id = ? AND shared_with_id = ?", recipeID, friendID).Delete(&models.RecipeShare{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete share: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrShareNotFound
		}
		return nil
	})
}

// UnshareAll removes every share of recipeID and returns how many were removed.
func (s *ShareService) UnshareAll(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return 0, err
	}
	var removed int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedRecipe(tx, recipeID, userID); err != nil {
			return err
		}
		res := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeShare{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete shares: %w", res.Error)
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}

// ListForRecipe lists who a recipe is shared with, for its owner.
func (s *ShareService) ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]types.ShareResponse, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := loadOwnedRecipe(db, recipeID, userID); err != nil {
		return nil, err
	}

	var shares []models.RecipeShare
	if err := db.Where("recipe_id = ?", recipeID).Order("created_at").Find(&shares).Error; err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(shares))
	for _, sh := range shares {
		ids = append(ids, sh.SharedWithID)
	}
	users, err := usersByID(db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]types.ShareResponse, 0, len(shares))
	for _, sh := range shares {
		out = append(out, types.ShareResponse{
			ID:         sh.ID,
			RecipeID:   sh.RecipeID,
			SharedWith: userSummary(users, sh.SharedWithID),
			Permission: sh.Permission,
			Message:    sh.Message,
			ExpiresAt:  sh.ExpiresAt,
			CreatedAt:  sh.CreatedAt,
		})
	}
	return out, nil
}

// activeSharesFor returns unexpired shares received by userID whose owner is
// still an accepted friend.
func (s *ShareService) activeSharesFor(db *gorm.DB, userID uuid.UUID, recipeID *uuid.UUID) ([]models.RecipeShare, error) {
	q := db.Model(&models.RecipeShare{}).
		Joins("JOIN friendships f ON f.status = ? AND ((f.user_low = recipe_shares.owner_id AND f.user_high = recipe_shares.shared_with_id) OR (f.user_high = recipe_shares.owner_id AND f.user_low = recipe_shares.shared_with_id))", models.FriendshipAccepted).
		Where("recipe_shares.shared_with_id = ?", userID)
	if recipeID != nil {
		q = q.Where("recipe_shares.recipe_id = ?", *recipeID)
	}
	var shares []models.RecipeShare
	if err := q.Order("recipe_shares.created_at DESC").Find(&shares).Error; err != nil {
		return nil, fmt.Errorf("failed to load shares: %w", err)
	}
	now := s.now()
	active := shares[:0]
	for _, sh := range shares {
		if sh.ActiveAt(now) {
			active = append(active, sh)
		}
	}
	return active, nil
}

// HasActiveShare reports whether userID can read recipeID through a share.
func (s *ShareService) HasActiveShare(ctx context.Context, recipeID, userID uuid.UUID) (bool, error) {
	shares, err := s.activeSharesFor(s.db.WithContext(ctx), userID, &recipeID)
	if err != nil {
		return false, err
	}
	return len(shares) > 0, nil
}

// SharedRecipeIDs returns the ids of recipes actively shared with userID.
func (s *ShareService) SharedRecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	shares, err := s.activeSharesFor(s.db.WithContext(ctx), userID, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(shares))
	for _, sh := range shares {
		ids = append(ids, sh.RecipeID)
	}
	return ids, nil
}

// ListReceived returns the caller's active received shares.
func (s *ShareService) ListReceived(ctx context.Context) ([]types.ReceivedShareResponse, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	shares, err := s.activeSharesFor(db, userID, nil)
	if err != nil {
		return nil, err
	}
	if len(shares) == 0 {
		return []types.ReceivedShareResponse{}, nil
	}

	recipeIDs := make([]uuid.UUID, 0, len(shares))
	ownerIDs := make([]uuid.UUID, 0, len(shares))
	for _, sh := range shares {
		recipeIDs = append(recipeIDs, sh.RecipeID)
		ownerIDs = append(ownerIDs, sh.OwnerID)
	}
	var recipes []models.Recipe
	if err := db.Select("id", "title").Where("id IN ?", recipeIDs).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load shared recipes: %w", err)
	}
	titles := make(map[uuid.UUID]string, len(recipes))
	for _, r := range recipes {
		titles[r.ID] = r.Title
	}
	owners, err := usersByID(db, ownerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.ReceivedShareResponse, 0, len(shares))
	for _, sh := range shares {
		out = append(out, types.ReceivedShareResponse{
			ID:          sh.ID,
			RecipeID:    sh.RecipeID,
			RecipeTitle: titles[sh.RecipeID],
			Owner:       userSummary(owners, sh.OwnerID),
			Message:     sh.Message,
			ExpiresAt:   sh.ExpiresAt,
			CreatedAt:   sh.CreatedAt,
		})
	}
	return out, nil
}
