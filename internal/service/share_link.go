package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/database"
	"github.com/larder-app/larder/backend/internal/identity"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/types"
)

const (
	shareCodeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	ShareCodeLength      = 9
	maxShareCodeAttempts = 10
)

// GenerateShareCode draws ShareCodeLength characters uniformly from [A-Za-z0-9].
func GenerateShareCode() (string, error) {
	max := big.NewInt(int64(len(shareCodeAlphabet)))
	code := make([]byte, ShareCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate share code: %w", err)
		}
		code[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// RecipeReader loads a recipe enriched for the given viewer.
type RecipeReader interface {
	Enrich(ctx context.Context, recipe *models.Recipe, viewer *uuid.UUID) (*types.RecipeResponse, error)
}

// ShareLinkService manages public share links and their access log.
type ShareLinkService struct {
	db      *gorm.DB
	recipes RecipeReader
	now     func() time.Time
	newCode func() (string, error)
}

func NewShareLinkService(db *gorm.DB, recipes RecipeReader) *ShareLinkService {
	return &ShareLinkService{
		db:      db,
		recipes: recipes,
		now:     time.Now,
		newCode: GenerateShareCode,
	}
}

func (s *ShareLinkService) WithNowFunc(now func() time.Time) *ShareLinkService {
	s.now = now
	return s
}

// WithCodeGenerator replaces the share code source.
func (s *ShareLinkService) WithCodeGenerator(gen func() (string, error)) *ShareLinkService {
	s.newCode = gen
	return s
}

// CreateLink creates an active link for one of the caller's recipes.
func (s *ShareLinkService) CreateLink(ctx context.Context, recipeID uuid.UUID, expiresInDays *int) (*models.ShareLink, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	if expiresInDays != nil && *expiresInDays < 1 {
		return nil, apperr.ErrInvalidInput
	}

	db := s.db.WithContext(ctx)
	if _, err := loadOwnedRecipe(db, recipeID, userID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxShareCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		var count int64
		if err := db.Model(&models.ShareLink{}).Where("share_code = ?", code).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check share code: %w", err)
		}
		if count > 0 {
			continue
		}

		link := &models.ShareLink{
			OwnerID:   userID,
			RecipeID:  recipeID,
			ShareCode: code,
			ExpiresAt: expiryFrom(s.now(), expiresInDays),
			IsActive:  true,
		}
		if err := db.Create(link).Error; err != nil {
			if database.IsUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("failed to create share link: %w", err)
		}
		return link, nil
	}
	return nil, apperr.ErrCodeGenerationExhausted
}

func (s *ShareLinkService) findByCode(db *gorm.DB, code string) (*models.ShareLink, error) {
	var link models.ShareLink
	if err := db.Where("share_code = ?", code).First(&link).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load share link: %w", err)
	}
	return &link, nil
}

// check classifies a link; a nil link is not_found.
func (s *ShareLinkService) check(link *models.ShareLink) types.ShareCodeValidation {
	switch {
	case link == nil:
		return types.ShareCodeValidation{Reason: types.LinkReasonNotFound}
	case !link.IsActive:
		return types.ShareCodeValidation{Reason: types.LinkReasonRevoked}
	case link.ExpiredAt(s.now()):
		return types.ShareCodeValidation{Reason: types.LinkReasonExpired}
	}
	recipeID := link.RecipeID
	return types.ShareCodeValidation{Valid: true, RecipeID: &recipeID}
}

// ValidateShareCode reports whether code can be used, without side effects.
func (s *ShareLinkService) ValidateShareCode(ctx context.Context, code string) (*types.ShareCodeValidation, error) {
	link, err := s.findByCode(s.db.WithContext(ctx), code)
	if err != nil {
		return nil, err
	}
	v := s.check(link)
	return &v, nil
}

// AccessByCode returns the recipe behind a usable code. It never records the
// access; invalid codes yield Valid=false with a reason.
func (s *ShareLinkService) AccessByCode(ctx context.Context, code string) (*types.SharedRecipeView, error) {
	db := s.db.WithContext(ctx)
	link, err := s.findByCode(db, code)
	if err != nil {
		return nil, err
	}
	view := &types.SharedRecipeView{ShareCodeValidation: s.check(link)}
	if !view.Valid {
		return view, nil
	}

	var recipe models.Recipe
	if err := db.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order")
	}).Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_number")
	}).First(&recipe, "id = ?", link.RecipeID).Error; err != nil {
		if database.IsNotFound(err) {
			return &types.SharedRecipeView{ShareCodeValidation: types.ShareCodeValidation{Reason: types.LinkReasonNotFound}}, nil
		}
		return nil, fmt.Errorf("failed to load shared recipe: %w", err)
	}

	resp, err := s.recipes.Enrich(ctx, &recipe, identity.CurrentUserOrNull(ctx))
	if err != nil {
		return nil, err
	}
	view.Recipe = resp
	view.OwnerName = resp.OwnerName
	view.AccessCount = link.AccessCount
	return view, nil
}

// RecordAccess re-validates the code and logs one access by the current
// principal, who may be anonymous.
func (s *ShareLinkService) RecordAccess(ctx context.Context, code string) (*types.ShareCodeValidation, error) {
	principal := identity.CurrentUserOrNull(ctx)
	var result types.ShareCodeValidation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link, err := s.findByCode(tx, code)
		if err != nil {
			return err
		}
		result = s.check(link)
		if !result.Valid {
			return nil
		}

		now := s.now().UTC()
		err = tx.Model(&models.ShareLink{}).Where("id = ?", link.ID).Updates(map[string]interface{}{
			"access_count":     gorm.Expr("access_count + 1"),
			"last_accessed_at": now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update share link: %w", err)
		}
		entry := &models.ShareLinkAccess{LinkID: link.ID, AccessedBy: principal, AccessedAt: now}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record share link access: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *ShareLinkService) loadOwnedLink(tx *gorm.DB, linkID, userID uuid.UUID) (*models.ShareLink, error) {
	var link models.ShareLink
	if err := tx.First(&link, "id = ?", linkID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to load share link: %w", err)
	}
	if link.OwnerID != userID {
		return nil, apperr.ErrNotOwner
	}
	return &link, nil
}

func (s *ShareLinkService) setActive(ctx context.Context, linkID uuid.UUID, active bool) (*models.ShareLink, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	link, err := s.loadOwnedLink(db, linkID, userID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(link).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("failed to update share link: %w", err)
	}
	link.IsActive = active
	return link, nil
}

// Revoke deactivates a link; its row and access history are kept.
func (s *ShareLinkService) Revoke(ctx context.Context, linkID uuid.UUID) (*models.ShareLink, error) {
	return s.setActive(ctx, linkID, false)
}

// Reactivate re-enables a revoked link. Expiry is not extended.
func (s *ShareLinkService) Reactivate(ctx context.Context, linkID uuid.UUID) (*models.ShareLink, error) {
	return s.setActive(ctx, linkID, true)
}

// DeleteLink removes a link and its access log.
func (s *ShareLinkService) DeleteLink(ctx context.Context, linkID uuid.UUID) error {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link, err := s.loadOwnedLink(tx, linkID, userID)
		if err != nil {
			return err
		}
		return deleteLinks(tx, []uuid.UUID{link.ID})
	})
}

// DeleteAllForRecipe removes every link on one of the caller's recipes.
func (s *ShareLinkService) DeleteAllForRecipe(ctx context.Context, recipeID uuid.UUID) (int, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return 0, err
	}
	var removed int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedRecipe(tx, recipeID, userID); err != nil {
			return err
		}
		var ids []uuid.UUID
		if err := tx.Model(&models.ShareLink{}).Where("recipe_id = ?", recipeID).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to list share links: %w", err)
		}
		removed = len(ids)
		return deleteLinks(tx, ids)
	})
	return removed, err
}

// deleteLinks deletes access-log rows before their links.
func deleteLinks(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("link_id IN ?", ids).Delete(&models.ShareLinkAccess{}).Error; err != nil {
		return fmt.Errorf("failed to delete share link accesses: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.ShareLink{}).Error; err != nil {
		return fmt.Errorf("failed to delete share links: %w", err)
	}
	return nil
}

// ListForRecipe returns the links on one of the caller's recipes, newest first.
func (s *ShareLinkService) ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]types.ShareLinkResponse, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := loadOwnedRecipe(db, recipeID, userID); err != nil {
		return nil, err
	}
	var links []models.ShareLink
	if err := db.Where("recipe_id = ?", recipeID).Order("created_at DESC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to list share links: %w", err)
	}
	now := s.now()
	out := make([]types.ShareLinkResponse, 0, len(links))
	for i := range links {
		out = append(out, types.NewShareLinkResponse(&links[i], now))
	}
	return out, nil
}
