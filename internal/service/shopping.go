package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larder-app/larder/backend/internal/access"
	"github.com/larder-app/larder/backend/internal/aisle"
	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/database"
	"github.com/larder-app/larder/backend/internal/identity"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/types"
)

// DefaultListName is used for lists created implicitly by AddItem.
const DefaultListName = "Shopping List"

// ShoppingService manages shopping lists and merges added items into them.
type ShoppingService struct {
	db     *gorm.DB
	access *access.Evaluator
	now    func() time.Time
}

// NewShoppingService creates a ShoppingService. shares is used to check that
// the caller can read recipes whose ingredients they add.
func NewShoppingService(db *gorm.DB, shares access.ShareLookup) *ShoppingService {
	return &ShoppingService{
		db:     db,
		access: access.NewEvaluator(shares),
		now:    time.Now,
	}
}

func (s *ShoppingService) WithNowFunc(now func() time.Time) *ShoppingService {
	s.now = now
	return s
}

func (s *ShoppingService) loadOwnedList(tx *gorm.DB, listID, userID uuid.UUID) (*models.ShoppingList, error) {
	var list models.ShoppingList
	if err := tx.First(&list, "id = ?", listID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrListNotFound
		}
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	if list.OwnerID != userID {
		return nil, apperr.ErrNotAuthorized
	}
	return &list, nil
}

func (s *ShoppingService) findActive(tx *gorm.DB, userID uuid.UUID) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := tx.Where("owner_id = ? AND is_active = ?", userID, true).Order("updated_at DESC").First(&list).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load active shopping list: %w", err)
	}
	return &list, nil
}

// resolveList returns the explicit list if given, else the active list,
// creating one when the caller has none.
func (s *ShoppingService) resolveList(tx *gorm.DB, userID uuid.UUID, listID *uuid.UUID) (*models.ShoppingList, error) {
	if listID != nil {
		return s.loadOwnedList(tx, *listID, userID)
	}
	list, err := s.findActive(tx, userID)
	if err != nil || list != nil {
		return list, err
	}
	list = &models.ShoppingList{OwnerID: userID, Name: DefaultListName, IsActive: true}
	if err := tx.Create(list).Error; err != nil {
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}
	return list, nil
}

func (s *ShoppingService) touchList(tx *gorm.DB, listID uuid.UUID) error {
	err := tx.Model(&models.ShoppingList{}).Where("id = ?", listID).Update("updated_at", s.now().UTC()).Error
	if err != nil {
		return fmt.Errorf("failed to update shopping list: %w", err)
	}
	return nil
}

type itemInput struct {
	name     string
	amount   *float64
	unit     *string
	category *string
	recipeID *uuid.UUID
}

// findMergeTarget returns the first item in the list whose name matches
// name case-insensitively, restricted to recipeID when given. Names are
// folded in Go since SQLite's LOWER only handles ASCII.
func findMergeTarget(tx *gorm.DB, listID uuid.UUID, name string, recipeID *uuid.UUID) (*models.ShoppingItem, error) {
	q := tx.Where("list_id = ?", listID)
	if recipeID != nil {
		q = q.Where("recipe_id = ?", *recipeID)
	}
	var items []models.ShoppingItem
	if err := q.Order("sort_order").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to look up shopping item: %w", err)
	}
	name = strings.TrimSpace(name)
	for i := range items {
		if strings.EqualFold(strings.TrimSpace(items[i].Name), name) {
			return &items[i], nil
		}
	}
	return nil, nil
}

// mergeOrInsert adds in to the list. An existing item with the same name
// (case-insensitive) and recipe gets the amount summed onto it, keeping its
// unit; otherwise a new unchecked item is appended.
func (s *ShoppingService) mergeOrInsert(tx *gorm.DB, listID uuid.UUID, in itemInput) (uuid.UUID, bool, error) {
	existing, err := findMergeTarget(tx, listID, in.name, in.recipeID)
	if err != nil {
		return uuid.Nil, false, err
	}
	if existing != nil {
		if in.amount == nil {
			return existing.ID, true, nil
		}
		total := *in.amount
		if existing.Amount != nil {
			total += *existing.Amount
		}
		if err := tx.Model(existing).Update("amount", total).Error; err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to merge shopping item: %w", err)
		}
		return existing.ID, true, nil
	}

	var next int
	if err := tx.Model(&models.ShoppingItem{}).Where("list_id = ?", listID).
		Select("COALESCE(MAX(sort_order), -1) + 1").Scan(&next).Error; err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to compute sort order: %w", err)
	}
	category := in.category
	if category == nil || strings.TrimSpace(*category) == "" {
		c := aisle.Classify(in.name)
		category = &c
	}
	item := &models.ShoppingItem{
		ListID:    listID,
		Name:      in.name,
		Amount:    in.amount,
		Unit:      in.unit,
		Category:  category,
		RecipeID:  in.recipeID,
		SortOrder: next,
	}
	if err := tx.Create(item).Error; err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to add shopping item: %w", err)
	}
	return item.ID, false, nil
}

// AddItem merges or inserts one item into the target list.
func (s *ShoppingService) AddItem(ctx context.Context, req *types.AddShoppingItemRequest) (*types.AddItemResult, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.ErrInvalidInput
	}

	var result types.AddItemResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := s.resolveList(tx, userID, req.ListID)
		if err != nil {
			return err
		}
		itemID, merged, err := s.mergeOrInsert(tx, list.ID, itemInput{
			name:     name,
			amount:   req.Amount,
			unit:     req.Unit,
			category: req.Category,
			recipeID: req.RecipeID,
		})
		if err != nil {
			return err
		}
		result = types.AddItemResult{ListID: list.ID, ItemID: itemID, Merged: merged}
		return s.touchList(tx, list.ID)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AddRecipeIngredients adds every non-optional ingredient of a readable
// recipe, scaled to the requested servings.
func (s *ShoppingService) AddRecipeIngredients(ctx context.Context, recipeID uuid.UUID, req *types.AddRecipeIngredientsRequest) (*types.AddRecipeIngredientsResult, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = &types.AddRecipeIngredientsRequest{}
	}

	var recipe models.Recipe
	err = s.db.WithContext(ctx).Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order")
	}).First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	ok, err := s.access.CanRead(ctx, &recipe, &userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrRecipeNotFound
	}

	servings := recipe.Servings
	if req.Servings != nil {
		servings = *req.Servings
	}
	scale := 1.0
	if recipe.Servings > 0 && servings != recipe.Servings {
		scale = float64(servings) / float64(recipe.Servings)
	}

	result := &types.AddRecipeIngredientsResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := s.resolveList(tx, userID, req.ListID)
		if err != nil {
			return err
		}
		result.ListID = list.ID

		rid := recipe.ID
		for _, ing := range recipe.Ingredients {
			if ing.IsOptional {
				result.Skipped++
				continue
			}
			var amount *float64
			if ing.Amount != nil {
				a := *ing.Amount * scale
				amount = &a
			}
			category := aisle.Classify(ing.Name)
			_, merged, err := s.mergeOrInsert(tx, list.ID, itemInput{
				name:     strings.TrimSpace(ing.Name),
				amount:   amount,
				unit:     ing.Unit,
				category: &category,
				recipeID: &rid,
			})
			if err != nil {
				return err
			}
			if merged {
				result.Merged++
			} else {
				result.Added++
			}
		}

		var linked int64
		if err := tx.Model(&models.ShoppingListRecipe{}).
			Where("list_id = ? AND recipe_id = ?", list.ID, rid).Count(&linked).Error; err != nil {
			return fmt.Errorf("failed to check list recipe: %w", err)
		}
		if linked == 0 {
			link := &models.ShoppingListRecipe{ListID: list.ID, RecipeID: rid, Servings: servings, AddedAt: s.now().UTC()}
			if err := tx.Create(link).Error; err != nil {
				return fmt.Errorf("failed to link recipe to list: %w", err)
			}
		}
		return s.touchList(tx, list.ID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ShoppingService) loadOwnedItem(tx *gorm.DB, itemID, userID uuid.UUID) (*models.ShoppingItem, error) {
	var item models.ShoppingItem
	if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load shopping item: %w", err)
	}
	if _, err := s.loadOwnedList(tx, item.ListID, userID); err != nil {
		return nil, err
	}
	return &item, nil
}

// ToggleItem flips an item's checked state.
func (s *ShoppingService) ToggleItem(ctx context.Context, itemID uuid.UUID) (*models.ShoppingItem, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	var item *models.ShoppingItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err = s.loadOwnedItem(tx, itemID, userID)
		if err != nil {
			return err
		}
		item.IsChecked = !item.IsChecked
		if item.IsChecked {
			now := s.now().UTC()
			item.CheckedAt = &now
		} else {
			item.CheckedAt = nil
		}
		err := tx.Model(item).Updates(map[string]interface{}{
			"is_checked": item.IsChecked,
			"checked_at": item.CheckedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to toggle shopping item: %w", err)
		}
		return s.touchList(tx, item.ListID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes one item.
func (s *ShoppingService) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.loadOwnedItem(tx, itemID, userID)
		if err != nil {
			return err
		}
		if err := tx.Delete(item).Error; err != nil {
			return fmt.Errorf("failed to remove shopping item: %w", err)
		}
		return s.touchList(tx, item.ListID)
	})
}

// ClearChecked deletes every checked item in the list.
func (s *ShoppingService) ClearChecked(ctx context.Context, listID uuid.UUID) (int64, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return 0, err
	}
	var removed int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadOwnedList(tx, listID, userID); err != nil {
			return err
		}
		res := tx.Where("list_id = ? AND is_checked = ?", listID, true).Delete(&models.ShoppingItem{})
		if res.Error != nil {
			return fmt.Errorf("failed to clear checked items: %w", res.Error)
		}
		removed = res.RowsAffected
		return s.touchList(tx, listID)
	})
	return removed, err
}

// deactivateAll clears the active flag on every list of userID.
func deactivateAll(tx *gorm.DB, userID uuid.UUID) error {
	err := tx.Model(&models.ShoppingList{}).Where("owner_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate shopping lists: %w", err)
	}
	return nil
}

// CreateList creates a new list and makes it the active one.
func (s *ShoppingService) CreateList(ctx context.Context, name string) (*models.ShoppingList, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultListName
	}
	list := &models.ShoppingList{OwnerID: userID, Name: name, IsActive: true}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deactivateAll(tx, userID); err != nil {
			return err
		}
		if err := tx.Create(list).Error; err != nil {
			return fmt.Errorf("failed to create shopping list: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// SetActiveList makes listID the caller's active list.
func (s *ShoppingService) SetActiveList(ctx context.Context, listID uuid.UUID) (*models.ShoppingList, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	var list *models.ShoppingList
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err = s.loadOwnedList(tx, listID, userID)
		if err != nil {
			return err
		}
		if err := deactivateAll(tx, userID); err != nil {
			return err
		}
		if err := tx.Model(list).Update("is_active", true).Error; err != nil {
			return fmt.Errorf("failed to activate shopping list: %w", err)
		}
		list.IsActive = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteList removes a list with its items and recipe links.
func (s *ShoppingService) DeleteList(ctx context.Context, listID uuid.UUID) error {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := s.loadOwnedList(tx, listID, userID)
		if err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", listID).Delete(&models.ShoppingItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete shopping items: %w", err)
		}
		if err := tx.Where("list_id = ?", listID).Delete(&models.ShoppingListRecipe{}).Error; err != nil {
			return fmt.Errorf("failed to delete list recipes: %w", err)
		}
		if err := tx.Delete(list).Error; err != nil {
			return fmt.Errorf("failed to delete shopping list: %w", err)
		}
		return nil
	})
}

// ListLists returns the caller's lists, active first.
func (s *ShoppingService) ListLists(ctx context.Context) ([]models.ShoppingList, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	var lists []models.ShoppingList
	err = s.db.WithContext(ctx).Where("owner_id = ?", userID).
		Order("is_active DESC").Order("updated_at DESC").Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists: %w", err)
	}
	return lists, nil
}

// GetActiveList returns the active list with its items. It does not create one.
func (s *ShoppingService) GetActiveList(ctx context.Context) (*types.ShoppingListResponse, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	list, err := s.findActive(db, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, apperr.ErrListNotFound
	}
	return s.withItems(db, list)
}

// GetList returns one of the caller's lists with its items.
func (s *ShoppingService) GetList(ctx context.Context, listID uuid.UUID) (*types.ShoppingListResponse, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	list, err := s.loadOwnedList(db, listID, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(db, list)
}

func (s *ShoppingService) withItems(db *gorm.DB, list *models.ShoppingList) (*types.ShoppingListResponse, error) {
	var items []models.ShoppingItem
	if err := db.Where("list_id = ?", list.ID).Order("sort_order").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load shopping items: %w", err)
	}
	list.Items = items
	resp := &types.ShoppingListResponse{ShoppingList: *list, Aisles: GroupByAisle(items)}
	for _, it := range items {
		if it.IsChecked {
			resp.CheckedCount++
		}
	}
	return resp, nil
}

// GroupByAisle groups items by category in store order. Categories outside
// the aisle table follow, sorted by name.
func GroupByAisle(items []models.ShoppingItem) []types.AisleGroup {
	rank := make(map[string]int)
	for i, name := range aisle.Names() {
		rank[name] = i
	}
	groups := make(map[string][]models.ShoppingItem)
	for _, it := range items {
		var name string
		if it.Category != nil && *it.Category != "" {
			name = *it.Category
		} else {
			name = aisle.Classify(it.Name)
		}
		groups[name] = append(groups[name], it)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iKnown := rank[names[i]]
		rj, jKnown := rank[names[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return names[i] < names[j]
		}
	})

	out := make([]types.AisleGroup, 0, len(names))
	for _, name := range names {
		out = append(out, types.AisleGroup{Aisle: name, Items: groups[name]})
	}
	return out
}
