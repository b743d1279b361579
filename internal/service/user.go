package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/database"
	"github.com/larder-app/larder/backend/internal/identity"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/types"
)

const maxSearchResults = 20

// UserService manages the local user records mirrored from the auth provider.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetCurrent returns the caller's user record.
func (s *UserService) GetCurrent(ctx context.Context) (*models.User, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, userID)
}

func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateCurrent creates or updates the caller's record.
func (s *UserService) UpdateCurrent(ctx context.Context, req *types.UpdateUserRequest) (*models.User, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:          userID,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       req.Email,
		AvatarURL:   req.AvatarURL,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "email", "avatar_url", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.KindConflict, "email_taken", "email is already in use")
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return s.GetByID(ctx, userID)
}

// SearchCandidates finds users by display name who could receive a friend
// request: the caller and anyone sharing a friendship row with them are excluded.
func (s *UserService) SearchCandidates(ctx context.Context, query string) ([]models.User, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}

	related := s.db.Model(&models.Friendship{}).
		Select("CASE WHEN user_low = ? THEN user_high ELSE user_low END", userID).
		Where("user_low = ? OR user_high = ?", userID, userID)

	var users []models.User
	err = s.db.WithContext(ctx).
		Where("LOWER(display_name) LIKE ? ESCAPE '\\'", "%"+strings.ToLower(escapeLike(query))+"%").
		Where("id <> ?", userID).
		Where("id NOT IN (?)", related).
		Order("display_name").
		Limit(maxSearchResults).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// usersByID loads users keyed by id in one query.
func usersByID(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	out := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func userSummary(users map[uuid.UUID]models.User, id uuid.UUID) types.UserSummary {
	if u, ok := users[id]; ok {
		return types.NewUserSummary(&u)
	}
	return types.UserSummary{ID: id}
}
