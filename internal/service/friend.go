package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/database"
	"github.com/larder-app/larder/backend/internal/identity"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/types"
)

// FriendService runs the friendship state machine. Each pair of users has at
// most one row; every transition is a single-row write plus any share cleanup,
// inside one transaction.
type FriendService struct {
	db *gorm.DB
}

func NewFriendService(db *gorm.DB) *FriendService {
	return &FriendService{db: db}
}

// findPair returns the row for the unordered pair (a, b), or nil.
func findPair(tx *gorm.DB, a, b uuid.UUID) (*models.Friendship, error) {
	low, high := models.OrderedPair(a, b)
	var f models.Friendship
	err := tx.Where("user_low = ? AND user_high = ?", low, high).First(&f).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load friendship: %w", err)
	}
	return &f, nil
}

// areFriends reports whether a and b have an accepted friendship.
func areFriends(tx *gorm.DB, a, b uuid.UUID) (bool, error) {
	f, err := findPair(tx, a, b)
	if err != nil {
		return false, err
	}
	return f != nil && f.Status == models.FriendshipAccepted, nil
}

// deleteSharesBetween removes direct shares between a and b in both directions.
func deleteSharesBetween(tx *gorm.DB, a, b uuid.UUID) error {
	err := tx.Where("(owner_id = ? AND shared_with_id = ?) OR (owner_id = ? AND shared_with_id = ?)", a, b, b, a).
		Delete(&models.RecipeShare{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete shares: %w", err)
	}
	return nil
}

func (s *FriendService) getMembership(tx *gorm.DB, friendshipID, userID uuid.UUID) (*models.Friendship, error) {
	var f models.Friendship
	if err := tx.First(&f, "id = ?", friendshipID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrFriendshipNotFound
		}
		return nil, fmt.Errorf("failed to load friendship: %w", err)
	}
	if !f.Involves(userID) {
		return nil, apperr.ErrNotAuthorized
	}
	return &f, nil
}

// SendRequest creates a pending request from the caller to friendID.
func (s *FriendService) SendRequest(ctx context.Context, friendID uuid.UUID) (*models.Friendship, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	if userID == friendID {
		return nil, apperr.ErrSelfFriendship
	}

	var created *models.Friendship
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", friendID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if count == 0 {
			return apperr.ErrUserNotFound
		}

		existing, err := findPair(tx, userID, friendID)
		if err != nil {
			return err
		}
		if existing != nil {
			switch existing.Status {
			case models.FriendshipAccepted:
				return apperr.ErrAlreadyFriends
			case models.FriendshipPending:
				return apperr.ErrRequestPending
			default:
				return apperr.ErrBlocked
			}
		}

		f := &models.Friendship{
			UserLow:     userID,
			UserHigh:    friendID,
			Status:      models.FriendshipPending,
			RequestedBy: userID,
		}
		if err := tx.Create(f).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.ErrRequestPending
			}
			return fmt.Errorf("failed to create friend request: %w", err)
		}
		created = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AcceptRequest accepts a pending request addressed to the caller.
func (s *FriendService) AcceptRequest(ctx context.Context, friendshipID uuid.UUID) (*models.Friendship, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}

	var accepted *models.Friendship
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := s.getMembership(tx, friendshipID, userID)
		if err != nil {
			return err
		}
		if f.Status != models.FriendshipPending {
			return apperr.ErrNotPending
		}
		if f.RequestedBy == userID {
			return apperr.ErrCannotAcceptOwnRequest
		}
		res := tx.Model(f).Where("status = ?", models.FriendshipPending).
			Update("status", models.FriendshipAccepted)
		if res.Error != nil {
			return fmt.Errorf("failed to accept friend request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotPending
		}
		f.Status = models.FriendshipAccepted
		accepted = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// RejectRequest deletes a pending request the caller is part of.
func (s *FriendService) RejectRequest(ctx context.Context, friendshipID uuid.UUID) error {
	return s.deletePending(ctx, friendshipID, false)
}

// CancelRequest deletes a pending request the caller sent.
func (s *FriendService) CancelRequest(ctx context.Context, friendshipID uuid.UUID) error {
	return s.deletePending(ctx, friendshipID, true)
}

func (s *FriendService) deletePending(ctx context.Context, friendshipID uuid.UUID, requesterOnly bool) error {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := s.getMembership(tx, friendshipID, userID)
		if err != nil {
			return err
		}
		if f.Status != models.FriendshipPending {
			return apperr.ErrNotPending
		}
		if requesterOnly && f.RequestedBy != userID {
			return apperr.ErrNotAuthorized
		}
		if err := tx.Delete(f).Error; err != nil {
			return fmt.Errorf("failed to delete friend request: %w", err)
		}
		return nil
	})
}

// RemoveFriend deletes the caller's relationship with friendID in any state
// and removes shares between them. A block can only be cleared by the blocker.
func (s *FriendService) RemoveFriend(ctx context.Context, friendID uuid.UUID) error {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := findPair(tx, userID, friendID)
		if err != nil {
			return err
		}
		if f == nil {
			return apperr.ErrFriendshipNotFound
		}
		if f.Status == models.FriendshipBlocked && (f.BlockedBy == nil || *f.BlockedBy != userID) {
			return apperr.ErrNotAuthorized
		}
		if err := tx.Delete(f).Error; err != nil {
			return fmt.Errorf("failed to remove friend: %w", err)
		}
		return deleteSharesBetween(tx, userID, friendID)
	})
}

// BlockUser marks the pair blocked by the caller, replacing any pending or
// accepted state, and removes shares between them.
func (s *FriendService) BlockUser(ctx context.Context, targetID uuid.UUID) error {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return err
	}
	if userID == targetID {
		return apperr.ErrSelfFriendship
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", targetID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if count == 0 {
			return apperr.ErrUserNotFound
		}

		f, err := findPair(tx, userID, targetID)
		if err != nil {
			return err
		}
		blocker := userID
		switch {
		case f == nil:
			f = &models.Friendship{
				UserLow:     userID,
				UserHigh:    targetID,
				Status:      models.FriendshipBlocked,
				RequestedBy: userID,
				BlockedBy:   &blocker,
			}
			if err := tx.Create(f).Error; err != nil {
				return fmt.Errorf("failed to block user: %w", err)
			}
		case f.Status == models.FriendshipBlocked:
			if f.BlockedBy != nil && *f.BlockedBy == userID {
				return nil
			}
			return apperr.ErrBlocked
		default:
			err := tx.Model(f).Updates(map[string]interface{}{
				"status":     models.FriendshipBlocked,
				"blocked_by": blocker,
			}).Error
			if err != nil {
				return fmt.Errorf("failed to block user: %w", err)
			}
		}
		return deleteSharesBetween(tx, userID, targetID)
	})
}

// UnblockUser lifts a block the caller placed, returning the pair to none.
func (s *FriendService) UnblockUser(ctx context.Context, targetID uuid.UUID) error {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := findPair(tx, userID, targetID)
		if err != nil {
			return err
		}
		if f == nil || f.Status != models.FriendshipBlocked {
			return apperr.ErrFriendshipNotFound
		}
		if f.BlockedBy == nil || *f.BlockedBy != userID {
			return apperr.ErrNotAuthorized
		}
		if err := tx.Delete(f).Error; err != nil {
			return fmt.Errorf("failed to unblock user: %w", err)
		}
		return nil
	})
}

// StatusBetween returns the state of the pair; the result is symmetric.
func (s *FriendService) StatusBetween(ctx context.Context, a, b uuid.UUID) (models.FriendshipStatus, error) {
	f, err := findPair(s.db.WithContext(ctx), a, b)
	if err != nil {
		return "", err
	}
	if f == nil {
		return models.FriendshipNone, nil
	}
	return f.Status, nil
}

// ListFriends returns the caller's accepted friends.
func (s *FriendService) ListFriends(ctx context.Context) ([]types.FriendResponse, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rowsFor(ctx, userID, models.FriendshipAccepted)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, userID, rows)
}

// ListRequests returns pending requests split by direction.
func (s *FriendService) ListRequests(ctx context.Context) (*types.FriendRequests, error) {
	userID, err := identity.CurrentUserOrFail(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rowsFor(ctx, userID, models.FriendshipPending)
	if err != nil {
		return nil, err
	}
	all, err := s.toResponses(ctx, userID, rows)
	if err != nil {
		return nil, err
	}
	out := &types.FriendRequests{
		Incoming: []types.FriendResponse{},
		Outgoing: []types.FriendResponse{},
	}
	for _, r := range all {
		if r.RequestedBy == userID {
			out.Outgoing = append(out.Outgoing, r)
		} else {
			out.Incoming = append(out.Incoming, r)
		}
	}
	return out, nil
}

func (s *FriendService) rowsFor(ctx context.Context, userID uuid.UUID, status models.FriendshipStatus) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := s.db.WithContext(ctx).
		Where("(user_low = ? OR user_high = ?) AND status = ?", userID, userID, status).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}
	return rows, nil
}

func (s *FriendService) toResponses(ctx context.Context, userID uuid.UUID, rows []models.Friendship) ([]types.FriendResponse, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].Other(userID))
	}
	users, err := usersByID(s.db.WithContext(ctx), ids)
	if err != nil {
		return nil, err
	}
	out := make([]types.FriendResponse, 0, len(rows))
	for i := range rows {
		f := &rows[i]
		out = append(out, types.FriendResponse{
			FriendshipID: f.ID,
			User:         userSummary(users, f.Other(userID)),
			Status:       f.Status,
			RequestedBy:  f.RequestedBy,
			Since:        f.UpdatedAt,
		})
	}
	return out, nil
}
