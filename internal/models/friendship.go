package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendshipStatus is the state of the relationship between two users.
type FriendshipStatus string

const (
	FriendshipNone     FriendshipStatus = "none"
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship is the single row describing an unordered pair of users.
// UserLow and UserHigh are ordered by their string form so each pair maps to
// exactly one row; the direction of a request is carried by RequestedBy.
type Friendship struct {
	ID          uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	UserLow     uuid.UUID        `gorm:"type:varchar(36);not null;uniqueIndex:idx_friendships_pair" json:"user_low"`
	UserHigh    uuid.UUID        `gorm:"type:varchar(36);not null;uniqueIndex:idx_friendships_pair;index" json:"user_high"`
	Status      FriendshipStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RequestedBy uuid.UUID        `gorm:"type:varchar(36);not null" json:"requested_by"`
	BlockedBy   *uuid.UUID       `gorm:"type:varchar(36)" json:"blocked_by,omitempty"`
}

func (Friendship) TableName() string {
	return "friendships"
}

// BeforeCreate assigns an id and normalizes the pair ordering.
func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.UserLow, f.UserHigh = OrderedPair(f.UserLow, f.UserHigh)
	return nil
}

// OrderedPair returns a and b ordered by their canonical string form.
func OrderedPair(a, b uuid.UUID) (low, high uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

// Involves reports whether userID is one of the two members.
func (f *Friendship) Involves(userID uuid.UUID) bool {
	return f.UserLow == userID || f.UserHigh == userID
}

// Other returns the member that is not userID.
func (f *Friendship) Other(userID uuid.UUID) uuid.UUID {
	if f.UserLow == userID {
		return f.UserHigh
	}
	return f.UserLow
}
