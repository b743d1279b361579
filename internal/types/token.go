package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a JWT issued by the auth provider.
// Providers that only set "sub" are supported; UserID is filled from it.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID      uuid.UUID `json:"user_id,omitempty"`
	DisplayName string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
}
