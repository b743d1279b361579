// Package identity resolves the calling principal from a request context.
package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/larder-app/larder/backend/internal/apperr"
)

type ctxKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user id.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// CurrentUserOrFail returns the authenticated user id or ErrUnauthenticated.
func CurrentUserOrFail(ctx context.Context) (uuid.UUID, error) {
	if id := CurrentUserOrNull(ctx); id != nil {
		return *id, nil
	}
	return uuid.Nil, apperr.ErrUnauthenticated
}

// CurrentUserOrNull returns the authenticated user id, or nil for anonymous callers.
func CurrentUserOrNull(ctx context.Context) *uuid.UUID {
	if ctx == nil {
		return nil
	}
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return nil
	}
	return &id
}
