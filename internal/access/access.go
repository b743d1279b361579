// Package access decides what a principal may do with a recipe.
package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/larder-app/larder/backend/internal/models"
)

// Decision is the outcome of a read check. Callers exposing recipes to
// clients collapse NotFound and Denied into the same response.
type Decision int

const (
	Allowed Decision = iota
	NotFound
	Denied
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case NotFound:
		return "not_found"
	default:
		return "denied"
	}
}

// ShareLookup reports whether userID currently holds an unexpired share on recipeID.
type ShareLookup interface {
	HasActiveShare(ctx context.Context, recipeID, userID uuid.UUID) (bool, error)
}

// Evaluator applies the recipe visibility rules.
type Evaluator struct {
	shares ShareLookup
}

func NewEvaluator(shares ShareLookup) *Evaluator {
	return &Evaluator{shares: shares}
}

// CanRead checks, in order: global, owner, public, active share.
func (e *Evaluator) CanRead(ctx context.Context, recipe *models.Recipe, principal *uuid.UUID) (bool, error) {
	if recipe == nil {
		return false, nil
	}
	if recipe.IsGlobal {
		return true, nil
	}
	if principal != nil && recipe.IsOwnedBy(*principal) {
		return true, nil
	}
	if recipe.IsPublic {
		return true, nil
	}
	if principal == nil || e.shares == nil {
		return false, nil
	}
	return e.shares.HasActiveShare(ctx, recipe.ID, *principal)
}

// Decide runs CanRead and distinguishes a missing recipe from a hidden one.
func (e *Evaluator) Decide(ctx context.Context, recipe *models.Recipe, principal *uuid.UUID) (Decision, error) {
	if recipe == nil {
		return NotFound, nil
	}
	ok, err := e.CanRead(ctx, recipe, principal)
	if err != nil {
		return Denied, err
	}
	if !ok {
		return Denied, nil
	}
	return Allowed, nil
}

// CanModify is true only for the owner of a non-global recipe.
func CanModify(recipe *models.Recipe, principal *uuid.UUID) bool {
	if recipe == nil || principal == nil || recipe.IsGlobal {
		return false
	}
	return recipe.IsOwnedBy(*principal)
}

// CanDelete follows the same rule as CanModify.
func CanDelete(recipe *models.Recipe, principal *uuid.UUID) bool {
	return CanModify(recipe, principal)
}
