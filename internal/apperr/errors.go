// Package apperr defines the error kinds surfaced by the recipe, friendship,
// sharing and shopping services and their mapping onto HTTP responses.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error independently of the entity it concerns.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindNotAuthorized
	KindNotFound
	KindInvalidOperation
	KindConflict
	KindExhausted
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotAuthorized:
		return "not_authorized"
	case KindNotFound:
		return "not_found"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindConflict:
		return "conflict"
	case KindExhausted:
		return "exhausted"
	default:
		return "internal"
	}
}

// Error is a domain error with a stable machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates a domain error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrUnauthenticated = New(KindUnauthenticated, "unauthenticated", "authentication required")

	ErrNotAuthorized = New(KindNotAuthorized, "not_authorized", "not authorized to perform this action")
	ErrNotOwner      = New(KindNotAuthorized, "not_owner", "only the recipe owner can do this")
	ErrNotFriends    = New(KindNotAuthorized, "not_friends", "recipes can only be shared with friends")

	ErrRecipeNotFound     = New(KindNotFound, "recipe_not_found", "recipe not found")
	ErrUserNotFound       = New(KindNotFound, "user_not_found", "user not found")
	ErrFriendshipNotFound = New(KindNotFound, "friendship_not_found", "friendship not found")
	ErrShareNotFound      = New(KindNotFound, "share_not_found", "share not found")
	ErrLinkNotFound       = New(KindNotFound, "share_link_not_found", "share link not found")
	ErrListNotFound       = New(KindNotFound, "shopping_list_not_found", "shopping list not found")
	ErrItemNotFound       = New(KindNotFound, "shopping_item_not_found", "shopping item not found")

	ErrSelfFriendship         = New(KindInvalidOperation, "self_friendship", "cannot send a friend request to yourself")
	ErrCannotAcceptOwnRequest = New(KindInvalidOperation, "cannot_accept_own_request", "cannot accept your own friend request")
	ErrNotPending             = New(KindInvalidOperation, "not_pending", "friend request is no longer pending")
	ErrInvalidInput           = New(KindInvalidOperation, "invalid_input", "invalid input")

	ErrAlreadyFriends = New(KindConflict, "already_friends", "already friends")
	ErrRequestPending = New(KindConflict, "request_pending", "a friend request is already pending")
	ErrBlocked        = New(KindConflict, "blocked", "this user relationship is blocked")
	ErrAlreadyShared  = New(KindConflict, "already_shared", "recipe is already shared with this user")

	ErrCodeGenerationExhausted = New(KindExhausted, "code_generation_exhausted", "could not generate a unique share code")
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "internal_error"
}

// HTTPStatus maps an error onto the response status used by the API.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotAuthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidOperation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
