package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("share recipe: %w", ErrAlreadyShared)

	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "already_shared", CodeOf(err))
	assert.ErrorIs(t, err, ErrAlreadyShared)
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal_error", CodeOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[*Error]int{
		ErrUnauthenticated:         http.StatusUnauthorized,
		ErrNotOwner:                http.StatusForbidden,
		ErrRecipeNotFound:          http.StatusNotFound,
		ErrSelfFriendship:          http.StatusBadRequest,
		ErrRequestPending:          http.StatusConflict,
		ErrCodeGenerationExhausted: http.StatusServiceUnavailable,
	}
	for err, status := range cases {
		assert.Equal(t, status, HTTPStatus(err), err.Code)
	}
}
