package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/logging"
	"github.com/larder-app/larder/backend/internal/validate"
)

// respondError writes err using its apperr kind. Unclassified errors are
// logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal_error", "message": "Internal Server Error"})
		return
	}

	var appErr *apperr.Error
	message := err.Error()
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	c.JSON(status, gin.H{"error": apperr.CodeOf(err), "message": message})
}

func respondValidation(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "validation_failed",
		"message": "request validation failed",
		"fields":  fields,
	})
}

// bindJSON decodes the body into req and validates it, answering 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return false
	}
	if fields := validate.Map(req); fields != nil {
		respondValidation(c, fields)
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty.
func bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		if fields := validate.Map(req); fields != nil {
			respondValidation(c, fields)
			return false
		}
		return true
	}
	return bindJSON(c, req)
}

// uuidParam parses a path parameter, answering 400 when it is not a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
