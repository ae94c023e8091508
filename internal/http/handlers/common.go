package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"spotmarket/internal/domain"
	"spotmarket/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string) {
	respondError(c, status, "", message, nil)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid payload", gin.H{"reason": err.Error()})
		return false
	}
	return true
}

func parseID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError{Field: field, Msg: "must be a positive integer"}
	}
	return id, nil
}

// optionalInt64 reads an optional integer query parameter.
func optionalInt64(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domain.ValidationError{Field: name, Msg: "must be an integer epoch time"}
	}
	return &v, nil
}

// requireCaller checks that the identity in the body is the authenticated one.
// A missing pid is left for validation to report.
func requireCaller(c *gin.Context, pid string) error {
	if pid == "" {
		return nil
	}
	if middleware.GetPID(c) != pid {
		return domain.ForbiddenError{Msg: "pid does not match the authenticated user"}
	}
	return nil
}
