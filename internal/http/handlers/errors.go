package handlers

import (
	"errors"
	"net/http"

	"spotmarket/internal/domain"
	"spotmarket/internal/http/middleware"
	"spotmarket/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
	Details   any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Message:   message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
		Details:   details,
	})
}

// RespondDomainError maps domain errors to HTTP responses. 5xx bodies never carry internal error text.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		var ve domain.ValidationError
		errors.As(err, &ve)
		var details any
		if ve.Field != "" {
			details = gin.H{"field": ve.Field}
		}
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), details)
	case domain.IsCredential(err):
		respondError(c, http.StatusBadRequest, "invalid_credential", err.Error(), nil)
	case domain.IsTransfer(err):
		logServerError(c, err)
		respondError(c, http.StatusBadRequest, "transfer_failed", "reward transfer failed, the report can be retried", nil)
	case domain.IsUnauthenticated(err):
		respondError(c, http.StatusUnauthorized, "unauthenticated", err.Error(), nil)
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsImage(err):
		respondError(c, http.StatusNotAcceptable, "bad_image", "Image is bad.", gin.H{"reason": err.Error()})
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusGone, "not_owner", err.Error(), nil)
	case domain.IsTimeout(err):
		logServerError(c, err)
		respondError(c, http.StatusGatewayTimeout, "timeout", "upstream service timed out", nil)
	case domain.IsDependency(err):
		logServerError(c, err)
		respondError(c, http.StatusBadGateway, "dependency_unavailable", "upstream service unavailable", nil)
	default:
		logServerError(c, err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

func logServerError(c *gin.Context, err error) {
	_ = c.Error(err)
	utils.LogFailure(middleware.GetRequestID(c), "http", c.FullPath(), err)
}
