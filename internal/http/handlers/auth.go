package handlers

import (
	"net/http"

	"spotmarket/internal/http/middleware"
	"spotmarket/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/auth/register
func (h Handlers) Register(c *gin.Context) {
	var in services.RegisterInput
	if !BindJSONOrError(c, &in) {
		return
	}

	svc := h.Auth
	svc.RequestID = middleware.GetRequestID(c)
	u, err := svc.Register(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registered", "user": u})
}

// POST /api/auth/login
func (h Handlers) Login(c *gin.Context) {
	var in services.LoginInput
	if !BindJSONOrError(c, &in) {
		return
	}

	svc := h.Auth
	svc.RequestID = middleware.GetRequestID(c)
	token, err := svc.Login(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "pid": in.PID})
}
