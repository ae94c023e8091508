package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const pidKey = "pid"

// TokenParser returns the pid a bearer token was issued to.
type TokenParser interface {
	ParseToken(raw string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the token subject.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":    "authorization header required",
				"request_id": GetRequestID(c),
			})
			return
		}

		pid, err := tokens.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":    err.Error(),
				"request_id": GetRequestID(c),
			})
			return
		}

		c.Set(pidKey, pid)
		c.Next()
	}
}

// GetPID returns the authenticated pid, or "" on public routes.
func GetPID(c *gin.Context) string {
	if v, ok := c.Get(pidKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
