package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"calcdash/internal/errors"

	"github.com/gin-gonic/gin"
)

// RequireAdminToken guards mutating routes with a shared bearer token. An
// empty token disables the check.
func RequireAdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		given := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if given == "" {
			given = c.GetHeader("X-Admin-Token")
		}
		if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
				"code":  errors.CodeUnauthorized,
			})
			return
		}
		c.Next()
	}
}
