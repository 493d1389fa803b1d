package middlewares

import (
	"net/http"
	"strings"

	"github.com/ichchha07-wish/meal-system/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer token once and stores the
// principal (user id + role) in the request context. Handlers pass
// both explicitly into the services; nothing downstream re-reads the
// token.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization header required"})
			return
		}

		userID, role, err := utils.ParseJWT(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}

// RequireRole gates a route group to one role. Must run after
// AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "this action requires the " + role + " role"})
			return
		}
		c.Next()
	}
}
