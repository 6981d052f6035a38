package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meucarrim/internal/models"
	"meucarrim/internal/repository"
)

const userContextKey = "auth_user"

// openPaths can be hit without a token.
var openPaths = map[string]bool{
	"/healthz":               true,
	"/readyz":                true,
	"/api/v1/users/register": true,
	"/api/v1/users/login":    true,
}

// RequireAuth verifies the bearer token against the user table and stores
// the authenticated user in the request context. Infra endpoints, register
// and login stay open.
func RequireAuth(users repository.UserStore, tokens *TokenManager, disabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if disabled {
			c.Next()
			return
		}
		p := c.Request.URL.Path
		if openPaths[p] || strings.HasPrefix(p, "/swagger") {
			c.Next()
			return
		}
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(raw, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		userID, err := tokens.Verify(strings.TrimSpace(strings.TrimPrefix(raw, "Bearer ")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		user, err := users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "user lookup failed"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin gates a route to ADMIN users. It assumes RequireAuth ran first.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := val.(*models.User)
	return user
}
