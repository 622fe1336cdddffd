package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const subjectKey = "subject"

// RequireToken accepts an access token from the Authorization header or, for browser
// WebSocket clients that cannot set headers, the token query parameter.
func RequireToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		authz := c.GetHeader("Authorization")
		if token == "" && len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
			token = strings.TrimSpace(authz[7:])
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := ParseToken(token, secret, TypeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(subjectKey, claims.Name)
		c.Next()
	}
}

// Subject returns the account name set by RequireToken, or "".
func Subject(c *gin.Context) string {
	return c.GetString(subjectKey)
}
