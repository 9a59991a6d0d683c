package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	principalHeader = "X-User-Id"
	nameHeader      = "X-User-Name"

	// PrincipalKey is the gin context key carrying the authenticated user id.
	PrincipalKey = "userID"
	// PrincipalNameKey carries the optional display name.
	PrincipalNameKey = "userName"
)

// PrincipalMiddleware extracts the authenticated principal set by the
// upstream identity gateway. Token verification happens there; this service
// only requires that a principal is present.
func PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(principalHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
			return
		}

		c.Set(PrincipalKey, userID)
		if name := c.GetHeader(nameHeader); name != "" {
			c.Set(PrincipalNameKey, name)
		}
		c.Next()
	}
}
