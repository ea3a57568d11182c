package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole restricts a route group to clinicians whose role matches one of
// the allowed values. It must run after RequireAuth, which stores the role in
// the request context.
func RequireRole(allowed ...string) gin.HandlerFunc {
	permitted := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		permitted[role] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextClinicianRole)
		if role == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role information missing"})
			c.Abort()
			return
		}
		if _, ok := permitted[role]; !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			c.Abort()
			return
		}
		c.Next()
	}
}
