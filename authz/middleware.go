package authz

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Require returns gin middleware that rejects requests whose role is not
// allowed to perform the action in the given matrix. It expects the auth
// middleware to have set "user_role" in the context.
func Require(matrix PermissionMatrix, action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c.GetString("user_role"))
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		if !HasPermission(matrix, role, action) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole returns gin middleware that allows only the listed roles
func RequireRole(roles ...Role) gin.HandlerFunc {
	allowed := make(map[Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := Role(c.GetString("user_role"))
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		if !allowed[role] {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
			c.Abort()
			return
		}

		c.Next()
	}
}
