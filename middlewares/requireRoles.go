package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRoles restricts a route to callers holding one of the given
// roles. It must run after RequireAuth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(ctx *gin.Context) {
		if !allowed[Role(ctx)] {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
			return
		}
		ctx.Next()
	}
}
