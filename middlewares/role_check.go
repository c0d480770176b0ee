package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pos-app/utils"
)

// RequireRole lets only the given roles through. It must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextRole)
		if !exists {
			utils.AbortWithError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			return
		}

		role, _ := userRole.(string)
		if _, ok := allowed[role]; !ok {
			utils.AbortWithError(c, http.StatusForbidden, fmt.Errorf("%s access denied", role))
			return
		}

		c.Next()
	}
}
