package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openresto/restaurant-orders/services"
	"github.com/openresto/restaurant-orders/utils"
)

// RequireRoles aborts unless the authenticated user holds one of the roles.
// Must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, services.ErrInvalidToken)
			c.Abort()
			return
		}

		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, services.ErrForbidden)
		c.Abort()
	}
}
