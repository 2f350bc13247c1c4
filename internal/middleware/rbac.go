package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/socialflow-api/internal/models"
	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
	"github.com/noah-isme/socialflow-api/pkg/response"
)

type siteAdminChecker interface {
	IsSiteAdmin(userID int64) bool
}

// RequireSiteAdmin restricts a route to the configured site administrators.
func RequireSiteAdmin(access siteAdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if access == nil || !access.IsSiteAdmin(claims.UserID) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
