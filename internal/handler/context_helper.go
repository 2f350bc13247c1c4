package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/socialflow-api/internal/middleware"
	"github.com/noah-isme/socialflow-api/internal/models"
	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
	"github.com/noah-isme/socialflow-api/pkg/response"
)

// NotFound answers unknown routes with the JSON error envelope.
func NotFound(c *gin.Context) {
	response.Error(c, appErrors.ErrNotFound)
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok || claims.UserID <= 0 {
		return nil
	}
	return claims
}
