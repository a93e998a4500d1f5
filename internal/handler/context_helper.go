package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/frii-edu/examiner-api/internal/middleware"
	"github.com/frii-edu/examiner-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// scopeFromContext derives the campus scope applied by the services. A
// request without claims gets an incharge scope with no campus, which the
// services treat as forbidden for every record.
func scopeFromContext(c *gin.Context) models.CampusScope {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.NewCampusScope(models.RoleIncharge, "")
	}
	return models.NewCampusScope(claims.Role, claims.CampusID)
}

func userIDFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.UserID
}
