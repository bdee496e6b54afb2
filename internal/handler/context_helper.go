package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-api/internal/middleware"
	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
	"github.com/noah-isme/college-api/internal/service"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
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

// actorFromContext resolves the caller's claims into a scoped actor.
func actorFromContext(c *gin.Context, identity *service.IdentityService) (scope.Actor, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return scope.Actor{}, appErrors.ErrUnauthorized
	}
	return identity.Resolve(c.Request.Context(), claims)
}
