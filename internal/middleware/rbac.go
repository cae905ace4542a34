package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-schedule-api/internal/models"
	appErrors "github.com/noah-isme/gym-schedule-api/pkg/errors"
	"github.com/noah-isme/gym-schedule-api/pkg/response"
)

// SelfParam lets a caller through when the named path parameter equals their user id.
type SelfParam string

// RequireRoles allows the listed roles. Passing a SelfParam additionally allows any caller
// whose user id matches that path parameter, e.g. a trainer reading their own assignments.
func RequireRoles(roles ...interface{}) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	var selfParams []string
	for _, r := range roles {
		switch v := r.(type) {
		case models.UserRole:
			allowed[v] = struct{}{}
		case SelfParam:
			selfParams = append(selfParams, string(v))
		}
	}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}
		for _, param := range selfParams {
			if target := c.Param(param); target != "" && target == claims.UserID {
				c.Next()
				return
			}
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
