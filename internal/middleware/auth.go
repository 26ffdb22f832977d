package middleware

import (
	"strings"
	"vocaman_backend/internal/config"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/util"
	"vocaman_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware requires a valid access token in the Authorization header
// and stores its claims in the context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(strings.TrimSpace(tokenString), util.TokenTypeAccess, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("rejected access token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// RoleMiddleware lets through the listed roles. Admins always pass.
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if user.Role == model.Admin {
			c.Next()
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		util.Forbidden(c)
		c.Abort()
	}
}
