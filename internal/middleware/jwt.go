package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soma-studio/soma-approve-api/internal/service"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
	"github.com/soma-studio/soma-approve-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// JWT protects routes by requiring a valid token backed by a live session.
// A valid signature alone is not enough: once the subject logs out, tokens
// minted before the logout stop working.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if authService.Session(c.Request.Context(), claims.UserID) == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "session expired, please sign in again"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}
