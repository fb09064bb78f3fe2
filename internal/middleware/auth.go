package middleware

import (
	"errors"
	"strings"

	"github.com/fathima-sithara/video-service/internal/auth"
	"github.com/fathima-sithara/video-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	LocalUserID = "user_id"
	LocalClaims = "claims"

	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// JWTAuth accepts the access token from the accessToken cookie or a Bearer
// Authorization header and stores the caller's id and claims in Locals.
func JWTAuth(jwtm *auth.JWTManager, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(AccessCookie)
		if tokenStr == "" {
			header := c.Get(fiber.HeaderAuthorization)
			if header == "" {
				return utils.Unauthorized("unauthorized request")
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				return utils.Unauthorized("invalid authorization header")
			}
			tokenStr = parts[1]
		}

		claims, err := jwtm.ParseAccess(tokenStr)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return utils.Unauthorized("access token expired")
			}
			return utils.Unauthorized("invalid access token")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalClaims, claims)
		logger.Debug("JWT validated", zap.String("user_id", claims.UserID))
		return c.Next()
	}
}

// UserID returns the authenticated caller, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func Claims(c *fiber.Ctx) *auth.AccessClaims {
	claims, _ := c.Locals(LocalClaims).(*auth.AccessClaims)
	return claims
}
