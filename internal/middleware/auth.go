// Package middleware provides HTTP middleware for the fiber server.
package middleware

import (
	"strings"

	"medipay/internal/models"
	"medipay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AuthMiddleware validates bearer tokens and stores the claims on the request.
type AuthMiddleware struct {
	secret string
	log    zerolog.Logger
}

func NewAuthMiddleware(secret string, log zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: secret,
		log:    log.With().Str("component", "auth").Logger(),
	}
}

// Handler rejects requests without a valid, unexpired HS256 token.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	claims, err := utils.ParseToken(m.secret, strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		m.log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
		return utils.Unauthorized(c, "invalid token")
	}
	if claims.UserID == "" || claims.Role == "" {
		return utils.Unauthorized(c, "invalid claims")
	}
	if claims.Role == models.RoleHospital && claims.HospitalID == "" {
		return utils.Unauthorized(c, "hospital token without hospital_id")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// RequireRole allows the request through only for the listed roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return utils.Unauthorized(c, "unauthorized")
		}
		for _, r := range roles {
			if claims.Role == r {
				return c.Next()
			}
		}
		return utils.Forbidden(c, "insufficient permissions")
	}
}

// AdminOnly is RequireRole(admin).
func AdminOnly() fiber.Handler {
	return RequireRole(models.RoleAdmin)
}
