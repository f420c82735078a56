package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/engage-api/internal/utils"
)

// Identity bundles the two flavours of identity resolution used by the
// routes: Required rejects anonymous traffic, Optional lets it through.
type Identity struct {
	Required fiber.Handler
	Optional fiber.Handler
}

// NewIdentity builds both identity middleware variants for the given
// session-token secret.
func NewIdentity(secret string) Identity {
	return Identity{
		Required: resolveIdentity(secret, true),
		Optional: resolveIdentity(secret, false),
	}
}

// ExternalUserID returns the verified external user identifier bound to the
// request, or empty for anonymous traffic.
func ExternalUserID(c *fiber.Ctx) string {
	if v, ok := c.Locals("external_user_id").(string); ok {
		return v
	}
	return ""
}

// resolveIdentity validates the identity provider's bearer token and exposes
// the external user identifier via locals. Credentials are never handled
// here; the token is the provider's already-issued session proof.
func resolveIdentity(secret string, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get("Authorization"))
		if authorization == "" {
			if required {
				return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
			}
			return c.Next()
		}

		const bearer = "bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		externalID := externalIDFromClaims(claims)
		if externalID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "token missing subject")
		}

		c.Locals("external_user_id", externalID)

		return c.Next()
	}
}

func externalIDFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "user_id"} {
		if value, ok := claims[key]; ok {
			if id, ok := value.(string); ok {
				if trimmed := strings.TrimSpace(id); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}
