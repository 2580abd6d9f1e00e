package middleware

import (
	"strings"

	"github.com/DevFelipeRT/EduMentorBack/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// AuthRequired validates the bearer token and exposes the authenticated
// staff identity through c.Locals("user_id") and c.Locals("role").
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or malformed authorization header",
			})
		}

		claims, err := utils.ValidateToken(token, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}
