package utils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SessionToken returns the bearer token of the request, falling back to the
// token query parameter. It returns "" when neither is present.
func SessionToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.Query("token")
}
