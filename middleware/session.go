package middleware

import (
	"github.com/gofiber/fiber/v2"

	"stockroom/codec"
	"stockroom/utils"
)

// UsernameKey is the c.Locals key holding the authenticated username.
const UsernameKey = "username"

type SessionValidator interface {
	Validate(token string) (string, bool)
}

// RequireSession rejects requests without a live session token with 401.
func RequireSession(sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, ok := sessions.Validate(utils.SessionToken(c))
		if !ok {
			c.Set(fiber.HeaderContentType, "application/json; charset=utf-8")
			return c.Status(fiber.StatusUnauthorized).SendString(codec.Failure("not logged in or session expired"))
		}

		c.Locals(UsernameKey, username)
		return c.Next()
	}
}
