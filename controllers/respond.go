package controllers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"stockroom/codec"
)

const contentTypeJSON = "application/json; charset=utf-8"

// send writes an already encoded body.
func send(c *fiber.Ctx, status int, body string) error {
	c.Set(fiber.HeaderContentType, contentTypeJSON)
	return c.Status(status).SendString(body)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return send(c, status, codec.Failure(message))
}

// NewErrorHandler renders every error that reaches fiber as the failure
// envelope. Unexpected errors are logged and reported as 500.
func NewErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fail(c, fe.Code, fe.Message)
		}
		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
		return fail(c, fiber.StatusInternalServerError, "internal server error")
	}
}
