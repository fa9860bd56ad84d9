package controllers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"stockroom/codec"
	"stockroom/session"
	"stockroom/utils"
)

// Sessions is the part of session.Store the auth handlers use.
type Sessions interface {
	Issue(ctx context.Context, username, password string) (string, error)
	Validate(token string) (string, bool)
	Revoke(token string)
}

type AuthController struct {
	sessions Sessions
	logger   *slog.Logger
}

func NewAuthController(sessions Sessions, logger *slog.Logger) *AuthController {
	return &AuthController{sessions: sessions, logger: logger}
}

// Login handles POST /api/login.
func (a *AuthController) Login(c *fiber.Ctx) error {
	req, err := codec.DecodeCredentials(string(c.Body()))
	if err != nil || req == nil || req.Username == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "username and password are required")
	}

	token, err := a.sessions.Issue(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			a.logger.Info("login rejected", "username", req.Username, "ip", c.IP())
			return fail(c, fiber.StatusUnauthorized, "invalid username or password")
		}
		return err
	}

	a.logger.Info("login", "username", req.Username, "ip", c.IP())
	return send(c, fiber.StatusOK, codec.Encode(codec.Object{
		{Key: "success", Value: true},
		{Key: "token", Value: token},
		{Key: "username", Value: req.Username},
	}))
}

// Logout handles POST /api/logout. It succeeds whether or not a token was sent.
func (a *AuthController) Logout(c *fiber.Ctx) error {
	if token := utils.SessionToken(c); token != "" {
		a.sessions.Revoke(token)
	}
	return send(c, fiber.StatusOK, codec.Success("logged out"))
}

// Verify handles GET /api/verify.
func (a *AuthController) Verify(c *fiber.Ctx) error {
	username, ok := a.sessions.Validate(utils.SessionToken(c))
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "token invalid or expired")
	}
	return send(c, fiber.StatusOK, codec.Encode(codec.Object{
		{Key: "valid", Value: true},
		{Key: "username", Value: username},
	}))
}
