package handler

import (
	"github.com/gofiber/fiber/v2"

	"docmanager/internal/http/middleware"
	"docmanager/internal/service"
	"docmanager/internal/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
//
//	@Summary	Log in
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		loginRequest	true	"credentials"
//	@Success	200		{object}	service.LoginResult
//	@Failure	401		{object}	errorPayload
//	@Failure	429		{object}	errorPayload
//	@Router		/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Username == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "CREDENTIALS_REQUIRED", "username and password are required")
		}

		res, err := svc.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(res)
	}
}

// Logout revokes the session behind the bearer token.
//
//	@Summary	Log out
//	@Tags		auth
//	@Security	BearerAuth
//	@Success	204
//	@Failure	401	{object}	errorPayload
//	@Router		/auth/logout [post]
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := middleware.BearerToken(c)
		if token == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		if err := svc.Logout(c.UserContext(), token); err != nil {
			return mapError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Me returns the caller's session. It must run behind middleware.RequireAuth.
//
//	@Summary	Current session
//	@Tags		auth
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	session.Session
//	@Failure	401	{object}	errorPayload
//	@Router		/auth/me [get]
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := session.FromContext(c.UserContext())
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		return c.JSON(sess)
	}
}
