package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docmanager/internal/service"
	"docmanager/internal/session"
)

// SessionLocalKey is the Fiber locals key holding the resolved *session.Session.
const SessionLocalKey = "session"

// SessionResolver turns a bearer token into a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid session. The session is stored in Fiber locals
// and in the request's user context so services can read it with session.FromContext.
func RequireAuth(r SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return fiber.ErrUnauthorized
		}

		sess, err := r.Resolve(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrAuth) {
				return fiber.ErrUnauthorized
			}
			return err
		}

		c.Locals(SessionLocalKey, sess)
		c.SetUserContext(session.WithSession(c.UserContext(), sess))
		return c.Next()
	}
}

// RequireRole allows the request only when the session carries one of roles.
// It must run after RequireAuth.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := c.Locals(SessionLocalKey).(*session.Session)
		if !ok || sess == nil {
			return fiber.ErrUnauthorized
		}
		for _, r := range roles {
			if sess.Role == r {
				return c.Next()
			}
		}
		return fiber.ErrForbidden
	}
}
