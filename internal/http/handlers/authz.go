package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"avtosotuv/internal/domain"
	applog "avtosotuv/internal/log"
	"avtosotuv/internal/services"
)

const localActor = "actor"

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// authenticate resolves the bearer token and stores the actor in Locals.
// Admin rights need both the token claim and the current user row.
func authenticate(c *fiber.Ctx, svc *services.AuthService) error {
	tok := bearerToken(c)
	if tok == "" {
		return domain.ErrUnauthorized
	}
	u, claims, err := svc.Authenticate(c.UserContext(), tok)
	if err != nil {
		return err
	}
	c.Locals("userID", u.ID)
	c.Locals(localActor, domain.Actor{UserID: u.ID, IsAdmin: u.IsAdmin && claims.IsAdmin})
	return nil
}

// RequireUser rejects requests without a valid token or from blocked users.
func RequireUser(svc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authenticate(c, svc); err != nil {
			if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrBlocked) {
				applog.Security(c, "access.denied.user", map[string]any{"reason": err.Error()})
			}
			return respondError(c, "auth.user.fail", err)
		}
		return c.Next()
	}
}

func RequireAdmin(svc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authenticate(c, svc); err != nil {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": err.Error()})
			return respondError(c, "auth.admin.fail", err)
		}
		if a, _ := actorOf(c); !a.IsAdmin {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "not_admin"})
			return jsonError(c, fiber.StatusForbidden, "Admin huquqi talab etiladi")
		}
		return c.Next()
	}
}

// OptionalUser attaches the actor when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalUser(svc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if bearerToken(c) != "" {
			_ = authenticate(c, svc)
		}
		return c.Next()
	}
}

func actorOf(c *fiber.Ctx) (domain.Actor, bool) {
	a, ok := c.Locals(localActor).(domain.Actor)
	return a, ok
}
