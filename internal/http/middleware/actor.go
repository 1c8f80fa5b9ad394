package middleware

import (
	"github.com/gofiber/fiber/v2"

	"docregistry/internal/model"
)

const (
	// ActorIDHeader carries the authenticated user id, resolved by the auth
	// layer in front of this service.
	ActorIDHeader = "X-Actor-ID"
	// ActorRoleHeader carries the authenticated user's role.
	ActorRoleHeader = "X-Actor-Role"
	// ActorLocalKey is the key used to store the resolved actor in Fiber's
	// context locals.
	ActorLocalKey = "actor"
)

// Actor resolves the acting user from trusted identity headers. This service
// never parses credentials; requests arriving without an identity are
// rejected before any handler runs. Unknown roles degrade to the non-admin
// role rather than failing.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(ActorIDHeader)
		if id == "" {
			return fiber.ErrUnauthorized
		}
		role := model.Role(c.Get(ActorRoleHeader))
		if role != model.RoleAdmin {
			role = model.RoleUser
		}
		c.Locals(ActorLocalKey, model.Actor{ID: id, Role: role})
		return c.Next()
	}
}

// ActorFromCtx extracts the actor stored by Actor. The zero Actor is
// returned when the middleware did not run.
func ActorFromCtx(c *fiber.Ctx) model.Actor {
	if v := c.Locals(ActorLocalKey); v != nil {
		if a, ok := v.(model.Actor); ok {
			return a
		}
	}
	return model.Actor{}
}
