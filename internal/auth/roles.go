package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/domain"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// Authorize is the guard invoked at the start of each service operation.
// It succeeds when the actor holds one of the allowed roles.
func Authorize(actor *domain.Actor, allowed ...domain.RoleKind) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	for _, role := range allowed {
		if actor.Role.Kind == role {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}

// RequireRole is the transport-level counterpart of Authorize.
func RequireRole(allowed ...domain.RoleKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := Authorize(actor, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a caller is logged in, any role.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ActorFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
