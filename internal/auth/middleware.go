package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

const actorKey = "auth_actor"

// Middleware validates bearer tokens and loads the acting identity. The
// actor is always re-read from storage so role and support level reflect
// the current record, not the token's snapshot.
type Middleware struct {
	tokens *TokenManager
	actors repository.ActorRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, actors repository.ActorRepository) *Middleware {
	return &Middleware{tokens: tokens, actors: actors}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	actor, err := m.actors.GetByID(c.Context(), claims.ActorID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("actor not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(actorKey, actor)
	return c.Next()
}

// ActorFromContext retrieves the authenticated actor.
func ActorFromContext(c *fiber.Ctx) (*domain.Actor, bool) {
	val := c.Locals(actorKey)
	if val == nil {
		return nil, false
	}
	actor, ok := val.(*domain.Actor)
	return actor, ok
}
