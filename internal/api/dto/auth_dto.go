package dto

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ActorResponse describes the authenticated account.
type ActorResponse struct {
	ID           string              `json:"id"`
	Username     string              `json:"username"`
	Role         domain.RoleKind     `json:"role"`
	SupportLevel domain.SupportLevel `json:"support_level,omitempty"`
}

// AuthResponse carries a signed token.
type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Actor     ActorResponse `json:"actor"`
}

// NewActorResponse maps a domain actor.
func NewActorResponse(actor *domain.Actor) ActorResponse {
	return ActorResponse{
		ID:           actor.ID,
		Username:     actor.Username,
		Role:         actor.Role.Kind,
		SupportLevel: actor.Role.Level,
	}
}
