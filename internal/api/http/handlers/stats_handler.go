package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/dto"
	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/observability"
	"github.com/spec-kit/intake-service/internal/service"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// StatsHandler serves the admin overview.
type StatsHandler struct {
	service *service.StatsService
	metrics *observability.Metrics
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(statsService *service.StatsService, metrics *observability.Metrics) *StatsHandler {
	return &StatsHandler{service: statsService, metrics: metrics}
}

// Overview GET /admin/stats.
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	overview, err := h.service.Overview(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatsResponse(overview, h.metrics.SnapshotRequests())})
}
