package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/dto"
	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/service"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

const checkNotificationsMessage = "Проверьте уведомления"

// IngestHandler exposes the three ingestion channels.
type IngestHandler struct {
	service *service.IngestService
}

// NewIngestHandler constructs the handler.
func NewIngestHandler(ingestService *service.IngestService) *IngestHandler {
	return &IngestHandler{service: ingestService}
}

// SubmitAPI POST /api/v1/submissions. Machine channel: validation failures
// go straight back to the caller.
func (h *IngestHandler) SubmitAPI(c *fiber.Ctx) error {
	var req dto.APISubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	submission, err := h.service.IngestAPI(c.Context(), req.ProviderName, req.Data)
	if err != nil {
		return err
	}
	if submission.Rejected() {
		return c.Status(http.StatusBadRequest).JSON(dto.APISubmissionResponse{
			SubmissionID: submission.ID,
			Status:       submission.Status,
			Errors:       submission.ValidationErrors,
		})
	}
	return c.Status(http.StatusCreated).JSON(dto.APISubmissionResponse{
		SubmissionID: submission.ID,
		Status:       submission.Status,
		Message:      "Данные получены",
	})
}

// SubmitOnline POST /submissions/online. Failures never carry validation
// details; the respondent is redirected to the notification feed.
func (h *IngestHandler) SubmitOnline(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.OnlineSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	outcome, err := h.service.IngestOnline(c.Context(), actor, req.Payload)
	if err != nil {
		return err
	}
	return renderOutcome(c, outcome)
}

// SubmitOffline POST /submissions/offline. Multipart upload; a missing
// file runs the same failure pipeline as a bad one.
func (h *IngestHandler) SubmitOffline(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	fileName := ""
	var content []byte
	if header, err := c.FormFile("file"); err == nil && header != nil {
		fileName = header.Filename
		file, err := header.Open()
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		defer file.Close()
		content, err = io.ReadAll(file)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
	}

	outcome, err := h.service.IngestOffline(c.Context(), actor, fileName, content)
	if err != nil {
		return err
	}
	return renderOutcome(c, outcome)
}

func renderOutcome(c *fiber.Ctx, outcome service.IngestOutcome) error {
	if !outcome.OK {
		return c.Status(http.StatusBadRequest).JSON(dto.IngestAckResponse{
			Status:  "error",
			Message: checkNotificationsMessage,
		})
	}
	return c.Status(http.StatusCreated).JSON(dto.IngestAckResponse{
		Status:       string(outcome.Submission.Status),
		SubmissionID: outcome.Submission.ID,
	})
}
