package dto

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// APISubmissionRequest is the machine-channel payload.
type APISubmissionRequest struct {
	ProviderName string         `json:"provider_name"`
	Data         map[string]any `json:"data"`
}

// APISubmissionResponse is the machine-channel result.
type APISubmissionResponse struct {
	SubmissionID string                  `json:"submission_id"`
	Status       domain.SubmissionStatus `json:"status"`
	Message      string                  `json:"message,omitempty"`
	Errors       map[string]string       `json:"errors,omitempty"`
}

// OnlineSubmissionRequest carries the respondent-typed raw text.
type OnlineSubmissionRequest struct {
	Payload string `json:"payload"`
}

// IngestAckResponse acknowledges a human-channel submission. Failures
// carry no validation details, only a pointer to the notification feed.
type IngestAckResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id,omitempty"`
	Message      string `json:"message,omitempty"`
}

// SubmissionSummary response.
type SubmissionSummary struct {
	ID          string                  `json:"id"`
	ExternalKey string                  `json:"external_key"`
	Channel     domain.Channel          `json:"channel"`
	Status      domain.SubmissionStatus `json:"status"`
	FileName    *string                 `json:"file_name,omitempty"`
	SubmittedAt time.Time               `json:"submitted_at"`
	ValidatedAt *time.Time              `json:"validated_at,omitempty"`
}

// NewSubmissionSummary maps a domain submission.
func NewSubmissionSummary(submission *domain.Submission) SubmissionSummary {
	return SubmissionSummary{
		ID:          submission.ID,
		ExternalKey: submission.ExternalKey,
		Channel:     submission.Channel,
		Status:      submission.Status,
		FileName:    submission.FileName,
		SubmittedAt: submission.SubmittedAt,
		ValidatedAt: submission.ValidatedAt,
	}
}
