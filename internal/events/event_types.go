package events

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubmissionAccepted EventType = "submission_accepted"
	EventSubmissionRejected EventType = "submission_rejected"
	EventTicketCreated      EventType = "ticket_created"
	EventTicketEscalated    EventType = "ticket_escalated"
	EventTicketResolved     EventType = "ticket_resolved"
	EventTicketCommented    EventType = "ticket_commented"
	EventNotificationSent   EventType = "notification_sent"
)

// Event represents a domain event emitted by services. EntityID refers to
// the submission, ticket or notification the event is about. ActorID is nil
// for system-initiated events and API-channel submissions.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SubmissionPayload payload for accepted/rejected submissions.
type SubmissionPayload struct {
	Channel domain.Channel    `json:"channel"`
	Status  string            `json:"status"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject     string                `json:"subject"`
	Category    domain.TicketCategory `json:"category"`
	SupportLine domain.SupportLevel   `json:"support_line"`
	Status      domain.TicketStatus   `json:"status"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	FromLine domain.SupportLevel `json:"from_line"`
	ToLine   domain.SupportLevel `json:"to_line"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	SupportLine domain.SupportLevel `json:"support_line"`
}

// TicketCommentedPayload payload.
type TicketCommentedPayload struct {
	CommentID   string `json:"comment_id"`
	BodyPreview string `json:"body_preview"`
}

// NotificationSentPayload payload.
type NotificationSentPayload struct {
	RecipientID string `json:"recipient_id"`
}
