package dto

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
}

// EscalateTicketRequest payload.
type EscalateTicketRequest struct {
	ToLevel int16 `json:"to_level"`
}

// CommentRequest payload.
type CommentRequest struct {
	Body string `json:"body"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	Subject     string                `json:"subject"`
	Category    domain.TicketCategory `json:"category"`
	SupportLine domain.SupportLevel   `json:"support_line"`
	Status      domain.TicketStatus   `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	OwnerID     string            `json:"owner_id"`
	Comments    []CommentResponse `json:"comments"`
}

// CommentResponse represents one agent comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTicketSummary maps a domain ticket.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:          ticket.ID,
		ExternalKey: ticket.ExternalKey,
		Subject:     ticket.Subject,
		Category:    ticket.Category,
		SupportLine: ticket.SupportLine,
		Status:      ticket.Status,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// NewTicketDetail maps a ticket with its comments.
func NewTicketDetail(ticket *domain.Ticket, comments []domain.TicketComment) TicketDetailResponse {
	out := TicketDetailResponse{
		TicketSummary: NewTicketSummary(ticket),
		Description:   ticket.Description,
		OwnerID:       ticket.OwnerID,
		Comments:      make([]CommentResponse, 0, len(comments)),
	}
	for i := range comments {
		out.Comments = append(out.Comments, CommentResponse{
			ID:        comments[i].ID,
			AuthorID:  comments[i].AuthorID,
			Body:      comments[i].Body,
			CreatedAt: comments[i].CreatedAt,
		})
	}
	return out
}
