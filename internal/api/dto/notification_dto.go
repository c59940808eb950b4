package dto

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// NotificationResponse represents one message to the actor.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponses maps a notification list.
func NewNotificationResponses(list []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for i := range list {
		out = append(out, NotificationResponse{
			ID:        list[i].ID,
			Message:   list[i].Message,
			IsRead:    list[i].IsRead,
			CreatedAt: list[i].CreatedAt,
		})
	}
	return out
}
