package domain

import "time"

// Notification is a one-way message to a single actor. Created unread;
// the recipient's listing marks it read in bulk.
type Notification struct {
	ID          string
	RecipientID string
	Message     string
	IsRead      bool
	CreatedAt   time.Time
}
