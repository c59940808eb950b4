package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusEscalated  TicketStatus = "escalated"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketCategory enumerates support request categories.
type TicketCategory string

const (
	CategorySchedule          TicketCategory = "schedule"
	CategoryAPIIssue          TicketCategory = "api_issue"
	CategoryNotification      TicketCategory = "notification"
	CategorySystemPerformance TicketCategory = "system_performance"
	CategoryResponseTime      TicketCategory = "response_time"
	CategoryOther             TicketCategory = "other"
)

// EscalatedCategories are routed to the second line immediately on creation.
var EscalatedCategories = []TicketCategory{CategoryAPIIssue, CategorySystemPerformance}

// CatchAllCategories are visible to the third line regardless of routing.
var CatchAllCategories = []TicketCategory{CategorySystemPerformance, CategoryResponseTime}

// Ticket is the aggregate for support requests. SupportLine and Status
// together determine which support level may act on it.
type Ticket struct {
	ID          string
	ExternalKey string
	Subject     string
	Description string
	Category    TicketCategory
	SupportLine SupportLevel
	Status      TicketStatus
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AutoEscalates reports whether the category routes to line 2 at creation.
func (c TicketCategory) AutoEscalates() bool {
	for _, candidate := range EscalatedCategories {
		if c == candidate {
			return true
		}
	}
	return false
}

// TicketComment is a support agent's note attached to a ticket.
type TicketComment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// TicketAudit records one state or line transition on a ticket.
type TicketAudit struct {
	ID        string
	TicketID  string
	ActorID   *string
	Action    string
	FromLine  SupportLevel
	ToLine    SupportLevel
	FromState TicketStatus
	ToState   TicketStatus
	CreatedAt time.Time
}
