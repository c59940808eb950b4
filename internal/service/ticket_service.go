package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/events"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// TicketService owns the ticket state machine: creation with
// category-driven routing, escalation, line-scoped visibility, resolution
// and comments.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.TicketCommentRepository
	audits     repository.TicketAuditRepository
	notifier   *NotificationService
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.TicketCommentRepository
	AuditRepo   repository.TicketAuditRepository
	Notifier    *NotificationService
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Category    domain.TicketCategory
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		audits:     deps.AuditRepo,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
	}
}

// Create files a new ticket for a respondent, provider or admin. A new
// ticket lands on the first line; api_issue and system_performance are
// escalated to the second line immediately, whoever filed them. Every
// creation fans out to the current L1 roster.
func (s *TicketService) Create(ctx context.Context, actor *domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, domain.RoleRespondent, domain.RoleProvider, domain.RoleAdmin); err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject required", nil)
	}
	category := input.Category
	if category == "" {
		category = domain.CategoryOther
	}

	ticket := &domain.Ticket{
		ExternalKey: generateKey("TCK"),
		Subject:     subject,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		SupportLine: domain.SupportLevel1,
		Status:      domain.TicketStatusNew,
		OwnerID:     actor.ID,
	}
	if category.AutoEscalates() {
		ticket.SupportLine = domain.SupportLevel2
		ticket.Status = domain.TicketStatusEscalated
	}

	return s.persistNew(ctx, ticket, &actor.ID)
}

// OpenForFailure files a system ticket for a failed ingestion. These land
// on the first line already open, so they show up in the L1 work queue.
func (s *TicketService) OpenForFailure(ctx context.Context, ownerID, subject, description string) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		ExternalKey: generateKey("TCK"),
		Subject:     subject,
		Description: description,
		Category:    domain.CategoryNotification,
		SupportLine: domain.SupportLevel1,
		Status:      domain.TicketStatusOpen,
		OwnerID:     ownerID,
	}
	return s.persistNew(ctx, ticket, nil)
}

func (s *TicketService) persistNew(ctx context.Context, ticket *domain.Ticket, actorID *string) (*domain.Ticket, error) {
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		EntityID: ticket.ID,
		ActorID:  actorID,
		Payload: events.TicketCreatedPayload{
			Subject:     ticket.Subject,
			Category:    ticket.Category,
			SupportLine: ticket.SupportLine,
			Status:      ticket.Status,
		},
	})
	message := fmt.Sprintf("Новая заявка %s: %s", ticket.ExternalKey, ticket.Subject)
	if _, err := s.notifier.NotifyFirstLine(ctx, message); err != nil {
		return nil, err
	}
	return ticket, nil
}

// List returns the tickets visible to the actor, newest first. First line
// sees its own open and in-progress work, second line its escalated
// tickets. Third line sees its own line plus every performance and
// response-time ticket regardless of routing. Anyone else sees nothing.
func (s *TicketService) List(ctx context.Context, actor *domain.Actor) ([]domain.Ticket, error) {
	if actor == nil || !actor.Role.IsSupport() {
		return []domain.Ticket{}, nil
	}
	switch actor.Role.Level {
	case domain.SupportLevel1:
		return s.tickets.ListBySupportLine(ctx, domain.SupportLevel1,
			[]domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress})
	case domain.SupportLevel2:
		return s.tickets.ListBySupportLine(ctx, domain.SupportLevel2,
			[]domain.TicketStatus{domain.TicketStatusEscalated})
	case domain.SupportLevel3:
		return s.tickets.ListByLineOrCategories(ctx, domain.SupportLevel3, domain.CatchAllCategories)
	default:
		return []domain.Ticket{}, nil
	}
}

// Get returns a single ticket with its comments. Every support level may
// only open tickets on its own line; the L3 list catch-all deliberately
// does not apply here.
func (s *TicketService) Get(ctx context.Context, actor *domain.Actor, ticketID string) (*domain.Ticket, []domain.TicketComment, error) {
	if err := auth.Authorize(actor, domain.RoleSupport); err != nil {
		return nil, nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.SupportLine != actor.Role.Level {
		return nil, nil, apperrors.NewForbidden("ticket belongs to another support line")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, comments, nil
}

// Escalate moves a ticket to line 2 or 3. Only first-line agents may
// escalate. A target level outside {2,3} changes nothing and reports
// success, matching the permissive form handling this replaces.
func (s *TicketService) Escalate(ctx context.Context, actor *domain.Actor, ticketID string, toLevel domain.SupportLevel) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, domain.RoleSupport); err != nil {
		return nil, err
	}
	if actor.Role.Level != domain.SupportLevel1 {
		return nil, apperrors.NewForbidden("only first-line agents can escalate")
	}

	var fromLine domain.SupportLevel
	var fromState domain.TicketStatus
	changed := false
	ticket, err := s.tickets.Transition(ctx, ticketID, func(t *domain.Ticket) (bool, error) {
		if toLevel != domain.SupportLevel2 && toLevel != domain.SupportLevel3 {
			return false, nil
		}
		fromLine, fromState = t.SupportLine, t.Status
		t.SupportLine = toLevel
		t.Status = domain.TicketStatusEscalated
		changed = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.recordTransition(ctx, ticket, &actor.ID, "escalate", fromLine, fromState)
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketEscalated,
			EntityID: ticket.ID,
			ActorID:  &actor.ID,
			Payload:  events.TicketEscalatedPayload{FromLine: fromLine, ToLine: ticket.SupportLine},
		})
		message := fmt.Sprintf("Заявка %s переведена на линию %d", ticket.ExternalKey, ticket.SupportLine)
		if err := s.notifier.NotifyActor(ctx, ticket.OwnerID, message); err != nil {
			return nil, err
		}
	}
	return ticket, nil
}

// Resolve marks a ticket resolved. It succeeds only for the exact
// combinations the workflow allows: an L1 agent on an open line-1 ticket,
// or an L2 agent on an escalated line-2 ticket. Every other combination
// leaves the ticket unchanged and reports success.
func (s *TicketService) Resolve(ctx context.Context, actor *domain.Actor, ticketID string) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, domain.RoleSupport); err != nil {
		return nil, err
	}

	var fromLine domain.SupportLevel
	var fromState domain.TicketStatus
	changed := false
	ticket, err := s.tickets.Transition(ctx, ticketID, func(t *domain.Ticket) (bool, error) {
		if !resolvable(actor.Role.Level, t) {
			return false, nil
		}
		fromLine, fromState = t.SupportLine, t.Status
		t.Status = domain.TicketStatusResolved
		changed = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.recordTransition(ctx, ticket, &actor.ID, "resolve", fromLine, fromState)
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketResolved,
			EntityID: ticket.ID,
			ActorID:  &actor.ID,
			Payload:  events.TicketResolvedPayload{SupportLine: ticket.SupportLine},
		})
		message := fmt.Sprintf("Заявка %s решена", ticket.ExternalKey)
		if err := s.notifier.NotifyActor(ctx, ticket.OwnerID, message); err != nil {
			return nil, err
		}
	}
	return ticket, nil
}

func resolvable(level domain.SupportLevel, t *domain.Ticket) bool {
	if level == domain.SupportLevel1 {
		return t.SupportLine == domain.SupportLevel1 && t.Status == domain.TicketStatusOpen
	}
	if level == domain.SupportLevel2 {
		return t.SupportLine == domain.SupportLevel2 && t.Status == domain.TicketStatusEscalated
	}
	return false
}

// AddComment attaches a support agent's comment and notifies the ticket
// owner with its text. Empty text is a no-op.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.Actor, ticketID, body string) (*domain.TicketComment, error) {
	if err := auth.Authorize(actor, domain.RoleSupport); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.TicketComment{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Body:     body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommented,
		EntityID: ticket.ID,
		ActorID:  &actor.ID,
		Payload:  events.TicketCommentedPayload{CommentID: comment.ID, BodyPreview: stringPreview(body, 120)},
	})
	message := fmt.Sprintf("Комментарий к заявке %s: %s", ticket.ExternalKey, body)
	if err := s.notifier.NotifyActor(ctx, ticket.OwnerID, message); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *TicketService) recordTransition(ctx context.Context, ticket *domain.Ticket, actorID *string, action string, fromLine domain.SupportLevel, fromState domain.TicketStatus) {
	entry := &domain.TicketAudit{
		TicketID:  ticket.ID,
		ActorID:   actorID,
		Action:    action,
		FromLine:  fromLine,
		ToLine:    ticket.SupportLine,
		FromState: fromState,
		ToState:   ticket.Status,
	}
	_ = s.audits.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
