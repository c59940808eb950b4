package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/events"
	"github.com/spec-kit/intake-service/internal/repository"
)

// NotificationService creates and delivers in-app notifications: one-off
// messages to a single actor and fan-outs to the first support line.
type NotificationService struct {
	notifications repository.NotificationRepository
	actors        repository.ActorRepository
	dispatcher    events.Dispatcher
}

// NotificationDependencies bundles repositories for the service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	ActorRepo        repository.ActorRepository
	Dispatcher       events.Dispatcher
}

// NewNotificationService constructs the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		actors:        deps.ActorRepo,
		dispatcher:    deps.Dispatcher,
	}
}

// NotifyActor persists one unread notification for the recipient.
func (s *NotificationService) NotifyActor(ctx context.Context, recipientID, message string) error {
	notification := &domain.Notification{
		RecipientID: recipientID,
		Message:     message,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventNotificationSent,
		EntityID: notification.ID,
		Payload:  events.NotificationSentPayload{RecipientID: recipientID},
	})
	return nil
}

// NotifyFirstLine delivers the message to every current L1 agent. The
// roster is looked up fresh on each call; agents added later are not
// notified retroactively. Returns the number of notifications created.
func (s *NotificationService) NotifyFirstLine(ctx context.Context, message string) (int, error) {
	agents, err := s.actors.ListSupportByLevel(ctx, domain.SupportLevel1)
	if err != nil {
		return 0, err
	}
	for i := range agents {
		if err := s.NotifyActor(ctx, agents[i].ID, message); err != nil {
			return i, err
		}
	}
	return len(agents), nil
}

// ListForActor returns the actor's notifications newest first, then marks
// them all read in one bulk mutation. The returned set reflects read state
// as it was before the call.
func (s *NotificationService) ListForActor(ctx context.Context, actor *domain.Actor) ([]domain.Notification, error) {
	if actor == nil {
		return nil, errUnauthenticated()
	}
	list, err := s.notifications.ListByRecipient(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.MarkAllRead(ctx, actor.ID); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *NotificationService) publishEvent(ctx context.Context, event events.Event) {
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
