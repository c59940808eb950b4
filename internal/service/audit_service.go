package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/config"
	"github.com/spec-kit/intake-service/internal/events"
)

// AuditService logs every domain event and forwards ticket events to the
// stub email/webhook channels.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventSubmissionAccepted,
		events.EventSubmissionRejected,
		events.EventNotificationSent,
	} {
		a.dispatcher.Subscribe(eventType, a.handleLogged)
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketEscalated,
		events.EventTicketResolved,
		events.EventTicketCommented,
	} {
		a.dispatcher.Subscribe(eventType, a.handleTicketEvent)
	}
}

func (a *AuditService) handleLogged(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("entity_id", event.EntityID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleTicketEvent(ctx context.Context, event events.Event) error {
	if err := a.handleLogged(ctx, event); err != nil {
		return err
	}
	a.sendEmailStub(event)
	a.sendWebhookStub(event)
	return nil
}

func (a *AuditService) sendEmailStub(event events.Event) {
	if strings.TrimSpace(a.cfg.EmailFrom) == "" {
		return
	}
	a.logger.Debug("sendEmailStub",
		zap.String("from", a.cfg.EmailFrom),
		zap.String("entity_id", event.EntityID),
		zap.String("event_type", string(event.Type)))
}

func (a *AuditService) sendWebhookStub(event events.Event) {
	if strings.TrimSpace(a.cfg.WebhookURL) == "" {
		return
	}
	a.logger.Debug("sendWebhookStub",
		zap.String("url", a.cfg.WebhookURL),
		zap.String("entity_id", event.EntityID),
		zap.String("event_type", string(event.Type)))
}
