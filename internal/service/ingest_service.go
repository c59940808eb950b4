package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/events"
	"github.com/spec-kit/intake-service/internal/repository"
	"github.com/spec-kit/intake-service/internal/validation"
)

// FileStore persists raw upload bytes and returns a retrievable key.
type FileStore interface {
	Save(ctx context.Context, fileName string, content []byte) (string, error)
}

// IngestService runs the per-channel ingestion pipeline. The API channel
// reports failures straight back to the machine caller; the two
// human-facing channels convert every failure into a notification plus a
// support ticket so a person is always informed and L1 is pre-alerted.
type IngestService struct {
	engine      validation.Engine
	submissions repository.SubmissionRepository
	files       FileStore
	tickets     *TicketService
	notifier    *NotificationService
	dispatcher  events.Dispatcher
}

// IngestDependencies bundles collaborators for the ingest service.
type IngestDependencies struct {
	SubmissionRepo repository.SubmissionRepository
	Files          FileStore
	Tickets        *TicketService
	Notifier       *NotificationService
	Dispatcher     events.Dispatcher
}

// IngestOutcome is the result of a human-channel ingestion. OK=false means
// the submitter should check notifications; the raw validation reasons are
// never part of the outcome. Submission is nil when nothing was persisted.
type IngestOutcome struct {
	Submission *domain.Submission
	OK         bool
}

// NewIngestService constructs the service.
func NewIngestService(deps IngestDependencies) *IngestService {
	return &IngestService{
		engine:      validation.NewEngine(),
		submissions: deps.SubmissionRepo,
		files:       deps.Files,
		tickets:     deps.Tickets,
		notifier:    deps.Notifier,
		dispatcher:  deps.Dispatcher,
	}
}

// IngestAPI handles channel 1. The submission is always persisted, with
// status resolved from the validation outcome, and the result goes straight
// back to the caller. No ticket is opened: there is no human to notify.
func (s *IngestService) IngestAPI(ctx context.Context, providerName string, data map[string]any) (*domain.Submission, error) {
	errs := s.engine.ValidateAPI(providerName, data)

	now := time.Now()
	submission := &domain.Submission{
		ExternalKey:      generateKey("SUB"),
		Channel:          domain.ChannelAPI,
		Status:           domain.SubmissionStatusPending,
		ValidationErrors: errs,
		ValidatedAt:      &now,
	}
	if name := strings.TrimSpace(providerName); name != "" {
		submission.ProviderName = &name
	}
	if errs.Empty() {
		submission.Payload = data
	} else {
		submission.Status = domain.SubmissionStatusRejected
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, err
	}
	s.publishSubmissionEvent(ctx, submission, nil)
	return submission, nil
}

// IngestOnline handles channel 2: respondent-typed raw text. On any
// validation failure the submission is persisted rejected, the respondent
// gets a notification describing the failure, and a ticket is opened and
// fanned out to L1. The failure reasons never reach the caller directly.
func (s *IngestService) IngestOnline(ctx context.Context, actor *domain.Actor, rawText string) (IngestOutcome, error) {
	if err := auth.Authorize(actor, domain.RoleRespondent); err != nil {
		return IngestOutcome{}, err
	}

	payload, errs := s.engine.ValidateOnline(rawText)
	now := time.Now()
	submission := &domain.Submission{
		ExternalKey:      generateKey("SUB"),
		Channel:          domain.ChannelOnline,
		OwnerID:          &actor.ID,
		Payload:          payload,
		Status:           domain.SubmissionStatusAccepted,
		ValidationErrors: errs,
		ValidatedAt:      &now,
	}
	if !errs.Empty() {
		submission.Status = domain.SubmissionStatusRejected
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return IngestOutcome{}, err
	}
	s.publishSubmissionEvent(ctx, submission, &actor.ID)

	if !errs.Empty() {
		if err := s.raiseFailure(ctx, actor, "Ошибка при отправке данных", errs); err != nil {
			return IngestOutcome{}, err
		}
		return IngestOutcome{Submission: submission, OK: false}, nil
	}

	if err := s.notifier.NotifyActor(ctx, actor.ID, "Данные успешно получены"); err != nil {
		return IngestOutcome{}, err
	}
	return IngestOutcome{Submission: submission, OK: true}, nil
}

// IngestOffline handles channel 3: an uploaded file. A missing file or an
// unsupported extension is rejected before anything is persisted, with the
// same notification+ticket pattern as the online channel. A supported file
// is always persisted pending first; .json content is then validated and
// the same record is finalized, while .csv content is left pending and
// never validated.
func (s *IngestService) IngestOffline(ctx context.Context, actor *domain.Actor, fileName string, content []byte) (IngestOutcome, error) {
	if err := auth.Authorize(actor, domain.RoleRespondent); err != nil {
		return IngestOutcome{}, err
	}

	if errs := s.engine.ValidateUploadName(fileName); !errs.Empty() {
		subject := "Ошибка формата файла"
		if errs["file"] == validation.ReasonMissing {
			subject = "Ошибка при загрузке файла"
		}
		if err := s.raiseFailure(ctx, actor, subject, errs); err != nil {
			return IngestOutcome{}, err
		}
		return IngestOutcome{OK: false}, nil
	}

	fileKey, err := s.files.Save(ctx, fileName, content)
	if err != nil {
		return IngestOutcome{}, err
	}
	submission := &domain.Submission{
		ExternalKey: generateKey("SUB"),
		Channel:     domain.ChannelOffline,
		OwnerID:     &actor.ID,
		FileName:    &fileName,
		RawFileKey:  &fileKey,
		Status:      domain.SubmissionStatusPending,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return IngestOutcome{}, err
	}

	if !strings.HasSuffix(fileName, ".json") {
		// .csv is accepted as-is; content is never validated
		s.publishSubmissionEvent(ctx, submission, &actor.ID)
		if err := s.notifier.NotifyActor(ctx, actor.ID, "Файл получен"); err != nil {
			return IngestOutcome{}, err
		}
		return IngestOutcome{Submission: submission, OK: true}, nil
	}

	payload, errs := s.engine.ValidateJSONContent(content)
	now := time.Now()
	submission.ValidatedAt = &now
	submission.ValidationErrors = errs
	if errs.Empty() {
		submission.Payload = payload
		submission.Status = domain.SubmissionStatusAccepted
	} else {
		submission.Status = domain.SubmissionStatusRejected
	}
	if err := s.submissions.Update(ctx, submission); err != nil {
		return IngestOutcome{}, err
	}
	s.publishSubmissionEvent(ctx, submission, &actor.ID)

	if !errs.Empty() {
		if err := s.raiseFailure(ctx, actor, "Ошибка в содержимом файла", errs); err != nil {
			return IngestOutcome{}, err
		}
		return IngestOutcome{Submission: submission, OK: false}, nil
	}

	if err := s.notifier.NotifyActor(ctx, actor.ID, "Файл получен"); err != nil {
		return IngestOutcome{}, err
	}
	return IngestOutcome{Submission: submission, OK: true}, nil
}

// raiseFailure notifies the submitter with a human-readable message, then
// opens a first-line ticket that fans out to every L1 agent.
func (s *IngestService) raiseFailure(ctx context.Context, actor *domain.Actor, subject string, errs validation.FieldErrors) error {
	reason := describeFailure(errs)
	if err := s.notifier.NotifyActor(ctx, actor.ID, fmt.Sprintf("%s: %s", subject, reason)); err != nil {
		return err
	}
	description := fmt.Sprintf("Пользователь %s: %s", actor.Username, reason)
	_, err := s.tickets.OpenForFailure(ctx, actor.ID, subject, description)
	return err
}

// describeFailure renders a field-error map as a human-readable sentence.
func describeFailure(errs validation.FieldErrors) string {
	parts := make([]string, 0, len(errs))
	for field, reason := range errs {
		switch {
		case field == "data" && reason == validation.ReasonMissing:
			parts = append(parts, "данные не заполнены")
		case field == "data" && reason == validation.ReasonMalformed:
			parts = append(parts, "не удалось разобрать данные")
		case field == "student_id":
			parts = append(parts, "отсутствует обязательное поле student_id")
		case field == "file" && reason == validation.ReasonMissing:
			parts = append(parts, "файл не выбран")
		case field == "file" && reason == validation.ReasonUnsupportedFormat:
			parts = append(parts, "недопустимый формат файла (допустимы .json и .csv)")
		case field == "content":
			parts = append(parts, "не удалось разобрать содержимое файла")
		default:
			parts = append(parts, fmt.Sprintf("%s: %s", field, reason))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func (s *IngestService) publishSubmissionEvent(ctx context.Context, submission *domain.Submission, actorID *string) {
	if s.dispatcher == nil {
		return
	}
	eventType := events.EventSubmissionAccepted
	if submission.Rejected() {
		eventType = events.EventSubmissionRejected
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  submission.ID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.SubmissionPayload{
			Channel: submission.Channel,
			Status:  string(submission.Status),
			Errors:  submission.ValidationErrors,
		},
	})
}
