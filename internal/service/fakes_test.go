package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
)

// In-memory repository fakes used by the service tests.

type fakeActorRepo struct {
	seq    int
	actors map[string]domain.Actor
}

func newFakeActorRepo() *fakeActorRepo {
	return &fakeActorRepo{actors: map[string]domain.Actor{}}
}

func (r *fakeActorRepo) Create(_ context.Context, actor *domain.Actor) error {
	r.seq++
	actor.ID = fmt.Sprintf("actor-%d", r.seq)
	actor.CreatedAt = time.Now()
	actor.UpdatedAt = actor.CreatedAt
	r.actors[actor.ID] = *actor
	return nil
}

func (r *fakeActorRepo) GetByID(_ context.Context, id string) (*domain.Actor, error) {
	actor, ok := r.actors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &actor, nil
}

func (r *fakeActorRepo) GetByUsername(_ context.Context, username string) (*domain.Actor, error) {
	for _, actor := range r.actors {
		if actor.Username == username {
			copied := actor
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeActorRepo) ListSupportByLevel(_ context.Context, level domain.SupportLevel) ([]domain.Actor, error) {
	var result []domain.Actor
	for i := 1; i <= r.seq; i++ {
		actor, ok := r.actors[fmt.Sprintf("actor-%d", i)]
		if ok && actor.Role.IsSupport() && actor.Role.Level == level {
			result = append(result, actor)
		}
	}
	return result, nil
}

type fakeSubmissionRepo struct {
	seq         int
	submissions map[string]domain.Submission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: map[string]domain.Submission{}}
}

func (r *fakeSubmissionRepo) Create(_ context.Context, submission *domain.Submission) error {
	r.seq++
	submission.ID = fmt.Sprintf("sub-%d", r.seq)
	submission.SubmittedAt = time.Now()
	r.submissions[submission.ID] = *submission
	return nil
}

func (r *fakeSubmissionRepo) Update(_ context.Context, submission *domain.Submission) error {
	if _, ok := r.submissions[submission.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.submissions[submission.ID] = *submission
	return nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id string) (*domain.Submission, error) {
	submission, ok := r.submissions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &submission, nil
}

func (r *fakeSubmissionRepo) ListByChannelAndStatus(_ context.Context, channel domain.Channel, status domain.SubmissionStatus, _, _ int) ([]domain.Submission, error) {
	var result []domain.Submission
	for i := 1; i <= r.seq; i++ {
		submission, ok := r.submissions[fmt.Sprintf("sub-%d", i)]
		if ok && submission.Channel == channel && submission.Status == status {
			result = append(result, submission)
		}
	}
	return result, nil
}

func (r *fakeSubmissionRepo) CountByChannel(_ context.Context) (map[domain.Channel]int64, error) {
	result := make(map[domain.Channel]int64)
	for _, submission := range r.submissions {
		result[submission.Channel]++
	}
	return result, nil
}

func (r *fakeSubmissionRepo) CountByChannelAndStatus(_ context.Context) ([]repository.ChannelStatusCount, error) {
	counts := map[repository.ChannelStatusCount]int64{}
	for _, submission := range r.submissions {
		key := repository.ChannelStatusCount{Channel: submission.Channel, Status: submission.Status}
		counts[key]++
	}
	var result []repository.ChannelStatusCount
	for key, count := range counts {
		key.Count = count
		result = append(result, key)
	}
	return result, nil
}

type fakeTicketRepo struct {
	seq     int
	tickets map[string]domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *fakeTicketRepo) ListBySupportLine(_ context.Context, line domain.SupportLevel, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	allowed := map[domain.TicketStatus]bool{}
	for _, status := range statuses {
		allowed[status] = true
	}
	var result []domain.Ticket
	for i := 1; i <= r.seq; i++ {
		ticket, ok := r.tickets[fmt.Sprintf("ticket-%d", i)]
		if !ok || ticket.SupportLine != line {
			continue
		}
		if len(statuses) > 0 && !allowed[ticket.Status] {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) ListByLineOrCategories(_ context.Context, line domain.SupportLevel, categories []domain.TicketCategory) ([]domain.Ticket, error) {
	catchAll := map[domain.TicketCategory]bool{}
	for _, category := range categories {
		catchAll[category] = true
	}
	var result []domain.Ticket
	for i := 1; i <= r.seq; i++ {
		ticket, ok := r.tickets[fmt.Sprintf("ticket-%d", i)]
		if !ok {
			continue
		}
		if ticket.SupportLine == line || catchAll[ticket.Category] {
			result = append(result, ticket)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) Transition(_ context.Context, id string, apply repository.TransitionFunc) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	changed, err := apply(&ticket)
	if err != nil {
		return nil, err
	}
	if changed {
		ticket.UpdatedAt = time.Now()
		r.tickets[id] = ticket
	}
	return &ticket, nil
}

type fakeCommentRepo struct {
	seq      int
	comments []domain.TicketComment
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	r.seq++
	comment.ID = fmt.Sprintf("comment-%d", r.seq)
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketComment, error) {
	var result []domain.TicketComment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type fakeAuditRepo struct {
	seq     int
	entries []domain.TicketAudit
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.TicketAudit) error {
	r.seq++
	entry.ID = fmt.Sprintf("audit-%d", r.seq)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketAudit, error) {
	var result []domain.TicketAudit
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeNotificationRepo struct {
	seq           int
	notifications []domain.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.seq++
	notification.ID = fmt.Sprintf("notif-%d", r.seq)
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string) ([]domain.Notification, error) {
	var result []domain.Notification
	for _, notification := range r.notifications {
		if notification.RecipientID == recipientID {
			result = append(result, notification)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID string) error {
	for i := range r.notifications {
		if r.notifications[i].RecipientID == recipientID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) forRecipient(recipientID string) []domain.Notification {
	var result []domain.Notification
	for _, notification := range r.notifications {
		if notification.RecipientID == recipientID {
			result = append(result, notification)
		}
	}
	return result
}

type fakeFileStore struct {
	seq   int
	saved map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{saved: map[string][]byte{}}
}

func (s *fakeFileStore) Save(_ context.Context, fileName string, content []byte) (string, error) {
	s.seq++
	key := fmt.Sprintf("upload:%d:%s", s.seq, fileName)
	s.saved[key] = content
	return key, nil
}

// fixture wires the service layer onto the in-memory fakes.
type fixture struct {
	actors        *fakeActorRepo
	submissions   *fakeSubmissionRepo
	tickets       *fakeTicketRepo
	comments      *fakeCommentRepo
	audits        *fakeAuditRepo
	notifications *fakeNotificationRepo
	files         *fakeFileStore

	notifier  *NotificationService
	ticketSvc *TicketService
	ingest    *IngestService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		actors:        newFakeActorRepo(),
		submissions:   newFakeSubmissionRepo(),
		tickets:       newFakeTicketRepo(),
		comments:      &fakeCommentRepo{},
		audits:        &fakeAuditRepo{},
		notifications: &fakeNotificationRepo{},
		files:         newFakeFileStore(),
	}
	f.notifier = NewNotificationService(NotificationDependencies{
		NotificationRepo: f.notifications,
		ActorRepo:        f.actors,
	})
	f.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo:  f.tickets,
		CommentRepo: f.comments,
		AuditRepo:   f.audits,
		Notifier:    f.notifier,
	})
	f.ingest = NewIngestService(IngestDependencies{
		SubmissionRepo: f.submissions,
		Files:          f.files,
		Tickets:        f.ticketSvc,
		Notifier:       f.notifier,
	})
	return f
}

func (f *fixture) addActor(t *testing.T, username string, role domain.Role) *domain.Actor {
	t.Helper()
	actor := &domain.Actor{
		Identity: domain.Identity{Username: username, PasswordHash: "x"},
		Role:     role,
	}
	if err := f.actors.Create(context.Background(), actor); err != nil {
		t.Fatalf("create actor: %v", err)
	}
	return actor
}

func (f *fixture) addRespondent(t *testing.T, username string) *domain.Actor {
	return f.addActor(t, username, domain.Role{Kind: domain.RoleRespondent})
}

func (f *fixture) addSupport(t *testing.T, username string, level domain.SupportLevel) *domain.Actor {
	return f.addActor(t, username, domain.SupportRole(level))
}

func (f *fixture) seedTicket(t *testing.T, ticket domain.Ticket) *domain.Ticket {
	t.Helper()
	if ticket.ExternalKey == "" {
		ticket.ExternalKey = fmt.Sprintf("TCK-SEED%d", f.tickets.seq+1)
	}
	if err := f.tickets.Create(context.Background(), &ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return &ticket
}
