package service

import (
	"context"
	"testing"

	"github.com/spec-kit/intake-service/internal/domain"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

func TestCreateLandsOnFirstLine(t *testing.T) {
	f := newFixture(t)
	agent := f.addSupport(t, "agent", domain.SupportLevel1)
	respondent := f.addRespondent(t, "resp")

	ticket, err := f.ticketSvc.Create(context.Background(), respondent, TicketCreateInput{
		Subject:  "Не приходит расписание",
		Category: domain.CategorySchedule,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.SupportLine != domain.SupportLevel1 {
		t.Errorf("line = %d, want 1", ticket.SupportLine)
	}
	if ticket.Status != domain.TicketStatusNew {
		t.Errorf("status = %q, want new", ticket.Status)
	}
	if got := f.notifications.forRecipient(agent.ID); len(got) != 1 {
		t.Errorf("agent notifications = %d, want 1", len(got))
	}
}

func TestCreateAutoEscalates(t *testing.T) {
	f := newFixture(t)
	respondent := f.addRespondent(t, "resp")

	for _, category := range []domain.TicketCategory{domain.CategoryAPIIssue, domain.CategorySystemPerformance} {
		ticket, err := f.ticketSvc.Create(context.Background(), respondent, TicketCreateInput{
			Subject:  "Проблема",
			Category: category,
		})
		if err != nil {
			t.Fatalf("Create(%s): %v", category, err)
		}
		if ticket.SupportLine != domain.SupportLevel2 {
			t.Errorf("%s: line = %d, want 2", category, ticket.SupportLine)
		}
		if ticket.Status != domain.TicketStatusEscalated {
			t.Errorf("%s: status = %q, want escalated", category, ticket.Status)
		}
	}
}

func TestCreateDefaultsCategory(t *testing.T) {
	f := newFixture(t)
	respondent := f.addRespondent(t, "resp")

	ticket, err := f.ticketSvc.Create(context.Background(), respondent, TicketCreateInput{Subject: "Вопрос"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.Category != domain.CategoryOther {
		t.Errorf("category = %q, want other", ticket.Category)
	}
}

func TestCreateRequiresSubject(t *testing.T) {
	f := newFixture(t)
	respondent := f.addRespondent(t, "resp")

	_, err := f.ticketSvc.Create(context.Background(), respondent, TicketCreateInput{Subject: "   "})
	if apperrors.ToDomainError(err).Code != "VALIDATION_FAILED" {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateRejectsSupportRole(t *testing.T) {
	f := newFixture(t)
	agent := f.addSupport(t, "agent", domain.SupportLevel1)

	_, err := f.ticketSvc.Create(context.Background(), agent, TicketCreateInput{Subject: "x"})
	if apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestEscalateMovesTicket(t *testing.T) {
	f := newFixture(t)
	agent := f.addSupport(t, "agent", domain.SupportLevel1)
	respondent := f.addRespondent(t, "resp")
	ticket := f.seedTicket(t, domain.Ticket{
		Subject:     "Сбой",
		Category:    domain.CategoryOther,
		SupportLine: domain.SupportLevel1,
		Status:      domain.TicketStatusOpen,
		OwnerID:     respondent.ID,
	})

	updated, err := f.ticketSvc.Escalate(context.Background(), agent, ticket.ID, domain.SupportLevel2)
	if err != nil {
		t.Fatalf("Escalate: %v", err)
	}
	if updated.SupportLine != domain.SupportLevel2 {
		t.Errorf("line = %d, want 2", updated.SupportLine)
	}
	if updated.Status != domain.TicketStatusEscalated {
		t.Errorf("status = %q, want escalated", updated.Status)
	}

	if len(f.audits.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(f.audits.entries))
	}
	entry := f.audits.entries[0]
	if entry.Action != "escalate" || entry.FromLine != domain.SupportLevel1 || entry.ToLine != domain.SupportLevel2 {
		t.Errorf("audit = %+v", entry)
	}

	mine := f.notifications.forRecipient(respondent.ID)
	if len(mine) != 1 {
		t.Fatalf("owner notifications = %d, want 1", len(mine))
	}
	if mine[0].Message != "Заявка "+ticket.ExternalKey+" переведена на линию 2" {
		t.Errorf("message = %q", mine[0].Message)
	}
}

func TestEscalateForbiddenForOtherLines(t *testing.T) {
	f := newFixture(t)
	respondent := f.addRespondent(t, "resp")
	ticket := f.seedTicket(t, domain.Ticket{
		Subject:     "Сбой",
		Category:    domain.CategoryOther,
		SupportLine: domain.SupportLevel2,
		Status:      domain.TicketStatusEscalated,
		OwnerID:     respondent.ID,
	})

	for _, level := range []domain.SupportLevel{domain.SupportLevel2, domain.SupportLevel3} {
		agent := f.addSupport(t, "agent-l"+string('0'+rune(level)), level)
		_, err := f.ticketSvc.Escalate(context.Background(), agent, ticket.ID, domain.SupportLevel3)
		if apperrors.ToDomainError(err).Code != "FORBIDDEN" {
			t.Errorf("level %d: err = %v, want forbidden", level, err)
		}
	}
	stored, _ := f.tickets.GetByID(context.Background(), ticket.ID)
	if stored.SupportLine != domain.SupportLevel2 {
		t.Errorf("ticket moved to line %d, want unchanged", stored.SupportLine)
	}
}

func TestEscalateInvalidTargetIsNoOp(t *testing.T) {
	f := newFixture(t)
	agent := f.addSupport(t, "agent", domain.SupportLevel1)
	respondent := f.addRespondent(t, "resp")
	ticket := f.seedTicket(t, domain.Ticket{
		Subject:     "Сбой",
		Category:    domain.CategoryOther,
		SupportLine: domain.SupportLevel1,
		Status:      domain.TicketStatusOpen,
		OwnerID:     respondent.ID,
	})

	for _, toLevel := range []domain.SupportLevel{domain.SupportLevelNone, domain.SupportLevel1, 5} {
		updated, err := f.ticketSvc.Escalate(context.Background(), agent, ticket.ID, toLevel)
		if err != nil {
			t.Fatalf("Escalate(%d): %v", toLevel, err)
		}
		if updated.SupportLine != domain.SupportLevel1 || updated.Status != domain.TicketStatusOpen {
			t.Errorf("Escalate(%d) mutated the ticket: %+v", toLevel, updated)
		}
	}
	if len(f.audits.entries) != 0 {
		t.Errorf("no-op escalation must not write audit entries")
	}
	if len(f.notifications.forRecipient(respondent.ID)) != 0 {
		t.Errorf("no-op escalation must not notify")
	}
}

func TestResolveCombinations(t *testing.T) {
	cases := []struct {
		name       string
		agentLevel domain.SupportLevel
		line       domain.SupportLevel
		status     domain.TicketStatus
		resolved   bool
	}{
		{"l1 open line1", domain.SupportLevel1, domain.SupportLevel1, domain.TicketStatusOpen, true},
		{"l1 escalated line2", domain.SupportLevel1, domain.SupportLevel2, domain.TicketStatusEscalated, false},
		{"l1 new line1", domain.SupportLevel1, domain.SupportLevel1, domain.TicketStatusNew, false},
		{"l2 escalated line2", domain.SupportLevel2, domain.SupportLevel2, domain.TicketStatusEscalated, true},
		{"l2 open line1", domain.SupportLevel2, domain.SupportLevel1, domain.TicketStatusOpen, false},
		{"l3 escalated line3", domain.SupportLevel3, domain.SupportLevel3, domain.TicketStatusEscalated, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			agent := f.addSupport(t, "agent", tc.agentLevel)
			respondent := f.addRespondent(t, "resp")
			ticket := f.seedTicket(t, domain.Ticket{
				Subject:     "Сбой",
				Category:    domain.CategoryOther,
				SupportLine: tc.line,
				Status:      tc.status,
				OwnerID:     respondent.ID,
			})

			updated, err := f.ticketSvc.Resolve(context.Background(), agent, ticket.ID)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if tc.resolved {
				if updated.Status != domain.TicketStatusResolved {
					t.Errorf("status = %q, want resolved", updated.Status)
				}
				if len(f.notifications.forRecipient(respondent.ID)) != 1 {
					t.Errorf("owner must be notified once")
				}
			} else {
				if updated.Status != tc.status {
					t.Errorf("status = %q, want unchanged %q", updated.Status, tc.status)
				}
				if len(f.notifications.forRecipient(respondent.ID)) != 0 {
					t.Errorf("no-op resolve must not notify")
				}
			}
		})
	}
}

func TestListVisibility(t *testing.T) {
	f := newFixture(t)
	respondent := f.addRespondent(t, "resp")
	owner := respondent.ID

	open1 := f.seedTicket(t, domain.Ticket{Subject: "a", Category: domain.CategoryOther, SupportLine: domain.SupportLevel1, Status: domain.TicketStatusOpen, OwnerID: owner})
	f.seedTicket(t, domain.Ticket{Subject: "b", Category: domain.CategoryOther, SupportLine: domain.SupportLevel1, Status: domain.TicketStatusResolved, OwnerID: owner})
	progress1 := f.seedTicket(t, domain.Ticket{Subject: "c", Category: domain.CategoryOther, SupportLine: domain.SupportLevel1, Status: domain.TicketStatusInProgress, OwnerID: owner})
	escalated2 := f.seedTicket(t, domain.Ticket{Subject: "d", Category: domain.CategoryAPIIssue, SupportLine: domain.SupportLevel2, Status: domain.TicketStatusEscalated, OwnerID: owner})
	line3 := f.seedTicket(t, domain.Ticket{Subject: "e", Category: domain.CategoryResponseTime, SupportLine: domain.SupportLevel3, Status: domain.TicketStatusEscalated, OwnerID: owner})
	perf2 := f.seedTicket(t, domain.Ticket{Subject: "f", Category: domain.CategorySystemPerformance, SupportLine: domain.SupportLevel2, Status: domain.TicketStatusEscalated, OwnerID: owner})

	ids := func(tickets []domain.Ticket) map[string]bool {
		result := map[string]bool{}
		for _, tk := range tickets {
			result[tk.ID] = true
		}
		return result
	}

	l1 := f.addSupport(t, "l1", domain.SupportLevel1)
	got, err := f.ticketSvc.List(context.Background(), l1)
	if err != nil {
		t.Fatalf("List l1: %v", err)
	}
	if want := map[string]bool{open1.ID: true, progress1.ID: true}; len(got) != 2 || !ids(got)[open1.ID] || !ids(got)[progress1.ID] {
		t.Errorf("l1 sees %v, want %v", ids(got), want)
	}

	l2 := f.addSupport(t, "l2", domain.SupportLevel2)
	got, err = f.ticketSvc.List(context.Background(), l2)
	if err != nil {
		t.Fatalf("List l2: %v", err)
	}
	if len(got) != 2 || !ids(got)[escalated2.ID] || !ids(got)[perf2.ID] {
		t.Errorf("l2 sees %v, want escalated line-2 tickets", ids(got))
	}

	// L3 sees its own line plus the performance/response-time catch-all,
	// without duplicating the line-3 response-time ticket.
	l3 := f.addSupport(t, "l3", domain.SupportLevel3)
	got, err = f.ticketSvc.List(context.Background(), l3)
	if err != nil {
		t.Fatalf("List l3: %v", err)
	}
	if len(got) != 2 || !ids(got)[line3.ID] || !ids(got)[perf2.ID] {
		t.Errorf("l3 sees %v, want line-3 plus catch-all", ids(got))
	}

	got, err = f.ticketSvc.List(context.Background(), respondent)
	if err != nil {
		t.Fatalf("List respondent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("respondent sees %d tickets, want 0", len(got))
	}
}

func TestGetEnforcesOwnLine(t *testing.T) {
	f := newFixture(t)
	respondent := f.addRespondent(t, "resp")
	ticket := f.seedTicket(t, domain.Ticket{
		Subject:     "Сбой",
		Category:    domain.CategorySystemPerformance,
		SupportLine: domain.SupportLevel2,
		Status:      domain.TicketStatusEscalated,
		OwnerID:     respondent.ID,
	})

	l1 := f.addSupport(t, "l1", domain.SupportLevel1)
	if _, _, err := f.ticketSvc.Get(context.Background(), l1, ticket.ID); apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Errorf("l1 err = %v, want forbidden", err)
	}

	// The list catch-all does not loosen the detail check for L3.
	l3 := f.addSupport(t, "l3", domain.SupportLevel3)
	if _, _, err := f.ticketSvc.Get(context.Background(), l3, ticket.ID); apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Errorf("l3 err = %v, want forbidden", err)
	}

	l2 := f.addSupport(t, "l2", domain.SupportLevel2)
	got, _, err := f.ticketSvc.Get(context.Background(), l2, ticket.ID)
	if err != nil {
		t.Fatalf("l2 Get: %v", err)
	}
	if got.ID != ticket.ID {
		t.Errorf("got ticket %q, want %q", got.ID, ticket.ID)
	}
}

func TestAddCommentNotifiesOwner(t *testing.T) {
	f := newFixture(t)
	agent := f.addSupport(t, "agent", domain.SupportLevel1)
	respondent := f.addRespondent(t, "resp")
	ticket := f.seedTicket(t, domain.Ticket{
		Subject:     "Сбой",
		Category:    domain.CategoryOther,
		SupportLine: domain.SupportLevel1,
		Status:      domain.TicketStatusOpen,
		OwnerID:     respondent.ID,
	})

	comment, err := f.ticketSvc.AddComment(context.Background(), agent, ticket.ID, "Проверьте настройки")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment == nil || comment.Body != "Проверьте настройки" {
		t.Fatalf("comment = %+v", comment)
	}

	mine := f.notifications.forRecipient(respondent.ID)
	if len(mine) != 1 {
		t.Fatalf("owner notifications = %d, want 1", len(mine))
	}
	if mine[0].Message != "Комментарий к заявке "+ticket.ExternalKey+": Проверьте настройки" {
		t.Errorf("message = %q", mine[0].Message)
	}
}

func TestAddCommentEmptyIsNoOp(t *testing.T) {
	f := newFixture(t)
	agent := f.addSupport(t, "agent", domain.SupportLevel1)
	respondent := f.addRespondent(t, "resp")
	ticket := f.seedTicket(t, domain.Ticket{
		Subject:     "Сбой",
		Category:    domain.CategoryOther,
		SupportLine: domain.SupportLevel1,
		Status:      domain.TicketStatusOpen,
		OwnerID:     respondent.ID,
	})

	comment, err := f.ticketSvc.AddComment(context.Background(), agent, ticket.ID, "   ")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment != nil {
		t.Errorf("comment = %+v, want nil", comment)
	}
	if len(f.comments.comments) != 0 {
		t.Errorf("empty comment must not be persisted")
	}
	if len(f.notifications.notifications) != 0 {
		t.Errorf("empty comment must not notify")
	}
}
