package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-service/internal/domain"
)

// TransitionFunc mutates a ticket under lock. It returns true when the
// mutation should be written back; false leaves the ticket untouched.
type TransitionFunc func(ticket *domain.Ticket) (bool, error)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListBySupportLine(ctx context.Context, line domain.SupportLevel, statuses []domain.TicketStatus) ([]domain.Ticket, error)
	ListByLineOrCategories(ctx context.Context, line domain.SupportLevel, categories []domain.TicketCategory) ([]domain.Ticket, error)
	Transition(ctx context.Context, id string, apply TransitionFunc) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, subject, description, category, support_line, status, owner_id, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, subject, description, category, support_line, status, owner_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.Subject,
		ticket.Description,
		ticket.Category,
		int16(ticket.SupportLine),
		ticket.Status,
		ticket.OwnerID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicketRow(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListBySupportLine(ctx context.Context, line domain.SupportLevel, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	args := []any{int16(line)}
	clause := "support_line=$1"
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clause += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ","))
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`, ticketColumns, clause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ListByLineOrCategories returns line tickets unioned with the category
// catch-all, deduplicated by the single query, newest first.
func (r *ticketRepository) ListByLineOrCategories(ctx context.Context, line domain.SupportLevel, categories []domain.TicketCategory) ([]domain.Ticket, error) {
	args := []any{int16(line)}
	placeholders := make([]string, len(categories))
	for i, category := range categories {
		args = append(args, category)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE support_line=$1 OR category IN (%s)
        ORDER BY created_at DESC`, ticketColumns, strings.Join(placeholders, ","))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// Transition runs a read-check-write cycle on one ticket inside a single
// transaction with the row locked, so concurrent escalate/resolve calls on
// the same ticket serialize instead of losing updates.
func (r *ticketRepository) Transition(ctx context.Context, id string, apply TransitionFunc) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1 FOR UPDATE`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicketRow(tx.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}

	changed, err := apply(&ticket)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &ticket, tx.Commit(ctx)
	}

	const update = `
        UPDATE tickets SET support_line=$1, status=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	if err := tx.QueryRow(ctx, update,
		int16(ticket.SupportLine),
		ticket.Status,
		ticket.ID,
	).Scan(&ticket.UpdatedAt); err != nil {
		return nil, err
	}
	return &ticket, tx.Commit(ctx)
}

func scanTicketRow(row pgx.Row, ticket *domain.Ticket) error {
	var line int16
	if err := row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Category,
		&line,
		&ticket.Status,
		&ticket.OwnerID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return err
	}
	ticket.SupportLine = domain.SupportLevel(line)
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicketRow(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
