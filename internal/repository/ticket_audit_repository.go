package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-service/internal/domain"
)

// TicketAuditRepository records ticket state transitions.
type TicketAuditRepository interface {
	Create(ctx context.Context, entry *domain.TicketAudit) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAudit, error)
}

type ticketAuditRepository struct {
	pool *pgxpool.Pool
}

// NewTicketAuditRepository instantiates the repository.
func NewTicketAuditRepository(pool *pgxpool.Pool) TicketAuditRepository {
	return &ticketAuditRepository{pool: pool}
}

func (r *ticketAuditRepository) Create(ctx context.Context, entry *domain.TicketAudit) error {
	const query = `
        INSERT INTO ticket_audits (ticket_id, actor_id, action, from_line, to_line, from_state, to_state)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.ActorID,
		entry.Action,
		int16(entry.FromLine),
		int16(entry.ToLine),
		entry.FromState,
		entry.ToState,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *ticketAuditRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAudit, error) {
	const query = `
        SELECT id, ticket_id, actor_id, action, from_line, to_line, from_state, to_state, created_at
        FROM ticket_audits WHERE ticket_id=$1
        ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketAudit
	for rows.Next() {
		var entry domain.TicketAudit
		var fromLine, toLine int16
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.ActorID,
			&entry.Action,
			&fromLine,
			&toLine,
			&entry.FromState,
			&entry.ToState,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.FromLine = domain.SupportLevel(fromLine)
		entry.ToLine = domain.SupportLevel(toLine)
		result = append(result, entry)
	}
	return result, rows.Err()
}
