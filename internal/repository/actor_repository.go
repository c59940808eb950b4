package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-service/internal/domain"
)

// ActorRepository defines persistence access for actors.
type ActorRepository interface {
	Create(ctx context.Context, actor *domain.Actor) error
	GetByID(ctx context.Context, id string) (*domain.Actor, error)
	GetByUsername(ctx context.Context, username string) (*domain.Actor, error)
	ListSupportByLevel(ctx context.Context, level domain.SupportLevel) ([]domain.Actor, error)
}

type actorRepository struct {
	pool *pgxpool.Pool
}

// NewActorRepository returns a Postgres-backed implementation.
func NewActorRepository(pool *pgxpool.Pool) ActorRepository {
	return &actorRepository{pool: pool}
}

func (r *actorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	const query = `
        INSERT INTO actors (username, password_hash, role, support_level)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		actor.Username,
		actor.PasswordHash,
		actor.Role.Kind,
		supportLevelParam(actor.Role),
	).Scan(&actor.ID, &actor.CreatedAt, &actor.UpdatedAt)
}

func (r *actorRepository) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	const query = `
        SELECT id, username, password_hash, role, support_level, created_at, updated_at
        FROM actors WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *actorRepository) GetByUsername(ctx context.Context, username string) (*domain.Actor, error) {
	const query = `
        SELECT id, username, password_hash, role, support_level, created_at, updated_at
        FROM actors WHERE username=$1`
	return r.fetchSingle(ctx, query, username)
}

func (r *actorRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Actor, error) {
	var (
		actor domain.Actor
		level *int16
	)
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&actor.ID,
		&actor.Username,
		&actor.PasswordHash,
		&actor.Role.Kind,
		&level,
		&actor.CreatedAt,
		&actor.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if level != nil {
		actor.Role.Level = domain.SupportLevel(*level)
	}
	return &actor, nil
}

// ListSupportByLevel returns the current roster of support agents at the
// given level. Called fresh on every fan-out; membership is never cached.
func (r *actorRepository) ListSupportByLevel(ctx context.Context, level domain.SupportLevel) ([]domain.Actor, error) {
	const query = `
        SELECT id, username, password_hash, role, support_level, created_at, updated_at
        FROM actors WHERE role=$1 AND support_level=$2
        ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, domain.RoleSupport, int16(level))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActors(rows)
}

func scanActors(rows pgx.Rows) ([]domain.Actor, error) {
	var result []domain.Actor
	for rows.Next() {
		var (
			actor domain.Actor
			level *int16
		)
		if err := rows.Scan(
			&actor.ID,
			&actor.Username,
			&actor.PasswordHash,
			&actor.Role.Kind,
			&level,
			&actor.CreatedAt,
			&actor.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if level != nil {
			actor.Role.Level = domain.SupportLevel(*level)
		}
		result = append(result, actor)
	}
	return result, rows.Err()
}

func supportLevelParam(role domain.Role) *int16 {
	if !role.IsSupport() {
		return nil
	}
	level := int16(role.Level)
	return &level
}
