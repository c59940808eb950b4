package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-service/internal/domain"
)

// ChannelStatusCount is one row of the per-channel status aggregate.
type ChannelStatusCount struct {
	Channel domain.Channel
	Status  domain.SubmissionStatus
	Count   int64
}

// SubmissionRepository encapsulates submission persistence.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	Update(ctx context.Context, submission *domain.Submission) error
	GetByID(ctx context.Context, id string) (*domain.Submission, error)
	ListByChannelAndStatus(ctx context.Context, channel domain.Channel, status domain.SubmissionStatus, limit, offset int) ([]domain.Submission, error)
	CountByChannel(ctx context.Context) (map[domain.Channel]int64, error)
	CountByChannelAndStatus(ctx context.Context) ([]ChannelStatusCount, error)
}

type submissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{pool: pool}
}

const submissionColumns = `id, external_key, channel, owner_id, provider_name, payload,
               file_name, raw_file_key, status, validation_errors, submitted_at, validated_at`

func (r *submissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	const query = `
        INSERT INTO submissions (external_key, channel, owner_id, provider_name, payload, file_name, raw_file_key, status, validation_errors, validated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, submitted_at`
	return r.pool.QueryRow(ctx, query,
		submission.ExternalKey,
		int16(submission.Channel),
		submission.OwnerID,
		submission.ProviderName,
		submission.Payload,
		submission.FileName,
		submission.RawFileKey,
		submission.Status,
		submission.ValidationErrors,
		submission.ValidatedAt,
	).Scan(&submission.ID, &submission.SubmittedAt)
}

func (r *submissionRepository) Update(ctx context.Context, submission *domain.Submission) error {
	const query = `
        UPDATE submissions SET payload=$1, status=$2, validation_errors=$3, validated_at=$4
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		submission.Payload,
		submission.Status,
		submission.ValidationErrors,
		submission.ValidatedAt,
		submission.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE id=$1`, submissionColumns)
	var submission domain.Submission
	var channel int16
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&submission.ID,
		&submission.ExternalKey,
		&channel,
		&submission.OwnerID,
		&submission.ProviderName,
		&submission.Payload,
		&submission.FileName,
		&submission.RawFileKey,
		&submission.Status,
		&submission.ValidationErrors,
		&submission.SubmittedAt,
		&submission.ValidatedAt,
	); err != nil {
		return nil, err
	}
	submission.Channel = domain.Channel(channel)
	return &submission, nil
}

func (r *submissionRepository) ListByChannelAndStatus(ctx context.Context, channel domain.Channel, status domain.SubmissionStatus, limit, offset int) ([]domain.Submission, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE channel=$1 AND status=$2
        ORDER BY submitted_at DESC LIMIT %d OFFSET %d`, submissionColumns, limit, offset)

	rows, err := r.pool.Query(ctx, query, int16(channel), status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Submission
	for rows.Next() {
		var submission domain.Submission
		var ch int16
		if err := rows.Scan(
			&submission.ID,
			&submission.ExternalKey,
			&ch,
			&submission.OwnerID,
			&submission.ProviderName,
			&submission.Payload,
			&submission.FileName,
			&submission.RawFileKey,
			&submission.Status,
			&submission.ValidationErrors,
			&submission.SubmittedAt,
			&submission.ValidatedAt,
		); err != nil {
			return nil, err
		}
		submission.Channel = domain.Channel(ch)
		result = append(result, submission)
	}
	return result, rows.Err()
}

func (r *submissionRepository) CountByChannel(ctx context.Context) (map[domain.Channel]int64, error) {
	const query = `SELECT channel, COUNT(*) FROM submissions GROUP BY channel`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[domain.Channel]int64)
	for rows.Next() {
		var channel int16
		var count int64
		if err := rows.Scan(&channel, &count); err != nil {
			return nil, err
		}
		result[domain.Channel(channel)] = count
	}
	return result, rows.Err()
}

func (r *submissionRepository) CountByChannelAndStatus(ctx context.Context) ([]ChannelStatusCount, error) {
	const query = `SELECT channel, status, COUNT(*) FROM submissions GROUP BY channel, status ORDER BY channel, status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ChannelStatusCount
	for rows.Next() {
		var entry ChannelStatusCount
		var channel int16
		if err := rows.Scan(&channel, &entry.Status, &entry.Count); err != nil {
			return nil, err
		}
		entry.Channel = domain.Channel(channel)
		result = append(result, entry)
	}
	return result, rows.Err()
}
