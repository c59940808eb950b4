package service

import (
	"context"

	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
)

// StatsService produces admin-facing submission aggregates as plain
// values, computed by explicit repository queries.
type StatsService struct {
	submissions repository.SubmissionRepository
}

// StatsOverview is the admin dashboard aggregate.
type StatsOverview struct {
	TotalByChannel  map[domain.Channel]int64
	ByChannelStatus []repository.ChannelStatusCount
}

// NewStatsService constructs the service.
func NewStatsService(submissions repository.SubmissionRepository) *StatsService {
	return &StatsService{submissions: submissions}
}

// Overview returns submission counts by channel and by channel+status.
func (s *StatsService) Overview(ctx context.Context, actor *domain.Actor) (*StatsOverview, error) {
	if err := auth.Authorize(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	byChannel, err := s.submissions.CountByChannel(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.submissions.CountByChannelAndStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsOverview{TotalByChannel: byChannel, ByChannelStatus: byStatus}, nil
}
