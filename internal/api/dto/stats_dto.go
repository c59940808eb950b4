package dto

import (
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
	"github.com/spec-kit/intake-service/internal/service"
)

// ChannelStatusRow is one channel+status aggregate.
type ChannelStatusRow struct {
	Channel domain.Channel          `json:"channel"`
	Status  domain.SubmissionStatus `json:"status"`
	Count   int64                   `json:"count"`
}

// StatsResponse is the admin overview.
type StatsResponse struct {
	SubmissionsByChannel map[domain.Channel]int64 `json:"submissions_by_channel"`
	ByChannelStatus      []ChannelStatusRow       `json:"by_channel_status"`
	Requests             map[string]int64         `json:"requests,omitempty"`
}

// NewStatsResponse maps the service aggregate.
func NewStatsResponse(overview *service.StatsOverview, requests map[string]int64) StatsResponse {
	return StatsResponse{
		SubmissionsByChannel: overview.TotalByChannel,
		ByChannelStatus:      mapChannelStatus(overview.ByChannelStatus),
		Requests:             requests,
	}
}

func mapChannelStatus(rows []repository.ChannelStatusCount) []ChannelStatusRow {
	out := make([]ChannelStatusRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, ChannelStatusRow{Channel: row.Channel, Status: row.Status, Count: row.Count})
	}
	return out
}
