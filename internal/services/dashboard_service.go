package services

import (
	"context"

	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/pagination"
	"github.com/fathima-sithara/video-service/internal/repository"
)

type DashboardService interface {
	Stats(ctx context.Context, actor string) (*models.ChannelStats, error)
	Videos(ctx context.Context, actor, page, limit string) (pagination.Page[models.VideoCard], error)
}

type dashboardService struct {
	videos repository.VideoRepository
}

func NewDashboardService(videos repository.VideoRepository) DashboardService {
	return &dashboardService{videos: videos}
}

// Stats totals the caller's channel. A channel without videos reports
// zeros.
func (s *dashboardService) Stats(ctx context.Context, actor string) (*models.ChannelStats, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	st, err := s.videos.ChannelStats(ctx, uid)
	if err != nil {
		return nil, storeErr(err, "channel not found")
	}
	return st, nil
}

func (s *dashboardService) Videos(ctx context.Context, actor, page, limit string) (pagination.Page[models.VideoCard], error) {
	uid, err := actorID(actor)
	if err != nil {
		return pagination.Page[models.VideoCard]{}, err
	}
	p, err := pagination.Parse(page, limit)
	if err != nil {
		return pagination.Page[models.VideoCard]{}, err
	}
	res, err := s.videos.ChannelVideos(ctx, uid, p)
	if err != nil {
		return pagination.Page[models.VideoCard]{}, storeErr(err, "")
	}
	return res, nil
}
