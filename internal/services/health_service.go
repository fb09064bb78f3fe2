package services

import (
	"context"
	"time"

	"github.com/fathima-sithara/video-service/internal/database"
	"github.com/fathima-sithara/video-service/internal/utils"
)

type HealthService interface {
	Check(ctx context.Context) error
}

type healthService struct {
	store   database.Pinger
	timeout time.Duration
}

func NewHealthService(store database.Pinger) HealthService {
	return &healthService{store: store, timeout: 2 * time.Second}
}

func (s *healthService) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		return utils.Internal("store unavailable", err)
	}
	return nil
}
