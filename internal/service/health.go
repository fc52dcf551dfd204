package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/neu-csye6225/webapp/internal/metrics"
	"github.com/neu-csye6225/webapp/internal/repository"
)

type healthService struct {
	repo    repository.HealthCheckRepository
	metrics metrics.Instrumentation
	log     zerolog.Logger
}

func NewHealthService(repo repository.HealthCheckRepository, inst metrics.Instrumentation, log zerolog.Logger) HealthService {
	if inst == nil {
		inst = metrics.Nop{}
	}
	return &healthService{
		repo:    repo,
		metrics: inst,
		log:     log.With().Str("component", "health_service").Logger(),
	}
}

func (s *healthService) Check(ctx context.Context) error {
	err := metrics.Time(s.metrics, metrics.Database("healthCheck"), func() error {
		_, err := s.repo.Record(ctx)
		return err
	})
	if err != nil {
		s.metrics.Count(metrics.Database("healthCheck.error"))
		s.log.Error().Err(err).Msg("health check failed")
		return &Error{Kind: KindMetadataStore, Op: "health", Err: err}
	}
	return nil
}
