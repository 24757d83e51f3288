package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
	"github.com/sportify/camp-server/internal/pkg/metrics"
)

type activityService struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

// NewActivityService returns an ActivityService that persists audit events.
func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) ports.ActivityService {
	return &activityService{repo: repo, log: log}
}

// Process writes a single audit event.
func (s *activityService) Process(ctx context.Context, event domain.ActivityEvent) error {
	if err := s.repo.Insert(ctx, &event); err != nil {
		metrics.ActivityErrorsTotal.Inc()
		return fmt.Errorf("record activity: %w", err)
	}

	metrics.ActivityProcessedTotal.WithLabelValues(string(event.Kind)).Inc()
	s.log.Debug().
		Str("kind", string(event.Kind)).
		Str("actor", event.Actor).
		Str("subject", event.Subject).
		Msg("activity recorded")
	return nil
}
