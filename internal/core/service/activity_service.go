package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

type activityService struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

// NewActivityService returns an ActivityService implementation.
func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) ports.ActivityService {
	return &activityService{repo: repo, log: log}
}

// Process persists a single audit record.
func (s *activityService) Process(ctx context.Context, a domain.IncidentActivity) error {
	if a.IncidentID <= 0 || a.Kind == "" {
		return fmt.Errorf("process activity: incomplete record for incident %d", a.IncidentID)
	}
	if err := s.repo.Insert(ctx, &a); err != nil {
		return fmt.Errorf("process activity: %w", err)
	}

	s.log.Debug().
		Int64("incident_id", a.IncidentID).
		Str("kind", string(a.Kind)).
		Int64("actor_id", a.ActorID).
		Msg("activity recorded")
	return nil
}
