package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

type IncidentService struct {
	repo       ports.IncidentRepository
	categories ports.CategoryRepository
	users      ports.AuthRepository
	activity   ports.ActivityRecorder
	logger     zerolog.Logger
	now        func() time.Time
}

func NewIncidentService(
	repo ports.IncidentRepository,
	categories ports.CategoryRepository,
	users ports.AuthRepository,
	activity ports.ActivityRecorder,
	logger zerolog.Logger,
) *IncidentService {
	return &IncidentService{
		repo:       repo,
		categories: categories,
		users:      users,
		activity:   activity,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ListAll returns every incident. Admin only.
func (s *IncidentService) ListAll(ctx context.Context, actor ports.Actor) ([]ports.IncidentDetail, error) {
	if !actor.Admin {
		return nil, domain.ErrForbidden
	}
	items, err := s.repo.List(ctx, ports.ListIncidentsFilter{})
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, items)
}

// ListByReporter returns the incidents reported by reporterID. Non-admins may
// only list their own.
func (s *IncidentService) ListByReporter(ctx context.Context, actor ports.Actor, reporterID int64) ([]ports.IncidentDetail, error) {
	if !actor.Admin && actor.UserID != reporterID {
		return nil, domain.ErrForbidden
	}
	items, err := s.repo.List(ctx, ports.ListIncidentsFilter{ReporterID: reporterID})
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, items)
}

func (s *IncidentService) Get(ctx context.Context, actor ports.Actor, id int64) (*ports.IncidentDetail, error) {
	inc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.expandOne(ctx, inc)
}

func (s *IncidentService) Create(ctx context.Context, actor ports.Actor, in ports.IncidentInput) (*ports.IncidentDetail, error) {
	if _, err := s.categories.FindByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.Incident{
		CategoryID:  in.CategoryID,
		ReporterID:  actor.UserID,
		Description: strings.TrimSpace(in.Description),
		Status:      domain.StatusReported,
		Location:    in.Location,
		ReportedAt:  now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create incident")
		return nil, err
	}

	s.record(created, domain.ActivityCreated, actor)
	s.logger.Info().Int64("incident_id", created.ID).Int64("reporter_id", actor.UserID).Msg("incident created")
	return s.expandOne(ctx, created)
}

// Update replaces category, description and location. A status change is
// only accepted from admins and must follow the status state machine.
func (s *IncidentService) Update(ctx context.Context, actor ports.Actor, id int64, in ports.IncidentInput) (*ports.IncidentDetail, error) {
	inc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != inc.CategoryID {
		if _, err := s.categories.FindByID(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	kind := domain.ActivityUpdated
	if in.Status != "" && in.Status != inc.Status {
		if !actor.Admin {
			return nil, domain.ErrForbidden
		}
		if err := inc.ApplyStatus(in.Status, now); err != nil {
			return nil, fmt.Errorf("update incident: %w (from %s to %s)", err, inc.Status, in.Status)
		}
		kind = domain.ActivityStatusChanged
	}

	inc.CategoryID = in.CategoryID
	inc.Description = strings.TrimSpace(in.Description)
	inc.Location = in.Location
	inc.UpdatedAt = now

	if err := s.repo.Update(ctx, inc); err != nil {
		return nil, err
	}

	s.record(inc, kind, actor)
	return s.expandOne(ctx, inc)
}

func (s *IncidentService) Delete(ctx context.Context, actor ports.Actor, id int64) error {
	inc, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Record(domain.IncidentActivity{
		IncidentID: inc.ID,
		Kind:       domain.ActivityDeleted,
		ActorID:    actor.UserID,
		OccurredAt: s.now(),
	})
	s.logger.Info().Int64("incident_id", id).Int64("actor_id", actor.UserID).Msg("incident deleted")
	return nil
}

// load fetches an incident and enforces ownership for non-admins. Foreign
// incidents are reported as not found to avoid leaking their existence.
func (s *IncidentService) load(ctx context.Context, actor ports.Actor, id int64) (*domain.Incident, error) {
	inc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && inc.ReporterID != actor.UserID {
		return nil, domain.ErrIncidentNotFound
	}
	return inc, nil
}

func (s *IncidentService) record(inc *domain.Incident, kind domain.ActivityKind, actor ports.Actor) {
	s.activity.Record(domain.IncidentActivity{
		IncidentID: inc.ID,
		Kind:       kind,
		ActorID:    actor.UserID,
		Status:     inc.Status,
		OccurredAt: inc.UpdatedAt,
	})
}

func (s *IncidentService) expandOne(ctx context.Context, inc *domain.Incident) (*ports.IncidentDetail, error) {
	out, err := s.expand(ctx, []*domain.Incident{inc})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// expand embeds category and reporter snapshots using one batch lookup each.
func (s *IncidentService) expand(ctx context.Context, items []*domain.Incident) ([]ports.IncidentDetail, error) {
	catIDs := make([]int64, 0, len(items))
	userIDs := make([]int64, 0, len(items))
	for _, inc := range items {
		catIDs = append(catIDs, inc.CategoryID)
		userIDs = append(userIDs, inc.ReporterID)
	}

	cats, err := s.categories.FindByIDs(ctx, catIDs)
	if err != nil {
		return nil, fmt.Errorf("expand categories: %w", err)
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("expand reporters: %w", err)
	}

	out := make([]ports.IncidentDetail, len(items))
	for i, inc := range items {
		out[i] = ports.IncidentDetail{
			Incident: inc,
			Category: cats[inc.CategoryID],
			Reporter: users[inc.ReporterID],
		}
	}
	return out, nil
}
