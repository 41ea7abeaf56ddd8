package ports

import (
	"context"

	"github.com/safecity/incident-dashboard/internal/core/domain"
)

// Actor identifies the caller of a use case; Admin is derived from the token roles.
type Actor struct {
	UserID int64
	Admin  bool
}

// IncidentInput carries the writable fields of an incident. Status is only
// honoured on update and only for admins.
type IncidentInput struct {
	CategoryID  int64
	Description string
	Location    domain.GeoPoint
	Status      domain.IncidentStatus
}

// IncidentDetail is an incident with its category and reporter embedded.
type IncidentDetail struct {
	Incident *domain.Incident
	Category *domain.Category // nil when the category no longer exists
	Reporter *domain.User     // nil when the reporter no longer exists
}

// IncidentService defines use-case operations for incidents.
type IncidentService interface {
	ListAll(ctx context.Context, actor Actor) ([]IncidentDetail, error)
	ListByReporter(ctx context.Context, actor Actor, reporterID int64) ([]IncidentDetail, error)
	Get(ctx context.Context, actor Actor, id int64) (*IncidentDetail, error)
	Create(ctx context.Context, actor Actor, input IncidentInput) (*IncidentDetail, error)
	Update(ctx context.Context, actor Actor, id int64, input IncidentInput) (*IncidentDetail, error)
	Delete(ctx context.Context, actor Actor, id int64) error
}
