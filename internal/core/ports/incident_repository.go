package ports

import (
	"context"

	"github.com/safecity/incident-dashboard/internal/core/domain"
)

// ListIncidentsFilter carries the query parameters for listing incidents.
type ListIncidentsFilter struct {
	ReporterID int64 // 0 = no filter (admin); non-zero = scoped to reporter
	CategoryID int64 // 0 = any category
}

// IncidentRepository defines persistence operations for incidents.
type IncidentRepository interface {
	Create(ctx context.Context, i *domain.Incident) (*domain.Incident, error)
	Update(ctx context.Context, i *domain.Incident) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Incident, error)
	// List returns incidents matching filter ordered by ascending id.
	List(ctx context.Context, filter ListIncidentsFilter) ([]*domain.Incident, error)
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
}
