package ports

import (
	"context"

	"github.com/safecity/incident-dashboard/internal/core/domain"
)

// ActivityRepository persists the incident audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, a *domain.IncidentActivity) error
}
