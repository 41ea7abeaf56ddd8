package ports

import (
	"context"

	"github.com/safecity/incident-dashboard/internal/core/domain"
)

// ActivityRecorder accepts audit records without blocking the caller on persistence.
type ActivityRecorder interface {
	Record(a domain.IncidentActivity)
}

// ActivityService processes one audit record.
type ActivityService interface {
	Process(ctx context.Context, a domain.IncidentActivity) error
}
