package ports

import (
	"context"

	"github.com/safecity/incident-dashboard/internal/core/domain"
)

// CategoryRepository defines persistence operations for incident categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	// FindByIDs returns the categories that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Category, error)
	// List returns every category ordered by ascending id.
	List(ctx context.Context) ([]*domain.Category, error)
}
