package repositories

import (
	"context"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
)

// EstimateRepository persists estimate results under a user or session
// key. The core imposes no schema beyond the result object itself.
type EstimateRepository interface {
	// Save stores an estimate under the given user key.
	Save(ctx context.Context, estimate *entities.SavedEstimate) error

	// GetByID retrieves a saved estimate.
	GetByID(ctx context.Context, id string) (*entities.SavedEstimate, error)

	// ListByUserKey retrieves estimates saved under a user key, newest
	// first.
	ListByUserKey(ctx context.Context, userKey string, limit int) ([]*entities.SavedEstimate, error)
}
