package repositories

import (
	"context"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
)

// AidProgramRepository provides the assistance-program catalog.
// Catalog rows are reference data; the matcher does not validate their
// quality, only the immediate request.
type AidProgramRepository interface {
	// List retrieves active programs in catalog order.
	List(ctx context.Context) ([]*entities.AidProgram, error)

	// GetByID retrieves a single program.
	GetByID(ctx context.Context, id string) (*entities.AidProgram, error)
}

// PlanMenuRepository provides payer payment-plan menus.
type PlanMenuRepository interface {
	// GetByPayer retrieves the plan menu configured for a payer.
	// Returns a NotFound error when the payer has no menu.
	GetByPayer(ctx context.Context, payerName string) (*entities.PayerPlanMenu, error)

	// List retrieves all configured menus.
	List(ctx context.Context) ([]*entities.PayerPlanMenu, error)
}
