package repositories

import (
	"context"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
)

// PricingRepository provides negotiated rates and quality signals for a
// facility/procedure pair. It is the pricing data source the estimator
// consults; rate freshness is whatever the store holds, the estimator
// compares it against an explicit reference time.
type PricingRepository interface {
	// GetNegotiatedRate retrieves the pricing row for a facility and
	// procedure code. Returns a NotFound error when no row exists.
	GetNegotiatedRate(ctx context.Context, facilityID, procedureCode string) (*entities.NegotiatedRate, error)

	// GetQualitySignals retrieves quality data for a facility. Returns
	// a NotFound error when the facility has no recorded signals.
	GetQualitySignals(ctx context.Context, facilityID string) (*entities.FacilityQualitySignals, error)
}
