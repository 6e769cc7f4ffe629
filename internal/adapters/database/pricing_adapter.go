package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

// PricingAdapter implements PricingRepository
type PricingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.PricingRepository = (*PricingAdapter)(nil)

// NewPricingAdapter creates a new pricing adapter
func NewPricingAdapter(client *postgres.Client) *PricingAdapter {
	return &PricingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetNegotiatedRate retrieves the pricing row for a facility and procedure
func (a *PricingAdapter) GetNegotiatedRate(ctx context.Context, facilityID, procedureCode string) (*entities.NegotiatedRate, error) {
	query, args, err := a.db.Select(
		"facility_id", "procedure_code", "cash_price", "min_allowed",
		"max_allowed", "payer_allowed", "updated_at",
	).From("negotiated_rates").
		Where(goqu.Ex{"facility_id": facilityID, "procedure_code": procedureCode}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rate := &entities.NegotiatedRate{}
	var payerAllowed sql.NullFloat64

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&rate.FacilityID,
		&rate.ProcedureCode,
		&rate.CashPrice,
		&rate.MinAllowed,
		&rate.MaxAllowed,
		&payerAllowed,
		&rate.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf(
			"no negotiated rate for facility %s procedure %s", facilityID, procedureCode))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get negotiated rate", err)
	}

	if payerAllowed.Valid {
		rate.PayerAllowed = &payerAllowed.Float64
	}
	return rate, nil
}

// GetQualitySignals retrieves quality data for a facility
func (a *PricingAdapter) GetQualitySignals(ctx context.Context, facilityID string) (*entities.FacilityQualitySignals, error) {
	query, args, err := a.db.Select(
		"facility_id", "network_tags", "quality_score",
		"readmission_rate", "complication_rate",
	).From("facility_quality_signals").
		Where(goqu.Ex{"facility_id": facilityID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	signals := &entities.FacilityQualitySignals{}
	var readmission, complication sql.NullFloat64

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&signals.FacilityID,
		pq.Array(&signals.NetworkTags),
		&signals.QualityScore,
		&readmission,
		&complication,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no quality signals for facility %s", facilityID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get quality signals", err)
	}

	if readmission.Valid {
		signals.ReadmissionRate = &readmission.Float64
	}
	if complication.Valid {
		signals.ComplicationRate = &complication.Float64
	}
	return signals, nil
}

// UpsertNegotiatedRate inserts or replaces a pricing row. Used by the
// seed tool and by ingestion jobs.
func (a *PricingAdapter) UpsertNegotiatedRate(ctx context.Context, rate *entities.NegotiatedRate) error {
	record := goqu.Record{
		"facility_id":    rate.FacilityID,
		"procedure_code": rate.ProcedureCode,
		"cash_price":     rate.CashPrice,
		"min_allowed":    rate.MinAllowed,
		"max_allowed":    rate.MaxAllowed,
		"payer_allowed":  sql.NullFloat64{Float64: deref(rate.PayerAllowed), Valid: rate.PayerAllowed != nil},
		"updated_at":     rate.UpdatedAt,
	}

	query, args, err := a.db.Insert("negotiated_rates").
		Rows(record).
		OnConflict(goqu.DoUpdate("facility_id, procedure_code", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert negotiated rate", err)
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
