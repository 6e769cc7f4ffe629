package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

// PlanMenuAdapter implements PlanMenuRepository
type PlanMenuAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.PlanMenuRepository = (*PlanMenuAdapter)(nil)

// NewPlanMenuAdapter creates a new plan menu adapter
func NewPlanMenuAdapter(client *postgres.Client) *PlanMenuAdapter {
	return &PlanMenuAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var planMenuColumns = []interface{}{
	"payer_name", "interest_free_months", "extended_plan_months",
	"extended_plan_apr", "minimum_monthly",
}

// GetByPayer retrieves the plan menu configured for a payer
func (a *PlanMenuAdapter) GetByPayer(ctx context.Context, payerName string) (*entities.PayerPlanMenu, error) {
	query, args, err := a.db.Select(planMenuColumns...).
		From("payer_plan_menus").
		Where(goqu.Ex{"payer_name": payerName}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	menu := &entities.PayerPlanMenu{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&menu.PayerName,
		&menu.InterestFreeMonths,
		&menu.ExtendedPlanMonths,
		&menu.ExtendedPlanAPR,
		&menu.MinimumMonthly,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no plan menu for payer %s", payerName))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get plan menu", err)
	}
	return menu, nil
}

// List retrieves all configured menus
func (a *PlanMenuAdapter) List(ctx context.Context) ([]*entities.PayerPlanMenu, error) {
	query, args, err := a.db.Select(planMenuColumns...).
		From("payer_plan_menus").
		Order(goqu.C("payer_name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list plan menus", err)
	}
	defer rows.Close()

	var menus []*entities.PayerPlanMenu
	for rows.Next() {
		menu := &entities.PayerPlanMenu{}
		if err := rows.Scan(
			&menu.PayerName,
			&menu.InterestFreeMonths,
			&menu.ExtendedPlanMonths,
			&menu.ExtendedPlanAPR,
			&menu.MinimumMonthly,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan plan menu", err)
		}
		menus = append(menus, menu)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate plan menus", err)
	}
	return menus, nil
}

// Upsert inserts or replaces a payer menu. Used by the seed tool.
func (a *PlanMenuAdapter) Upsert(ctx context.Context, menu *entities.PayerPlanMenu) error {
	record := goqu.Record{
		"payer_name":           menu.PayerName,
		"interest_free_months": menu.InterestFreeMonths,
		"extended_plan_months": menu.ExtendedPlanMonths,
		"extended_plan_apr":    menu.ExtendedPlanAPR,
		"minimum_monthly":      menu.MinimumMonthly,
	}

	query, args, err := a.db.Insert("payer_plan_menus").
		Rows(record).
		OnConflict(goqu.DoUpdate("payer_name", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert plan menu", err)
	}
	return nil
}
