package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

// EstimateAdapter implements EstimateRepository. The full result is
// stored as a JSON document; the indexed columns exist for lookups.
type EstimateAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.EstimateRepository = (*EstimateAdapter)(nil)

// NewEstimateAdapter creates a new estimate adapter
func NewEstimateAdapter(client *postgres.Client) *EstimateAdapter {
	return &EstimateAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Save stores an estimate under the given user key
func (a *EstimateAdapter) Save(ctx context.Context, estimate *entities.SavedEstimate) error {
	result, err := json.Marshal(estimate.Result)
	if err != nil {
		return apperrors.NewInternalError("failed to serialize estimate result", err)
	}

	record := goqu.Record{
		"id":         estimate.ID,
		"user_key":   estimate.UserKey,
		"result":     string(result),
		"created_at": estimate.CreatedAt,
	}

	query, args, err := a.db.Insert("saved_estimates").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save estimate", err)
	}
	return nil
}

// GetByID retrieves a saved estimate
func (a *EstimateAdapter) GetByID(ctx context.Context, id string) (*entities.SavedEstimate, error) {
	query, args, err := a.db.Select("id", "user_key", "result", "created_at").
		From("saved_estimates").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	estimate, err := a.scanEstimate(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("estimate %s not found", id))
	}
	if err != nil {
		return nil, err
	}
	return estimate, nil
}

// ListByUserKey retrieves estimates saved under a user key, newest first
func (a *EstimateAdapter) ListByUserKey(ctx context.Context, userKey string, limit int) ([]*entities.SavedEstimate, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := a.db.Select("id", "user_key", "result", "created_at").
		From("saved_estimates").
		Where(goqu.Ex{"user_key": userKey}).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list estimates", err)
	}
	defer rows.Close()

	var estimates []*entities.SavedEstimate
	for rows.Next() {
		estimate, err := a.scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, estimate)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate estimates", err)
	}
	return estimates, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *EstimateAdapter) scanEstimate(row rowScanner) (*entities.SavedEstimate, error) {
	estimate := &entities.SavedEstimate{}
	var result string

	err := row.Scan(&estimate.ID, &estimate.UserKey, &result, &estimate.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan estimate", err)
	}

	if err := json.Unmarshal([]byte(result), &estimate.Result); err != nil {
		return nil, apperrors.NewInternalError("failed to deserialize estimate result", err)
	}
	return estimate, nil
}
