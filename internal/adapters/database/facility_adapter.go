package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

// FacilityAdapter implements FacilityRepository
type FacilityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.FacilityRepository = (*FacilityAdapter)(nil)

// NewFacilityAdapter creates a new facility adapter
func NewFacilityAdapter(client *postgres.Client) *FacilityAdapter {
	return &FacilityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var facilityColumns = []interface{}{
	"id", "name", "street", "city", "state", "zip_code", "country",
	"phone_number", "website", "facility_type", "network_tags",
	"rating", "review_count", "is_active", "created_at", "updated_at",
}

// GetByID retrieves a facility by ID
func (a *FacilityAdapter) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	query, args, err := a.db.Select(facilityColumns...).
		From("facilities").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	facility, err := scanFacility(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility %s not found", id))
	}
	if err != nil {
		return nil, err
	}
	return facility, nil
}

// List retrieves facilities matching the filter
func (a *FacilityAdapter) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	ds := a.db.Select(facilityColumns...).From("facilities")

	if filter.FacilityType != "" {
		ds = ds.Where(goqu.Ex{"facility_type": filter.FacilityType})
	}
	if filter.NetworkTag != "" {
		ds = ds.Where(goqu.L("? = ANY(network_tags)", filter.NetworkTag))
	}
	if filter.IsActive != nil {
		ds = ds.Where(goqu.Ex{"is_active": *filter.IsActive})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 30
	}
	ds = ds.Order(goqu.C("name").Asc()).Limit(uint(limit))
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list facilities", err)
	}
	defer rows.Close()

	var facilities []*entities.Facility
	for rows.Next() {
		facility, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		facilities = append(facilities, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate facilities", err)
	}
	return facilities, nil
}

// Create creates a new facility
func (a *FacilityAdapter) Create(ctx context.Context, facility *entities.Facility) error {
	query, args, err := a.db.Insert("facilities").Rows(facilityRecord(facility)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create facility", err)
	}
	return nil
}

// Update updates a facility
func (a *FacilityAdapter) Update(ctx context.Context, facility *entities.Facility) error {
	facility.UpdatedAt = time.Now()

	record := facilityRecord(facility)
	delete(record, "id")
	delete(record, "created_at")

	query, args, err := a.db.Update("facilities").
		Set(record).
		Where(goqu.Ex{"id": facility.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update facility", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility %s not found", facility.ID))
	}
	return nil
}

func facilityRecord(facility *entities.Facility) goqu.Record {
	return goqu.Record{
		"id":            facility.ID,
		"name":          facility.Name,
		"street":        sql.NullString{String: facility.Address.Street, Valid: facility.Address.Street != ""},
		"city":          sql.NullString{String: facility.Address.City, Valid: facility.Address.City != ""},
		"state":         sql.NullString{String: facility.Address.State, Valid: facility.Address.State != ""},
		"zip_code":      sql.NullString{String: facility.Address.ZipCode, Valid: facility.Address.ZipCode != ""},
		"country":       sql.NullString{String: facility.Address.Country, Valid: facility.Address.Country != ""},
		"phone_number":  sql.NullString{String: facility.PhoneNumber, Valid: facility.PhoneNumber != ""},
		"website":       sql.NullString{String: facility.Website, Valid: facility.Website != ""},
		"facility_type": facility.FacilityType,
		"network_tags":  pq.Array(facility.NetworkTags),
		"rating":        facility.Rating,
		"review_count":  facility.ReviewCount,
		"is_active":     facility.IsActive,
		"created_at":    facility.CreatedAt,
		"updated_at":    facility.UpdatedAt,
	}
}

func scanFacility(row rowScanner) (*entities.Facility, error) {
	facility := &entities.Facility{}
	var street, city, state, zipCode, country, phone, website sql.NullString

	err := row.Scan(
		&facility.ID,
		&facility.Name,
		&street,
		&city,
		&state,
		&zipCode,
		&country,
		&phone,
		&website,
		&facility.FacilityType,
		pq.Array(&facility.NetworkTags),
		&facility.Rating,
		&facility.ReviewCount,
		&facility.IsActive,
		&facility.CreatedAt,
		&facility.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan facility", err)
	}

	facility.Address = entities.Address{
		Street:  street.String,
		City:    city.String,
		State:   state.String,
		ZipCode: zipCode.String,
		Country: country.String,
	}
	facility.PhoneNumber = phone.String
	facility.Website = website.String
	return facility, nil
}
