package repositories

import (
	"context"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
)

// FacilityFilter holds filtering options for listing facilities
type FacilityFilter struct {
	FacilityType string
	NetworkTag   string
	IsActive     *bool
	Limit        int
	Offset       int
}

// SearchParams holds parameters for facility search
type SearchParams struct {
	Query        string
	FacilityType string
	Limit        int
	Offset       int
}

// FacilityRepository defines the interface for facility data access
type FacilityRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Facility, error)
	List(ctx context.Context, filter FacilityFilter) ([]*entities.Facility, error)
	Create(ctx context.Context, facility *entities.Facility) error
	Update(ctx context.Context, facility *entities.Facility) error
}

// FacilitySearchRepository defines the interface for the facility
// search index
type FacilitySearchRepository interface {
	InitSchema(ctx context.Context) error
	Index(ctx context.Context, facility *entities.Facility) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, params SearchParams) ([]*entities.Facility, error)
}
