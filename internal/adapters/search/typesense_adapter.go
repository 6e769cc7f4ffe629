package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
	tsclient "github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/typesense"
)

const collectionName = "facilities"

// TypesenseAdapter implements facility search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements FacilitySearchRepository
var _ repositories.FacilitySearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "facility_type", Type: "string", Facet: pointer.True()},
			{Name: "is_active", Type: "bool"},
			{Name: "rating", Type: "float"},
			{Name: "review_count", Type: "int32"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}
	return nil
}

// Index indexes a facility
func (a *TypesenseAdapter) Index(ctx context.Context, facility *entities.Facility) error {
	document := map[string]interface{}{
		"id":            facility.ID,
		"name":          facility.Name,
		"facility_type": facility.FacilityType,
		"is_active":     facility.IsActive,
		"rating":        facility.Rating,
		"review_count":  facility.ReviewCount,
		"created_at":    facility.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index facility: %w", err)
	}
	return nil
}

// Delete removes a facility from index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete facility from index: %w", err)
	}
	return nil
}

// Search searches facilities by name
func (a *TypesenseAdapter) Search(ctx context.Context, params repositories.SearchParams) ([]*entities.Facility, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 30
	}

	filterBy := "is_active:=true"
	if params.FacilityType != "" {
		filterBy = fmt.Sprintf("%s && facility_type:=%s", filterBy, params.FacilityType)
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(params.Query),
		QueryBy:  pointer.String("name"),
		FilterBy: pointer.String(filterBy),
		Page:     pointer.Int(params.Offset/limit + 1),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search facilities: %w", err)
	}

	facilities := []*entities.Facility{}
	if result.Hits == nil {
		return facilities, nil
	}

	// Typesense returns map[string]interface{}; cast defensively and
	// skip malformed documents rather than failing the search.
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		id, ok := doc["id"].(string)
		if !ok {
			continue
		}
		facility := &entities.Facility{ID: id}
		if name, ok := doc["name"].(string); ok {
			facility.Name = name
		}
		if facilityType, ok := doc["facility_type"].(string); ok {
			facility.FacilityType = facilityType
		}
		if isActive, ok := doc["is_active"].(bool); ok {
			facility.IsActive = isActive
		}
		if rating, ok := doc["rating"].(float64); ok {
			facility.Rating = rating
		}
		if reviewCount, ok := doc["review_count"].(float64); ok {
			facility.ReviewCount = int(reviewCount)
		}
		facilities = append(facilities, facility)
	}
	return facilities, nil
}
