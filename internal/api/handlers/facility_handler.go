package handlers

import (
	"net/http"
	"strconv"

	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
)

// FacilityHandler handles facility-related HTTP requests
type FacilityHandler struct {
	facilityRepo repositories.FacilityRepository
	searchRepo   repositories.FacilitySearchRepository
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(facilityRepo repositories.FacilityRepository, searchRepo repositories.FacilitySearchRepository) *FacilityHandler {
	return &FacilityHandler{
		facilityRepo: facilityRepo,
		searchRepo:   searchRepo,
	}
}

// GetFacility handles GET /api/facilities/{id}
func (h *FacilityHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	facility, err := h.facilityRepo.GetByID(r.Context(), facilityID)
	if err != nil {
		respondWithAppError(w, err, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, facility)
}

// ListFacilities handles GET /api/facilities
func (h *FacilityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	filter := repositories.FacilityFilter{
		FacilityType: r.URL.Query().Get("type"),
		NetworkTag:   r.URL.Query().Get("network"),
		Limit:        30,
		Offset:       0,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			filter.Limit = parsed
		}
	}

	facilities, err := h.facilityRepo.List(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list facilities")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": facilities,
		"count":      len(facilities),
	})
}

// SearchFacilities handles GET /api/facilities/search
func (h *FacilityHandler) SearchFacilities(w http.ResponseWriter, r *http.Request) {
	if h.searchRepo == nil {
		respondWithError(w, http.StatusServiceUnavailable, "facility search is not configured")
		return
	}

	params := repositories.SearchParams{
		Query:        r.URL.Query().Get("q"),
		FacilityType: r.URL.Query().Get("type"),
		Limit:        30,
	}
	if params.Query == "" {
		respondWithError(w, http.StatusBadRequest, "q is required")
		return
	}

	facilities, err := h.searchRepo.Search(r.Context(), params)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to search facilities")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": facilities,
		"count":      len(facilities),
	})
}
