package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clearcompass/clearcompass/backend/internal/application/services"
	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
)

// AidMatchService defines the handler dependency for aid matching.
type AidMatchService interface {
	MatchAid(ctx context.Context, req services.AidMatchRequest) (*services.AidMatchResponse, error)
}

// AidHandler handles assistance-program HTTP requests
type AidHandler struct {
	service  AidMatchService
	programs repositories.AidProgramRepository
}

// NewAidHandler creates a new aid handler
func NewAidHandler(service AidMatchService, programs repositories.AidProgramRepository) *AidHandler {
	return &AidHandler{service: service, programs: programs}
}

// MatchAid handles POST /api/aid-matches. The view query parameter
// selects the presentation: "tiered" for eligibility assessments,
// anything else for the savings-ranked match list.
func (h *AidHandler) MatchAid(w http.ResponseWriter, r *http.Request) {
	var req services.AidMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.InsuranceStatus == "" {
		req.InsuranceStatus = entities.InsuranceStatusInsured
	}
	req.TieredView = r.URL.Query().Get("view") == "tiered"

	resp, err := h.service.MatchAid(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err, "failed to match assistance programs")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// ListPrograms handles GET /api/aid-programs
func (h *AidHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.programs.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list assistance programs")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"programs": programs,
		"count":    len(programs),
	})
}

// GetProgram handles GET /api/aid-programs/{id}
func (h *AidHandler) GetProgram(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "program ID is required")
		return
	}

	program, err := h.programs.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err, "failed to retrieve program")
		return
	}

	respondWithJSON(w, http.StatusOK, program)
}
