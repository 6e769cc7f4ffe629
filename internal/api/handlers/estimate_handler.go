package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/clearcompass/clearcompass/backend/internal/application/services"
	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

// EstimateService defines the handler dependency for cost estimation.
type EstimateService interface {
	EstimateCost(ctx context.Context, req services.EstimateRequest) (*entities.EstimateResult, error)
	ComprehensivePlan(ctx context.Context, req services.ComprehensiveRequest) (*services.ComprehensiveResult, error)
	FPLPercentage(annualIncome float64, householdSize int) float64
	GetSavedEstimate(ctx context.Context, id string) (*entities.SavedEstimate, error)
	ListSavedEstimates(ctx context.Context, userKey string, limit int) ([]*entities.SavedEstimate, error)
}

// EstimateHandler handles estimate-related HTTP requests
type EstimateHandler struct {
	service EstimateService
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(service EstimateService) *EstimateHandler {
	return &EstimateHandler{service: service}
}

// CreateEstimate handles POST /api/estimates
func (h *EstimateHandler) CreateEstimate(w http.ResponseWriter, r *http.Request) {
	var req services.EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AsOf.IsZero() {
		req.AsOf = time.Now()
	}

	result, err := h.service.EstimateCost(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err, "failed to compute estimate")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// CreateComprehensiveEstimate handles POST /api/estimates/comprehensive
func (h *EstimateHandler) CreateComprehensiveEstimate(w http.ResponseWriter, r *http.Request) {
	var req services.ComprehensiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AsOf.IsZero() {
		req.AsOf = time.Now()
	}

	result, err := h.service.ComprehensivePlan(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err, "failed to compute comprehensive plan")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetFPL handles GET /api/fpl
func (h *EstimateHandler) GetFPL(w http.ResponseWriter, r *http.Request) {
	income, err := strconv.ParseFloat(r.URL.Query().Get("income"), 64)
	if err != nil || income < 0 {
		respondWithError(w, http.StatusBadRequest, "income must be a non-negative number")
		return
	}

	size, err := strconv.Atoi(r.URL.Query().Get("household_size"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "household_size must be an integer")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"annual_income":  income,
		"household_size": size,
		"fpl_percentage": h.service.FPLPercentage(income, size),
	})
}

// GetSavedEstimate handles GET /api/estimates/{id}
func (h *EstimateHandler) GetSavedEstimate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "estimate ID is required")
		return
	}

	estimate, err := h.service.GetSavedEstimate(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err, "failed to retrieve estimate")
		return
	}

	respondWithJSON(w, http.StatusOK, estimate)
}

// ListSavedEstimates handles GET /api/estimates
func (h *EstimateHandler) ListSavedEstimates(w http.ResponseWriter, r *http.Request) {
	userKey := r.URL.Query().Get("user_key")
	if userKey == "" {
		respondWithError(w, http.StatusBadRequest, "user_key is required")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	estimates, err := h.service.ListSavedEstimates(r.Context(), userKey, limit)
	if err != nil {
		respondWithAppError(w, err, "failed to list estimates")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"estimates": estimates,
		"count":     len(estimates),
	})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps typed application errors onto HTTP statuses,
// falling back to a 500 with a generic message.
func respondWithAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		case apperrors.ErrorTypeRateLimited:
			respondWithError(w, http.StatusTooManyRequests, appErr.Message)
			return
		case apperrors.ErrorTypeExternal:
			respondWithError(w, http.StatusServiceUnavailable, appErr.Message)
			return
		}
	}
	respondWithError(w, http.StatusInternalServerError, fallback)
}
