package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clearcompass/clearcompass/backend/internal/application/services"
	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
)

// PaymentPlanService defines the handler dependency for plan generation.
type PaymentPlanService interface {
	PaymentOptions(ctx context.Context, req services.PaymentOptionsRequest) ([]entities.PaymentPlanOffer, entities.FinancialCapacity, error)
}

// PaymentPlanHandler handles payment-plan HTTP requests
type PaymentPlanHandler struct {
	service PaymentPlanService
}

// NewPaymentPlanHandler creates a new payment plan handler
func NewPaymentPlanHandler(service PaymentPlanService) *PaymentPlanHandler {
	return &PaymentPlanHandler{service: service}
}

// GeneratePlans handles POST /api/payment-plans
func (h *PaymentPlanHandler) GeneratePlans(w http.ResponseWriter, r *http.Request) {
	var req services.PaymentOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TotalAmount < 0 {
		respondWithError(w, http.StatusBadRequest, "total_amount must be non-negative")
		return
	}

	offers, capacity, err := h.service.PaymentOptions(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err, "failed to generate payment plans")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"capacity": capacity,
		"plans":    offers,
		"count":    len(offers),
	})
}
