package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearcompass/clearcompass/backend/internal/api/handlers"
	"github.com/clearcompass/clearcompass/backend/internal/application/services"
	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

type stubEstimateService struct {
	result    *entities.EstimateResult
	composite *services.ComprehensiveResult
	err       error
	lastReq   services.EstimateRequest
}

func (s *stubEstimateService) EstimateCost(_ context.Context, req services.EstimateRequest) (*entities.EstimateResult, error) {
	s.lastReq = req
	return s.result, s.err
}

func (s *stubEstimateService) ComprehensivePlan(_ context.Context, req services.ComprehensiveRequest) (*services.ComprehensiveResult, error) {
	s.lastReq = req.EstimateRequest
	return s.composite, s.err
}

func (s *stubEstimateService) FPLPercentage(annualIncome float64, householdSize int) float64 {
	if householdSize < 1 {
		householdSize = 1
	}
	return annualIncome / (15060 + float64(householdSize-1)*5380) * 100
}

func (s *stubEstimateService) GetSavedEstimate(_ context.Context, id string) (*entities.SavedEstimate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entities.SavedEstimate{ID: id, UserKey: "u1", Result: *s.result}, nil
}

func (s *stubEstimateService) ListSavedEstimates(_ context.Context, userKey string, limit int) ([]*entities.SavedEstimate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*entities.SavedEstimate{{ID: "e1", UserKey: userKey, Result: *s.result}}, nil
}

func sampleResult() *entities.EstimateResult {
	return &entities.EstimateResult{
		ID:            "est-1",
		FacilityID:    "fac-1",
		ProcedureCode: "47562",
		Range:         entities.CostRange{Low: 1800, Mid: 2050, High: 2300},
		Breakdown:     entities.CostBreakdown{FacilityFee: 1537.50, PhysicianFee: 512.50, Total: 2050},
		Confidence:    0.8,
		Assumptions:   []string{"used the payer-negotiated in-network rate"},
		CreatedAt:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEstimateHandler_CreateEstimate_Success(t *testing.T) {
	service := &stubEstimateService{result: sampleResult()}
	handler := handlers.NewEstimateHandler(service)

	body := `{"inputs":{"facility_id":"fac-1","procedure_code":"47562"},"network":"in_network"}`
	req := httptest.NewRequest("POST", "/api/estimates", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateEstimate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entities.EstimateResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "est-1", response.ID)
	assert.Equal(t, 2050.0, response.Range.Mid)

	// Handler fills in the reference time when the caller omits it
	assert.False(t, service.lastReq.AsOf.IsZero())
}

func TestEstimateHandler_CreateEstimate_InvalidBody(t *testing.T) {
	handler := handlers.NewEstimateHandler(&stubEstimateService{})

	req := httptest.NewRequest("POST", "/api/estimates", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.CreateEstimate(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEstimateHandler_CreateEstimate_ValidationError(t *testing.T) {
	service := &stubEstimateService{err: apperrors.NewValidationError("facility ID is required")}
	handler := handlers.NewEstimateHandler(service)

	req := httptest.NewRequest("POST", "/api/estimates", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	handler.CreateEstimate(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "facility ID is required", response["error"])
}

func TestEstimateHandler_GetFPL(t *testing.T) {
	handler := handlers.NewEstimateHandler(&stubEstimateService{})

	req := httptest.NewRequest("GET", "/api/fpl?income=50000&household_size=2", nil)
	w := httptest.NewRecorder()

	handler.GetFPL(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]float64
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.InDelta(t, 244.6, response["fpl_percentage"], 0.1)
}

func TestEstimateHandler_GetFPL_BadParams(t *testing.T) {
	handler := handlers.NewEstimateHandler(&stubEstimateService{})

	for _, url := range []string{
		"/api/fpl",
		"/api/fpl?income=abc&household_size=2",
		"/api/fpl?income=-5&household_size=2",
		"/api/fpl?income=50000&household_size=two",
	} {
		req := httptest.NewRequest("GET", url, nil)
		w := httptest.NewRecorder()
		handler.GetFPL(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
	}
}

func TestEstimateHandler_GetSavedEstimate_NotFound(t *testing.T) {
	service := &stubEstimateService{err: apperrors.NewNotFoundError("estimate not found")}
	handler := handlers.NewEstimateHandler(service)

	req := httptest.NewRequest("GET", "/api/estimates/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	handler.GetSavedEstimate(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEstimateHandler_ListSavedEstimates_RequiresUserKey(t *testing.T) {
	handler := handlers.NewEstimateHandler(&stubEstimateService{result: sampleResult()})

	req := httptest.NewRequest("GET", "/api/estimates", nil)
	w := httptest.NewRecorder()

	handler.ListSavedEstimates(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
