package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/internal/domain/providers"
	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/observability"
	"github.com/clearcompass/clearcompass/backend/pkg/config"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

// FallbackNarrative is the deterministic default substituted when the
// narrative generator is slow, unavailable, or errors. User-visible
// behavior stays bounded regardless of the external dependency.
const FallbackNarrative = "We could not generate a personalized explanation right now. " +
	"Your estimate reflects your plan's deductible, coinsurance, and out-of-pocket maximum; " +
	"the payment plans and assistance programs listed are computed from your household details."

// EstimateRequest is the input to a single cost estimate.
type EstimateRequest struct {
	Inputs  entities.ProcedureCostInputs `json:"inputs"`
	Plan    *entities.InsurancePlan      `json:"plan,omitempty"`
	Network entities.NetworkStatus       `json:"network"`
	// AsOf is the reference time for rate freshness. The caller sets
	// it explicitly; identical requests yield identical results.
	AsOf time.Time `json:"as_of"`
	// UserKey, when set, persists the result for later retrieval.
	UserKey string `json:"user_key,omitempty"`
}

// PaymentOptionsRequest is the input to payment-plan generation.
type PaymentOptionsRequest struct {
	TotalAmount     float64 `json:"total_amount"`
	AnnualIncome    float64 `json:"annual_income"`
	HouseholdSize   int     `json:"household_size"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	PayerName       string  `json:"payer_name,omitempty"`
}

// AidMatchRequest is the input to aid-program matching.
type AidMatchRequest struct {
	AnnualIncome    float64                  `json:"annual_income"`
	HouseholdSize   int                      `json:"household_size"`
	InsuranceStatus entities.InsuranceStatus `json:"insurance_status"`
	TotalCost       float64                  `json:"total_cost"`
	TieredView      bool                     `json:"tiered_view"`
}

// AidMatchResponse carries whichever presentation was requested.
type AidMatchResponse struct {
	FPLPercentage float64                          `json:"fpl_percentage"`
	Matches       []entities.AidMatch              `json:"matches,omitempty"`
	Assessments   []entities.EligibilityAssessment `json:"assessments,omitempty"`
}

// ComprehensiveRequest is the input to the composed estimate + plans +
// aid flow.
type ComprehensiveRequest struct {
	EstimateRequest
	AnnualIncome     float64                  `json:"annual_income"`
	HouseholdSize    int                      `json:"household_size"`
	MonthlyExpenses  float64                  `json:"monthly_expenses"`
	InsuranceStatus  entities.InsuranceStatus `json:"insurance_status"`
	PayerName        string                   `json:"payer_name,omitempty"`
	Question         string                   `json:"question,omitempty"`
	IncludeNarrative bool                     `json:"include_narrative"`
}

// ComprehensiveResult composes everything a caller needs to render a
// payment-and-aid plan for one procedure.
type ComprehensiveResult struct {
	Estimate       *entities.EstimateResult    `json:"estimate"`
	FPLPercentage  float64                     `json:"fpl_percentage"`
	Capacity       entities.FinancialCapacity  `json:"capacity"`
	PaymentPlans   []entities.PaymentPlanOffer `json:"payment_plans"`
	AidMatches     []entities.AidMatch         `json:"aid_matches"`
	Recommendation string                      `json:"recommendation"`
	Narrative      string                      `json:"narrative,omitempty"`
}

// EstimateService orchestrates the estimation pipeline: raw inputs →
// FPL% → cost sharing → range/confidence → payment plans and aid
// matches. Every computation is pure over its inputs; the service holds
// no cross-request state.
type EstimateService struct {
	pricing     repositories.PricingRepository
	aidPrograms repositories.AidProgramRepository
	planMenus   repositories.PlanMenuRepository
	estimates   repositories.EstimateRepository
	narrative   providers.NarrativeProvider

	fpl         *FPLService
	costSharing *CostSharingService
	confidence  *ConfidenceService
	plans       *PaymentPlanService
	aidMatch    *AidMatchService

	ancillary         config.AncillaryConfig
	physicianFeeShare float64
	metrics           *observability.Metrics
}

// NewEstimateService creates a new estimate service
func NewEstimateService(
	pricing repositories.PricingRepository,
	aidPrograms repositories.AidProgramRepository,
	planMenus repositories.PlanMenuRepository,
	estimates repositories.EstimateRepository,
	narrative providers.NarrativeProvider,
	fpl *FPLService,
	costSharing *CostSharingService,
	confidence *ConfidenceService,
	plans *PaymentPlanService,
	aidMatch *AidMatchService,
	estimatorCfg config.EstimatorConfig,
	metrics *observability.Metrics,
) *EstimateService {
	return &EstimateService{
		pricing:           pricing,
		aidPrograms:       aidPrograms,
		planMenus:         planMenus,
		estimates:         estimates,
		narrative:         narrative,
		fpl:               fpl,
		costSharing:       costSharing,
		confidence:        confidence,
		plans:             plans,
		aidMatch:          aidMatch,
		ancillary:         estimatorCfg.Ancillary,
		physicianFeeShare: estimatorCfg.PhysicianFeeShare,
		metrics:           metrics,
	}
}

// EstimateCost computes a patient-cost estimate for one procedure at
// one facility. Missing pricing or quality data degrades confidence
// rather than failing the request.
func (s *EstimateService) EstimateCost(ctx context.Context, req EstimateRequest) (*entities.EstimateResult, error) {
	if req.Inputs.FacilityID == "" {
		return nil, apperrors.NewValidationError("facility ID is required")
	}
	if req.Inputs.ProcedureCode == "" {
		return nil, apperrors.NewValidationError("procedure code is required")
	}

	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	rate, err := s.pricing.GetNegotiatedRate(ctx, req.Inputs.FacilityID, req.Inputs.ProcedureCode)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	quality, err := s.pricing.GetQualitySignals(ctx, req.Inputs.FacilityID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	basis, basisAssumption := s.confidence.AllowedAmount(rate, req.Network)
	assumptions := []string{basisAssumption}

	anesthesia := s.anesthesiaFee(req.Inputs)
	if anesthesia > 0 {
		assumptions = append(assumptions, fmt.Sprintf("estimated anesthesia fee of $%.2f included", anesthesia))
	}
	var medication float64
	if req.Inputs.IncludesMedication {
		medication = s.ancillary.MedicationFlatFee
		assumptions = append(assumptions, fmt.Sprintf("flat medication fee of $%.2f included", medication))
	}

	totalCharge := basis + anesthesia + medication

	sharing := s.costSharing.PatientResponsibility(
		totalCharge,
		req.Plan,
		req.Inputs.ProcedureCode,
		req.Inputs.DeductibleMet,
		req.Inputs.OOPYearToDate,
		req.Network,
	)
	assumptions = append(assumptions, sharing.Assumptions...)

	conf, confAssumptions := s.confidence.Score(rate, quality, asOf)
	assumptions = append(assumptions, confAssumptions...)

	result := &entities.EstimateResult{
		ID:            uuid.NewString(),
		FacilityID:    req.Inputs.FacilityID,
		ProcedureCode: req.Inputs.ProcedureCode,
		Range:         s.confidence.Range(sharing.Amount, conf),
		Breakdown:     s.breakdown(sharing.Amount, basis, anesthesia, medication, totalCharge),
		Confidence:    conf,
		Assumptions:   assumptions,
		CreatedAt:     asOf,
	}

	observability.RecordEstimate(ctx, s.metrics, req.Inputs.FacilityID, conf)
	logger := observability.LoggerFromContext(ctx)
	logger.Debug().
		Str("facility_id", req.Inputs.FacilityID).
		Str("procedure_code", req.Inputs.ProcedureCode).
		Float64("mid", result.Range.Mid).
		Float64("confidence", conf).
		Msg("estimate computed")

	if req.UserKey != "" && s.estimates != nil {
		saved := &entities.SavedEstimate{
			ID:        result.ID,
			UserKey:   req.UserKey,
			Result:    *result,
			CreatedAt: asOf,
		}
		if err := s.estimates.Save(ctx, saved); err != nil {
			// The computation succeeded; persistence is best-effort
			logger.Warn().Err(err).Str("estimate_id", result.ID).Msg("failed to save estimate")
		}
	}

	return result, nil
}

// PaymentOptions generates payment-plan offers for a total amount given
// the household's finances and an optional payer plan menu.
func (s *EstimateService) PaymentOptions(ctx context.Context, req PaymentOptionsRequest) ([]entities.PaymentPlanOffer, entities.FinancialCapacity, error) {
	capacity := s.plans.AssessCapacity(req.AnnualIncome, req.MonthlyExpenses)

	menu, err := s.lookupMenu(ctx, req.PayerName)
	if err != nil {
		return nil, capacity, err
	}

	return s.plans.GeneratePlans(req.TotalAmount, menu, capacity), capacity, nil
}

// MatchAid matches the household against the assistance-program
// catalog, in either the savings-ranked or tiered presentation.
func (s *EstimateService) MatchAid(ctx context.Context, req AidMatchRequest) (*AidMatchResponse, error) {
	fpl := s.fpl.Percentage(req.AnnualIncome, req.HouseholdSize)

	catalog, err := s.aidPrograms.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &AidMatchResponse{FPLPercentage: roundTenth(fpl)}
	if req.TieredView {
		resp.Assessments = s.aidMatch.Assess(fpl, req.InsuranceStatus, req.TotalCost, catalog)
	} else {
		resp.Matches = s.aidMatch.Match(fpl, req.TotalCost, catalog)
	}
	return resp, nil
}

// FPLPercentage exposes the FPL calculator at the service surface.
func (s *EstimateService) FPLPercentage(annualIncome float64, householdSize int) float64 {
	return s.fpl.Percentage(annualIncome, householdSize)
}

// ComprehensivePlan runs the full pipeline: estimate, affordability,
// payment plans, aid matches, and a composed recommendation. The
// narrative, when requested, is presentational only and falls back to
// a fixed default on any provider failure.
func (s *EstimateService) ComprehensivePlan(ctx context.Context, req ComprehensiveRequest) (*ComprehensiveResult, error) {
	estimate, err := s.EstimateCost(ctx, req.EstimateRequest)
	if err != nil {
		return nil, err
	}

	fpl := s.fpl.Percentage(req.AnnualIncome, req.HouseholdSize)
	capacity := s.plans.AssessCapacity(req.AnnualIncome, req.MonthlyExpenses)

	menu, err := s.lookupMenu(ctx, req.PayerName)
	if err != nil {
		return nil, err
	}

	total := estimate.Range.Mid
	offers := s.plans.GeneratePlans(total, menu, capacity)

	catalog, err := s.aidPrograms.List(ctx)
	if err != nil {
		return nil, err
	}
	matches := s.aidMatch.Match(fpl, total, catalog)

	result := &ComprehensiveResult{
		Estimate:       estimate,
		FPLPercentage:  roundTenth(fpl),
		Capacity:       capacity,
		PaymentPlans:   offers,
		AidMatches:     matches,
		Recommendation: s.recommendation(total, offers, matches),
	}

	if req.IncludeNarrative && s.narrative != nil {
		text, err := s.narrative.ExplainEstimate(ctx, estimate, req.Question)
		if err != nil || text == "" {
			observability.RecordNarrativeFallback(ctx, s.metrics, "provider_error")
			text = FallbackNarrative
		}
		result.Narrative = text
	}

	return result, nil
}

// GetSavedEstimate retrieves a previously saved estimate.
func (s *EstimateService) GetSavedEstimate(ctx context.Context, id string) (*entities.SavedEstimate, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("estimate ID is required")
	}
	return s.estimates.GetByID(ctx, id)
}

// ListSavedEstimates retrieves estimates saved under a user key.
func (s *EstimateService) ListSavedEstimates(ctx context.Context, userKey string, limit int) ([]*entities.SavedEstimate, error) {
	if userKey == "" {
		return nil, apperrors.NewValidationError("user key is required")
	}
	return s.estimates.ListByUserKey(ctx, userKey, limit)
}

func (s *EstimateService) lookupMenu(ctx context.Context, payerName string) (*entities.PayerPlanMenu, error) {
	if payerName == "" || s.planMenus == nil {
		return nil, nil
	}
	menu, err := s.planMenus.GetByPayer(ctx, payerName)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return menu, nil
}

// anesthesiaFee estimates the anesthesia charge from billed time units
// scaled by the ASA physical-status class.
func (s *EstimateService) anesthesiaFee(inputs entities.ProcedureCostInputs) float64 {
	if inputs.AnesthesiaMinutes == nil || *inputs.AnesthesiaMinutes <= 0 {
		return 0
	}
	unitMinutes := s.ancillary.AnesthesiaUnitMinutes
	if unitMinutes <= 0 {
		unitMinutes = 15
	}
	units := math.Ceil(float64(*inputs.AnesthesiaMinutes) / float64(unitMinutes))

	multiplier := 1.0
	if inputs.ASAClass != nil {
		if m, ok := s.ancillary.ASAMultipliers[*inputs.ASAClass]; ok {
			multiplier = m
		}
	}
	return units * s.ancillary.AnesthesiaUnitRate * multiplier
}

// breakdown apportions the patient total across charge components
// pro-rata; the facility fee absorbs rounding drift so the component
// sum always matches the total.
func (s *EstimateService) breakdown(patientTotal, basis, anesthesia, medication, totalCharge float64) entities.CostBreakdown {
	if totalCharge <= 0 || patientTotal <= 0 {
		return entities.CostBreakdown{Total: patientTotal}
	}

	scale := patientTotal / totalCharge
	physician := roundCents(basis * s.physicianFeeShare * scale)
	anesthesiaFee := roundCents(anesthesia * scale)
	medicationFee := roundCents(medication * scale)
	facility := roundCents(patientTotal - physician - anesthesiaFee - medicationFee)

	return entities.CostBreakdown{
		FacilityFee:   facility,
		PhysicianFee:  physician,
		AnesthesiaFee: anesthesiaFee,
		MedicationFee: medicationFee,
		Total:         patientTotal,
	}
}

func (s *EstimateService) recommendation(total float64, offers []entities.PaymentPlanOffer, matches []entities.AidMatch) string {
	if len(matches) > 0 && matches[0].EstimatedSavings > total*0.5 {
		if len(offers) > 0 {
			return fmt.Sprintf("Apply for %s first - it could save you $%.2f. Use the %s for any remaining balance.",
				matches[0].Program.Name, matches[0].EstimatedSavings, offers[0].Name)
		}
		return fmt.Sprintf("Apply for %s first - it could save you $%.2f.",
			matches[0].Program.Name, matches[0].EstimatedSavings)
	}

	if len(offers) > 0 {
		rec := fmt.Sprintf("Choose the %s - it is the most affordable option.", offers[0].Name)
		if len(matches) > 0 {
			rec += fmt.Sprintf(" Consider applying for %s for additional savings.", matches[0].Program.Name)
		}
		return rec
	}

	if len(matches) > 0 {
		return fmt.Sprintf("Apply for %s - estimated savings of $%.2f.",
			matches[0].Program.Name, matches[0].EstimatedSavings)
	}

	return "Contact the facility's financial counselor to discuss options."
}
