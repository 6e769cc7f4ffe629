package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/pkg/config"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

type fakePricingRepo struct {
	rates   map[string]*entities.NegotiatedRate
	quality map[string]*entities.FacilityQualitySignals
}

func (f *fakePricingRepo) GetNegotiatedRate(_ context.Context, facilityID, procedureCode string) (*entities.NegotiatedRate, error) {
	if rate, ok := f.rates[facilityID+"/"+procedureCode]; ok {
		return rate, nil
	}
	return nil, apperrors.NewNotFoundError("rate not found")
}

func (f *fakePricingRepo) GetQualitySignals(_ context.Context, facilityID string) (*entities.FacilityQualitySignals, error) {
	if q, ok := f.quality[facilityID]; ok {
		return q, nil
	}
	return nil, apperrors.NewNotFoundError("quality signals not found")
}

type fakeAidProgramRepo struct {
	programs []*entities.AidProgram
	err      error
}

func (f *fakeAidProgramRepo) List(_ context.Context) ([]*entities.AidProgram, error) {
	return f.programs, f.err
}

func (f *fakeAidProgramRepo) GetByID(_ context.Context, id string) (*entities.AidProgram, error) {
	for _, p := range f.programs {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.NewNotFoundError("program not found")
}

type fakePlanMenuRepo struct {
	menus map[string]*entities.PayerPlanMenu
}

func (f *fakePlanMenuRepo) GetByPayer(_ context.Context, payerName string) (*entities.PayerPlanMenu, error) {
	if m, ok := f.menus[payerName]; ok {
		return m, nil
	}
	return nil, apperrors.NewNotFoundError("no plan menu for payer")
}

func (f *fakePlanMenuRepo) List(_ context.Context) ([]*entities.PayerPlanMenu, error) {
	menus := make([]*entities.PayerPlanMenu, 0, len(f.menus))
	for _, m := range f.menus {
		menus = append(menus, m)
	}
	sort.Slice(menus, func(i, j int) bool { return menus[i].PayerName < menus[j].PayerName })
	return menus, nil
}

type fakeEstimateRepo struct {
	saved map[string]*entities.SavedEstimate
}

func (f *fakeEstimateRepo) Save(_ context.Context, estimate *entities.SavedEstimate) error {
	if f.saved == nil {
		f.saved = make(map[string]*entities.SavedEstimate)
	}
	f.saved[estimate.ID] = estimate
	return nil
}

func (f *fakeEstimateRepo) GetByID(_ context.Context, id string) (*entities.SavedEstimate, error) {
	if e, ok := f.saved[id]; ok {
		return e, nil
	}
	return nil, apperrors.NewNotFoundError("estimate not found")
}

func (f *fakeEstimateRepo) ListByUserKey(_ context.Context, userKey string, limit int) ([]*entities.SavedEstimate, error) {
	var out []*entities.SavedEstimate
	for _, e := range f.saved {
		if e.UserKey == userKey {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeNarrativeProvider struct {
	text string
	err  error
}

func (f *fakeNarrativeProvider) ExplainEstimate(_ context.Context, _ *entities.EstimateResult, _ string) (string, error) {
	return f.text, f.err
}

func newTestEstimateService(t *testing.T, pricing *fakePricingRepo, narrative *fakeNarrativeProvider) (*EstimateService, *fakeEstimateRepo) {
	t.Helper()
	cfg := config.DefaultEstimatorConfig()
	estimates := &fakeEstimateRepo{}

	svc := NewEstimateService(
		pricing,
		&fakeAidProgramRepo{programs: testCatalog()},
		&fakePlanMenuRepo{menus: map[string]*entities.PayerPlanMenu{
			"Boston Medical Center": bmcMenu(),
		}},
		estimates,
		narrative,
		NewFPLService(cfg.FPL),
		NewCostSharingService(cfg.DefaultPlan),
		NewConfidenceService(),
		NewPaymentPlanService(cfg),
		NewAidMatchService(cfg.FlatSavingsCap),
		cfg,
		nil,
	)
	return svc, estimates
}

func pricedRepo() *fakePricingRepo {
	payer := 4000.0
	return &fakePricingRepo{
		rates: map[string]*entities.NegotiatedRate{
			"fac-1/47562": {
				FacilityID:    "fac-1",
				ProcedureCode: "47562",
				CashPrice:     5000,
				MinAllowed:    3800,
				MaxAllowed:    4600,
				PayerAllowed:  &payer,
				UpdatedAt:     testAsOf.AddDate(0, 0, -10),
			},
		},
		quality: map[string]*entities.FacilityQualitySignals{},
	}
}

func baseRequest() EstimateRequest {
	return EstimateRequest{
		Inputs: entities.ProcedureCostInputs{
			FacilityID:    "fac-1",
			ProcedureCode: "47562",
		},
		Plan:    benchmarkPlan(),
		Network: entities.NetworkStatusInNetwork,
		AsOf:    testAsOf,
	}
}

func TestEstimateCost_HappyPath(t *testing.T) {
	svc, _ := newTestEstimateService(t, pricedRepo(), nil)

	result, err := svc.EstimateCost(context.Background(), baseRequest())
	require.NoError(t, err)

	// $4,000 in-network basis: $1,500 deductible + 20% of $2,500 + $50 copay
	assert.Equal(t, 2050.0, result.Range.Mid)
	assert.LessOrEqual(t, result.Range.Low, result.Range.Mid)
	assert.LessOrEqual(t, result.Range.Mid, result.Range.High)
	assert.InDelta(t, 0.8, result.Confidence, 0.0001)
	assert.NotEmpty(t, result.ID)
	assert.NotEmpty(t, result.Assumptions)
	assert.Equal(t, testAsOf, result.CreatedAt)
}

func TestEstimateCost_BreakdownBalances(t *testing.T) {
	svc, _ := newTestEstimateService(t, pricedRepo(), nil)

	minutes := 65
	asa := 3
	req := baseRequest()
	req.Inputs.AnesthesiaMinutes = &minutes
	req.Inputs.ASAClass = &asa
	req.Inputs.IncludesMedication = true

	result, err := svc.EstimateCost(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, result.Breakdown.Balanced(), "components %+v should sum to total", result.Breakdown)
	assert.Greater(t, result.Breakdown.AnesthesiaFee, 0.0)
	assert.Greater(t, result.Breakdown.MedicationFee, 0.0)
	assert.Greater(t, result.Breakdown.PhysicianFee, 0.0)
	assert.Equal(t, result.Range.Mid, result.Breakdown.Total)
}

func TestEstimateCost_AnesthesiaRaisesTotal(t *testing.T) {
	svc, _ := newTestEstimateService(t, pricedRepo(), nil)

	without, err := svc.EstimateCost(context.Background(), baseRequest())
	require.NoError(t, err)

	minutes := 65
	req := baseRequest()
	req.Inputs.AnesthesiaMinutes = &minutes
	with, err := svc.EstimateCost(context.Background(), req)
	require.NoError(t, err)

	assert.Greater(t, with.Range.Mid, without.Range.Mid)
}

func TestEstimateCost_MissingRateDegradesGracefully(t *testing.T) {
	svc, _ := newTestEstimateService(t, &fakePricingRepo{}, nil)

	result, err := svc.EstimateCost(context.Background(), baseRequest())
	require.NoError(t, err)

	// No pricing data: zero basis, floored confidence, assumption recorded
	assert.Equal(t, 0.0, result.Range.Mid)
	assert.Equal(t, 0.3, result.Confidence)
	assert.NotEmpty(t, result.Assumptions)
}

func TestEstimateCost_Reproducible(t *testing.T) {
	svc, _ := newTestEstimateService(t, pricedRepo(), nil)

	a, err := svc.EstimateCost(context.Background(), baseRequest())
	require.NoError(t, err)
	b, err := svc.EstimateCost(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, a.Range, b.Range)
	assert.Equal(t, a.Confidence, b.Confidence)
	assert.Equal(t, a.Breakdown, b.Breakdown)
	assert.Equal(t, a.Assumptions, b.Assumptions)
}

func TestEstimateCost_ValidatesIdentifiers(t *testing.T) {
	svc, _ := newTestEstimateService(t, pricedRepo(), nil)

	req := baseRequest()
	req.Inputs.FacilityID = ""
	_, err := svc.EstimateCost(context.Background(), req)
	assert.True(t, apperrors.IsValidation(err))

	req = baseRequest()
	req.Inputs.ProcedureCode = ""
	_, err = svc.EstimateCost(context.Background(), req)
	assert.True(t, apperrors.IsValidation(err))
}

func TestEstimateCost_SavesUnderUserKey(t *testing.T) {
	svc, estimates := newTestEstimateService(t, pricedRepo(), nil)

	req := baseRequest()
	req.UserKey = "session-abc"

	result, err := svc.EstimateCost(context.Background(), req)
	require.NoError(t, err)

	saved, err := svc.GetSavedEstimate(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, "session-abc", saved.UserKey)
	assert.Equal(t, result.Range, saved.Result.Range)

	listed, err := svc.ListSavedEstimates(context.Background(), "session-abc", 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Len(t, estimates.saved, 1)
}

func TestPaymentOptions_UnknownPayerFallsBack(t *testing.T) {
	svc, _ := newTestEstimateService(t, pricedRepo(), nil)

	offers, capacity, err := svc.PaymentOptions(context.Background(), PaymentOptionsRequest{
		TotalAmount:     3600,
		AnnualIncome:    60000,
		MonthlyExpenses: 3500,
		PayerName:       "Unknown Hospital",
	})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, capacity.DisposableIncome)
	require.NotEmpty(t, offers)
	// Default menu matches the BMC terms
	assert.Equal(t, 300.0, offers[0].MonthlyPayment)
}

func TestMatchAid_SavingsAndTieredViews(t *testing.T) {
	svc, _ := newTestEstimateService(t, pricedRepo(), nil)

	req := AidMatchRequest{
		AnnualIncome:    25000,
		HouseholdSize:   2,
		InsuranceStatus: entities.InsuranceStatusUninsured,
		TotalCost:       10000,
	}

	flat, err := svc.MatchAid(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, flat.Matches)
	assert.Empty(t, flat.Assessments)
	assert.InDelta(t, 122.3, flat.FPLPercentage, 0.05)

	req.TieredView = true
	tiered, err := svc.MatchAid(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, tiered.Matches)
	assert.NotEmpty(t, tiered.Assessments)
}

func TestComprehensivePlan_ComposesEverything(t *testing.T) {
	svc, _ := newTestEstimateService(t, pricedRepo(), nil)

	result, err := svc.ComprehensivePlan(context.Background(), ComprehensiveRequest{
		EstimateRequest: baseRequest(),
		AnnualIncome:    25000,
		HouseholdSize:   2,
		MonthlyExpenses: 1500,
		InsuranceStatus: entities.InsuranceStatusUnderinsured,
		PayerName:       "Boston Medical Center",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Estimate)
	assert.InDelta(t, 122.3, result.FPLPercentage, 0.05)
	assert.NotEmpty(t, result.PaymentPlans)
	assert.NotEmpty(t, result.AidMatches)
	assert.NotEmpty(t, result.Recommendation)
	assert.Empty(t, result.Narrative)

	// At 122% FPL charity care covers the full bill, so aid leads the
	// recommendation.
	assert.Contains(t, result.Recommendation, "Hospital Charity Care")
}

func TestComprehensivePlan_NarrativeFallsBackOnError(t *testing.T) {
	narrative := &fakeNarrativeProvider{err: errors.New("upstream timeout")}
	svc, _ := newTestEstimateService(t, pricedRepo(), narrative)

	req := ComprehensiveRequest{
		EstimateRequest:  baseRequest(),
		AnnualIncome:     60000,
		HouseholdSize:    1,
		MonthlyExpenses:  3500,
		InsuranceStatus:  entities.InsuranceStatusInsured,
		IncludeNarrative: true,
	}

	result, err := svc.ComprehensivePlan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, FallbackNarrative, result.Narrative)

	// A healthy provider's text is passed through
	narrative.err = nil
	narrative.text = "Your estimate reflects your deductible."
	result, err = svc.ComprehensivePlan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, narrative.text, result.Narrative)
}

func TestComprehensivePlan_NumbersUnaffectedByNarrativeFailure(t *testing.T) {
	healthy, _ := newTestEstimateService(t, pricedRepo(), &fakeNarrativeProvider{text: "ok"})
	broken, _ := newTestEstimateService(t, pricedRepo(), &fakeNarrativeProvider{err: errors.New("down")})

	req := ComprehensiveRequest{
		EstimateRequest:  baseRequest(),
		AnnualIncome:     25000,
		HouseholdSize:    2,
		MonthlyExpenses:  1500,
		InsuranceStatus:  entities.InsuranceStatusUninsured,
		IncludeNarrative: true,
	}

	a, err := healthy.ComprehensivePlan(context.Background(), req)
	require.NoError(t, err)
	b, err := broken.ComprehensivePlan(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Estimate.Range, b.Estimate.Range)
	assert.Equal(t, a.PaymentPlans, b.PaymentPlans)
	assert.Equal(t, a.AidMatches, b.AidMatches)
	assert.Equal(t, a.Recommendation, b.Recommendation)
}

func TestGetSavedEstimate_Validation(t *testing.T) {
	svc, _ := newTestEstimateService(t, pricedRepo(), nil)

	_, err := svc.GetSavedEstimate(context.Background(), "")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.ListSavedEstimates(context.Background(), "", 10)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.GetSavedEstimate(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}
