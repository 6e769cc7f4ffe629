package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/pkg/config"
)

func newCostSharingService() *CostSharingService {
	return NewCostSharingService(config.DefaultEstimatorConfig().DefaultPlan)
}

func benchmarkPlan() *entities.InsurancePlan {
	return &entities.InsurancePlan{
		ID:              "plan-1",
		PayerName:       "Blue Cross",
		Deductible:      1500,
		Coinsurance:     0.20,
		SpecialistCopay: 50,
		OutOfPocketMax:  6000,
	}
}

func TestPatientResponsibility_DeductibleThenCoinsurance(t *testing.T) {
	svc := newCostSharingService()

	// $7,000 charge, nothing spent yet: $1,500 toward deductible,
	// 20% of the remaining $5,500, plus the $50 in-network copay.
	result := svc.PatientResponsibility(7000, benchmarkPlan(), "47562", false, 0, entities.NetworkStatusInNetwork)
	assert.Equal(t, 2650.0, result.Amount)
}

func TestPatientResponsibility_DeductibleAlreadyMet(t *testing.T) {
	svc := newCostSharingService()

	result := svc.PatientResponsibility(7000, benchmarkPlan(), "47562", true, 0, entities.NetworkStatusInNetwork)
	// 20% of $7,000 plus copay
	assert.Equal(t, 1450.0, result.Amount)
}

func TestPatientResponsibility_OOPMaxCapWins(t *testing.T) {
	svc := newCostSharingService()

	// $5,800 already paid this year leaves only $200 of headroom; the
	// cap overrides whatever the deductible branch would compute.
	result := svc.PatientResponsibility(50000, benchmarkPlan(), "47562", false, 5800, entities.NetworkStatusInNetwork)
	assert.Equal(t, 200.0, result.Amount)

	// At the maximum, nothing more is owed
	result = svc.PatientResponsibility(50000, benchmarkPlan(), "47562", false, 6000, entities.NetworkStatusInNetwork)
	assert.Equal(t, 0.0, result.Amount)
}

func TestPatientResponsibility_ZeroCharge(t *testing.T) {
	svc := newCostSharingService()

	result := svc.PatientResponsibility(0, benchmarkPlan(), "47562", false, 0, entities.NetworkStatusInNetwork)
	assert.Equal(t, 0.0, result.Amount)
	assert.NotEmpty(t, result.Assumptions)
}

func TestPatientResponsibility_NegativeInputsClamped(t *testing.T) {
	svc := newCostSharingService()

	result := svc.PatientResponsibility(-500, benchmarkPlan(), "47562", false, -100, entities.NetworkStatusInNetwork)
	assert.Equal(t, 0.0, result.Amount)
}

func TestPatientResponsibility_NilPlanUsesBenchmark(t *testing.T) {
	svc := newCostSharingService()

	withNil := svc.PatientResponsibility(7000, nil, "47562", false, 0, entities.NetworkStatusInNetwork)
	withBenchmark := svc.PatientResponsibility(7000, benchmarkPlan(), "47562", false, 0, entities.NetworkStatusInNetwork)

	assert.Equal(t, withBenchmark.Amount, withNil.Amount)
	assert.Contains(t, withNil.Assumptions[0], "benchmark")
}

func TestPatientResponsibility_InvalidPlanUsesBenchmark(t *testing.T) {
	svc := newCostSharingService()

	bad := benchmarkPlan()
	bad.Coinsurance = 1.4

	result := svc.PatientResponsibility(7000, bad, "47562", false, 0, entities.NetworkStatusInNetwork)
	assert.Equal(t, 2650.0, result.Amount)
}

func TestPatientResponsibility_ProcedureOverride(t *testing.T) {
	svc := newCostSharingService()

	coins := 0.10
	copay := 0.0
	plan := benchmarkPlan()
	plan.ProcedureOverrides = map[string]entities.CoverageOverride{
		"47562": {Coinsurance: &coins, Copay: &copay},
	}

	result := svc.PatientResponsibility(7000, plan, "47562", true, 0, entities.NetworkStatusInNetwork)
	// 10% of $7,000, no copay
	assert.Equal(t, 700.0, result.Amount)

	// Other procedures keep the plan-level terms
	other := svc.PatientResponsibility(7000, plan, "99213", true, 0, entities.NetworkStatusInNetwork)
	assert.Equal(t, 1450.0, other.Amount)
}

func TestPatientResponsibility_OutOfNetworkSkipsCopay(t *testing.T) {
	svc := newCostSharingService()

	in := svc.PatientResponsibility(7000, benchmarkPlan(), "47562", true, 0, entities.NetworkStatusInNetwork)
	out := svc.PatientResponsibility(7000, benchmarkPlan(), "47562", true, 0, entities.NetworkStatusOutOfNetwork)
	unknown := svc.PatientResponsibility(7000, benchmarkPlan(), "47562", true, 0, entities.NetworkStatusUnknown)

	assert.Equal(t, in.Amount-50, out.Amount)
	assert.Equal(t, out.Amount, unknown.Amount)
}

func TestPatientResponsibility_MonotoneInCharge(t *testing.T) {
	svc := newCostSharingService()

	prev := 0.0
	for charge := 0.0; charge <= 20000; charge += 500 {
		result := svc.PatientResponsibility(charge, benchmarkPlan(), "47562", false, 0, entities.NetworkStatusInNetwork)
		assert.GreaterOrEqual(t, result.Amount, prev, "charge %.0f", charge)
		prev = result.Amount
	}
}
