package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
)

func testCatalog() []*entities.AidProgram {
	return []*entities.AidProgram{
		{
			ID:                "charity",
			Name:              "Hospital Charity Care",
			Type:              entities.ProgramTypeHospital,
			Rule:              entities.SavingsRuleCharityScale,
			IncomeLimitPctFPL: 200,
			IsActive:          true,
		},
		{
			ID:                "hsn",
			Name:              "Massachusetts Health Safety Net",
			Type:              entities.ProgramTypeState,
			Rule:              entities.SavingsRuleSafetyNet,
			IncomeLimitPctFPL: 300,
			IsActive:          true,
		},
		{
			ID:                "paf",
			Name:              "Patient Advocate Foundation",
			Type:              entities.ProgramTypeNonprofit,
			Rule:              entities.SavingsRuleFlat,
			IncomeLimitPctFPL: 400,
			IsActive:          true,
		},
		{
			ID:                "medicaid",
			Name:              "Medicaid Emergency Services",
			Type:              entities.ProgramTypeGovernment,
			Rule:              entities.SavingsRuleFlat,
			IncomeLimitPctFPL: 138,
			IsActive:          true,
		},
		{
			ID:       "carecredit",
			Name:     "CareCredit",
			Type:     entities.ProgramTypeFinancing,
			Rule:     entities.SavingsRuleFlat,
			IsActive: true,
		},
	}
}

func TestMatch_FiltersByIncomeLimit(t *testing.T) {
	svc := NewAidMatchService(5000)

	// At 250% FPL only programs whose limit is at least 250 (or
	// unlimited) qualify.
	matches := svc.Match(250, 10000, testCatalog())

	ids := make(map[string]bool)
	for _, m := range matches {
		ids[m.Program.ID] = true
	}
	assert.False(t, ids["charity"])
	assert.False(t, ids["medicaid"])
	assert.True(t, ids["hsn"])
	assert.True(t, ids["paf"])
	assert.True(t, ids["carecredit"])
}

func TestMatch_SkipsInactivePrograms(t *testing.T) {
	svc := NewAidMatchService(5000)

	catalog := testCatalog()
	catalog[0].IsActive = false

	matches := svc.Match(100, 10000, catalog)
	for _, m := range matches {
		assert.NotEqual(t, "charity", m.Program.ID)
	}
}

func TestMatch_PriorityByFPL(t *testing.T) {
	svc := NewAidMatchService(5000)

	for _, m := range svc.Match(150, 10000, testCatalog()) {
		assert.Equal(t, entities.PriorityHigh, m.Priority)
	}
	for _, m := range svc.Match(250, 10000, testCatalog()) {
		assert.Equal(t, entities.PriorityMedium, m.Priority)
	}
}

func TestMatch_SortedBySavingsDescending(t *testing.T) {
	svc := NewAidMatchService(5000)

	matches := svc.Match(120, 20000, testCatalog())
	require.NotEmpty(t, matches)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].EstimatedSavings, matches[i].EstimatedSavings)
	}
	// Charity care covers the full cost at 120% FPL, so it leads
	assert.Equal(t, "charity", matches[0].Program.ID)
	assert.Equal(t, 20000.0, matches[0].EstimatedSavings)
}

func TestMatch_TieBreakIsCatalogOrder(t *testing.T) {
	svc := NewAidMatchService(5000)

	// Both flat-rule programs save the same amount; the catalog order
	// decides who comes first.
	matches := svc.Match(120, 4000, testCatalog())

	var flatIDs []string
	for _, m := range matches {
		if m.Program.Rule == entities.SavingsRuleFlat {
			flatIDs = append(flatIDs, m.Program.ID)
		}
	}
	require.Len(t, flatIDs, 3)
	assert.Equal(t, []string{"paf", "medicaid", "carecredit"}, flatIDs)
}

func TestEstimateSavings_CharitySlidingScale(t *testing.T) {
	svc := NewAidMatchService(5000)
	catalog := testCatalog()[:1]

	// At or below 150% the full cost is covered
	matches := svc.Match(150, 8000, catalog)
	require.Len(t, matches, 1)
	assert.Equal(t, 8000.0, matches[0].EstimatedSavings)

	// At 175% the discount slides to 75%
	matches = svc.Match(175, 8000, catalog)
	require.Len(t, matches, 1)
	assert.Equal(t, 6000.0, matches[0].EstimatedSavings)

	// At the 200% limit the discount bottoms out at 50%
	matches = svc.Match(200, 8000, catalog)
	require.Len(t, matches, 1)
	assert.Equal(t, 4000.0, matches[0].EstimatedSavings)
}

func TestEstimateSavings_SafetyNetDiscount(t *testing.T) {
	svc := NewAidMatchService(5000)
	catalog := testCatalog()[1:2]

	// 1 - 150/300 = 0.5
	matches := svc.Match(150, 8000, catalog)
	require.Len(t, matches, 1)
	assert.Equal(t, 4000.0, matches[0].EstimatedSavings)

	// The discount never drops below 30%
	matches = svc.Match(290, 8000, catalog)
	require.Len(t, matches, 1)
	assert.Equal(t, 2400.0, matches[0].EstimatedSavings)
}

func TestEstimateSavings_FlatRuleCapped(t *testing.T) {
	svc := NewAidMatchService(5000)
	catalog := testCatalog()[2:3]

	// Half the cost, up to the cap
	matches := svc.Match(120, 6000, catalog)
	require.Len(t, matches, 1)
	assert.Equal(t, 3000.0, matches[0].EstimatedSavings)

	matches = svc.Match(120, 40000, catalog)
	require.Len(t, matches, 1)
	assert.Equal(t, 5000.0, matches[0].EstimatedSavings)
}

func TestAssess_TiersAndOrdering(t *testing.T) {
	svc := NewAidMatchService(5000)

	assessments := svc.Assess(120, entities.InsuranceStatusUninsured, 10000, testCatalog())
	require.Len(t, assessments, 5)

	for i := 1; i < len(assessments); i++ {
		assert.GreaterOrEqual(t, assessments[i-1].Score, assessments[i].Score)
	}
	for _, a := range assessments {
		assert.NotEmpty(t, a.ProcessingTime)
		if a.Tier == entities.EligibilityTierIneligible {
			assert.Equal(t, 0.0, a.EstimatedSavings)
		}
	}
}

func TestAssess_UninsuredFavorsPublicPrograms(t *testing.T) {
	svc := NewAidMatchService(5000)

	uninsured := svc.Assess(120, entities.InsuranceStatusUninsured, 10000, testCatalog())
	insured := svc.Assess(120, entities.InsuranceStatusInsured, 10000, testCatalog())

	scoreFor := func(assessments []entities.EligibilityAssessment, id string) float64 {
		for _, a := range assessments {
			if a.Program.ID == id {
				return a.Score
			}
		}
		t.Fatalf("program %s not assessed", id)
		return 0
	}

	assert.Greater(t, scoreFor(uninsured, "medicaid"), scoreFor(insured, "medicaid"))
	assert.Greater(t, scoreFor(uninsured, "hsn"), scoreFor(insured, "hsn"))
}
