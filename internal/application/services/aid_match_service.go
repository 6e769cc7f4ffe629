package services

import (
	"math"
	"sort"
	"strings"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
)

// Eligibility-score buckets for the tiered view.
const (
	tierEligibleScore = 80.0
	tierLikelyScore   = 60.0
	tierPossibleScore = 40.0
)

// AidMatchService scores a catalog of assistance programs against a
// household's FPL percentage, insurance status, and procedure cost.
// It exposes two presentations of one scoring pass: the savings-ranked
// match list and the tiered eligibility assessment.
type AidMatchService struct {
	flatSavingsCap float64
}

// NewAidMatchService creates a new aid match service
func NewAidMatchService(flatSavingsCap float64) *AidMatchService {
	return &AidMatchService{flatSavingsCap: flatSavingsCap}
}

// Match returns eligible programs with estimated savings, sorted
// descending by savings. The sort is stable, so catalog order is the
// tie-break. Priority is High at or below 200% FPL, else Medium; the
// Low tier exists for catalog curation and is intentionally never
// emitted here.
func (s *AidMatchService) Match(fplPercentage, totalCost float64, catalog []*entities.AidProgram) []entities.AidMatch {
	totalCost = math.Max(0, totalCost)

	var matches []entities.AidMatch
	for _, program := range catalog {
		if program == nil || !program.IsActive {
			continue
		}
		if program.HasIncomeLimit() && fplPercentage > program.IncomeLimitPctFPL {
			continue
		}

		priority := entities.PriorityMedium
		if fplPercentage <= 200 {
			priority = entities.PriorityHigh
		}

		matches = append(matches, entities.AidMatch{
			Program:          *program,
			EstimatedSavings: roundCents(s.estimateSavings(program, fplPercentage, totalCost)),
			FPLPercentage:    roundTenth(fplPercentage),
			Priority:         priority,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].EstimatedSavings > matches[j].EstimatedSavings
	})

	return matches
}

// Assess returns the tiered presentation: every active program scored
// on income fit, insurance-status match, and program-type bonus, then
// bucketed into eligibility tiers with applicant guidance.
func (s *AidMatchService) Assess(
	fplPercentage float64,
	status entities.InsuranceStatus,
	totalCost float64,
	catalog []*entities.AidProgram,
) []entities.EligibilityAssessment {
	totalCost = math.Max(0, totalCost)

	assessments := make([]entities.EligibilityAssessment, 0, len(catalog))
	for _, program := range catalog {
		if program == nil || !program.IsActive {
			continue
		}

		score := s.eligibilityScore(program, fplPercentage, status)
		tier := tierForScore(score)

		var savings float64
		if tier != entities.EligibilityTierIneligible {
			savings = roundCents(s.estimateSavings(program, fplPercentage, totalCost))
		}

		assessments = append(assessments, entities.EligibilityAssessment{
			Program:          *program,
			Score:            roundTenth(score),
			Tier:             tier,
			EstimatedSavings: savings,
			ProcessingTime:   processingTimeFor(program.Type),
			NextSteps:        nextStepsFor(program),
		})
	}

	sort.SliceStable(assessments, func(i, j int) bool {
		return assessments[i].Score > assessments[j].Score
	})

	return assessments
}

// estimateSavings applies the program's savings rule. Behavior keys on
// the typed rule field, never on the display name.
func (s *AidMatchService) estimateSavings(program *entities.AidProgram, fplPercentage, totalCost float64) float64 {
	switch program.Rule {
	case entities.SavingsRuleCharityScale:
		if fplPercentage <= 150 {
			return totalCost
		}
		// Linear slide from 100% down to 50% between 150% and 200% FPL
		discount := 1 - ((fplPercentage - 150) / 50 * 0.5)
		if discount < 0 {
			discount = 0
		}
		return totalCost * discount

	case entities.SavingsRuleSafetyNet:
		rate := math.Max(0.3, 1-fplPercentage/300)
		return totalCost * rate

	default:
		return math.Min(totalCost*0.5, s.flatSavingsCap)
	}
}

// eligibilityScore combines income fit (up to 50), insurance-status
// match (up to 30), and a program-type bonus (up to 20).
func (s *AidMatchService) eligibilityScore(program *entities.AidProgram, fplPercentage float64, status entities.InsuranceStatus) float64 {
	var incomeFit float64
	switch {
	case !program.HasIncomeLimit():
		incomeFit = 25
	case fplPercentage <= program.IncomeLimitPctFPL:
		headroom := (program.IncomeLimitPctFPL - fplPercentage) / program.IncomeLimitPctFPL
		incomeFit = 20 + 30*headroom
	}

	var insuranceMatch float64
	switch status {
	case entities.InsuranceStatusUninsured:
		switch program.Type {
		case entities.ProgramTypeGovernment, entities.ProgramTypeState:
			insuranceMatch = 30
		case entities.ProgramTypeHospital:
			insuranceMatch = 25
		default:
			insuranceMatch = 15
		}
	case entities.InsuranceStatusUnderinsured:
		insuranceMatch = 20
	default:
		insuranceMatch = 10
	}

	var typeBonus float64
	switch program.Type {
	case entities.ProgramTypeHospital:
		typeBonus = 20
	case entities.ProgramTypeGovernment:
		typeBonus = 18
	case entities.ProgramTypeState:
		typeBonus = 15
	case entities.ProgramTypeNonprofit:
		typeBonus = 12
	case entities.ProgramTypeFinancing:
		typeBonus = 8
	}

	return incomeFit + insuranceMatch + typeBonus
}

func tierForScore(score float64) entities.EligibilityTier {
	switch {
	case score >= tierEligibleScore:
		return entities.EligibilityTierEligible
	case score >= tierLikelyScore:
		return entities.EligibilityTierLikely
	case score >= tierPossibleScore:
		return entities.EligibilityTierPossible
	default:
		return entities.EligibilityTierIneligible
	}
}

func processingTimeFor(programType entities.ProgramType) string {
	switch programType {
	case entities.ProgramTypeHospital:
		return "2-4 weeks"
	case entities.ProgramTypeGovernment:
		return "4-8 weeks"
	case entities.ProgramTypeState:
		return "4-6 weeks"
	case entities.ProgramTypeNonprofit:
		return "1-3 weeks"
	case entities.ProgramTypeFinancing:
		return "Instant decision"
	default:
		return "Varies"
	}
}

func nextStepsFor(program *entities.AidProgram) []string {
	var steps []string
	if len(program.Requirements) > 0 {
		steps = append(steps, "Gather documents: "+strings.Join(program.Requirements, ", "))
	}
	if program.ApplicationChannel != "" {
		steps = append(steps, "Apply via "+program.ApplicationChannel)
	}
	return steps
}
