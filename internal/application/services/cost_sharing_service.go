package services

import (
	"fmt"
	"math"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/pkg/config"
)

// CostSharingResult is the patient responsibility for a charge plus the
// audit trail of rules that fired. Assumptions are for transparency
// only, never for control flow.
type CostSharingResult struct {
	Amount      float64  `json:"amount"`
	Assumptions []string `json:"assumptions"`
}

// CostSharingService applies deductible, coinsurance, copay, and
// out-of-pocket-maximum rules to a total charge. Inputs are clamped
// with max(0, ...) guards rather than rejected.
type CostSharingService struct {
	defaultPlan config.DefaultPlanConfig
}

// NewCostSharingService creates a new cost sharing service
func NewCostSharingService(defaultPlan config.DefaultPlanConfig) *CostSharingService {
	return &CostSharingService{defaultPlan: defaultPlan}
}

// PatientResponsibility computes what the patient owes on totalCharge
// under the plan. The out-of-pocket-maximum cap always wins, even when
// it lowers the amount below what the deductible/coinsurance branch
// would imply.
func (s *CostSharingService) PatientResponsibility(
	totalCharge float64,
	plan *entities.InsurancePlan,
	procedureCode string,
	deductibleMet bool,
	oopYearToDate float64,
	network entities.NetworkStatus,
) CostSharingResult {
	assumptions := []string{}

	totalCharge = math.Max(0, totalCharge)
	oopYearToDate = math.Max(0, oopYearToDate)

	if plan == nil || !plan.IsValid() {
		plan = &entities.InsurancePlan{
			PayerName:       "Benchmark",
			Deductible:      s.defaultPlan.Deductible,
			Coinsurance:     s.defaultPlan.Coinsurance,
			SpecialistCopay: s.defaultPlan.SpecialistCopay,
			OutOfPocketMax:  s.defaultPlan.OutOfPocketMax,
		}
		assumptions = append(assumptions, "plan data missing or malformed; substituted the benchmark default plan")
	}

	coinsurance, copay, overridden := plan.EffectiveCoverage(procedureCode)
	if overridden {
		assumptions = append(assumptions, fmt.Sprintf("applied procedure-specific coverage override for %s", procedureCode))
	}

	if totalCharge == 0 {
		assumptions = append(assumptions, "no charge basis; patient cost is zero")
		return CostSharingResult{Amount: 0, Assumptions: assumptions}
	}

	var deductibleRemaining float64
	if deductibleMet {
		assumptions = append(assumptions, "deductible already met this plan year")
	} else {
		deductibleRemaining = math.Max(0, plan.Deductible-oopYearToDate)
	}

	var amount float64
	if deductibleRemaining > 0 {
		towardDeductible := math.Min(totalCharge, deductibleRemaining)
		coinsured := coinsurance * math.Max(0, totalCharge-deductibleRemaining)
		amount = towardDeductible + coinsured
		assumptions = append(assumptions, fmt.Sprintf(
			"$%.2f applied toward remaining deductible, then %.0f%% coinsurance on the balance",
			towardDeductible, coinsurance*100))
	} else {
		amount = coinsurance * totalCharge
		assumptions = append(assumptions, fmt.Sprintf("%.0f%% coinsurance applied to the full charge", coinsurance*100))
	}

	if network.IsInNetwork() {
		amount += copay
		if copay > 0 {
			assumptions = append(assumptions, fmt.Sprintf("$%.2f in-network specialist copay added", copay))
		}
	} else {
		assumptions = append(assumptions, "out-of-network or undetermined network status; copay skipped")
	}

	oopCap := math.Max(0, plan.OutOfPocketMax-oopYearToDate)
	if amount > oopCap {
		amount = oopCap
		assumptions = append(assumptions, fmt.Sprintf("capped at remaining out-of-pocket maximum of $%.2f", oopCap))
	}

	return CostSharingResult{Amount: roundCents(amount), Assumptions: assumptions}
}
