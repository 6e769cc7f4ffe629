package entities

// NetworkStatus describes whether a facility is in the plan's network.
// A missing determination is treated as out-of-network downstream: the
// allowed-amount basis falls back to the blended average and the
// in-network copay is skipped.
type NetworkStatus string

const (
	NetworkStatusInNetwork    NetworkStatus = "in_network"
	NetworkStatusOutOfNetwork NetworkStatus = "out_of_network"
	NetworkStatusUnknown      NetworkStatus = "unknown"
)

// IsInNetwork reports whether cost sharing should apply in-network rules.
func (s NetworkStatus) IsInNetwork() bool {
	return s == NetworkStatusInNetwork
}

// InsuranceStatus describes the patient's coverage situation, used by
// aid-program eligibility scoring.
type InsuranceStatus string

const (
	InsuranceStatusInsured      InsuranceStatus = "insured"
	InsuranceStatusUnderinsured InsuranceStatus = "underinsured"
	InsuranceStatusUninsured    InsuranceStatus = "uninsured"
)

// CoverageOverride is a procedure-specific override of a plan's default
// cost-sharing terms.
type CoverageOverride struct {
	Coinsurance       *float64 `json:"coinsurance,omitempty"`
	Copay             *float64 `json:"copay,omitempty"`
	PriorAuthRequired bool     `json:"prior_auth_required"`
}

// InsurancePlan represents the cost-sharing parameters of a member's plan.
type InsurancePlan struct {
	ID                 string                      `json:"id" db:"id"`
	PayerName          string                      `json:"payer_name" db:"payer_name"`
	Deductible         float64                     `json:"deductible" db:"deductible"`
	Coinsurance        float64                     `json:"coinsurance" db:"coinsurance"` // fraction, 0-1
	SpecialistCopay    float64                     `json:"specialist_copay" db:"specialist_copay"`
	OutOfPocketMax     float64                     `json:"out_of_pocket_max" db:"out_of_pocket_max"`
	ProcedureOverrides map[string]CoverageOverride `json:"procedure_overrides,omitempty" db:"-"`
}

// EffectiveCoverage resolves the coinsurance and copay for a procedure,
// applying the procedure-specific override when one exists.
func (p *InsurancePlan) EffectiveCoverage(procedureCode string) (coinsurance, copay float64, overridden bool) {
	coinsurance = p.Coinsurance
	copay = p.SpecialistCopay

	override, ok := p.ProcedureOverrides[procedureCode]
	if !ok {
		return coinsurance, copay, false
	}
	if override.Coinsurance != nil {
		coinsurance = *override.Coinsurance
	}
	if override.Copay != nil {
		copay = *override.Copay
	}
	return coinsurance, copay, true
}

// IsValid reports whether the plan satisfies its structural invariant.
func (p *InsurancePlan) IsValid() bool {
	if p.Coinsurance < 0 || p.Coinsurance > 1 {
		return false
	}
	return p.Deductible <= p.OutOfPocketMax
}
