package entities

// PlanCategory is the tagged kind of a payment-plan offer. Offers are
// returned in fixed category order (interest-free, extended,
// income-based); callers wanting cheapest-first sort explicitly.
type PlanCategory string

const (
	PlanCategoryInterestFree PlanCategory = "interest_free"
	PlanCategoryExtended     PlanCategory = "extended"
	PlanCategoryIncomeBased  PlanCategory = "income_based"
	PlanCategoryStandard     PlanCategory = "standard"
)

// PaymentPlanOffer is a single amortized payment-plan option.
// TotalCost >= principal when AnnualRate > 0 and equals the principal
// (up to rounding) when the rate is zero.
type PaymentPlanOffer struct {
	Name           string       `json:"name"`
	Category       PlanCategory `json:"category"`
	MonthlyPayment float64      `json:"monthly_payment"`
	TermMonths     int          `json:"term_months"`
	TotalCost      float64      `json:"total_cost"`
	AnnualRate     float64      `json:"annual_rate"`
	Provider       string       `json:"provider"`
	Recommendation string       `json:"recommendation"`
}

// PayerPlanMenu is a payer's configured payment-plan offering.
type PayerPlanMenu struct {
	PayerName          string  `json:"payer_name" db:"payer_name"`
	InterestFreeMonths int     `json:"interest_free_months" db:"interest_free_months"`
	ExtendedPlanMonths int     `json:"extended_plan_months" db:"extended_plan_months"`
	ExtendedPlanAPR    float64 `json:"extended_plan_apr" db:"extended_plan_apr"`
	MinimumMonthly     float64 `json:"minimum_monthly" db:"minimum_monthly"`
}

// AmortizedPlanSpec is one term/rate pair of a generic loan-style menu.
type AmortizedPlanSpec struct {
	TermMonths int     `json:"term_months"`
	AnnualRate float64 `json:"annual_rate"`
}

// StandardPlanSpecs is the generic amortized menu shared by callers that
// have no payer-specific plan configuration.
var StandardPlanSpecs = []AmortizedPlanSpec{
	{TermMonths: 6, AnnualRate: 0},
	{TermMonths: 12, AnnualRate: 0},
	{TermMonths: 24, AnnualRate: 0.06},
	{TermMonths: 36, AnnualRate: 0.12},
}

// FinancialCapacity is the affordability assessment for a household:
// three payment tiers derived from monthly disposable income.
type FinancialCapacity struct {
	MonthlyIncome       float64 `json:"monthly_income"`
	DisposableIncome    float64 `json:"disposable_income"`
	ConservativePayment float64 `json:"conservative_payment"`
	ModeratePayment     float64 `json:"moderate_payment"`
	AggressivePayment   float64 `json:"aggressive_payment"`
}
