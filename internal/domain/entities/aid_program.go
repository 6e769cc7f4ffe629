package entities

import "time"

// ProgramType categorizes who runs an assistance program.
type ProgramType string

const (
	ProgramTypeHospital   ProgramType = "hospital"
	ProgramTypeGovernment ProgramType = "government"
	ProgramTypeState      ProgramType = "state"
	ProgramTypeNonprofit  ProgramType = "nonprofit"
	ProgramTypeFinancing  ProgramType = "financing"
)

// SavingsRule selects the savings-calculation strategy for a program.
// Behavior is keyed by this field, never by the display name.
type SavingsRule string

const (
	// SavingsRuleCharityScale: full coverage up to 150% FPL, then a
	// linear slide from 100% down to 50% between 150% and 200%.
	SavingsRuleCharityScale SavingsRule = "charity_sliding_scale"

	// SavingsRuleSafetyNet: discount rate max(0.3, 1 - fpl/300).
	SavingsRuleSafetyNet SavingsRule = "safety_net_discount"

	// SavingsRuleFlat: conservative estimate of min(cost * 0.5, cap).
	SavingsRuleFlat SavingsRule = "flat_conservative"
)

// PriorityTier ranks how urgently a match should be pursued. The
// savings matcher only emits High and Medium; Low exists for catalog
// curation and is intentionally never produced.
type PriorityTier string

const (
	PriorityHigh   PriorityTier = "High"
	PriorityMedium PriorityTier = "Medium"
	PriorityLow    PriorityTier = "Low"
)

// EligibilityTier buckets the numeric eligibility score of the
// assessment view.
type EligibilityTier string

const (
	EligibilityTierEligible   EligibilityTier = "eligible"
	EligibilityTierLikely     EligibilityTier = "likely"
	EligibilityTierPossible   EligibilityTier = "possible"
	EligibilityTierIneligible EligibilityTier = "ineligible"
)

// AidProgram is a read-only catalog entry for an assistance program.
// IncomeLimitPctFPL <= 0 means the program has no income restriction
// (credit-based financing, case-by-case funds).
type AidProgram struct {
	ID                 string      `json:"id" db:"id"`
	Name               string      `json:"name" db:"name"`
	Type               ProgramType `json:"type" db:"program_type"`
	Rule               SavingsRule `json:"rule" db:"savings_rule"`
	IncomeLimitPctFPL  float64     `json:"income_limit_pct_fpl" db:"income_limit_pct_fpl"`
	Coverage           string      `json:"coverage" db:"coverage"`
	Requirements       []string    `json:"requirements" db:"-"`
	ApplicationChannel string      `json:"application_channel" db:"application_channel"`
	SortOrder          int         `json:"sort_order" db:"sort_order"`
	IsActive           bool        `json:"is_active" db:"is_active"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// HasIncomeLimit reports whether the program gates on income.
func (p *AidProgram) HasIncomeLimit() bool {
	return p.IncomeLimitPctFPL > 0
}

// AidMatch joins a catalog program with per-request computed fields.
// Matches are produced fresh per request and never persisted.
type AidMatch struct {
	Program          AidProgram   `json:"program"`
	EstimatedSavings float64      `json:"estimated_savings"`
	FPLPercentage    float64      `json:"fpl_percentage"`
	Priority         PriorityTier `json:"priority"`
}

// EligibilityAssessment is the tiered presentation of the same scoring
// pass: a numeric score bucketed into tiers, plus applicant guidance.
type EligibilityAssessment struct {
	Program          AidProgram      `json:"program"`
	Score            float64         `json:"score"`
	Tier             EligibilityTier `json:"tier"`
	EstimatedSavings float64         `json:"estimated_savings"`
	ProcessingTime   string          `json:"processing_time"`
	NextSteps        []string        `json:"next_steps"`
}
