package entities

import (
	"math"
	"time"
)

// CostRange is a patient-cost estimate with uncertainty bounds.
// Low <= Mid <= High, and Mid is the point estimate exactly.
type CostRange struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// CostBreakdown categorizes a patient-cost total. The component sum
// equals Total within one currency unit after rounding.
type CostBreakdown struct {
	FacilityFee   float64 `json:"facility_fee"`
	PhysicianFee  float64 `json:"physician_fee"`
	AnesthesiaFee float64 `json:"anesthesia_fee"`
	MedicationFee float64 `json:"medication_fee"`
	RehabFee      float64 `json:"rehab_fee"`
	Total         float64 `json:"total"`
}

// ComponentSum returns the sum of the breakdown components.
func (b *CostBreakdown) ComponentSum() float64 {
	return b.FacilityFee + b.PhysicianFee + b.AnesthesiaFee + b.MedicationFee + b.RehabFee
}

// Balanced reports whether the component sum matches Total within the
// one-unit rounding tolerance.
func (b *CostBreakdown) Balanced() bool {
	return math.Abs(b.ComponentSum()-b.Total) <= 1.0
}

// EstimateResult is the composed output of one estimation request.
// Confidence lies in [0.3, 1.0]; the system never claims certainty.
type EstimateResult struct {
	ID            string        `json:"id"`
	FacilityID    string        `json:"facility_id"`
	ProcedureCode string        `json:"procedure_code"`
	Range         CostRange     `json:"range"`
	Breakdown     CostBreakdown `json:"breakdown"`
	Confidence    float64       `json:"confidence"`
	Assumptions   []string      `json:"assumptions"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SavedEstimate wraps an estimate persisted under a user or session key.
// The core imposes no schema beyond the result itself.
type SavedEstimate struct {
	ID        string         `json:"id" db:"id"`
	UserKey   string         `json:"user_key" db:"user_key"`
	Result    EstimateResult `json:"result" db:"-"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
