package entities

import "time"

// NegotiatedRate is the per-facility-per-procedure pricing record.
// PayerAllowed is nil when the facility has no negotiated rate with the
// member's payer. MinAllowed <= MaxAllowed always holds for stored rows;
// a PayerAllowed outside the [min, max] band is accepted as-is.
type NegotiatedRate struct {
	FacilityID    string    `json:"facility_id" db:"facility_id"`
	ProcedureCode string    `json:"procedure_code" db:"procedure_code"`
	CashPrice     float64   `json:"cash_price" db:"cash_price"`
	MinAllowed    float64   `json:"min_allowed" db:"min_allowed"`
	MaxAllowed    float64   `json:"max_allowed" db:"max_allowed"`
	PayerAllowed  *float64  `json:"payer_allowed,omitempty" db:"payer_allowed"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// AgeDays returns the age of the rate data relative to an explicit
// reference time. Freshness is always an input, never read from a wall
// clock, so that estimates stay reproducible.
func (r *NegotiatedRate) AgeDays(asOf time.Time) int {
	if asOf.Before(r.UpdatedAt) {
		return 0
	}
	return int(asOf.Sub(r.UpdatedAt).Hours() / 24)
}

// Spread returns the allowed-amount spread relative to the cash price,
// a proxy for how dispersed negotiated rates are at this facility.
func (r *NegotiatedRate) Spread() float64 {
	if r.CashPrice <= 0 {
		return 0
	}
	return (r.MaxAllowed - r.MinAllowed) / r.CashPrice
}

// FacilityQualitySignals carries quality data used to adjust estimate
// confidence. It never changes the cost itself.
type FacilityQualitySignals struct {
	FacilityID       string   `json:"facility_id" db:"facility_id"`
	NetworkTags      []string `json:"network_tags,omitempty" db:"-"`
	QualityScore     float64  `json:"quality_score" db:"quality_score"` // 0-5
	ReadmissionRate  *float64 `json:"readmission_rate,omitempty" db:"readmission_rate"`
	ComplicationRate *float64 `json:"complication_rate,omitempty" db:"complication_rate"`
}

// ProcedureCostInputs is the immutable request value for a cost estimate.
type ProcedureCostInputs struct {
	FacilityID         string  `json:"facility_id"`
	ProcedureCode      string  `json:"procedure_code"`
	DeductibleMet      bool    `json:"deductible_met"`
	OOPYearToDate      float64 `json:"oop_year_to_date"`
	AnesthesiaMinutes  *int    `json:"anesthesia_minutes,omitempty"`
	ASAClass           *int    `json:"asa_class,omitempty"`
	IncludesMedication bool    `json:"includes_medication"`
}
