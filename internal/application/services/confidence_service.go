package services

import (
	"fmt"
	"math"
	"time"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
)

const (
	baseConfidence = 0.8
	minConfidence  = 0.3
	maxConfidence  = 1.0

	// Variance floor: even at maximum confidence the band stays at
	// 10%; the system never claims certainty.
	minVariance = 0.1
)

// ConfidenceService derives a confidence score from data freshness,
// rate variance, and facility quality signals, and expands a point
// estimate into a low/mid/high range.
type ConfidenceService struct{}

// NewConfidenceService creates a new confidence service
func NewConfidenceService() *ConfidenceService {
	return &ConfidenceService{}
}

// Score computes the confidence for an estimate. Freshness is judged
// against the explicit asOf reference time so results stay
// reproducible. Result is clamped to [0.3, 1.0].
func (s *ConfidenceService) Score(
	rate *entities.NegotiatedRate,
	quality *entities.FacilityQualitySignals,
	asOf time.Time,
) (float64, []string) {
	var assumptions []string

	if rate == nil {
		assumptions = append(assumptions, "no negotiated-rate data on file; confidence floored")
		return minConfidence, assumptions
	}

	confidence := baseConfidence

	ageDays := rate.AgeDays(asOf)
	if ageDays >= 90 {
		confidence -= 0.1
		assumptions = append(assumptions, fmt.Sprintf("rate data is %d days old", ageDays))
	}
	if ageDays > 180 {
		confidence -= 0.1
	}

	if rate.Spread() > 0.5 {
		confidence -= 0.1
		assumptions = append(assumptions, "wide spread between minimum and maximum allowed amounts")
	}

	if quality != nil {
		if quality.QualityScore > 4.5 {
			confidence += 0.05
		}
		if quality.ComplicationRate != nil && *quality.ComplicationRate < 0.02 {
			confidence += 0.05
		}
	}

	confidence = math.Min(maxConfidence, math.Max(minConfidence, confidence))
	return confidence, assumptions
}

// Range expands a point estimate into bounds. Higher confidence yields
// a tighter band; low is floored at zero and mid equals the point
// estimate exactly.
func (s *ConfidenceService) Range(patientCost, confidence float64) entities.CostRange {
	variance := math.Max(minVariance, 0.3-confidence*0.2)
	return entities.CostRange{
		Low:  roundCents(math.Max(0, patientCost*(1-variance))),
		Mid:  roundCents(patientCost),
		High: roundCents(math.Max(0, patientCost*(1+variance))),
	}
}

// AllowedAmount resolves the price basis cost sharing is computed
// against. With a payer-negotiated in-network rate, that rate is used
// directly; otherwise the basis is the mean of cash, minimum, and
// maximum allowed, a deliberately conservative average rather than a
// worst-case maximum.
func (s *ConfidenceService) AllowedAmount(rate *entities.NegotiatedRate, network entities.NetworkStatus) (float64, string) {
	if rate == nil {
		return 0, "no pricing data for this facility and procedure"
	}
	if rate.PayerAllowed != nil && network.IsInNetwork() {
		return *rate.PayerAllowed, "used the payer-negotiated in-network rate"
	}
	mean := (rate.CashPrice + rate.MinAllowed + rate.MaxAllowed) / 3
	return mean, "no payer-specific in-network rate; used the average of cash, minimum, and maximum allowed"
}
