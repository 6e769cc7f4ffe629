package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
)

var testAsOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func freshRate() *entities.NegotiatedRate {
	payer := 4000.0
	return &entities.NegotiatedRate{
		FacilityID:    "fac-1",
		ProcedureCode: "47562",
		CashPrice:     5000,
		MinAllowed:    3800,
		MaxAllowed:    4600,
		PayerAllowed:  &payer,
		UpdatedAt:     testAsOf.AddDate(0, 0, -10),
	}
}

func TestConfidenceScore_FreshNarrowData(t *testing.T) {
	svc := NewConfidenceService()

	conf, _ := svc.Score(freshRate(), nil, testAsOf)
	assert.InDelta(t, 0.8, conf, 0.0001)
}

func TestConfidenceScore_NilRateFloors(t *testing.T) {
	svc := NewConfidenceService()

	conf, assumptions := svc.Score(nil, nil, testAsOf)
	assert.Equal(t, 0.3, conf)
	assert.NotEmpty(t, assumptions)
}

func TestConfidenceScore_AgeDeductions(t *testing.T) {
	svc := NewConfidenceService()

	tests := []struct {
		name     string
		ageDays  int
		expected float64
	}{
		{"under ninety days", 30, 0.8},
		{"exactly ninety days", 90, 0.7},
		{"between ninety and one eighty", 150, 0.7},
		{"over one eighty days", 200, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := freshRate()
			rate.UpdatedAt = testAsOf.AddDate(0, 0, -tt.ageDays)
			conf, _ := svc.Score(rate, nil, testAsOf)
			assert.InDelta(t, tt.expected, conf, 0.0001)
		})
	}
}

func TestConfidenceScore_WideSpreadDeduction(t *testing.T) {
	svc := NewConfidenceService()

	rate := freshRate()
	rate.MinAllowed = 1000
	rate.MaxAllowed = 4600 // spread = 3600/5000 = 0.72

	conf, assumptions := svc.Score(rate, nil, testAsOf)
	assert.InDelta(t, 0.7, conf, 0.0001)
	assert.NotEmpty(t, assumptions)
}

func TestConfidenceScore_QualityAdditions(t *testing.T) {
	svc := NewConfidenceService()

	lowComplication := 0.01
	quality := &entities.FacilityQualitySignals{
		FacilityID:       "fac-1",
		QualityScore:     4.8,
		ComplicationRate: &lowComplication,
	}

	conf, _ := svc.Score(freshRate(), quality, testAsOf)
	assert.InDelta(t, 0.9, conf, 0.0001)
}

func TestConfidenceScore_ClampedToBounds(t *testing.T) {
	svc := NewConfidenceService()

	// Every deduction at once still floors at 0.3
	rate := freshRate()
	rate.UpdatedAt = testAsOf.AddDate(-1, 0, 0)
	rate.MinAllowed = 0
	rate.MaxAllowed = 5000

	conf, _ := svc.Score(rate, nil, testAsOf)
	assert.GreaterOrEqual(t, conf, 0.3)
	assert.LessOrEqual(t, conf, 1.0)
}

func TestConfidenceScore_Reproducible(t *testing.T) {
	svc := NewConfidenceService()

	// Identical inputs with an explicit reference time always agree
	a, _ := svc.Score(freshRate(), nil, testAsOf)
	b, _ := svc.Score(freshRate(), nil, testAsOf)
	assert.Equal(t, a, b)
}

func TestRange_OrderingAndMid(t *testing.T) {
	svc := NewConfidenceService()

	for _, conf := range []float64{0.3, 0.5, 0.8, 1.0} {
		r := svc.Range(2650, conf)
		assert.LessOrEqual(t, r.Low, r.Mid)
		assert.LessOrEqual(t, r.Mid, r.High)
		assert.Equal(t, 2650.0, r.Mid)
		assert.GreaterOrEqual(t, r.Low, 0.0)
	}
}

func TestRange_HigherConfidenceTightensBand(t *testing.T) {
	svc := NewConfidenceService()

	wide := svc.Range(1000, 0.3)
	tight := svc.Range(1000, 0.9)
	assert.Less(t, tight.High-tight.Low, wide.High-wide.Low)

	// Even at maximum confidence the band stays at 10%
	best := svc.Range(1000, 1.0)
	assert.Equal(t, 900.0, best.Low)
	assert.Equal(t, 1100.0, best.High)
}

func TestAllowedAmount(t *testing.T) {
	svc := NewConfidenceService()

	t.Run("in-network payer rate", func(t *testing.T) {
		basis, _ := svc.AllowedAmount(freshRate(), entities.NetworkStatusInNetwork)
		assert.Equal(t, 4000.0, basis)
	})

	t.Run("out-of-network falls back to the mean", func(t *testing.T) {
		basis, _ := svc.AllowedAmount(freshRate(), entities.NetworkStatusOutOfNetwork)
		assert.InDelta(t, (5000.0+3800.0+4600.0)/3, basis, 0.0001)
	})

	t.Run("no payer rate falls back to the mean", func(t *testing.T) {
		rate := freshRate()
		rate.PayerAllowed = nil
		basis, _ := svc.AllowedAmount(rate, entities.NetworkStatusInNetwork)
		assert.InDelta(t, (5000.0+3800.0+4600.0)/3, basis, 0.0001)
	})

	t.Run("nil rate yields zero basis", func(t *testing.T) {
		basis, assumption := svc.AllowedAmount(nil, entities.NetworkStatusInNetwork)
		assert.Equal(t, 0.0, basis)
		assert.NotEmpty(t, assumption)
	})
}
