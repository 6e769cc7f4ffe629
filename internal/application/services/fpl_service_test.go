package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearcompass/clearcompass/backend/pkg/config"
)

func newFPLService() *FPLService {
	return NewFPLService(config.DefaultEstimatorConfig().FPL)
}

func TestFPLService_Percentage(t *testing.T) {
	svc := newFPLService()

	tests := []struct {
		name          string
		annualIncome  float64
		householdSize int
		expected      float64
	}{
		{
			name:          "household of two at fifty thousand",
			annualIncome:  50000,
			householdSize: 2,
			expected:      244.6183,
		},
		{
			name:          "single person at exactly the poverty line",
			annualIncome:  15060,
			householdSize: 1,
			expected:      100,
		},
		{
			name:          "zero income",
			annualIncome:  0,
			householdSize: 4,
			expected:      0,
		},
		{
			name:          "family of four at double the line",
			annualIncome:  62400,
			householdSize: 4,
			expected:      200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Percentage(tt.annualIncome, tt.householdSize)
			assert.InDelta(t, tt.expected, got, 0.001)
		})
	}
}

func TestFPLService_Percentage_ClampsHouseholdSize(t *testing.T) {
	svc := newFPLService()

	// Zero and negative sizes are treated as a household of one
	expected := svc.Percentage(30000, 1)
	assert.InDelta(t, expected, svc.Percentage(30000, 0), 0.0001)
	assert.InDelta(t, expected, svc.Percentage(30000, -3), 0.0001)
}

func TestFPLService_Percentage_ExtendsBeyondListedSizes(t *testing.T) {
	svc := newFPLService()

	// Size 10 threshold = 52720 + 2*5380 = 63480
	got := svc.Percentage(63480, 10)
	assert.InDelta(t, 100, got, 0.0001)

	// Larger households always yield a lower percentage for the same income
	prev := svc.Percentage(40000, 1)
	for size := 2; size <= 12; size++ {
		cur := svc.Percentage(40000, size)
		assert.Less(t, cur, prev, "size %d should lower the percentage", size)
		prev = cur
	}
}
