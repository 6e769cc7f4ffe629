package services

import (
	"github.com/clearcompass/clearcompass/backend/pkg/config"
)

// FPLService converts household income and size into a Federal Poverty
// Level percentage against a configuration-injected threshold schedule.
type FPLService struct {
	schedule config.FPLSchedule
}

// NewFPLService creates a new FPL service
func NewFPLService(schedule config.FPLSchedule) *FPLService {
	return &FPLService{schedule: schedule}
}

// Percentage returns 100 * income / threshold for the household size.
// A household size below 1 is treated as a household of 1.
func (s *FPLService) Percentage(annualIncome float64, householdSize int) float64 {
	if householdSize < 1 {
		householdSize = 1
	}
	return annualIncome / s.threshold(householdSize) * 100
}

// threshold resolves the poverty line for a household size, extending
// linearly past the largest listed size.
func (s *FPLService) threshold(householdSize int) float64 {
	maxListed := s.schedule.MaxListedSize()
	if householdSize > maxListed {
		extra := float64(householdSize-maxListed) * s.schedule.ExtraPersonAmount
		return s.schedule.Thresholds[maxListed] + extra
	}
	if t, ok := s.schedule.Thresholds[householdSize]; ok {
		return t
	}
	return s.schedule.Thresholds[1]
}
