package config

// FPLSchedule is the published poverty-line threshold schedule by
// household size. Sizes beyond the largest listed extend linearly by
// ExtraPersonAmount per additional person.
type FPLSchedule struct {
	Year              int
	Thresholds        map[int]float64
	ExtraPersonAmount float64
}

// MaxListedSize returns the largest household size with an explicit
// threshold.
func (s FPLSchedule) MaxListedSize() int {
	max := 0
	for size := range s.Thresholds {
		if size > max {
			max = size
		}
	}
	return max
}

// DefaultPlanConfig is the documented fallback plan substituted when
// plan data is malformed or missing. A partial estimate is more useful
// to the user than none.
type DefaultPlanConfig struct {
	Deductible      float64
	Coinsurance     float64
	SpecialistCopay float64
	OutOfPocketMax  float64
}

// CapacityConfig holds the affordability-tier parameters: each tier is
// a fraction of monthly disposable income with an absolute floor.
type CapacityConfig struct {
	ConservativeRate  float64
	ConservativeFloor float64
	ModerateRate      float64
	ModerateFloor     float64
	AggressiveRate    float64
	AggressiveFloor   float64
}

// AncillaryConfig holds the fee constants for optional procedure
// components folded into the total charge.
type AncillaryConfig struct {
	AnesthesiaUnitMinutes int
	AnesthesiaUnitRate    float64
	ASAMultipliers        map[int]float64
	MedicationFlatFee     float64
}

// EstimatorConfig bundles every constant the estimation engine needs.
// The three demo apps inject this rather than hardcoding literals, so
// drifting copies collapse into one configured library.
type EstimatorConfig struct {
	FPL             FPLSchedule
	DefaultPlan     DefaultPlanConfig
	Capacity        CapacityConfig
	Ancillary       AncillaryConfig
	FlatSavingsCap  float64
	DefaultPlanMenu PlanMenuConfig
	// PhysicianFeeShare is the fraction of the allowed amount
	// attributed to professional fees; the remainder is the facility
	// fee.
	PhysicianFeeShare float64
}

// PlanMenuConfig is the fallback payer plan menu used when a payer has
// no configured menu.
type PlanMenuConfig struct {
	PayerName          string
	InterestFreeMonths int
	ExtendedPlanMonths int
	ExtendedPlanAPR    float64
	MinimumMonthly     float64
}

// DefaultEstimatorConfig returns the 2024 production constants.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		FPL: FPLSchedule{
			Year: 2024,
			Thresholds: map[int]float64{
				1: 15060,
				2: 20440,
				3: 25820,
				4: 31200,
				5: 36580,
				6: 41960,
				7: 47340,
				8: 52720,
			},
			ExtraPersonAmount: 5380,
		},
		DefaultPlan: DefaultPlanConfig{
			Deductible:      1500,
			Coinsurance:     0.20,
			SpecialistCopay: 50,
			OutOfPocketMax:  6000,
		},
		Capacity: CapacityConfig{
			ConservativeRate:  0.10,
			ConservativeFloor: 25,
			ModerateRate:      0.15,
			ModerateFloor:     50,
			AggressiveRate:    0.25,
			AggressiveFloor:   100,
		},
		Ancillary: AncillaryConfig{
			AnesthesiaUnitMinutes: 15,
			AnesthesiaUnitRate:    80,
			ASAMultipliers: map[int]float64{
				1: 1.0,
				2: 1.1,
				3: 1.25,
				4: 1.5,
			},
			MedicationFlatFee: 150,
		},
		FlatSavingsCap: 5000,
		DefaultPlanMenu: PlanMenuConfig{
			PayerName:          "Boston Medical Center",
			InterestFreeMonths: 12,
			ExtendedPlanMonths: 24,
			ExtendedPlanAPR:    0.05,
			MinimumMonthly:     50,
		},
		PhysicianFeeShare: 0.25,
	}
}
