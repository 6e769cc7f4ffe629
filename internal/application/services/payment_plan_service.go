package services

import (
	"fmt"
	"math"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/pkg/config"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

// PaymentPlanService produces amortized payment-plan offers from a
// payer's plan menu and a household's affordability assessment.
type PaymentPlanService struct {
	capacity    config.CapacityConfig
	defaultMenu entities.PayerPlanMenu
}

// NewPaymentPlanService creates a new payment plan service
func NewPaymentPlanService(cfg config.EstimatorConfig) *PaymentPlanService {
	return &PaymentPlanService{
		capacity: cfg.Capacity,
		defaultMenu: entities.PayerPlanMenu{
			PayerName:          cfg.DefaultPlanMenu.PayerName,
			InterestFreeMonths: cfg.DefaultPlanMenu.InterestFreeMonths,
			ExtendedPlanMonths: cfg.DefaultPlanMenu.ExtendedPlanMonths,
			ExtendedPlanAPR:    cfg.DefaultPlanMenu.ExtendedPlanAPR,
			MinimumMonthly:     cfg.DefaultPlanMenu.MinimumMonthly,
		},
	}
}

// AssessCapacity derives the household's payment tiers from monthly
// disposable income. Negative disposable income floors the tiers at
// their configured minimums rather than failing.
func (s *PaymentPlanService) AssessCapacity(annualIncome, monthlyExpenses float64) entities.FinancialCapacity {
	monthlyIncome := annualIncome / 12
	disposable := monthlyIncome - monthlyExpenses

	return entities.FinancialCapacity{
		MonthlyIncome:       monthlyIncome,
		DisposableIncome:    disposable,
		ConservativePayment: math.Max(s.capacity.ConservativeFloor, disposable*s.capacity.ConservativeRate),
		ModeratePayment:     math.Max(s.capacity.ModerateFloor, disposable*s.capacity.ModerateRate),
		AggressivePayment:   math.Max(s.capacity.AggressiveFloor, disposable*s.capacity.AggressiveRate),
	}
}

// Amortize computes the fixed monthly payment and total cost for a
// principal over a term. Uses the standard annuity formula for a
// positive rate and a straight division for zero interest. A term of
// zero months has no sensible clamp and is rejected.
func (s *PaymentPlanService) Amortize(principal, annualRate float64, months int) (monthly, total float64, err error) {
	if months <= 0 {
		return 0, 0, apperrors.NewValidationError("payment term must be at least one month")
	}
	principal = math.Max(0, principal)

	if annualRate == 0 {
		monthly = roundCents(principal / float64(months))
		return monthly, roundCents(principal), nil
	}

	r := annualRate / 12
	compound := math.Pow(1+r, float64(months))
	monthly = roundCents(principal * r * compound / (compound - 1))
	total = roundCents(monthly * float64(months))
	return monthly, total, nil
}

// GeneratePlans produces up to three offers in fixed category order:
// interest-free, extended low-interest, income-based. Offers whose
// monthly payment falls below the payer's minimum are suppressed, not
// clamped. Callers wanting cheapest-first sort explicitly.
func (s *PaymentPlanService) GeneratePlans(
	totalCost float64,
	menu *entities.PayerPlanMenu,
	capacity entities.FinancialCapacity,
) []entities.PaymentPlanOffer {
	if menu == nil {
		fallback := s.defaultMenu
		menu = &fallback
	}
	totalCost = math.Max(0, totalCost)

	var plans []entities.PaymentPlanOffer

	if totalCost > 0 && menu.InterestFreeMonths > 0 {
		monthly := totalCost / float64(menu.InterestFreeMonths)
		if monthly >= menu.MinimumMonthly {
			plans = append(plans, entities.PaymentPlanOffer{
				Name:           fmt.Sprintf("%d-Month Interest-Free Plan", menu.InterestFreeMonths),
				Category:       entities.PlanCategoryInterestFree,
				MonthlyPayment: roundCents(monthly),
				TermMonths:     menu.InterestFreeMonths,
				TotalCost:      roundCents(totalCost),
				AnnualRate:     0,
				Provider:       menu.PayerName,
				Recommendation: "Best option - no interest charges",
			})
		}
	}

	if totalCost > 0 && menu.ExtendedPlanMonths > 0 {
		// Minimum-payment screen uses the pre-interest monthly amount
		base := totalCost / float64(menu.ExtendedPlanMonths)
		if base >= menu.MinimumMonthly {
			// Simple annualized proration, not compound interest
			totalWithInterest := totalCost * (1 + menu.ExtendedPlanAPR*float64(menu.ExtendedPlanMonths)/12)
			plans = append(plans, entities.PaymentPlanOffer{
				Name:           fmt.Sprintf("%d-Month Extended Plan", menu.ExtendedPlanMonths),
				Category:       entities.PlanCategoryExtended,
				MonthlyPayment: roundCents(totalWithInterest / float64(menu.ExtendedPlanMonths)),
				TermMonths:     menu.ExtendedPlanMonths,
				TotalCost:      roundCents(totalWithInterest),
				AnnualRate:     menu.ExtendedPlanAPR,
				Provider:       menu.PayerName,
				Recommendation: "Lower monthly payments with minimal interest",
			})
		}
	}

	if totalCost > 0 && capacity.ModeratePayment > 0 {
		target := capacity.ModeratePayment
		months := int(math.Ceil(totalCost / target))
		recommendation := "Sized to your monthly budget"
		if capacity.DisposableIncome > 0 {
			recommendation = fmt.Sprintf("Based on %d%% of disposable income",
				int(target/capacity.DisposableIncome*100))
		}
		plans = append(plans, entities.PaymentPlanOffer{
			Name:           "Income-Based Custom Plan",
			Category:       entities.PlanCategoryIncomeBased,
			MonthlyPayment: roundCents(target),
			TermMonths:     months,
			TotalCost:      roundCents(totalCost),
			AnnualRate:     0,
			Provider:       "Custom",
			Recommendation: recommendation,
		})
	}

	return plans
}

// StandardPlans computes generic amortized offers from a fixed menu of
// term/rate pairs using the shared amortization primitive.
func (s *PaymentPlanService) StandardPlans(principal float64, specs []entities.AmortizedPlanSpec) ([]entities.PaymentPlanOffer, error) {
	offers := make([]entities.PaymentPlanOffer, 0, len(specs))
	for _, spec := range specs {
		monthly, total, err := s.Amortize(principal, spec.AnnualRate, spec.TermMonths)
		if err != nil {
			return nil, err
		}

		name := fmt.Sprintf("%d-Month Plan", spec.TermMonths)
		recommendation := "No interest charges"
		if spec.AnnualRate > 0 {
			recommendation = fmt.Sprintf("%.0f%% APR financing", spec.AnnualRate*100)
		}

		offers = append(offers, entities.PaymentPlanOffer{
			Name:           name,
			Category:       entities.PlanCategoryStandard,
			MonthlyPayment: monthly,
			TermMonths:     spec.TermMonths,
			TotalCost:      total,
			AnnualRate:     spec.AnnualRate,
			Provider:       "Standard financing",
			Recommendation: recommendation,
		})
	}
	return offers, nil
}
