package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

// StaticCatalog serves the built-in assistance-program catalog from
// memory. It backs development and demo deployments and the seed tool;
// production swaps in the database adapters behind the same interfaces.
type StaticCatalog struct {
	programs []*entities.AidProgram
	menus    map[string]*entities.PayerPlanMenu
}

var _ repositories.AidProgramRepository = (*StaticCatalog)(nil)

// NewStaticCatalog creates a catalog populated with the built-in data.
func NewStaticCatalog() *StaticCatalog {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return &StaticCatalog{
		programs: []*entities.AidProgram{
			{
				ID:                 "hospital-charity-care",
				Name:               "Hospital Charity Care",
				Type:               entities.ProgramTypeHospital,
				Rule:               entities.SavingsRuleCharityScale,
				IncomeLimitPctFPL:  200,
				Coverage:           "Full or partial write-off of hospital charges",
				Requirements:       []string{"Proof of income", "Tax return or pay stubs", "Hospital financial assistance application"},
				ApplicationChannel: "the hospital's financial counseling office",
				SortOrder:          1,
				IsActive:           true,
				CreatedAt:          now,
				UpdatedAt:          now,
			},
			{
				ID:                 "ma-health-safety-net",
				Name:               "Massachusetts Health Safety Net",
				Type:               entities.ProgramTypeState,
				Rule:               entities.SavingsRuleSafetyNet,
				IncomeLimitPctFPL:  300,
				Coverage:           "Discounted care at participating hospitals and health centers",
				Requirements:       []string{"Massachusetts residency", "Proof of income", "MassHealth application on file"},
				ApplicationChannel: "mahealthconnector.org or the hospital's enrollment office",
				SortOrder:          2,
				IsActive:           true,
				CreatedAt:          now,
				UpdatedAt:          now,
			},
			{
				ID:                 "patient-advocate-foundation",
				Name:               "Patient Advocate Foundation",
				Type:               entities.ProgramTypeNonprofit,
				Rule:               entities.SavingsRuleFlat,
				IncomeLimitPctFPL:  400,
				Coverage:           "Case management and copay relief grants",
				Requirements:       []string{"Diagnosis documentation", "Proof of income"},
				ApplicationChannel: "patientadvocate.org",
				SortOrder:          3,
				IsActive:           true,
				CreatedAt:          now,
				UpdatedAt:          now,
			},
			{
				ID:                 "medicaid-emergency-services",
				Name:               "Medicaid Emergency Services",
				Type:               entities.ProgramTypeGovernment,
				Rule:               entities.SavingsRuleFlat,
				IncomeLimitPctFPL:  138,
				Coverage:           "Coverage of emergency care for Medicaid-eligible patients",
				Requirements:       []string{"Proof of income", "Residency documentation", "Emergency care records"},
				ApplicationChannel: "the state Medicaid office",
				SortOrder:          4,
				IsActive:           true,
				CreatedAt:          now,
				UpdatedAt:          now,
			},
			{
				ID:                 "carecredit",
				Name:               "CareCredit",
				Type:               entities.ProgramTypeFinancing,
				Rule:               entities.SavingsRuleFlat,
				Coverage:           "Healthcare credit line with promotional financing",
				Requirements:       []string{"Credit application"},
				ApplicationChannel: "carecredit.com",
				SortOrder:          5,
				IsActive:           true,
				CreatedAt:          now,
				UpdatedAt:          now,
			},
		},
		menus: map[string]*entities.PayerPlanMenu{
			"Boston Medical Center": {
				PayerName:          "Boston Medical Center",
				InterestFreeMonths: 12,
				ExtendedPlanMonths: 24,
				ExtendedPlanAPR:    0.05,
				MinimumMonthly:     50,
			},
			"Massachusetts General Hospital": {
				PayerName:          "Massachusetts General Hospital",
				InterestFreeMonths: 6,
				ExtendedPlanMonths: 36,
				ExtendedPlanAPR:    0.03,
				MinimumMonthly:     100,
			},
			"Brigham and Women's Hospital": {
				PayerName:          "Brigham and Women's Hospital",
				InterestFreeMonths: 18,
				ExtendedPlanMonths: 24,
				ExtendedPlanAPR:    0.04,
				MinimumMonthly:     75,
			},
		},
	}
}

// List retrieves active programs in catalog order
func (c *StaticCatalog) List(_ context.Context) ([]*entities.AidProgram, error) {
	programs := make([]*entities.AidProgram, 0, len(c.programs))
	for _, p := range c.programs {
		if p.IsActive {
			programs = append(programs, p)
		}
	}
	return programs, nil
}

// GetByID retrieves a single program
func (c *StaticCatalog) GetByID(_ context.Context, id string) (*entities.AidProgram, error) {
	for _, p := range c.programs {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("aid program %s not found", id))
}

// PlanMenus returns the plan-menu view of the catalog.
func (c *StaticCatalog) PlanMenus() *StaticPlanMenus {
	return &StaticPlanMenus{menus: c.menus}
}

// StaticPlanMenus serves the built-in hospital plan menus.
type StaticPlanMenus struct {
	menus map[string]*entities.PayerPlanMenu
}

var _ repositories.PlanMenuRepository = (*StaticPlanMenus)(nil)

// GetByPayer retrieves the plan menu configured for a payer
func (m *StaticPlanMenus) GetByPayer(_ context.Context, payerName string) (*entities.PayerPlanMenu, error) {
	if menu, ok := m.menus[payerName]; ok {
		return menu, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("no plan menu for payer %s", payerName))
}

// List retrieves all configured menus
func (m *StaticPlanMenus) List(_ context.Context) ([]*entities.PayerPlanMenu, error) {
	menus := make([]*entities.PayerPlanMenu, 0, len(m.menus))
	for _, name := range []string{"Boston Medical Center", "Brigham and Women's Hospital", "Massachusetts General Hospital"} {
		menus = append(menus, m.menus[name])
	}
	return menus, nil
}
