package main

import (
	"context"
	"log"
	"time"

	"github.com/clearcompass/clearcompass/backend/internal/adapters/catalog"
	"github.com/clearcompass/clearcompass/backend/internal/adapters/database"
	"github.com/clearcompass/clearcompass/backend/internal/adapters/search"
	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/postgres"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/typesense"
	"github.com/clearcompass/clearcompass/backend/pkg/config"
)

// Seeds the database and search index with demo facilities, pricing
// rows, the assistance-program catalog, and hospital plan menus.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()

	facilityAdapter := database.NewFacilityAdapter(pgClient)
	pricingAdapter := database.NewPricingAdapter(pgClient)
	aidProgramAdapter := database.NewAidProgramAdapter(pgClient)
	planMenuAdapter := database.NewPlanMenuAdapter(pgClient)

	now := time.Now()
	facilities := demoFacilities(now)

	for _, facility := range facilities {
		if err := facilityAdapter.Create(ctx, facility); err != nil {
			log.Printf("Skipping facility %s: %v", facility.Name, err)
		}
	}
	log.Printf("Seeded %d facilities", len(facilities))

	rates := demoRates(now)
	for _, rate := range rates {
		if err := pricingAdapter.UpsertNegotiatedRate(ctx, rate); err != nil {
			log.Printf("Skipping rate %s/%s: %v", rate.FacilityID, rate.ProcedureCode, err)
		}
	}
	log.Printf("Seeded %d negotiated rates", len(rates))

	// Copy the built-in catalog into the database
	static := catalog.NewStaticCatalog()
	programs, _ := static.List(ctx)
	for _, program := range programs {
		if err := aidProgramAdapter.Create(ctx, program); err != nil {
			log.Printf("Skipping program %s: %v", program.Name, err)
		}
	}
	log.Printf("Seeded %d aid programs", len(programs))

	menus, _ := static.PlanMenus().List(ctx)
	for _, menu := range menus {
		if err := planMenuAdapter.Upsert(ctx, menu); err != nil {
			log.Printf("Skipping plan menu %s: %v", menu.PayerName, err)
		}
	}
	log.Printf("Seeded %d plan menus", len(menus))

	// Index facilities for search if Typesense is reachable
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Typesense unavailable, skipping search index: %v", err)
		return
	}

	searchAdapter := search.NewTypesenseAdapter(typesenseClient)
	if err := searchAdapter.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to init search schema: %v", err)
	}
	for _, facility := range facilities {
		if err := searchAdapter.Index(ctx, facility); err != nil {
			log.Printf("Skipping index for %s: %v", facility.Name, err)
		}
	}
	log.Printf("Indexed %d facilities", len(facilities))
}

func demoFacilities(now time.Time) []*entities.Facility {
	return []*entities.Facility{
		{
			ID:   "bmc",
			Name: "Boston Medical Center",
			Address: entities.Address{
				Street: "One Boston Medical Center Pl", City: "Boston",
				State: "MA", ZipCode: "02118", Country: "US",
			},
			PhoneNumber:  "617-638-8000",
			Website:      "https://www.bmc.org",
			FacilityType: "hospital",
			NetworkTags:  []string{"bcbs-ma", "tufts", "masshealth"},
			Rating:       4.2,
			ReviewCount:  1840,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:   "mgh",
			Name: "Massachusetts General Hospital",
			Address: entities.Address{
				Street: "55 Fruit St", City: "Boston",
				State: "MA", ZipCode: "02114", Country: "US",
			},
			PhoneNumber:  "617-726-2000",
			Website:      "https://www.massgeneral.org",
			FacilityType: "hospital",
			NetworkTags:  []string{"bcbs-ma", "harvard-pilgrim"},
			Rating:       4.6,
			ReviewCount:  3120,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:   "brigham",
			Name: "Brigham and Women's Hospital",
			Address: entities.Address{
				Street: "75 Francis St", City: "Boston",
				State: "MA", ZipCode: "02115", Country: "US",
			},
			PhoneNumber:  "617-732-5500",
			Website:      "https://www.brighamandwomens.org",
			FacilityType: "hospital",
			NetworkTags:  []string{"bcbs-ma", "harvard-pilgrim", "tufts"},
			Rating:       4.5,
			ReviewCount:  2760,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

func demoRates(now time.Time) []*entities.NegotiatedRate {
	bmcGallbladder := 4000.0
	mghGallbladder := 5200.0
	brighamColonoscopy := 1650.0

	return []*entities.NegotiatedRate{
		{
			FacilityID:    "bmc",
			ProcedureCode: "47562",
			CashPrice:     5000,
			MinAllowed:    3800,
			MaxAllowed:    4600,
			PayerAllowed:  &bmcGallbladder,
			UpdatedAt:     now.AddDate(0, 0, -14),
		},
		{
			FacilityID:    "mgh",
			ProcedureCode: "47562",
			CashPrice:     6800,
			MinAllowed:    4900,
			MaxAllowed:    6100,
			PayerAllowed:  &mghGallbladder,
			UpdatedAt:     now.AddDate(0, 0, -30),
		},
		{
			FacilityID:    "brigham",
			ProcedureCode: "45380",
			CashPrice:     2100,
			MinAllowed:    1400,
			MaxAllowed:    1900,
			PayerAllowed:  &brighamColonoscopy,
			UpdatedAt:     now.AddDate(0, 0, -7),
		},
		{
			FacilityID:    "bmc",
			ProcedureCode: "45380",
			CashPrice:     1800,
			MinAllowed:    1200,
			MaxAllowed:    1700,
			UpdatedAt:     now.AddDate(0, 0, -60),
		},
	}
}
