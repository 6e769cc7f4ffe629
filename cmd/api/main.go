package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clearcompass/clearcompass/backend/internal/adapters/cache"
	"github.com/clearcompass/clearcompass/backend/internal/adapters/catalog"
	"github.com/clearcompass/clearcompass/backend/internal/adapters/database"
	"github.com/clearcompass/clearcompass/backend/internal/adapters/search"
	"github.com/clearcompass/clearcompass/backend/internal/api/handlers"
	"github.com/clearcompass/clearcompass/backend/internal/api/middleware"
	"github.com/clearcompass/clearcompass/backend/internal/api/routes"
	"github.com/clearcompass/clearcompass/backend/internal/application/services"
	"github.com/clearcompass/clearcompass/backend/internal/domain/providers"
	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/openai"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/postgres"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/redis"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/typesense"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/observability"
	"github.com/clearcompass/clearcompass/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		typesenseClient = nil
	} else {
		log.Println("Typesense client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize adapters
	basePricingAdapter := database.NewPricingAdapter(pgClient)

	// Wrap with caching if Redis is available
	var pricingRepo repositories.PricingRepository
	if cacheProvider != nil {
		pricingRepo = database.NewCachedPricingAdapter(basePricingAdapter, cacheProvider, metrics)
		log.Println("Pricing adapter wrapped with caching layer")
	} else {
		pricingRepo = basePricingAdapter
		log.Println("Pricing adapter running without cache (Redis unavailable)")
	}

	// Serve the built-in catalog until the database has been seeded
	var aidProgramRepo repositories.AidProgramRepository = database.NewAidProgramAdapter(pgClient)
	var planMenuRepo repositories.PlanMenuRepository = database.NewPlanMenuAdapter(pgClient)
	if programs, err := aidProgramRepo.List(ctx); err != nil || len(programs) == 0 {
		log.Println("Aid program catalog is empty; using built-in catalog")
		static := catalog.NewStaticCatalog()
		aidProgramRepo = static
		planMenuRepo = static.PlanMenus()
	}

	estimateRepo := database.NewEstimateAdapter(pgClient)
	facilityAdapter := database.NewFacilityAdapter(pgClient)

	var searchRepo repositories.FacilitySearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	var narrativeProvider providers.NarrativeProvider
	if cfg.OpenAI.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set; estimate narratives disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
		} else {
			narrativeProvider = openaiClient
		}
	}

	// Initialize services
	estimateService := services.NewEstimateService(
		pricingRepo,
		aidProgramRepo,
		planMenuRepo,
		estimateRepo,
		narrativeProvider,
		services.NewFPLService(cfg.Estimator.FPL),
		services.NewCostSharingService(cfg.Estimator.DefaultPlan),
		services.NewConfidenceService(),
		services.NewPaymentPlanService(cfg.Estimator),
		services.NewAidMatchService(cfg.Estimator.FlatSavingsCap),
		cfg.Estimator,
		metrics,
	)

	// Initialize handlers
	estimateHandler := handlers.NewEstimateHandler(estimateService)
	paymentPlanHandler := handlers.NewPaymentPlanHandler(estimateService)
	aidHandler := handlers.NewAidHandler(estimateService, aidProgramRepo)
	facilityHandler := handlers.NewFacilityHandler(facilityAdapter, searchRepo)

	// Rate limiter shares its window counters through Redis when
	// available so multiple instances enforce one limit
	var limitStore middleware.RateLimitStore
	if redisClient != nil {
		limitStore = middleware.NewRedisRateLimitStore(redisClient.Client())
	} else {
		limitStore = middleware.NewMemoryRateLimitStore()
	}
	rateLimiter := middleware.NewRateLimiter(
		limitStore,
		cfg.RateLimit.RequestsPerWindow,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
	)

	// Set up routes
	router := routes.NewRouter(
		estimateHandler,
		paymentPlanHandler,
		aidHandler,
		facilityHandler,
		rateLimiter,
		metrics,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
