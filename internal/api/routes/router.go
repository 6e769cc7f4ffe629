package routes

import (
	"net/http"

	"github.com/clearcompass/clearcompass/backend/internal/api/handlers"
	"github.com/clearcompass/clearcompass/backend/internal/api/middleware"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	estimateHandler    *handlers.EstimateHandler
	paymentPlanHandler *handlers.PaymentPlanHandler
	aidHandler         *handlers.AidHandler
	facilityHandler    *handlers.FacilityHandler

	rateLimiter *middleware.RateLimiter
	metrics     *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	estimateHandler *handlers.EstimateHandler,
	paymentPlanHandler *handlers.PaymentPlanHandler,
	aidHandler *handlers.AidHandler,
	facilityHandler *handlers.FacilityHandler,
	rateLimiter *middleware.RateLimiter,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		estimateHandler:    estimateHandler,
		paymentPlanHandler: paymentPlanHandler,
		aidHandler:         aidHandler,
		facilityHandler:    facilityHandler,
		rateLimiter:        rateLimiter,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Estimate endpoints
	r.mux.HandleFunc("POST /api/estimates", r.estimateHandler.CreateEstimate)
	r.mux.HandleFunc("POST /api/estimates/comprehensive", r.estimateHandler.CreateComprehensiveEstimate)
	r.mux.HandleFunc("GET /api/estimates", r.estimateHandler.ListSavedEstimates)
	r.mux.HandleFunc("GET /api/estimates/{id}", r.estimateHandler.GetSavedEstimate)
	r.mux.HandleFunc("GET /api/fpl", r.estimateHandler.GetFPL)

	// Payment plan endpoints
	r.mux.HandleFunc("POST /api/payment-plans", r.paymentPlanHandler.GeneratePlans)

	// Assistance program endpoints
	r.mux.HandleFunc("POST /api/aid-matches", r.aidHandler.MatchAid)
	r.mux.HandleFunc("GET /api/aid-programs", r.aidHandler.ListPrograms)
	r.mux.HandleFunc("GET /api/aid-programs/{id}", r.aidHandler.GetProgram)

	// Facility endpoints
	r.mux.HandleFunc("GET /api/facilities", r.facilityHandler.ListFacilities)
	r.mux.HandleFunc("GET /api/facilities/search", r.facilityHandler.SearchFacilities)
	r.mux.HandleFunc("GET /api/facilities/{id}", r.facilityHandler.GetFacility)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.rateLimiter != nil {
		handler = r.rateLimiter.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set even on rejected requests
	handler = middleware.CORSMiddleware(handler)

	return handler
}
