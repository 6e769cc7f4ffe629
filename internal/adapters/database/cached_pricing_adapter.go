package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/internal/domain/providers"
	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/observability"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

// CachedPricingAdapter wraps a PricingRepository with caching. Pricing
// rows change on ingestion cadence, not per request, so short TTLs are
// safe; NotFound results are never cached.
type CachedPricingAdapter struct {
	adapter repositories.PricingRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

var _ repositories.PricingRepository = (*CachedPricingAdapter)(nil)

// NewCachedPricingAdapter creates a new cached pricing adapter
func NewCachedPricingAdapter(adapter repositories.PricingRepository, cache providers.CacheProvider, metrics *observability.Metrics) *CachedPricingAdapter {
	return &CachedPricingAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

// Cache TTLs (in seconds)
const (
	negotiatedRateTTL = 600 // 10 minutes for pricing rows
	qualitySignalsTTL = 900 // 15 minutes for quality data
)

func rateCacheKey(facilityID, procedureCode string) string {
	return fmt.Sprintf("pricing:rate:%s:%s", facilityID, procedureCode)
}

func qualityCacheKey(facilityID string) string {
	return fmt.Sprintf("pricing:quality:%s", facilityID)
}

// GetNegotiatedRate retrieves a pricing row with caching
func (a *CachedPricingAdapter) GetNegotiatedRate(ctx context.Context, facilityID, procedureCode string) (*entities.NegotiatedRate, error) {
	cacheKey := rateCacheKey(facilityID, procedureCode)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var rate entities.NegotiatedRate
		if err := json.Unmarshal(cached, &rate); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, "negotiated_rate")
			return &rate, nil
		}
	}
	observability.RecordCacheMiss(ctx, a.metrics, "negotiated_rate")

	rate, err := a.adapter.GetNegotiatedRate(ctx, facilityID, procedureCode)
	if err != nil {
		return nil, err
	}

	a.storeAsync(cacheKey, rate, negotiatedRateTTL)
	return rate, nil
}

// GetQualitySignals retrieves quality data with caching
func (a *CachedPricingAdapter) GetQualitySignals(ctx context.Context, facilityID string) (*entities.FacilityQualitySignals, error) {
	cacheKey := qualityCacheKey(facilityID)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var signals entities.FacilityQualitySignals
		if err := json.Unmarshal(cached, &signals); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, "quality_signals")
			return &signals, nil
		}
	}
	observability.RecordCacheMiss(ctx, a.metrics, "quality_signals")

	signals, err := a.adapter.GetQualitySignals(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	a.storeAsync(cacheKey, signals, qualitySignalsTTL)
	return signals, nil
}

// Invalidate drops the cached pricing row for a facility/procedure.
func (a *CachedPricingAdapter) Invalidate(ctx context.Context, facilityID, procedureCode string) error {
	if err := a.cache.Delete(ctx, rateCacheKey(facilityID, procedureCode)); err != nil {
		return apperrors.NewInternalError("failed to invalidate pricing cache", err)
	}
	return nil
}

// storeAsync updates the cache off the request path; a failed write
// only costs a future miss.
func (a *CachedPricingAdapter) storeAsync(key string, value interface{}, ttl int) {
	go func() {
		bgCtx := context.Background()
		data, err := json.Marshal(value)
		if err != nil {
			return
		}
		if err := a.cache.Set(bgCtx, key, data, ttl); err != nil {
			observability.GetLogger().Debug().Err(err).Str("key", key).Msg("failed to cache pricing data")
		}
	}()
}
