package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
	"github.com/zatekoja/Careprovidermatching/internal/domain/providers"
	"github.com/zatekoja/Careprovidermatching/internal/domain/repositories"
	"github.com/zatekoja/Careprovidermatching/internal/infrastructure/observability"
)

const coverageByProviderTTL = 180 // seconds

// CachedCoverageAreaAdapter wraps a CoverageAreaRepository with read-through
// caching of the per-provider lookup the matching hot path uses. Writes
// invalidate the owning provider's entry before hitting the store wrapper,
// so the matching read path never sees a stale positive after a mutation
// commits.
type CachedCoverageAreaAdapter struct {
	adapter repositories.CoverageAreaRepository
	cache   providers.CacheProvider
}

// NewCachedCoverageAreaAdapter creates a new cached coverage area adapter
func NewCachedCoverageAreaAdapter(adapter repositories.CoverageAreaRepository, cache providers.CacheProvider) repositories.CoverageAreaRepository {
	return &CachedCoverageAreaAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

func coverageCacheKey(providerID string) string {
	return fmt.Sprintf("provider:coverage:%s", providerID)
}

// Create persists a new coverage area and invalidates the provider's entry
func (a *CachedCoverageAreaAdapter) Create(ctx context.Context, area *entities.CoverageArea) error {
	if err := a.adapter.Create(ctx, area); err != nil {
		return err
	}
	a.invalidate(ctx, area.ProviderID)
	return nil
}

// GetByID passes through to the store
func (a *CachedCoverageAreaAdapter) GetByID(ctx context.Context, id string) (*entities.CoverageArea, error) {
	return a.adapter.GetByID(ctx, id)
}

// FindByProvider retrieves a provider's coverage areas with caching
func (a *CachedCoverageAreaAdapter) FindByProvider(ctx context.Context, providerID string) ([]*entities.CoverageArea, error) {
	cacheKey := coverageCacheKey(providerID)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var areas []*entities.CoverageArea
		if err := json.Unmarshal(cached, &areas); err == nil {
			return areas, nil
		}
		observability.GetLogger().Warn().Str("provider_id", providerID).Msg("failed to unmarshal cached coverage areas")
	}

	areas, err := a.adapter.FindByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(areas); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, coverageByProviderTTL); err != nil {
				observability.GetLogger().Warn().Err(err).Str("provider_id", providerID).Msg("failed to cache coverage areas")
			}
		}
	}()

	return areas, nil
}

// Update persists mutations and invalidates the provider's entry
func (a *CachedCoverageAreaAdapter) Update(ctx context.Context, area *entities.CoverageArea) error {
	a.invalidate(ctx, area.ProviderID)
	return a.adapter.Update(ctx, area)
}

// Delete removes a coverage area and invalidates the provider's entry
func (a *CachedCoverageAreaAdapter) Delete(ctx context.Context, id string) error {
	area, err := a.adapter.GetByID(ctx, id)
	if err == nil {
		a.invalidate(ctx, area.ProviderID)
	}
	return a.adapter.Delete(ctx, id)
}

func (a *CachedCoverageAreaAdapter) invalidate(ctx context.Context, providerID string) {
	if err := a.cache.Delete(ctx, coverageCacheKey(providerID)); err != nil {
		observability.GetLogger().Warn().Err(err).Str("provider_id", providerID).Msg("failed to invalidate coverage cache")
	}
}
