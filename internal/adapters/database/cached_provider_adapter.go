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

// Cache TTLs (in seconds)
const (
	providerByIDTTL = 300
)

// CachedProviderAdapter wraps a ProviderRepository with read-through caching
type CachedProviderAdapter struct {
	adapter repositories.ProviderRepository
	cache   providers.CacheProvider
}

// NewCachedProviderAdapter creates a new cached provider adapter
func NewCachedProviderAdapter(adapter repositories.ProviderRepository, cache providers.CacheProvider) repositories.ProviderRepository {
	return &CachedProviderAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

func providerCacheKey(id string) string {
	return fmt.Sprintf("provider:%s", id)
}

// GetByID retrieves a provider by ID with caching
func (a *CachedProviderAdapter) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	cacheKey := providerCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var provider entities.Provider
		if err := json.Unmarshal(cached, &provider); err == nil {
			return &provider, nil
		}
		observability.GetLogger().Warn().Str("provider_id", id).Msg("failed to unmarshal cached provider")
	}

	provider, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Fill the cache off the request path
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(provider); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, providerByIDTTL); err != nil {
				observability.GetLogger().Warn().Err(err).Str("provider_id", id).Msg("failed to cache provider")
			}
		}
	}()

	return provider, nil
}

// FindByServiceType passes through to the store. Bounding-box lookups carry
// per-request geometry, so their cache keys would be effectively unique.
func (a *CachedProviderAdapter) FindByServiceType(ctx context.Context, serviceType string, filter repositories.ProviderFilter) ([]*entities.Provider, error) {
	return a.adapter.FindByServiceType(ctx, serviceType, filter)
}
