package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
	"github.com/zatekoja/Careprovidermatching/internal/domain/repositories"
)

// memoryCache is an in-process CacheProvider for exercising the read-through
// wrappers without a Redis server. TTLs are ignored.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	return value, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok, nil
}

type stubProviderRepository struct {
	mock.Mock
}

func (m *stubProviderRepository) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Provider), args.Error(1)
}

func (m *stubProviderRepository) FindByServiceType(ctx context.Context, serviceType string, filter repositories.ProviderFilter) ([]*entities.Provider, error) {
	args := m.Called(ctx, serviceType, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Provider), args.Error(1)
}

type stubCoverageRepository struct {
	mock.Mock
}

func (m *stubCoverageRepository) Create(ctx context.Context, area *entities.CoverageArea) error {
	return m.Called(ctx, area).Error(0)
}

func (m *stubCoverageRepository) GetByID(ctx context.Context, id string) (*entities.CoverageArea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CoverageArea), args.Error(1)
}

func (m *stubCoverageRepository) FindByProvider(ctx context.Context, providerID string) ([]*entities.CoverageArea, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CoverageArea), args.Error(1)
}

func (m *stubCoverageRepository) Update(ctx context.Context, area *entities.CoverageArea) error {
	return m.Called(ctx, area).Error(0)
}

func (m *stubCoverageRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestCachedProviderAdapter_GetByID_ServesFromCache(t *testing.T) {
	store := new(stubProviderRepository)
	cacheStore := newMemoryCache()

	provider := &entities.Provider{ID: "provider-1", Name: "Harborview Home Care"}
	data, err := json.Marshal(provider)
	require.NoError(t, err)
	require.NoError(t, cacheStore.Set(context.Background(), "provider:provider-1", data, providerByIDTTL))

	adapter := NewCachedProviderAdapter(store, cacheStore)
	got, err := adapter.GetByID(context.Background(), "provider-1")

	require.NoError(t, err)
	assert.Equal(t, "Harborview Home Care", got.Name)
	store.AssertNotCalled(t, "GetByID")
}

func TestCachedProviderAdapter_GetByID_FallsThroughOnMiss(t *testing.T) {
	store := new(stubProviderRepository)
	provider := &entities.Provider{ID: "provider-1", Name: "Harborview Home Care"}
	store.On("GetByID", mock.Anything, "provider-1").Return(provider, nil)

	adapter := NewCachedProviderAdapter(store, newMemoryCache())
	got, err := adapter.GetByID(context.Background(), "provider-1")

	require.NoError(t, err)
	assert.Equal(t, "provider-1", got.ID)
	store.AssertExpectations(t)
}

func TestCachedProviderAdapter_CorruptCacheEntryFallsThrough(t *testing.T) {
	store := new(stubProviderRepository)
	provider := &entities.Provider{ID: "provider-1"}
	store.On("GetByID", mock.Anything, "provider-1").Return(provider, nil)

	cacheStore := newMemoryCache()
	require.NoError(t, cacheStore.Set(context.Background(), "provider:provider-1", []byte("not json"), providerByIDTTL))

	adapter := NewCachedProviderAdapter(store, cacheStore)
	got, err := adapter.GetByID(context.Background(), "provider-1")

	require.NoError(t, err)
	assert.Equal(t, "provider-1", got.ID)
	store.AssertExpectations(t)
}

func TestCachedCoverageAreaAdapter_FindByProvider_ServesFromCache(t *testing.T) {
	store := new(stubCoverageRepository)
	cacheStore := newMemoryCache()

	area, err := entities.NewCoverageArea("provider-1", entities.GeoPoint{Latitude: 40.0, Longitude: -74.0}, 5, nil)
	require.NoError(t, err)
	data, err := json.Marshal([]*entities.CoverageArea{area})
	require.NoError(t, err)
	require.NoError(t, cacheStore.Set(context.Background(), "provider:coverage:provider-1", data, coverageByProviderTTL))

	adapter := NewCachedCoverageAreaAdapter(store, cacheStore)
	areas, err := adapter.FindByProvider(context.Background(), "provider-1")

	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, area.ID, areas[0].ID)
	store.AssertNotCalled(t, "FindByProvider")
}

func TestCachedCoverageAreaAdapter_WritesInvalidate(t *testing.T) {
	area, err := entities.NewCoverageArea("provider-1", entities.GeoPoint{Latitude: 40.0, Longitude: -74.0}, 5, nil)
	require.NoError(t, err)

	t.Run("create", func(t *testing.T) {
		store := new(stubCoverageRepository)
		store.On("Create", mock.Anything, area).Return(nil)
		cacheStore := newMemoryCache()
		require.NoError(t, cacheStore.Set(context.Background(), "provider:coverage:provider-1", []byte("[]"), coverageByProviderTTL))

		adapter := NewCachedCoverageAreaAdapter(store, cacheStore)
		require.NoError(t, adapter.Create(context.Background(), area))

		exists, _ := cacheStore.Exists(context.Background(), "provider:coverage:provider-1")
		assert.False(t, exists)
	})

	t.Run("update", func(t *testing.T) {
		store := new(stubCoverageRepository)
		store.On("Update", mock.Anything, area).Return(nil)
		cacheStore := newMemoryCache()
		require.NoError(t, cacheStore.Set(context.Background(), "provider:coverage:provider-1", []byte("[]"), coverageByProviderTTL))

		adapter := NewCachedCoverageAreaAdapter(store, cacheStore)
		require.NoError(t, adapter.Update(context.Background(), area))

		exists, _ := cacheStore.Exists(context.Background(), "provider:coverage:provider-1")
		assert.False(t, exists)
	})

	t.Run("delete", func(t *testing.T) {
		store := new(stubCoverageRepository)
		store.On("GetByID", mock.Anything, area.ID).Return(area, nil)
		store.On("Delete", mock.Anything, area.ID).Return(nil)
		cacheStore := newMemoryCache()
		require.NoError(t, cacheStore.Set(context.Background(), "provider:coverage:provider-1", []byte("[]"), coverageByProviderTTL))

		adapter := NewCachedCoverageAreaAdapter(store, cacheStore)
		require.NoError(t, adapter.Delete(context.Background(), area.ID))

		exists, _ := cacheStore.Exists(context.Background(), "provider:coverage:provider-1")
		assert.False(t, exists)
	})
}
