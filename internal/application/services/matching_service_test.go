package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
	domainproviders "github.com/zatekoja/Careprovidermatching/internal/domain/providers"
	"github.com/zatekoja/Careprovidermatching/internal/domain/repositories"
	"github.com/zatekoja/Careprovidermatching/pkg/config"
	apperrors "github.com/zatekoja/Careprovidermatching/pkg/errors"
)

// MockProviderRepository is a mock implementation of ProviderRepository
type MockProviderRepository struct {
	mock.Mock
}

func (m *MockProviderRepository) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Provider), args.Error(1)
}

func (m *MockProviderRepository) FindByServiceType(ctx context.Context, serviceType string, filter repositories.ProviderFilter) ([]*entities.Provider, error) {
	args := m.Called(ctx, serviceType, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Provider), args.Error(1)
}

// MockCoverageAreaRepository is a mock implementation of CoverageAreaRepository
type MockCoverageAreaRepository struct {
	mock.Mock
}

func (m *MockCoverageAreaRepository) Create(ctx context.Context, area *entities.CoverageArea) error {
	args := m.Called(ctx, area)
	return args.Error(0)
}

func (m *MockCoverageAreaRepository) GetByID(ctx context.Context, id string) (*entities.CoverageArea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CoverageArea), args.Error(1)
}

func (m *MockCoverageAreaRepository) FindByProvider(ctx context.Context, providerID string) ([]*entities.CoverageArea, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CoverageArea), args.Error(1)
}

func (m *MockCoverageAreaRepository) Update(ctx context.Context, area *entities.CoverageArea) error {
	args := m.Called(ctx, area)
	return args.Error(0)
}

func (m *MockCoverageAreaRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAvailabilityRepository is a mock implementation of AvailabilityRepository
type MockAvailabilityRepository struct {
	mock.Mock
}

func (m *MockAvailabilityRepository) FindAvailableSlots(ctx context.Context, providerID string, window entities.TimeWindow, serviceType string) ([]entities.AvailabilitySlot, error) {
	args := m.Called(ctx, providerID, window, serviceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.AvailabilitySlot), args.Error(1)
}

// MockEnhancementProvider is a mock implementation of EnhancementProvider
type MockEnhancementProvider struct {
	mock.Mock
}

func (m *MockEnhancementProvider) EnhanceMatch(ctx context.Context, req *domainproviders.EnhancementRequest) (*entities.MatchEnhancement, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MatchEnhancement), args.Error(1)
}

func matchingTestConfig() config.MatchingConfig {
	return config.MatchingConfig{
		EnhancementEnabled:     false,
		MaxInFlightEnhancement: 2,
		EnhancementTimeout:     time.Second,
		PreferredDistanceMiles: 25,
		CandidateLimit:         100,
	}
}

func providerAt(id string, lat, lng float64) *entities.Provider {
	return &entities.Provider{
		ID:                id,
		Name:              "Provider " + id,
		ServiceTypes:      []string{"physical_therapy"},
		AcceptedInsurance: []string{"Aetna"},
		Rating:            4.0,
		ReviewCount:       20,
		Location:          entities.GeoPoint{Latitude: lat, Longitude: lng},
		IsActive:          true,
	}
}

func coverageFor(t *testing.T, provider *entities.Provider, radiusMiles float64) []*entities.CoverageArea {
	t.Helper()
	area, err := entities.NewCoverageArea(provider.ID, provider.Location, radiusMiles, nil)
	require.NoError(t, err)
	return []*entities.CoverageArea{area}
}

func TestMatchProviders_ValidatesCriteria(t *testing.T) {
	service := NewMatchingService(new(MockProviderRepository), new(MockCoverageAreaRepository), new(MockAvailabilityRepository), NewCompatibilityScorer(nil, 25), nil, matchingTestConfig())

	t.Run("nil criteria", func(t *testing.T) {
		_, err := service.MatchProviders(context.Background(), nil)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("missing client identity", func(t *testing.T) {
		_, err := service.MatchProviders(context.Background(), &entities.MatchCriteria{
			ServiceTypes: []string{"physical_therapy"},
		})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("missing service types", func(t *testing.T) {
		_, err := service.MatchProviders(context.Background(), &entities.MatchCriteria{ClientID: "client-1"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestMatchProviders_GeographicHardFilters(t *testing.T) {
	providerRepo := new(MockProviderRepository)
	coverageRepo := new(MockCoverageAreaRepository)

	// A is about 2 miles from the client and covers them; B is inside the
	// search radius but its own coverage circle is too small to reach the
	// client.
	providerA := providerAt("provider-a", 40.03, -74.0)
	providerB := providerAt("provider-b", 40.1, -74.0)

	providerRepo.On("FindByServiceType", mock.Anything, "physical_therapy", mock.Anything).
		Return([]*entities.Provider{providerA, providerB}, nil)
	coverageRepo.On("FindByProvider", mock.Anything, "provider-a").Return(coverageFor(t, providerA, 5), nil)
	coverageRepo.On("FindByProvider", mock.Anything, "provider-b").Return(coverageFor(t, providerB, 2), nil)

	service := NewMatchingService(providerRepo, coverageRepo, new(MockAvailabilityRepository), NewCompatibilityScorer(nil, 25), nil, matchingTestConfig())

	center := entities.GeoPoint{Latitude: 40.0, Longitude: -74.0}
	matches, err := service.MatchProviders(context.Background(), &entities.MatchCriteria{
		ClientID:     "client-1",
		ServiceTypes: []string{"physical_therapy"},
		Center:       &center,
		RadiusMiles:  10,
	})

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "provider-a", matches[0].Provider.ID)
	assert.InDelta(t, 2.07, matches[0].DistanceMiles, 0.1)
	assert.Greater(t, matches[0].CompatibilityScore, 0.0)
	providerRepo.AssertExpectations(t)
	coverageRepo.AssertExpectations(t)
}

func TestMatchProviders_InsuranceHardFilter(t *testing.T) {
	providerRepo := new(MockProviderRepository)
	provider := providerAt("provider-a", 40.03, -74.0)
	providerRepo.On("FindByServiceType", mock.Anything, "physical_therapy", mock.Anything).
		Return([]*entities.Provider{provider}, nil)

	service := NewMatchingService(providerRepo, new(MockCoverageAreaRepository), new(MockAvailabilityRepository), NewCompatibilityScorer(nil, 25), nil, matchingTestConfig())

	matches, err := service.MatchProviders(context.Background(), &entities.MatchCriteria{
		ClientID:     "client-1",
		ServiceTypes: []string{"physical_therapy"},
		Insurance:    "UnitedHealth",
	})

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatchProviders_AvailabilityHardFilter(t *testing.T) {
	window := entities.TimeWindow{
		From: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC),
	}
	slot := entities.AvailabilitySlot{
		ID:         "slot-1",
		ProviderID: "provider-a",
		StartTime:  time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
	}

	t.Run("overlapping slot passes and is attached", func(t *testing.T) {
		providerRepo := new(MockProviderRepository)
		availabilityRepo := new(MockAvailabilityRepository)
		provider := providerAt("provider-a", 40.03, -74.0)
		providerRepo.On("FindByServiceType", mock.Anything, "physical_therapy", mock.Anything).
			Return([]*entities.Provider{provider}, nil)
		availabilityRepo.On("FindAvailableSlots", mock.Anything, "provider-a", window, "physical_therapy").
			Return([]entities.AvailabilitySlot{slot}, nil)

		service := NewMatchingService(providerRepo, new(MockCoverageAreaRepository), availabilityRepo, NewCompatibilityScorer(nil, 25), nil, matchingTestConfig())

		matches, err := service.MatchProviders(context.Background(), &entities.MatchCriteria{
			ClientID:           "client-1",
			ServiceTypes:       []string{"physical_therapy"},
			AvailabilityWindow: &window,
		})

		require.NoError(t, err)
		require.Len(t, matches, 1)
		require.Len(t, matches[0].AvailableSlots, 1)
		assert.Equal(t, "slot-1", matches[0].AvailableSlots[0].ID)
	})

	t.Run("no overlapping slot excludes the candidate", func(t *testing.T) {
		providerRepo := new(MockProviderRepository)
		availabilityRepo := new(MockAvailabilityRepository)
		provider := providerAt("provider-a", 40.03, -74.0)
		providerRepo.On("FindByServiceType", mock.Anything, "physical_therapy", mock.Anything).
			Return([]*entities.Provider{provider}, nil)
		availabilityRepo.On("FindAvailableSlots", mock.Anything, "provider-a", window, "physical_therapy").
			Return([]entities.AvailabilitySlot{}, nil)

		service := NewMatchingService(providerRepo, new(MockCoverageAreaRepository), availabilityRepo, NewCompatibilityScorer(nil, 25), nil, matchingTestConfig())

		matches, err := service.MatchProviders(context.Background(), &entities.MatchCriteria{
			ClientID:           "client-1",
			ServiceTypes:       []string{"physical_therapy"},
			AvailabilityWindow: &window,
		})

		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestMatchProviders_RankingIsDeterministic(t *testing.T) {
	providerRepo := new(MockProviderRepository)

	// Identical attributes force a score tie; ranking must fall back to ID.
	strong := providerAt("provider-c", 40.03, -74.0)
	strong.Rating = 5
	strong.ReviewCount = 200
	tiedA := providerAt("provider-a", 40.03, -74.0)
	tiedB := providerAt("provider-b", 40.03, -74.0)

	providerRepo.On("FindByServiceType", mock.Anything, "physical_therapy", mock.Anything).
		Return([]*entities.Provider{tiedB, strong, tiedA}, nil)

	service := NewMatchingService(providerRepo, new(MockCoverageAreaRepository), new(MockAvailabilityRepository), NewCompatibilityScorer(nil, 25), nil, matchingTestConfig())

	criteria := &entities.MatchCriteria{
		ClientID:     "client-1",
		ServiceTypes: []string{"physical_therapy"},
	}

	var previous []string
	for i := 0; i < 3; i++ {
		matches, err := service.MatchProviders(context.Background(), criteria)
		require.NoError(t, err)
		require.Len(t, matches, 3)

		ids := []string{matches[0].Provider.ID, matches[1].Provider.ID, matches[2].Provider.ID}
		assert.Equal(t, []string{"provider-c", "provider-a", "provider-b"}, ids)
		if previous != nil {
			assert.Equal(t, previous, ids, "repeated runs must rank identically")
		}
		previous = ids
	}
}

func TestMatchProviders_DeduplicatesAcrossServiceTypes(t *testing.T) {
	providerRepo := new(MockProviderRepository)
	provider := providerAt("provider-a", 40.03, -74.0)
	provider.ServiceTypes = []string{"physical_therapy", "nursing"}

	providerRepo.On("FindByServiceType", mock.Anything, "physical_therapy", mock.Anything).
		Return([]*entities.Provider{provider}, nil)
	providerRepo.On("FindByServiceType", mock.Anything, "nursing", mock.Anything).
		Return([]*entities.Provider{provider}, nil)

	service := NewMatchingService(providerRepo, new(MockCoverageAreaRepository), new(MockAvailabilityRepository), NewCompatibilityScorer(nil, 25), nil, matchingTestConfig())

	matches, err := service.MatchProviders(context.Background(), &entities.MatchCriteria{
		ClientID:     "client-1",
		ServiceTypes: []string{"physical_therapy", "nursing"},
	})

	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestMatchProviders_RepositoryFailureIsExternal(t *testing.T) {
	providerRepo := new(MockProviderRepository)
	providerRepo.On("FindByServiceType", mock.Anything, "physical_therapy", mock.Anything).
		Return(nil, errors.New("connection refused"))

	service := NewMatchingService(providerRepo, new(MockCoverageAreaRepository), new(MockAvailabilityRepository), NewCompatibilityScorer(nil, 25), nil, matchingTestConfig())

	_, err := service.MatchProviders(context.Background(), &entities.MatchCriteria{
		ClientID:     "client-1",
		ServiceTypes: []string{"physical_therapy"},
	})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestMatchProviders_EnhancementAppliesFactorsAndConfidence(t *testing.T) {
	providerRepo := new(MockProviderRepository)
	enhancer := new(MockEnhancementProvider)
	provider := providerAt("provider-a", 40.03, -74.0)

	providerRepo.On("FindByServiceType", mock.Anything, "physical_therapy", mock.Anything).
		Return([]*entities.Provider{provider}, nil)
	enhancer.On("EnhanceMatch", mock.Anything, mock.Anything).
		Return(&entities.MatchEnhancement{
			Factors: []entities.MatchFactor{
				{Name: "care_plan_fit", Score: 1.0, Description: "Care plan aligns with client conditions"},
			},
			Confidence: entities.ConfidenceScore{Score: 82},
		}, nil)

	cfg := matchingTestConfig()
	cfg.EnhancementEnabled = true
	service := NewMatchingService(providerRepo, new(MockCoverageAreaRepository), new(MockAvailabilityRepository), NewCompatibilityScorer(nil, 25), enhancer, cfg)

	matches, err := service.MatchProviders(context.Background(), &entities.MatchCriteria{
		ClientID:     "client-1",
		ServiceTypes: []string{"physical_therapy"},
	})

	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.NotNil(t, matches[0].Confidence)
	assert.Equal(t, entities.ConfidenceHigh, matches[0].Confidence.Level)

	var found bool
	for _, f := range matches[0].MatchFactors {
		if f.Name == "care_plan_fit" {
			found = true
			assert.Equal(t, defaultUnknownWeight, f.Weight)
		}
	}
	assert.True(t, found, "enhancement factor should be appended")
	enhancer.AssertExpectations(t)
}

func TestMatchProviders_EnhancementFailureKeepsDeterministicScore(t *testing.T) {
	providerRepo := new(MockProviderRepository)
	enhancer := new(MockEnhancementProvider)
	provider := providerAt("provider-a", 40.03, -74.0)

	providerRepo.On("FindByServiceType", mock.Anything, "physical_therapy", mock.Anything).
		Return([]*entities.Provider{provider}, nil)
	enhancer.On("EnhanceMatch", mock.Anything, mock.Anything).
		Return(nil, domainproviders.ErrEnhancementUnavailable)

	cfg := matchingTestConfig()
	cfg.EnhancementEnabled = true
	scorer := NewCompatibilityScorer(nil, 25)
	service := NewMatchingService(providerRepo, new(MockCoverageAreaRepository), new(MockAvailabilityRepository), scorer, enhancer, cfg)

	criteria := &entities.MatchCriteria{
		ClientID:     "client-1",
		ServiceTypes: []string{"physical_therapy"},
	}
	expectedScore, _ := scorer.Score(provider, criteria)

	matches, err := service.MatchProviders(context.Background(), criteria)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, expectedScore, matches[0].CompatibilityScore)
	assert.Nil(t, matches[0].Confidence)
}

func TestMatchProviders_EmptyResultIsNotAnError(t *testing.T) {
	providerRepo := new(MockProviderRepository)
	providerRepo.On("FindByServiceType", mock.Anything, "physical_therapy", mock.Anything).
		Return([]*entities.Provider{}, nil)

	service := NewMatchingService(providerRepo, new(MockCoverageAreaRepository), new(MockAvailabilityRepository), NewCompatibilityScorer(nil, 25), nil, matchingTestConfig())

	matches, err := service.MatchProviders(context.Background(), &entities.MatchCriteria{
		ClientID:     "client-1",
		ServiceTypes: []string{"physical_therapy"},
	})

	require.NoError(t, err)
	assert.Empty(t, matches)
}
