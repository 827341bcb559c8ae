package services

import (
	"context"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
	"github.com/zatekoja/Careprovidermatching/internal/domain/repositories"
)

// CoverageAreaService is the write path for provider coverage areas. It is
// independent of the matching read path: invariants are re-validated by the
// entity before any mutation commits, so an area is never persisted in a
// partially invalid state.
type CoverageAreaService struct {
	repo repositories.CoverageAreaRepository
}

// NewCoverageAreaService creates a new coverage area service
func NewCoverageAreaService(repo repositories.CoverageAreaRepository) *CoverageAreaService {
	return &CoverageAreaService{repo: repo}
}

// Create validates and persists a new coverage area for a provider
func (s *CoverageAreaService) Create(ctx context.Context, providerID string, center entities.GeoPoint, radiusMiles float64, postalCodes []string) (*entities.CoverageArea, error) {
	area, err := entities.NewCoverageArea(providerID, center, radiusMiles, postalCodes)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}

// Get retrieves a coverage area by ID
func (s *CoverageAreaService) Get(ctx context.Context, id string) (*entities.CoverageArea, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByProvider retrieves all coverage areas owned by a provider
func (s *CoverageAreaService) ListByProvider(ctx context.Context, providerID string) ([]*entities.CoverageArea, error) {
	return s.repo.FindByProvider(ctx, providerID)
}

// UpdateCenter moves an area's center and persists the change
func (s *CoverageAreaService) UpdateCenter(ctx context.Context, id string, center entities.GeoPoint) (*entities.CoverageArea, error) {
	return s.mutate(ctx, id, func(area *entities.CoverageArea) error {
		return area.UpdateCenter(center)
	})
}

// UpdateRadius changes an area's radius and persists the change
func (s *CoverageAreaService) UpdateRadius(ctx context.Context, id string, radiusMiles float64) (*entities.CoverageArea, error) {
	return s.mutate(ctx, id, func(area *entities.CoverageArea) error {
		return area.UpdateRadius(radiusMiles)
	})
}

// AddPostalCode adds a postal code to an area's allow-list. The returned
// bool reports whether the code was newly added.
func (s *CoverageAreaService) AddPostalCode(ctx context.Context, id, code string) (*entities.CoverageArea, bool, error) {
	area, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	added, err := area.AddPostalCode(code)
	if err != nil {
		return nil, false, err
	}
	if !added {
		return area, false, nil
	}
	if err := s.repo.Update(ctx, area); err != nil {
		return nil, false, err
	}
	return area, true, nil
}

// RemovePostalCode removes a postal code from an area's allow-list. The
// returned bool reports whether the code was present.
func (s *CoverageAreaService) RemovePostalCode(ctx context.Context, id, code string) (*entities.CoverageArea, bool, error) {
	area, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !area.RemovePostalCode(code) {
		return area, false, nil
	}
	if err := s.repo.Update(ctx, area); err != nil {
		return nil, false, err
	}
	return area, true, nil
}

// Delete removes a coverage area
func (s *CoverageAreaService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *CoverageAreaService) mutate(ctx context.Context, id string, fn func(*entities.CoverageArea) error) (*entities.CoverageArea, error) {
	area, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(area); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}
