package repositories

import (
	"context"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
)

// CoverageAreaRepository defines the interface for coverage area persistence
type CoverageAreaRepository interface {
	// Create persists a new coverage area
	Create(ctx context.Context, area *entities.CoverageArea) error

	// GetByID retrieves a coverage area by ID
	GetByID(ctx context.Context, id string) (*entities.CoverageArea, error)

	// FindByProvider retrieves all coverage areas owned by a provider
	FindByProvider(ctx context.Context, providerID string) ([]*entities.CoverageArea, error)

	// Update persists mutations to a coverage area
	Update(ctx context.Context, area *entities.CoverageArea) error

	// Delete removes a coverage area
	Delete(ctx context.Context, id string) error
}
