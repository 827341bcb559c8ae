package repositories

import (
	"context"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
)

// ProviderRepository defines the interface for provider data operations
type ProviderRepository interface {
	// GetByID retrieves a provider by ID
	GetByID(ctx context.Context, id string) (*entities.Provider, error)

	// FindByServiceType retrieves active providers offering the given service type
	FindByServiceType(ctx context.Context, serviceType string, filter ProviderFilter) ([]*entities.Provider, error)
}

// ProviderFilter narrows a provider lookup. The bounding box, when set, lets
// the store prune far-away candidates before exact containment runs.
type ProviderFilter struct {
	BoundingBox *entities.BoundingBox
	Limit       int
}
