package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
	"github.com/zatekoja/Careprovidermatching/internal/domain/repositories"
	"github.com/zatekoja/Careprovidermatching/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Careprovidermatching/pkg/errors"
)

var providerColumns = []interface{}{
	"id", "name", "gender", "languages", "service_types", "specializations",
	"accepted_insurance", "years_experience", "rating", "review_count",
	"latitude", "longitude", "is_active", "created_at", "updated_at",
}

// ProviderAdapter implements the ProviderRepository interface
type ProviderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client) repositories.ProviderRepository {
	return &ProviderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a provider by ID
func (a *ProviderAdapter) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	query, args, err := a.db.Select(providerColumns...).
		From("providers").
		Where(goqu.Ex{"id": id, "is_active": true}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build provider query", err)
	}

	provider, err := scanProvider(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get provider", err)
	}
	return provider, nil
}

// FindByServiceType retrieves active providers offering the given service
// type, optionally pruned to a bounding box before exact containment runs.
func (a *ProviderAdapter) FindByServiceType(ctx context.Context, serviceType string, filter repositories.ProviderFilter) ([]*entities.Provider, error) {
	ds := a.db.Select(providerColumns...).
		From("providers").
		Where(
			goqu.L("? = ANY(service_types)", serviceType),
			goqu.Ex{"is_active": true},
		).
		Order(goqu.C("id").Asc())

	if filter.BoundingBox != nil {
		box := filter.BoundingBox
		ds = ds.Where(
			goqu.C("latitude").Between(goqu.Range(box.MinLat, box.MaxLat)),
			goqu.C("longitude").Between(goqu.Range(box.MinLng, box.MaxLng)),
		)
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build provider search query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find providers", err)
	}
	defer rows.Close()

	var providers []*entities.Provider
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan provider", err)
		}
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate providers", err)
	}
	return providers, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProvider(row rowScanner) (*entities.Provider, error) {
	provider := &entities.Provider{}
	var gender sql.NullString

	err := row.Scan(
		&provider.ID,
		&provider.Name,
		&gender,
		pq.Array(&provider.Languages),
		pq.Array(&provider.ServiceTypes),
		pq.Array(&provider.Specializations),
		pq.Array(&provider.AcceptedInsurance),
		&provider.YearsExperience,
		&provider.Rating,
		&provider.ReviewCount,
		&provider.Location.Latitude,
		&provider.Location.Longitude,
		&provider.IsActive,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	provider.Gender = gender.String
	return provider, nil
}
