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

var coverageAreaColumns = []interface{}{
	"id", "provider_id", "center_latitude", "center_longitude",
	"radius_miles", "postal_codes", "created_at", "updated_at",
}

// CoverageAreaAdapter implements the CoverageAreaRepository interface
type CoverageAreaAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCoverageAreaAdapter creates a new coverage area adapter
func NewCoverageAreaAdapter(client *postgres.Client) repositories.CoverageAreaRepository {
	return &CoverageAreaAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new coverage area
func (a *CoverageAreaAdapter) Create(ctx context.Context, area *entities.CoverageArea) error {
	record := goqu.Record{
		"id":               area.ID,
		"provider_id":      area.ProviderID,
		"center_latitude":  area.Center.Latitude,
		"center_longitude": area.Center.Longitude,
		"radius_miles":     area.RadiusMiles,
		"postal_codes":     pq.Array(area.PostalCodes),
		"created_at":       area.CreatedAt,
		"updated_at":       area.UpdatedAt,
	}

	query, args, err := a.db.Insert("coverage_areas").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create coverage area", err)
	}
	return nil
}

// GetByID retrieves a coverage area by ID
func (a *CoverageAreaAdapter) GetByID(ctx context.Context, id string) (*entities.CoverageArea, error) {
	query, args, err := a.db.Select(coverageAreaColumns...).
		From("coverage_areas").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	area, err := scanCoverageArea(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("coverage area with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get coverage area", err)
	}
	return area, nil
}

// FindByProvider retrieves all coverage areas owned by a provider
func (a *CoverageAreaAdapter) FindByProvider(ctx context.Context, providerID string) ([]*entities.CoverageArea, error) {
	query, args, err := a.db.Select(coverageAreaColumns...).
		From("coverage_areas").
		Where(goqu.Ex{"provider_id": providerID}).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find coverage areas", err)
	}
	defer rows.Close()

	var areas []*entities.CoverageArea
	for rows.Next() {
		area, err := scanCoverageArea(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan coverage area", err)
		}
		areas = append(areas, area)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate coverage areas", err)
	}
	return areas, nil
}

// Update persists mutations to a coverage area
func (a *CoverageAreaAdapter) Update(ctx context.Context, area *entities.CoverageArea) error {
	query, args, err := a.db.Update("coverage_areas").
		Set(goqu.Record{
			"center_latitude":  area.Center.Latitude,
			"center_longitude": area.Center.Longitude,
			"radius_miles":     area.RadiusMiles,
			"postal_codes":     pq.Array(area.PostalCodes),
			"updated_at":       area.UpdatedAt,
		}).
		Where(goqu.Ex{"id": area.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update coverage area", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("coverage area with id %s not found", area.ID))
	}
	return nil
}

// Delete removes a coverage area
func (a *CoverageAreaAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("coverage_areas").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete coverage area", err)
	}
	return nil
}

func scanCoverageArea(row rowScanner) (*entities.CoverageArea, error) {
	area := &entities.CoverageArea{}
	err := row.Scan(
		&area.ID,
		&area.ProviderID,
		&area.Center.Latitude,
		&area.Center.Longitude,
		&area.RadiusMiles,
		pq.Array(&area.PostalCodes),
		&area.CreatedAt,
		&area.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return area, nil
}
