package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
	"github.com/zatekoja/Careprovidermatching/internal/domain/repositories"
	"github.com/zatekoja/Careprovidermatching/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Careprovidermatching/pkg/errors"
)

// AvailabilityAdapter implements the AvailabilityRepository interface
type AvailabilityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAvailabilityAdapter creates a new availability adapter
func NewAvailabilityAdapter(client *postgres.Client) repositories.AvailabilityRepository {
	return &AvailabilityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// FindAvailableSlots returns unbooked slots for a provider and service type
// that overlap the given window.
func (a *AvailabilityAdapter) FindAvailableSlots(ctx context.Context, providerID string, window entities.TimeWindow, serviceType string) ([]entities.AvailabilitySlot, error) {
	query, args, err := a.db.Select(
		"id", "provider_id", "service_type", "start_time", "end_time", "is_booked",
	).From("availability_slots").
		Where(
			goqu.Ex{
				"provider_id":  providerID,
				"service_type": serviceType,
				"is_booked":    false,
			},
			goqu.C("start_time").Lt(window.To),
			goqu.C("end_time").Gt(window.From),
		).
		Order(goqu.C("start_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build availability query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find availability slots", err)
	}
	defer rows.Close()

	var slots []entities.AvailabilitySlot
	for rows.Next() {
		var slot entities.AvailabilitySlot
		err := rows.Scan(
			&slot.ID,
			&slot.ProviderID,
			&slot.ServiceType,
			&slot.StartTime,
			&slot.EndTime,
			&slot.IsBooked,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan availability slot", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate availability slots", err)
	}
	return slots, nil
}
