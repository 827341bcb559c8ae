package repositories

import (
	"context"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
)

// AvailabilityRepository defines the interface for availability slot lookups
type AvailabilityRepository interface {
	// FindAvailableSlots returns unbooked slots for a provider and service
	// type that overlap the given window.
	FindAvailableSlots(ctx context.Context, providerID string, window entities.TimeWindow, serviceType string) ([]entities.AvailabilitySlot, error)
}
