package entities

import "time"

// TimeWindow is a half-open [From, To) time range
type TimeWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// IsZero reports whether the window is unset
func (w TimeWindow) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// Valid reports whether the window is well-formed
func (w TimeWindow) Valid() bool {
	return w.From.Before(w.To)
}

// AvailabilitySlot is a bookable time slot a provider offers for a service type
type AvailabilitySlot struct {
	ID          string    `json:"id" db:"id"`
	ProviderID  string    `json:"provider_id" db:"provider_id"`
	ServiceType string    `json:"service_type" db:"service_type"`
	StartTime   time.Time `json:"start_time" db:"start_time"`
	EndTime     time.Time `json:"end_time" db:"end_time"`
	IsBooked    bool      `json:"is_booked" db:"is_booked"`
}

// Overlaps reports whether the slot intersects the given window
func (s AvailabilitySlot) Overlaps(w TimeWindow) bool {
	return s.StartTime.Before(w.To) && s.EndTime.After(w.From)
}
