package entities

import (
	"math"

	apperrors "github.com/zatekoja/Careprovidermatching/pkg/errors"
)

const (
	earthRadiusMiles = 3958.8

	// poleConvergenceLat is the latitude beyond which longitude spans are
	// meaningless for a bounding box and the full circle is used instead.
	poleConvergenceLat = 89.0
)

var milesPerDegreeLat = earthRadiusMiles * math.Pi / 180.0

// GeoPoint represents a validated latitude/longitude pair
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewGeoPoint creates a GeoPoint, rejecting out-of-range coordinates
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	p := GeoPoint{Latitude: lat, Longitude: lng}
	if err := p.Validate(); err != nil {
		return GeoPoint{}, err
	}
	return p, nil
}

// Validate checks that the point's coordinates are within valid ranges
func (p GeoPoint) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return apperrors.NewInvalidCoordinateError(p.Latitude, p.Longitude)
	}
	return nil
}

// BoundingBox is a rectangular region used to pre-filter candidates before
// exact distance computation. It fully contains the circle it was built from
// but is not required to be tight.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// Contains reports whether the point falls inside the box
func (b BoundingBox) Contains(p GeoPoint) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLng && p.Longitude <= b.MaxLng
}

// Distance returns the great-circle distance between two points in miles
// using the haversine formula.
func Distance(a, b GeoPoint) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLng := degreesToRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(a.Latitude))*math.Cos(degreesToRadians(b.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMiles * c, nil
}

// IsWithinRadius reports whether point lies within radiusMiles of center
func IsWithinRadius(center, point GeoPoint, radiusMiles float64) (bool, error) {
	dist, err := Distance(center, point)
	if err != nil {
		return false, err
	}
	return dist <= radiusMiles, nil
}

// NewBoundingBox computes a rectangle that fully contains the circle of
// radiusMiles around center. The longitude span widens as the box approaches
// a pole and collapses to the full circle beyond the convergence threshold,
// so a true positive is never excluded.
func NewBoundingBox(center GeoPoint, radiusMiles float64) (BoundingBox, error) {
	if err := center.Validate(); err != nil {
		return BoundingBox{}, err
	}
	if radiusMiles <= 0 {
		return BoundingBox{}, apperrors.NewValidationError("bounding box radius must be positive")
	}

	latDelta := radiusMiles / milesPerDegreeLat

	box := BoundingBox{
		MinLat: math.Max(center.Latitude-latDelta, -90),
		MaxLat: math.Min(center.Latitude+latDelta, 90),
	}

	// Worst-case convergence anywhere inside the box, not just at the center.
	extremeLat := math.Max(math.Abs(box.MinLat), math.Abs(box.MaxLat))
	if extremeLat >= poleConvergenceLat {
		box.MinLng = -180
		box.MaxLng = 180
		return box, nil
	}

	lngDelta := radiusMiles / (milesPerDegreeLat * math.Cos(degreesToRadians(extremeLat)))
	minLng := center.Longitude - lngDelta
	maxLng := center.Longitude + lngDelta
	if minLng < -180 || maxLng > 180 {
		// Crossing the antimeridian; fall back to the full span rather than wrap.
		minLng = -180
		maxLng = 180
	}
	box.MinLng = minLng
	box.MaxLng = maxLng
	return box, nil
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
