package entities

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/zatekoja/Careprovidermatching/pkg/errors"
)

// zipCodePattern accepts 5-digit ZIP and ZIP+4 codes
var zipCodePattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// CoverageArea is the geographic region a provider declares as serviceable:
// a circle around a center point, optionally restricted to a postal-code
// allow-list. Owned by exactly one provider.
type CoverageArea struct {
	ID          string    `json:"id" db:"id"`
	ProviderID  string    `json:"provider_id" db:"provider_id"`
	Center      GeoPoint  `json:"center" db:"-"`
	RadiusMiles float64   `json:"radius_miles" db:"radius_miles"`
	PostalCodes []string  `json:"postal_codes" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewCoverageArea creates a coverage area, validating all invariants up front
func NewCoverageArea(providerID string, center GeoPoint, radiusMiles float64, postalCodes []string) (*CoverageArea, error) {
	if providerID == "" {
		return nil, apperrors.NewInvalidCoverageAreaError("provider id is required")
	}
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if err := validateRadius(radiusMiles); err != nil {
		return nil, err
	}
	codes, err := normalizePostalCodes(postalCodes)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &CoverageArea{
		ID:          uuid.NewString(),
		ProviderID:  providerID,
		Center:      center,
		RadiusMiles: radiusMiles,
		PostalCodes: codes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Contains applies the two coverage rules to a point and its postal code
// (empty when unknown):
//   - the point must always be within the radius of the center;
//   - when the allow-list is non-empty and the point carries a postal code,
//     that code must also be in the list. A point with no postal code is
//     decided by the radius alone (permissive fallback, the postal rule is
//     not enforceable without a code).
func (c *CoverageArea) Contains(point GeoPoint, postalCode string) (bool, error) {
	within, err := IsWithinRadius(c.Center, point, c.RadiusMiles)
	if err != nil {
		return false, err
	}
	if !within {
		return false, nil
	}

	if len(c.PostalCodes) == 0 || postalCode == "" {
		return true, nil
	}
	return c.HasPostalCode(postalCode), nil
}

// HasPostalCode reports whether code is in the allow-list
func (c *CoverageArea) HasPostalCode(code string) bool {
	for _, existing := range c.PostalCodes {
		if existing == code {
			return true
		}
	}
	return false
}

// UpdateCenter moves the area's center after validating the new point
func (c *CoverageArea) UpdateCenter(center GeoPoint) error {
	if err := center.Validate(); err != nil {
		return err
	}
	c.Center = center
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateRadius changes the area's radius after validating it
func (c *CoverageArea) UpdateRadius(radiusMiles float64) error {
	if err := validateRadius(radiusMiles); err != nil {
		return err
	}
	c.RadiusMiles = radiusMiles
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// AddPostalCode adds a code to the allow-list. It returns whether the code
// was newly added; adding a duplicate is a no-op.
func (c *CoverageArea) AddPostalCode(code string) (bool, error) {
	if !zipCodePattern.MatchString(code) {
		return false, apperrors.NewInvalidCoverageAreaError("postal code must be a 5-digit or ZIP+4 code: " + code)
	}
	if c.HasPostalCode(code) {
		return false, nil
	}
	c.PostalCodes = append(c.PostalCodes, code)
	c.UpdatedAt = time.Now().UTC()
	return true, nil
}

// RemovePostalCode removes a code from the allow-list, reporting whether it
// was present.
func (c *CoverageArea) RemovePostalCode(code string) bool {
	for i, existing := range c.PostalCodes {
		if existing == code {
			c.PostalCodes = append(c.PostalCodes[:i], c.PostalCodes[i+1:]...)
			c.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

func validateRadius(radiusMiles float64) error {
	if radiusMiles <= 0 {
		return apperrors.NewInvalidCoverageAreaError("radius must be strictly positive")
	}
	return nil
}

func normalizePostalCodes(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if !zipCodePattern.MatchString(code) {
			return nil, apperrors.NewInvalidCoverageAreaError("postal code must be a 5-digit or ZIP+4 code: " + code)
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}
