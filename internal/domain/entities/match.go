package entities

import (
	apperrors "github.com/zatekoja/Careprovidermatching/pkg/errors"
)

// Factor names for the fixed scoring dimensions. The enhancement collaborator
// may contribute additional names outside this set.
const (
	FactorServiceMatch        = "serviceMatch"
	FactorLocationProximity   = "locationProximity"
	FactorSpecializationMatch = "specializationMatch"
	FactorExperience          = "experience"
	FactorInsurance           = "insuranceCompatibility"
	FactorPreferenceMatch     = "preferenceMatch"
)

// MatchCriteria is the client-supplied shape of a matching request.
// It is input only and never persisted by the engine.
type MatchCriteria struct {
	ClientID               string      `json:"client_id"`
	ServiceTypes           []string    `json:"service_types"`
	Conditions             []string    `json:"conditions,omitempty"`
	Center                 *GeoPoint   `json:"center,omitempty"`
	RadiusMiles            float64     `json:"radius_miles,omitempty"`
	PostalCode             string      `json:"postal_code,omitempty"`
	PreferredDistanceMiles float64     `json:"preferred_distance_miles,omitempty"`
	Insurance              string      `json:"insurance,omitempty"`
	GenderPreference       string      `json:"gender_preference,omitempty"`
	LanguagePreference     string      `json:"language_preference,omitempty"`
	MinYearsExperience     int         `json:"min_years_experience,omitempty"`
	AvailabilityWindow     *TimeWindow `json:"availability_window,omitempty"`
}

// Validate checks that the criteria are usable for matching
func (c *MatchCriteria) Validate() error {
	if c.ClientID == "" {
		return apperrors.NewInvalidCriteriaError("client identity is required")
	}
	if len(c.ServiceTypes) == 0 {
		return apperrors.NewInvalidCriteriaError("at least one required service type must be given")
	}
	if c.Center != nil {
		if err := c.Center.Validate(); err != nil {
			return err
		}
	}
	if c.RadiusMiles < 0 {
		return apperrors.NewInvalidCriteriaError("radius must not be negative")
	}
	if c.AvailabilityWindow != nil && !c.AvailabilityWindow.Valid() {
		return apperrors.NewInvalidCriteriaError("availability window start must precede its end")
	}
	return nil
}

// MatchFactor is one named, weighted dimension of compatibility between a
// client's criteria and a provider.
type MatchFactor struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// ProviderMatch is a scored candidate produced for a single matching request
type ProviderMatch struct {
	Provider           *Provider          `json:"provider"`
	CompatibilityScore float64            `json:"compatibility_score"`
	MatchFactors       []MatchFactor      `json:"match_factors"`
	DistanceMiles      float64            `json:"distance_miles,omitempty"`
	AvailableSlots     []AvailabilitySlot `json:"available_slots,omitempty"`
	Confidence         *ConfidenceScore   `json:"confidence,omitempty"`
}

// ConfidenceLevel buckets a confidence score
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "LOW"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceHigh   ConfidenceLevel = "HIGH"
)

// ConfidenceScore is the enhancement collaborator's self-assessment of its output
type ConfidenceScore struct {
	Score   float64         `json:"score"`
	Level   ConfidenceLevel `json:"level"`
	Factors []string        `json:"factors,omitempty"`
}

// ConfidenceLevelFor buckets a 0-100 score into LOW/MEDIUM/HIGH
func ConfidenceLevelFor(score float64) ConfidenceLevel {
	switch {
	case score < 40:
		return ConfidenceLow
	case score < 70:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// MatchEnhancement is the parsed output of the enhancement collaborator:
// supplementary factors plus a confidence score. It is strictly additive to
// the deterministic result.
type MatchEnhancement struct {
	Factors    []MatchFactor   `json:"factors"`
	Confidence ConfidenceScore `json:"confidence"`
	Provider   string          `json:"provider"`
	Model      string          `json:"model"`
}

// FactorCatalogEntry describes one entry of the fixed factor weight table,
// exposed for UI explainability.
type FactorCatalogEntry struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}
