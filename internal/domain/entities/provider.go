package entities

import (
	"time"
)

// Provider represents a care provider in the system
type Provider struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Gender            string    `json:"gender,omitempty" db:"gender"`
	Languages         []string  `json:"languages,omitempty" db:"-"`
	ServiceTypes      []string  `json:"service_types" db:"-"`
	Specializations   []string  `json:"specializations,omitempty" db:"-"`
	AcceptedInsurance []string  `json:"accepted_insurance,omitempty" db:"-"`
	YearsExperience   int       `json:"years_experience" db:"years_experience"`
	Rating            float64   `json:"rating" db:"rating"`
	ReviewCount       int       `json:"review_count" db:"review_count"`
	Location          GeoPoint  `json:"location" db:"-"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// OffersService reports whether the provider offers the given service type
func (p *Provider) OffersService(serviceType string) bool {
	for _, s := range p.ServiceTypes {
		if s == serviceType {
			return true
		}
	}
	return false
}

// AcceptsInsurance reports whether the provider accepts the given insurance identifier
func (p *Provider) AcceptsInsurance(insurance string) bool {
	for _, accepted := range p.AcceptedInsurance {
		if accepted == insurance {
			return true
		}
	}
	return false
}

// SpeaksLanguage reports whether the provider lists the given language
func (p *Provider) SpeaksLanguage(language string) bool {
	for _, l := range p.Languages {
		if l == language {
			return true
		}
	}
	return false
}
