package services

import (
	"fmt"
	"strings"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
)

// FactorCalculator computes one scoring dimension for a candidate. Calculate
// returns nil when the dimension is inapplicable to the given criteria, in
// which case it contributes nothing to the overall score.
type FactorCalculator interface {
	Name() string
	Description() string
	Calculate(provider *entities.Provider, criteria *entities.MatchCriteria) *entities.MatchFactor
}

// normalize maps x from [min,max] onto [0,1], clamping at both ends
func normalize(x, min, max float64) float64 {
	if max <= min {
		return 0
	}
	v := (x - min) / (max - min)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// serviceMatchCalculator scores the overlap between required and offered
// service types as matched/required.
type serviceMatchCalculator struct{}

func (serviceMatchCalculator) Name() string { return entities.FactorServiceMatch }

func (serviceMatchCalculator) Description() string {
	return "Overlap between the required service types and the services the provider offers"
}

func (serviceMatchCalculator) Calculate(provider *entities.Provider, criteria *entities.MatchCriteria) *entities.MatchFactor {
	if len(criteria.ServiceTypes) == 0 {
		return nil
	}

	matched := 0
	for _, required := range criteria.ServiceTypes {
		if provider.OffersService(required) {
			matched++
		}
	}

	return &entities.MatchFactor{
		Name:        entities.FactorServiceMatch,
		Score:       float64(matched) / float64(len(criteria.ServiceTypes)),
		Description: fmt.Sprintf("Provider offers %d of %d required services", matched, len(criteria.ServiceTypes)),
	}
}

// proximityCalculator scores distance from the client's center to the
// provider's location, linearly decaying to zero at the preferred distance.
type proximityCalculator struct {
	defaultPreferredDistance float64
}

func (proximityCalculator) Name() string { return entities.FactorLocationProximity }

func (proximityCalculator) Description() string {
	return "How close the provider is to the client's location, relative to the preferred distance"
}

func (c proximityCalculator) Calculate(provider *entities.Provider, criteria *entities.MatchCriteria) *entities.MatchFactor {
	if criteria.Center == nil {
		return nil
	}

	dist, err := entities.Distance(*criteria.Center, provider.Location)
	if err != nil {
		return nil
	}

	preferred := criteria.PreferredDistanceMiles
	if preferred <= 0 {
		preferred = c.defaultPreferredDistance
	}
	if preferred <= 0 {
		preferred = 25
	}

	return &entities.MatchFactor{
		Name:        entities.FactorLocationProximity,
		Score:       1 - normalize(dist, 0, preferred),
		Description: fmt.Sprintf("Provider is %.1f miles away (preferred within %.0f miles)", dist, preferred),
	}
}

// specializationCalculator scores the intersection between the client's
// conditions and the provider's specializations. Conditions are compared
// against specializations directly; a condition-to-specialization taxonomy
// is an extension seam, not part of the base algorithm.
type specializationCalculator struct{}

func (specializationCalculator) Name() string { return entities.FactorSpecializationMatch }

func (specializationCalculator) Description() string {
	return "Overlap between the client's conditions and the provider's specializations"
}

func (specializationCalculator) Calculate(provider *entities.Provider, criteria *entities.MatchCriteria) *entities.MatchFactor {
	if len(criteria.Conditions) == 0 {
		return nil
	}

	specs := make(map[string]struct{}, len(provider.Specializations))
	for _, s := range provider.Specializations {
		specs[strings.ToLower(s)] = struct{}{}
	}

	matched := 0
	for _, condition := range criteria.Conditions {
		if _, ok := specs[strings.ToLower(condition)]; ok {
			matched++
		}
	}

	return &entities.MatchFactor{
		Name:        entities.FactorSpecializationMatch,
		Score:       float64(matched) / float64(len(criteria.Conditions)),
		Description: fmt.Sprintf("Provider specializes in %d of %d listed conditions", matched, len(criteria.Conditions)),
	}
}

// experienceCalculator blends average rating and review volume, with rating
// dominating: 0.6*normalize(rating,1,5) + 0.4*normalize(reviews,0,100).
type experienceCalculator struct{}

func (experienceCalculator) Name() string { return entities.FactorExperience }

func (experienceCalculator) Description() string {
	return "Provider track record from average rating and review volume"
}

func (experienceCalculator) Calculate(provider *entities.Provider, criteria *entities.MatchCriteria) *entities.MatchFactor {
	score := 0.6*normalize(provider.Rating, 1, 5) + 0.4*normalize(float64(provider.ReviewCount), 0, 100)

	return &entities.MatchFactor{
		Name:        entities.FactorExperience,
		Score:       score,
		Description: fmt.Sprintf("Rated %.1f across %d reviews", provider.Rating, provider.ReviewCount),
	}
}

// insuranceCalculator is a binary check on the client's insurance identifier
type insuranceCalculator struct{}

func (insuranceCalculator) Name() string { return entities.FactorInsurance }

func (insuranceCalculator) Description() string {
	return "Whether the provider accepts the client's insurance"
}

func (insuranceCalculator) Calculate(provider *entities.Provider, criteria *entities.MatchCriteria) *entities.MatchFactor {
	if criteria.Insurance == "" {
		return nil
	}

	score := 0.0
	desc := fmt.Sprintf("Provider does not accept %s", criteria.Insurance)
	if provider.AcceptsInsurance(criteria.Insurance) {
		score = 1.0
		desc = fmt.Sprintf("Provider accepts %s", criteria.Insurance)
	}

	return &entities.MatchFactor{
		Name:        entities.FactorInsurance,
		Score:       score,
		Description: desc,
	}
}

// preferenceCalculator scores the requested gender/language/experience
// preferences. Unspecified preferences are omitted entirely from the
// computation, never scored as neutral; an unmet one contributes zero.
type preferenceCalculator struct{}

func (preferenceCalculator) Name() string { return entities.FactorPreferenceMatch }

func (preferenceCalculator) Description() string {
	return "How many of the client's stated preferences the provider satisfies"
}

func (preferenceCalculator) Calculate(provider *entities.Provider, criteria *entities.MatchCriteria) *entities.MatchFactor {
	requested := 0
	met := 0

	if criteria.GenderPreference != "" {
		requested++
		if strings.EqualFold(provider.Gender, criteria.GenderPreference) {
			met++
		}
	}
	if criteria.LanguagePreference != "" {
		requested++
		if provider.SpeaksLanguage(criteria.LanguagePreference) {
			met++
		}
	}
	if criteria.MinYearsExperience > 0 {
		requested++
		if provider.YearsExperience >= criteria.MinYearsExperience {
			met++
		}
	}

	if requested == 0 {
		return nil
	}

	return &entities.MatchFactor{
		Name:        entities.FactorPreferenceMatch,
		Score:       float64(met) / float64(requested),
		Description: fmt.Sprintf("Provider satisfies %d of %d stated preferences", met, requested),
	}
}
