package services

import (
	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
)

// FactorWeights maps factor names to their weight in the overall score.
// It is injected rather than hard-coded so alternate weightings can be
// substituted without touching scorer internals.
type FactorWeights map[string]float64

// defaultUnknownWeight applies to factor names absent from the table, which
// covers factors contributed by the enhancement collaborator.
const defaultUnknownWeight = 0.5

// DefaultFactorWeights returns the standard weight table
func DefaultFactorWeights() FactorWeights {
	return FactorWeights{
		entities.FactorServiceMatch:        0.8,
		entities.FactorLocationProximity:   0.7,
		entities.FactorSpecializationMatch: 0.6,
		entities.FactorExperience:          0.5,
		entities.FactorInsurance:           0.4,
		entities.FactorPreferenceMatch:     0.3,
	}
}

// weightFor resolves a factor name to its weight, defaulting unknown names
func (w FactorWeights) weightFor(name string) float64 {
	if weight, ok := w[name]; ok {
		return weight
	}
	return defaultUnknownWeight
}

// CompatibilityScorer combines per-dimension factor calculators into a single
// weighted, normalized score plus the itemized factor list.
type CompatibilityScorer struct {
	calculators []FactorCalculator
	weights     FactorWeights
}

// NewCompatibilityScorer creates a scorer over the standard calculator set.
// A nil weights table falls back to the defaults. preferredDistanceMiles is
// the proximity decay distance used when criteria don't specify one.
func NewCompatibilityScorer(weights FactorWeights, preferredDistanceMiles float64) *CompatibilityScorer {
	if weights == nil {
		weights = DefaultFactorWeights()
	}
	return &CompatibilityScorer{
		calculators: []FactorCalculator{
			serviceMatchCalculator{},
			proximityCalculator{defaultPreferredDistance: preferredDistanceMiles},
			specializationCalculator{},
			experienceCalculator{},
			insuranceCalculator{},
			preferenceCalculator{},
		},
		weights: weights,
	}
}

// Score runs every applicable calculator and returns the weighted mean of
// the factor scores along with the factors in calculator order. Candidates
// with fewer applicable factors are not penalized: the denominator is the
// sum of weights of the factors actually present.
func (s *CompatibilityScorer) Score(provider *entities.Provider, criteria *entities.MatchCriteria) (float64, []entities.MatchFactor) {
	factors := make([]entities.MatchFactor, 0, len(s.calculators))
	for _, calc := range s.calculators {
		factor := calc.Calculate(provider, criteria)
		if factor == nil {
			continue
		}
		factor.Weight = s.weights.weightFor(factor.Name)
		factors = append(factors, *factor)
	}

	return weightedMean(factors), factors
}

// ApplyEnhancement appends the collaborator's factors (weighted by the table,
// unknown names get the default) and recomputes the weighted mean over the
// combined list.
func (s *CompatibilityScorer) ApplyEnhancement(factors []entities.MatchFactor, enhancement *entities.MatchEnhancement) (float64, []entities.MatchFactor) {
	combined := make([]entities.MatchFactor, 0, len(factors)+len(enhancement.Factors))
	combined = append(combined, factors...)
	for _, extra := range enhancement.Factors {
		extra.Weight = s.weights.weightFor(extra.Name)
		combined = append(combined, extra)
	}

	return weightedMean(combined), combined
}

// Catalog exposes the fixed weight table with calculator descriptions for
// UI explainability.
func (s *CompatibilityScorer) Catalog() []entities.FactorCatalogEntry {
	catalog := make([]entities.FactorCatalogEntry, 0, len(s.calculators))
	for _, calc := range s.calculators {
		catalog = append(catalog, entities.FactorCatalogEntry{
			Name:        calc.Name(),
			Description: calc.Description(),
			Weight:      s.weights.weightFor(calc.Name()),
		})
	}
	return catalog
}

func weightedMean(factors []entities.MatchFactor) float64 {
	var weightedSum, weightTotal float64
	for _, f := range factors {
		weightedSum += f.Score * f.Weight
		weightTotal += f.Weight
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}
