package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
)

func TestCompatibilityScorer_Score(t *testing.T) {
	scorer := NewCompatibilityScorer(nil, 25)

	t.Run("weighted mean over applicable factors only", func(t *testing.T) {
		provider := testProvider()
		criteria := &entities.MatchCriteria{
			ServiceTypes: []string{"physical_therapy"},
			Insurance:    "Cigna",
		}

		score, factors := scorer.Score(provider, criteria)

		// Only service match, experience, and insurance apply: no center,
		// no conditions, no stated preferences.
		require.Len(t, factors, 3)
		names := make([]string, 0, len(factors))
		for _, f := range factors {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{
			entities.FactorServiceMatch,
			entities.FactorExperience,
			entities.FactorInsurance,
		}, names)

		// (1.0*0.8 + 0.68*0.5 + 1.0*0.4) / (0.8 + 0.5 + 0.4)
		assert.InDelta(t, 0.9059, score, 0.001)
	})

	t.Run("score stays within the unit interval", func(t *testing.T) {
		provider := testProvider()
		provider.Rating = 5
		provider.ReviewCount = 500
		criteria := &entities.MatchCriteria{
			ServiceTypes: []string{"physical_therapy", "nursing"},
			Insurance:    "Aetna",
			Conditions:   []string{"diabetes"},
		}

		score, _ := scorer.Score(provider, criteria)
		assert.LessOrEqual(t, score, 1.0)
		assert.GreaterOrEqual(t, score, 0.0)
	})

	t.Run("no applicable factors yields zero", func(t *testing.T) {
		// Experience always applies, so zero the inputs that feed it.
		provider := testProvider()
		provider.Rating = 0
		provider.ReviewCount = 0

		score, factors := scorer.Score(provider, &entities.MatchCriteria{})
		require.Len(t, factors, 1)
		assert.Equal(t, 0.0, score)
	})

	t.Run("custom weight table", func(t *testing.T) {
		custom := NewCompatibilityScorer(FactorWeights{
			entities.FactorServiceMatch: 1.0,
			entities.FactorInsurance:    0.0,
		}, 25)
		provider := testProvider()
		provider.Rating = 0
		provider.ReviewCount = 0

		score, _ := custom.Score(provider, &entities.MatchCriteria{
			ServiceTypes: []string{"physical_therapy"},
			Insurance:    "UnitedHealth",
		})
		// Insurance mismatch carries zero weight; experience keeps the
		// default weight but scores zero at the floor.
		// (1.0*1.0 + 0*0.5 + 0*0) / (1.0 + 0.5 + 0)
		assert.InDelta(t, 1.0/1.5, score, 0.001)
	})
}

func TestCompatibilityScorer_ApplyEnhancement(t *testing.T) {
	scorer := NewCompatibilityScorer(nil, 25)

	base := []entities.MatchFactor{
		{Name: entities.FactorServiceMatch, Score: 1.0, Weight: 0.8},
	}
	enhancement := &entities.MatchEnhancement{
		Factors: []entities.MatchFactor{
			{Name: "care_plan_fit", Score: 0.5},
		},
	}

	score, combined := scorer.ApplyEnhancement(base, enhancement)

	require.Len(t, combined, 2)
	assert.Equal(t, defaultUnknownWeight, combined[1].Weight, "unknown factor names take the default weight")
	// (1.0*0.8 + 0.5*0.5) / (0.8 + 0.5)
	assert.InDelta(t, 0.8077, score, 0.001)
}

func TestCompatibilityScorer_Catalog(t *testing.T) {
	scorer := NewCompatibilityScorer(nil, 25)
	catalog := scorer.Catalog()

	require.Len(t, catalog, 6)
	byName := make(map[string]entities.FactorCatalogEntry, len(catalog))
	for _, entry := range catalog {
		assert.NotEmpty(t, entry.Description)
		byName[entry.Name] = entry
	}
	assert.Equal(t, 0.8, byName[entities.FactorServiceMatch].Weight)
	assert.Equal(t, 0.3, byName[entities.FactorPreferenceMatch].Weight)
}
