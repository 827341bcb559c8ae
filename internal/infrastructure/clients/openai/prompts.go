package openai

import (
	"encoding/json"
	"fmt"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
	"github.com/zatekoja/Careprovidermatching/internal/domain/providers"
)

const matchEnhancementSystemPrompt = `You are a care coordination assistant evaluating how well a care provider fits a client's needs beyond the deterministic factors already computed. Return ONLY valid JSON with this schema:
{
  "factors": [
    {
      "name": string (lowerCamelCase, e.g. "careStyleFit", must not duplicate a base factor name),
      "score": number in [0,1],
      "description": string (one short sentence explaining the score)
    }
  ] (0-3 items),
  "confidence": {
    "score": number in [0,100] (how confident you are in these supplementary factors),
    "factors": string[] (1-4 short reasons for the confidence level)
  }
}
Consider qualitative fit only: communication style, continuity of care, condition familiarity beyond listed specializations. Do not rescore dimensions already present in the base factors. Do not include medical advice.`

type enhancementFactorPayload struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

type enhancementConfidencePayload struct {
	Score   float64  `json:"score"`
	Factors []string `json:"factors"`
}

type enhancementPayload struct {
	Factors    []enhancementFactorPayload    `json:"factors"`
	Confidence *enhancementConfidencePayload `json:"confidence"`
}

type matchPromptBundle struct {
	Criteria    *entities.MatchCriteria `json:"criteria"`
	Provider    *entities.Provider      `json:"provider"`
	BaseScore   float64                 `json:"base_score"`
	BaseFactors []entities.MatchFactor  `json:"base_factors"`
}

func buildMatchUserPrompt(req *providers.EnhancementRequest) (string, error) {
	bundle, err := json.Marshal(matchPromptBundle{
		Criteria:    req.Criteria,
		Provider:    req.Provider,
		BaseScore:   req.BaseScore,
		BaseFactors: req.BaseFactors,
	})
	if err != nil {
		return "", fmt.Errorf("failed to serialize enhancement bundle: %w", err)
	}
	return "Evaluate this candidate match:\n" + string(bundle), nil
}

// parseEnhancementPayload validates the model output. Factors with empty
// names are dropped and scores are clamped to [0,1]; a payload with neither
// usable factors nor a confidence block is an error.
func parseEnhancementPayload(data []byte) (*entities.MatchEnhancement, error) {
	var payload enhancementPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse enhancement payload: %w", err)
	}

	factors := make([]entities.MatchFactor, 0, len(payload.Factors))
	for _, f := range payload.Factors {
		if f.Name == "" {
			continue
		}
		score := f.Score
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		factors = append(factors, entities.MatchFactor{
			Name:        f.Name,
			Score:       score,
			Description: f.Description,
		})
	}

	if len(factors) == 0 && payload.Confidence == nil {
		return nil, fmt.Errorf("enhancement payload contains no usable factors or confidence")
	}

	enhancement := &entities.MatchEnhancement{Factors: factors}
	if payload.Confidence != nil {
		score := payload.Confidence.Score
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		enhancement.Confidence = entities.ConfidenceScore{
			Score:   score,
			Level:   entities.ConfidenceLevelFor(score),
			Factors: payload.Confidence.Factors,
		}
	}
	return enhancement, nil
}
