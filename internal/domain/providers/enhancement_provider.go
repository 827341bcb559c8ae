package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
)

// ErrEnhancementUnavailable signals that the enhancement collaborator could
// not produce a usable result. It is absorbed by the matching orchestrator's
// fallback and never surfaced to callers.
var ErrEnhancementUnavailable = errors.New("match enhancement unavailable")

// EnhancementRequest bundles everything the collaborator sees for one candidate
type EnhancementRequest struct {
	Criteria    *entities.MatchCriteria
	Provider    *entities.Provider
	BaseScore   float64
	BaseFactors []entities.MatchFactor
}

// EnhancementProvider defines the interface for the optional, best-effort
// text-completion collaborator that supplements deterministic scoring.
type EnhancementProvider interface {
	// EnhanceMatch returns supplementary factors and a confidence score
	// for a single candidate, or an error when the collaborator fails or
	// returns an unusable response.
	EnhanceMatch(ctx context.Context, req *EnhancementRequest) (*entities.MatchEnhancement, error)
}
