package services

import (
	"context"
	"sort"
	"sync"

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
	domainproviders "github.com/zatekoja/Careprovidermatching/internal/domain/providers"
	"github.com/zatekoja/Careprovidermatching/internal/domain/repositories"
	"github.com/zatekoja/Careprovidermatching/internal/infrastructure/observability"
	"github.com/zatekoja/Careprovidermatching/pkg/config"
	apperrors "github.com/zatekoja/Careprovidermatching/pkg/errors"
)

// MatchingService orchestrates a matching request: validate the criteria,
// load and hard-filter candidates, score each survivor, optionally enhance,
// then rank. Matching never mutates the records it reads.
type MatchingService struct {
	providerRepo     repositories.ProviderRepository
	coverageRepo     repositories.CoverageAreaRepository
	availabilityRepo repositories.AvailabilityRepository
	scorer           *CompatibilityScorer
	enhancer         domainproviders.EnhancementProvider
	cfg              config.MatchingConfig
}

// NewMatchingService creates a matching service. enhancer may be nil, in
// which case the enhancement step is skipped entirely.
func NewMatchingService(
	providerRepo repositories.ProviderRepository,
	coverageRepo repositories.CoverageAreaRepository,
	availabilityRepo repositories.AvailabilityRepository,
	scorer *CompatibilityScorer,
	enhancer domainproviders.EnhancementProvider,
	cfg config.MatchingConfig,
) *MatchingService {
	return &MatchingService{
		providerRepo:     providerRepo,
		coverageRepo:     coverageRepo,
		availabilityRepo: availabilityRepo,
		scorer:           scorer,
		enhancer:         enhancer,
		cfg:              cfg,
	}
}

// FactorCatalog exposes the scorer's weight table for explainability
func (s *MatchingService) FactorCatalog() []entities.FactorCatalogEntry {
	return s.scorer.Catalog()
}

// MatchProviders runs a full matching request and returns candidates ranked
// by compatibility score (descending, ties broken by provider ID). An empty
// list is a valid result when nothing passes the hard filters.
func (s *MatchingService) MatchProviders(ctx context.Context, criteria *entities.MatchCriteria) ([]*entities.ProviderMatch, error) {
	if criteria == nil {
		return nil, apperrors.NewInvalidCriteriaError("criteria are required")
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	logger := observability.LoggerFromContext(ctx)

	candidates, err := s.loadCandidates(ctx, criteria)
	if err != nil {
		return nil, err
	}

	survivors := make([]*entities.ProviderMatch, 0, len(candidates))
	for _, provider := range candidates {
		match, pass, err := s.applyHardFilters(ctx, provider, criteria)
		if err != nil {
			return nil, err
		}
		if pass {
			survivors = append(survivors, match)
		}
	}

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("after_filters", len(survivors)).
		Str("client_id", criteria.ClientID).
		Msg("hard filters applied")

	s.scoreCandidates(survivors, criteria)

	if s.enhancer != nil && s.cfg.EnhancementEnabled {
		s.enhanceMatches(ctx, survivors, criteria)
	}

	// Buffer-then-sort: ordering depends only on scores, never on the
	// completion order of concurrent work.
	sort.Slice(survivors, func(i, j int) bool {
		if survivors[i].CompatibilityScore != survivors[j].CompatibilityScore {
			return survivors[i].CompatibilityScore > survivors[j].CompatibilityScore
		}
		return survivors[i].Provider.ID < survivors[j].Provider.ID
	})

	return survivors, nil
}

// loadCandidates retrieves providers offering at least one required service
// type, deduplicated across types. When the criteria carry a location and
// radius, a bounding box lets the repository prune far-away providers before
// exact distance checks run.
func (s *MatchingService) loadCandidates(ctx context.Context, criteria *entities.MatchCriteria) ([]*entities.Provider, error) {
	filter := repositories.ProviderFilter{Limit: s.cfg.CandidateLimit}
	if criteria.Center != nil && criteria.RadiusMiles > 0 {
		box, err := entities.NewBoundingBox(*criteria.Center, criteria.RadiusMiles)
		if err != nil {
			return nil, err
		}
		filter.BoundingBox = &box
	}

	seen := make(map[string]struct{})
	var candidates []*entities.Provider
	for _, serviceType := range criteria.ServiceTypes {
		providers, err := s.providerRepo.FindByServiceType(ctx, serviceType, filter)
		if err != nil {
			return nil, apperrors.NewExternalError("provider repository unavailable", err)
		}
		for _, p := range providers {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			candidates = append(candidates, p)
		}
	}
	return candidates, nil
}

// applyHardFilters runs the pass/fail preconditions for one candidate.
// Failing candidates are excluded before scoring, never scored.
func (s *MatchingService) applyHardFilters(ctx context.Context, provider *entities.Provider, criteria *entities.MatchCriteria) (*entities.ProviderMatch, bool, error) {
	match := &entities.ProviderMatch{Provider: provider}

	if criteria.Center != nil && criteria.RadiusMiles > 0 {
		dist, err := entities.Distance(*criteria.Center, provider.Location)
		if err != nil {
			return nil, false, err
		}
		match.DistanceMiles = dist
		if dist > criteria.RadiusMiles {
			return nil, false, nil
		}

		areas, err := s.coverageRepo.FindByProvider(ctx, provider.ID)
		if err != nil {
			return nil, false, apperrors.NewExternalError("coverage area repository unavailable", err)
		}
		covered := false
		for _, area := range areas {
			contains, err := area.Contains(*criteria.Center, criteria.PostalCode)
			if err != nil {
				return nil, false, err
			}
			if contains {
				covered = true
				break
			}
		}
		if !covered {
			return nil, false, nil
		}
	}

	if criteria.AvailabilityWindow != nil {
		var slots []entities.AvailabilitySlot
		for _, serviceType := range criteria.ServiceTypes {
			found, err := s.availabilityRepo.FindAvailableSlots(ctx, provider.ID, *criteria.AvailabilityWindow, serviceType)
			if err != nil {
				return nil, false, apperrors.NewExternalError("availability repository unavailable", err)
			}
			slots = append(slots, found...)
		}
		if len(slots) == 0 {
			return nil, false, nil
		}
		match.AvailableSlots = slots
	}

	if criteria.Insurance != "" && !provider.AcceptsInsurance(criteria.Insurance) {
		return nil, false, nil
	}

	return match, true, nil
}

// scoreCandidates computes the deterministic compatibility score for every
// survivor concurrently. Each goroutine reads only its own provider record
// and the shared read-only criteria, so no synchronization is needed beyond
// the wait.
func (s *MatchingService) scoreCandidates(matches []*entities.ProviderMatch, criteria *entities.MatchCriteria) {
	var wg sync.WaitGroup
	for _, match := range matches {
		wg.Add(1)
		go func(m *entities.ProviderMatch) {
			defer wg.Done()
			m.CompatibilityScore, m.MatchFactors = s.scorer.Score(m.Provider, criteria)
		}(match)
	}
	wg.Wait()
}

// enhanceMatches runs the enhancement collaborator for each candidate with
// bounded concurrency and a per-call timeout. Failures are independent per
// candidate: the deterministic score and factor list stand unmodified.
func (s *MatchingService) enhanceMatches(ctx context.Context, matches []*entities.ProviderMatch, criteria *entities.MatchCriteria) {
	logger := observability.LoggerFromContext(ctx)

	maxInFlight := s.cfg.MaxInFlightEnhancement
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	sem := make(chan struct{}, maxInFlight)

	var wg sync.WaitGroup
	for _, match := range matches {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(m *entities.ProviderMatch) {
			defer wg.Done()
			defer func() { <-sem }()

			callCtx := ctx
			if s.cfg.EnhancementTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, s.cfg.EnhancementTimeout)
				defer cancel()
			}

			enhancement, err := s.enhancer.EnhanceMatch(callCtx, &domainproviders.EnhancementRequest{
				Criteria:    criteria,
				Provider:    m.Provider,
				BaseScore:   m.CompatibilityScore,
				BaseFactors: m.MatchFactors,
			})
			if err != nil {
				logger.Warn().
					Err(err).
					Str("provider_id", m.Provider.ID).
					Msg("match enhancement failed, using deterministic score")
				return
			}

			m.CompatibilityScore, m.MatchFactors = s.scorer.ApplyEnhancement(m.MatchFactors, enhancement)
			confidence := enhancement.Confidence
			if confidence.Level == "" {
				confidence.Level = entities.ConfidenceLevelFor(confidence.Score)
			}
			m.Confidence = &confidence
		}(match)
	}
	wg.Wait()
}
