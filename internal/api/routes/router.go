package routes

import (
	"net/http"

	"github.com/zatekoja/Careprovidermatching/internal/api/handlers"
	"github.com/zatekoja/Careprovidermatching/internal/api/middleware"
	"github.com/zatekoja/Careprovidermatching/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	matchHandler        *handlers.MatchHandler
	coverageAreaHandler *handlers.CoverageAreaHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	matchHandler *handlers.MatchHandler,
	coverageAreaHandler *handlers.CoverageAreaHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		matchHandler:        matchHandler,
		coverageAreaHandler: coverageAreaHandler,
		metrics:             metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Matching endpoints
	r.mux.HandleFunc("POST /api/matches", r.matchHandler.MatchProviders)
	r.mux.HandleFunc("GET /api/matches/factors", r.matchHandler.GetFactorCatalog)

	// Coverage area endpoints
	r.mux.HandleFunc("POST /api/providers/{id}/coverage-areas", r.coverageAreaHandler.CreateCoverageArea)
	r.mux.HandleFunc("GET /api/providers/{id}/coverage-areas", r.coverageAreaHandler.ListCoverageAreas)
	r.mux.HandleFunc("PATCH /api/coverage-areas/{id}/center", r.coverageAreaHandler.UpdateCenter)
	r.mux.HandleFunc("PATCH /api/coverage-areas/{id}/radius", r.coverageAreaHandler.UpdateRadius)
	r.mux.HandleFunc("POST /api/coverage-areas/{id}/postal-codes", r.coverageAreaHandler.AddPostalCode)
	r.mux.HandleFunc("DELETE /api/coverage-areas/{id}/postal-codes/{code}", r.coverageAreaHandler.RemovePostalCode)

	// Apply middleware, innermost first
	var handler http.Handler = r.mux
	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
