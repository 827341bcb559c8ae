package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zatekoja/Careprovidermatching/internal/adapters/cache"
	"github.com/zatekoja/Careprovidermatching/internal/adapters/database"
	"github.com/zatekoja/Careprovidermatching/internal/api/handlers"
	"github.com/zatekoja/Careprovidermatching/internal/api/routes"
	"github.com/zatekoja/Careprovidermatching/internal/application/services"
	domainproviders "github.com/zatekoja/Careprovidermatching/internal/domain/providers"
	"github.com/zatekoja/Careprovidermatching/internal/domain/repositories"
	"github.com/zatekoja/Careprovidermatching/internal/infrastructure/clients/openai"
	"github.com/zatekoja/Careprovidermatching/internal/infrastructure/clients/postgres"
	redisclient "github.com/zatekoja/Careprovidermatching/internal/infrastructure/clients/redis"
	"github.com/zatekoja/Careprovidermatching/internal/infrastructure/observability"
	"github.com/zatekoja/Careprovidermatching/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry is optional; a missing endpoint just means no tracing
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized")

	// Redis is optional; the engine works without caching
	var cacheProvider domainproviders.CacheProvider
	redisConn, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, running without cache")
	} else {
		defer redisConn.Close()
		cacheProvider = cache.NewRedisAdapter(redisConn)
		logger.Info().Msg("Redis client initialized")
	}

	var providerRepo repositories.ProviderRepository = database.NewProviderAdapter(pgClient)
	var coverageRepo repositories.CoverageAreaRepository = database.NewCoverageAreaAdapter(pgClient)
	availabilityRepo := database.NewAvailabilityAdapter(pgClient)

	if cacheProvider != nil {
		providerRepo = database.NewCachedProviderAdapter(providerRepo, cacheProvider)
		coverageRepo = database.NewCachedCoverageAreaAdapter(coverageRepo, cacheProvider)
		logger.Info().Msg("repositories wrapped with caching layer")
	}

	// Enhancement is optional; without an API key the deterministic score stands alone
	var enhancer domainproviders.EnhancementProvider
	if cfg.Matching.EnhancementEnabled {
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			logger.Warn().Err(err).Msg("enhancement enabled but OpenAI client unavailable, matching will be deterministic only")
		} else {
			enhancer = client
			logger.Info().Str("model", cfg.OpenAI.Model).Msg("match enhancement enabled")
		}
	}

	scorer := services.NewCompatibilityScorer(services.DefaultFactorWeights(), cfg.Matching.PreferredDistanceMiles)
	matchingService := services.NewMatchingService(providerRepo, coverageRepo, availabilityRepo, scorer, enhancer, cfg.Matching)
	coverageService := services.NewCoverageAreaService(coverageRepo)

	router := routes.NewRouter(
		handlers.NewMatchHandler(matchingService),
		handlers.NewCoverageAreaHandler(coverageService),
		metrics,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server stopped")
}
