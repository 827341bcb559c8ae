package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zatekoja/Careprovidermatching/internal/application/services"
	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
	"github.com/zatekoja/Careprovidermatching/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/Careprovidermatching/pkg/errors"
)

// MatchHandler handles matching requests
type MatchHandler struct {
	service *services.MatchingService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(service *services.MatchingService) *MatchHandler {
	return &MatchHandler{service: service}
}

// MatchProviders handles POST /api/matches
func (h *MatchHandler) MatchProviders(w http.ResponseWriter, r *http.Request) {
	var criteria entities.MatchCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	matches, err := h.service.MatchProviders(r.Context(), &criteria)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("matching request failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// GetFactorCatalog handles GET /api/matches/factors
func (h *MatchHandler) GetFactorCatalog(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"factors": h.service.FactorCatalog(),
	})
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.GetLogger().Error().Err(err).Msg("failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{"error": message})
}

func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeConflict:
		respondWithError(w, http.StatusConflict, appErr.Message)
	case apperrors.ErrorTypeExternal:
		respondWithError(w, http.StatusBadGateway, appErr.Message)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
