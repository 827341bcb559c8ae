package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/zatekoja/Careprovidermatching/internal/application/services"
	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
)

// CoverageAreaHandler handles coverage area management requests
type CoverageAreaHandler struct {
	service *services.CoverageAreaService
}

// NewCoverageAreaHandler creates a new coverage area handler
func NewCoverageAreaHandler(service *services.CoverageAreaService) *CoverageAreaHandler {
	return &CoverageAreaHandler{service: service}
}

type createCoverageAreaRequest struct {
	Center      entities.GeoPoint `json:"center"`
	RadiusMiles float64           `json:"radius_miles"`
	PostalCodes []string          `json:"postal_codes,omitempty"`
}

// CreateCoverageArea handles POST /api/providers/{id}/coverage-areas
func (h *CoverageAreaHandler) CreateCoverageArea(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("id")
	if providerID == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}

	var req createCoverageAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	area, err := h.service.Create(r.Context(), providerID, req.Center, req.RadiusMiles, req.PostalCodes)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, area)
}

// ListCoverageAreas handles GET /api/providers/{id}/coverage-areas
func (h *CoverageAreaHandler) ListCoverageAreas(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("id")
	if providerID == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}

	areas, err := h.service.ListByProvider(r.Context(), providerID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"coverage_areas": areas,
		"count":          len(areas),
	})
}

// UpdateCenter handles PATCH /api/coverage-areas/{id}/center
func (h *CoverageAreaHandler) UpdateCenter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "coverage area ID is required")
		return
	}

	var center entities.GeoPoint
	if err := json.NewDecoder(r.Body).Decode(&center); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	area, err := h.service.UpdateCenter(r.Context(), id, center)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, area)
}

type updateRadiusRequest struct {
	RadiusMiles float64 `json:"radius_miles"`
}

// UpdateRadius handles PATCH /api/coverage-areas/{id}/radius
func (h *CoverageAreaHandler) UpdateRadius(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "coverage area ID is required")
		return
	}

	var req updateRadiusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	area, err := h.service.UpdateRadius(r.Context(), id, req.RadiusMiles)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, area)
}

type postalCodeRequest struct {
	Code string `json:"code"`
}

// AddPostalCode handles POST /api/coverage-areas/{id}/postal-codes
func (h *CoverageAreaHandler) AddPostalCode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "coverage area ID is required")
		return
	}

	var req postalCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	area, added, err := h.service.AddPostalCode(r.Context(), id, req.Code)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"coverage_area": area,
		"added":         added,
	})
}

// RemovePostalCode handles DELETE /api/coverage-areas/{id}/postal-codes/{code}
func (h *CoverageAreaHandler) RemovePostalCode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	code := r.PathValue("code")
	if id == "" || code == "" {
		respondWithError(w, http.StatusBadRequest, "coverage area ID and postal code are required")
		return
	}

	area, removed, err := h.service.RemovePostalCode(r.Context(), id, code)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"coverage_area": area,
		"removed":       removed,
	})
}
