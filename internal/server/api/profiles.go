// Package api provides HTTP API handlers for the Hasta hand tracking system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/hasta/internal/store"
)

// ProfileHandler handles HTTP requests for calibration profile resources.
type ProfileHandler struct {
	store *store.Store
}

// NewProfileHandler creates a new ProfileHandler with the given store.
func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Parse the path to determine if this is a collection or item request
	// Expected paths: /api/profiles or /api/profiles/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/profiles
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if path == "active" {
		// Active profile endpoint: /api/profiles/active
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.getActive(w, r)
		return
	}

	// Item endpoint: /api/profiles/{id}
	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createProfileRequest struct {
	Name           string             `json:"name"`
	BaseHandSize   float64            `json:"base_hand_size"`
	PinchThreshold float64            `json:"pinch_threshold"`
	HasPinch       bool               `json:"has_pinch"`
	Fingers        map[string]float64 `json:"fingers"`
}

type updateProfileRequest struct {
	Name           string             `json:"name"`
	BaseHandSize   float64            `json:"base_hand_size"`
	PinchThreshold float64            `json:"pinch_threshold"`
	HasPinch       *bool              `json:"has_pinch"`
	Fingers        map[string]float64 `json:"fingers"`
}

type profileResponse struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	BaseHandSize   float64            `json:"base_hand_size"`
	PinchThreshold float64            `json:"pinch_threshold"`
	HasPinch       bool               `json:"has_pinch"`
	Fingers        map[string]float64 `json:"fingers,omitempty"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Profile to a profileResponse.
func toResponse(p *store.Profile) profileResponse {
	return profileResponse{
		ID:             p.ID,
		Name:           p.Name,
		BaseHandSize:   p.BaseHandSize,
		PinchThreshold: p.PinchThreshold,
		HasPinch:       p.HasPinch,
		Fingers:        p.Fingers,
		CreatedAt:      p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/profiles and returns all profiles.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	response := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
	}

	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/profiles/{id} and returns a single profile.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// getActive handles GET /api/profiles/active and returns the active profile.
func (h *ProfileHandler) getActive(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.Settings().Get(store.SettingActiveProfile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No active profile")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get active profile")
		return
	}

	h.get(w, r, id)
}

// create handles POST /api/profiles and creates a new profile.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate required fields
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.BaseHandSize <= 0 {
		writeError(w, http.StatusBadRequest, "base_hand_size must be positive")
		return
	}

	profile := &store.Profile{
		ID:             uuid.New().String(),
		Name:           req.Name,
		BaseHandSize:   req.BaseHandSize,
		PinchThreshold: req.PinchThreshold,
		HasPinch:       req.HasPinch,
		Fingers:        req.Fingers,
	}

	if err := h.store.Profiles().Create(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(profile))
}

// update handles PUT /api/profiles/{id} and updates an existing profile.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	// First, get the existing profile
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Update fields if provided
	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.BaseHandSize != 0 {
		if req.BaseHandSize < 0 {
			writeError(w, http.StatusBadRequest, "base_hand_size must be positive")
			return
		}
		profile.BaseHandSize = req.BaseHandSize
	}
	if req.PinchThreshold != 0 {
		profile.PinchThreshold = req.PinchThreshold
	}
	if req.HasPinch != nil {
		profile.HasPinch = *req.HasPinch
	}
	if req.Fingers != nil {
		profile.Fingers = req.Fingers
	}

	if err := h.store.Profiles().Update(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// delete handles DELETE /api/profiles/{id} and removes a profile.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Profiles().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	// Clear the active profile setting if it pointed at the deleted profile.
	if active, err := h.store.Settings().Get(store.SettingActiveProfile); err == nil && active == id {
		h.store.Settings().Delete(store.SettingActiveProfile)
	}

	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /api/profiles/{id}/activate and marks a profile
// as the active calibration profile.
func (h *ProfileHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/profiles/")
	id := strings.TrimSuffix(path, "/activate")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Profile ID is required")
		return
	}

	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	if err := h.store.Settings().Set(store.SettingActiveProfile, profile.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to activate profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}
