package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/hasta/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "hasta-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// seedProfile inserts a profile directly into the store.
func seedProfile(t *testing.T, s *store.Store, id, name string) *store.Profile {
	t.Helper()

	profile := &store.Profile{
		ID:             id,
		Name:           name,
		BaseHandSize:   187.5,
		PinchThreshold: 42.3,
		HasPinch:       true,
		Fingers:        map[string]float64{"index": 22.5, "middle": 22.5},
	}
	if err := s.Profiles().Create(profile); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return profile
}

func TestProfileHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	seedProfile(t, s, "test-profile-1", "default")

	// Make a GET request to list profiles
	req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	// Verify response
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response listProfilesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Profiles) != 1 {
		t.Errorf("expected 1 profile, got %d", len(response.Profiles))
	}

	if response.Profiles[0].ID != "test-profile-1" {
		t.Errorf("expected profile ID 'test-profile-1', got %q", response.Profiles[0].ID)
	}

	if response.Profiles[0].Name != "default" {
		t.Errorf("expected profile name 'default', got %q", response.Profiles[0].Name)
	}
}

func TestProfileHandler_Create(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	// Create request body
	reqBody := createProfileRequest{
		Name:           "alice",
		BaseHandSize:   200,
		PinchThreshold: 15,
		HasPinch:       true,
		Fingers:        map[string]float64{"index": 24, "middle": 24},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	// Make a POST request to create profile
	req := httptest.NewRequest(http.MethodPost, "/api/profiles", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	// Verify response
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var response profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.ID == "" {
		t.Error("expected non-empty ID in response")
	}

	if response.Name != "alice" {
		t.Errorf("expected name 'alice', got %q", response.Name)
	}

	if response.BaseHandSize != 200 {
		t.Errorf("expected base_hand_size 200, got %f", response.BaseHandSize)
	}

	if response.Fingers["index"] != 24 {
		t.Errorf("expected fingers.index 24, got %f", response.Fingers["index"])
	}

	// Verify the profile was persisted in the store
	created, err := s.Profiles().GetByID(response.ID)
	if err != nil {
		t.Fatalf("failed to get created profile: %v", err)
	}

	if created.Name != "alice" {
		t.Errorf("stored profile name mismatch: got %q, want 'alice'", created.Name)
	}
}

func TestProfileHandler_Create_InvalidJSON(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	// Make a POST request with invalid JSON
	req := httptest.NewRequest(http.MethodPost, "/api/profiles", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestProfileHandler_Create_Invalid(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	tests := []struct {
		name string
		req  createProfileRequest
	}{
		{name: "missing name", req: createProfileRequest{BaseHandSize: 200}},
		{name: "missing hand size", req: createProfileRequest{Name: "alice"}},
		{name: "negative hand size", req: createProfileRequest{Name: "alice", BaseHandSize: -10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.req)

			req := httptest.NewRequest(http.MethodPost, "/api/profiles", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestProfileHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	seedProfile(t, s, "test-profile-1", "default")

	// Make a GET request to get the profile
	req := httptest.NewRequest(http.MethodGet, "/api/profiles/test-profile-1", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.ID != "test-profile-1" {
		t.Errorf("expected ID 'test-profile-1', got %q", response.ID)
	}

	if len(response.Fingers) != 2 {
		t.Errorf("expected 2 finger thresholds, got %d", len(response.Fingers))
	}
}

func TestProfileHandler_Get_NotFound(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/non-existent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProfileHandler_Update(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	seedProfile(t, s, "test-profile-1", "default")

	// Make a PUT request to update the profile
	updateReq := updateProfileRequest{
		Name:         "recalibrated",
		BaseHandSize: 210,
		Fingers:      map[string]float64{"index": 25.2},
	}
	body, _ := json.Marshal(updateReq)

	req := httptest.NewRequest(http.MethodPut, "/api/profiles/test-profile-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Name != "recalibrated" {
		t.Errorf("expected name 'recalibrated', got %q", response.Name)
	}

	if response.BaseHandSize != 210 {
		t.Errorf("expected base_hand_size 210, got %f", response.BaseHandSize)
	}

	// Verify the update was persisted
	updated, _ := s.Profiles().GetByID("test-profile-1")
	if updated.Name != "recalibrated" {
		t.Errorf("stored profile name not updated: got %q", updated.Name)
	}
	if len(updated.Fingers) != 1 {
		t.Errorf("stored finger thresholds not replaced: got %d, want 1", len(updated.Fingers))
	}
}

func TestProfileHandler_Update_NotFound(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	updateReq := updateProfileRequest{
		Name: "updated",
	}
	body, _ := json.Marshal(updateReq)

	req := httptest.NewRequest(http.MethodPut, "/api/profiles/non-existent", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProfileHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	seedProfile(t, s, "test-profile-1", "default")

	// Make a DELETE request
	req := httptest.NewRequest(http.MethodDelete, "/api/profiles/test-profile-1", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	// Verify 204 No Content
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	// Verify the profile is deleted - GET should return 404
	req = httptest.NewRequest(http.MethodGet, "/api/profiles/test-profile-1", nil)
	rec = httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d after delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProfileHandler_Delete_NotFound(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/api/profiles/non-existent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProfileHandler_Activate(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	seedProfile(t, s, "test-profile-1", "default")

	req := httptest.NewRequest(http.MethodPost, "/api/profiles/test-profile-1/activate", nil)
	rec := httptest.NewRecorder()

	handler.Activate(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	active, err := s.Settings().Get(store.SettingActiveProfile)
	if err != nil {
		t.Fatalf("failed to read active profile setting: %v", err)
	}
	if active != "test-profile-1" {
		t.Errorf("active profile = %q, want 'test-profile-1'", active)
	}
}

func TestProfileHandler_Activate_NotFound(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	req := httptest.NewRequest(http.MethodPost, "/api/profiles/non-existent/activate", nil)
	rec := httptest.NewRecorder()

	handler.Activate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProfileHandler_GetActive(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	t.Run("no active profile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profiles/active", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("resolves active profile", func(t *testing.T) {
		seedProfile(t, s, "test-profile-1", "default")
		if err := s.Settings().Set(store.SettingActiveProfile, "test-profile-1"); err != nil {
			t.Fatalf("failed to set active profile: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/profiles/active", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response profileResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.ID != "test-profile-1" {
			t.Errorf("expected ID 'test-profile-1', got %q", response.ID)
		}
	})
}

func TestProfileHandler_MethodNotAllowed(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	// PATCH is not allowed on the collection endpoint
	req := httptest.NewRequest(http.MethodPatch, "/api/profiles", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
