package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/hasta/internal/calib"
)

// CalibrationController is the subset of the application the calibration
// API needs: starting, advancing and resetting the guided calibration flow,
// and reporting its current state. The application guards these methods
// with its own lock.
type CalibrationController interface {
	StartCalibration() calib.Progress
	AdvanceCalibration() (calib.Progress, *calib.Result)
	ResetCalibration()
	CalibrationStatus() (*calib.Status, bool)
}

// CalibrationHandler handles HTTP requests for the calibration flow.
type CalibrationHandler struct {
	controller CalibrationController
}

// NewCalibrationHandler creates a new CalibrationHandler with the given controller.
func NewCalibrationHandler(c CalibrationController) *CalibrationHandler {
	return &CalibrationHandler{controller: c}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/calibration, /api/calibration/{start|advance|reset}
	path := strings.TrimPrefix(r.URL.Path, "/api/calibration")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.status(w, r)
	case "start":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.start(w, r)
	case "advance":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.advance(w, r)
	case "reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.reset(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// Response types

type progressResponse struct {
	Step    int    `json:"step"`
	Total   int    `json:"total"`
	Gesture string `json:"gesture"`
	Message string `json:"message"`
}

type calibrationStatusResponse struct {
	Calibrating bool              `json:"calibrating"`
	Progress    *progressResponse `json:"progress,omitempty"`
	HandSize    float64           `json:"hand_size,omitempty"`
	Fraction    float64           `json:"fraction,omitempty"`
}

type calibrationResultResponse struct {
	Complete     bool                `json:"complete"`
	Message      string              `json:"message"`
	BaseHandSize float64             `json:"base_hand_size,omitempty"`
	Thresholds   *calib.ThresholdSet `json:"thresholds,omitempty"`
	Progress     *progressResponse   `json:"progress,omitempty"`
}

func toProgressResponse(p calib.Progress) *progressResponse {
	return &progressResponse{
		Step:    p.Step,
		Total:   p.Total,
		Gesture: p.Gesture,
		Message: p.Message,
	}
}

// status handles GET /api/calibration and reports the current flow state.
func (h *CalibrationHandler) status(w http.ResponseWriter, r *http.Request) {
	st, calibrating := h.controller.CalibrationStatus()

	response := calibrationStatusResponse{Calibrating: calibrating}
	if st != nil {
		response.Progress = toProgressResponse(st.Progress)
		response.HandSize = st.HandSize
		response.Fraction = st.Fraction
	}

	writeJSON(w, http.StatusOK, response)
}

// start handles POST /api/calibration/start and begins a new calibration flow.
func (h *CalibrationHandler) start(w http.ResponseWriter, r *http.Request) {
	progress := h.controller.StartCalibration()
	writeJSON(w, http.StatusOK, toProgressResponse(progress))
}

// advance handles POST /api/calibration/advance and moves to the next step.
// On the final step it returns the calibration result instead of a progress
// update.
func (h *CalibrationHandler) advance(w http.ResponseWriter, r *http.Request) {
	progress, result := h.controller.AdvanceCalibration()

	if result != nil {
		writeJSON(w, http.StatusOK, calibrationResultResponse{
			Complete:     result.Complete,
			Message:      result.Message,
			BaseHandSize: result.BaseHandSize,
			Thresholds:   result.Thresholds,
		})
		return
	}

	writeJSON(w, http.StatusOK, calibrationResultResponse{
		Progress: toProgressResponse(progress),
	})
}

// reset handles POST /api/calibration/reset and discards the flow state.
func (h *CalibrationHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.controller.ResetCalibration()
	w.WriteHeader(http.StatusNoContent)
}
