// Package app provides the main application logic for the Hasta hand tracking system.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/hasta/internal/calib"
	"github.com/ayusman/hasta/internal/capture"
	"github.com/ayusman/hasta/internal/detector"
	"github.com/ayusman/hasta/internal/plugin"
	"github.com/ayusman/hasta/internal/store"
	"github.com/ayusman/hasta/internal/track"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active tracking.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	PluginDir    string
	CameraID     int
	MotionThresh float64
}

// App is the main application that orchestrates hand tracking and calibration.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	session    *track.Session
	calibrator *calib.Calibrator
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}

	// calibStatus is the most recent per-frame calibration status.
	calibStatus *calib.Status
	// wasStable tracks the last stability verdict for edge-triggered events.
	wasStable bool

	// onCalibrated, if set, is invoked with the saved profile after a
	// successful calibration run.
	onCalibrated func(*store.Profile)
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionDetector(motionThreshold),
		session:    track.NewSession(),
		calibrator: calib.New(),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(5000), // 5 second timeout for plugin execution
		enabled:    false,
		stopCh:     nil,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables hand tracking.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether hand tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// OnCalibrated registers a callback invoked with the saved profile after a
// successful calibration run.
func (a *App) OnCalibrated(fn func(*store.Profile)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onCalibrated = fn
}

// LoadActiveProfile restores the active calibration profile from the
// database into the tracking session. Missing profiles are not an error.
func (a *App) LoadActiveProfile() error {
	if a.config.Store == nil {
		return nil
	}

	id, err := a.config.Store.Settings().Get(store.SettingActiveProfile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	profile, err := a.config.Store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("Active profile %s no longer exists", id)
			return nil
		}
		return err
	}

	a.mu.Lock()
	a.session.SetHandSizeReference(profile.BaseHandSize)
	a.mu.Unlock()

	log.Printf("Loaded profile %q (hand size %.1f)", profile.Name, profile.BaseHandSize)
	return nil
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start begins the tracking pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	// Open the camera
	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(IdleFPS)

	// Create stop channel and start the pipeline
	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Tracking pipeline started")
	return nil
}

// Stop halts the tracking pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Signal the pipeline to stop
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	// Close the camera
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	// Close motion detector
	a.motion.Close()

	// Close the hand detector if set
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Tracking pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Session returns the primary hand tracking session.
func (a *App) Session() *track.Session {
	return a.session
}

// StabilityScore returns the current stability score of the primary hand.
// Unlike Session, it is safe to call while the pipeline is running.
func (a *App) StabilityScore() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.StabilityScore()
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Calibration control. These methods are safe for concurrent use and back
// the HTTP calibration API.

// StartCalibration begins a new guided calibration run.
func (a *App) StartCalibration() calib.Progress {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calibStatus = nil
	return a.calibrator.Start()
}

// AdvanceCalibration confirms the current step. The terminal call derives
// thresholds, persists them as the active profile and notifies plugins.
func (a *App) AdvanceCalibration() (calib.Progress, *calib.Result) {
	a.mu.Lock()
	progress, result := a.calibrator.Advance()
	a.mu.Unlock()

	if result == nil || result.Thresholds == nil {
		return progress, result
	}

	profile, err := a.saveProfile(result.Thresholds)
	if err != nil {
		log.Printf("Failed to save calibration profile: %v", err)
		return progress, result
	}

	a.mu.RLock()
	fn := a.onCalibrated
	a.mu.RUnlock()
	if fn != nil {
		fn(profile)
	}

	a.notifyPlugins(plugin.EventCalibrationComplete, result.Thresholds)
	return progress, result
}

// ResetCalibration discards any in-progress or completed calibration state.
func (a *App) ResetCalibration() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calibrator.Reset()
	a.calibStatus = nil
}

// CalibrationStatus returns the most recent per-frame calibration status and
// whether a run is in progress.
func (a *App) CalibrationStatus() (*calib.Status, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.calibStatus, a.calibrator.Calibrating()
}

// saveProfile persists a derived threshold set as a new profile and marks it
// active. The tracking session picks up the new hand-size reference.
func (a *App) saveProfile(ts *calib.ThresholdSet) (*store.Profile, error) {
	a.mu.Lock()
	a.session.SetHandSizeReference(ts.BaseHandSize)
	a.mu.Unlock()

	if a.config.Store == nil {
		return nil, nil
	}

	profile := &store.Profile{
		ID:             uuid.New().String(),
		Name:           fmt.Sprintf("calibration-%s", time.Now().Format("20060102-150405")),
		BaseHandSize:   ts.BaseHandSize,
		PinchThreshold: ts.Pinch,
		HasPinch:       ts.HasPinch,
		Fingers:        ts.Fingers,
	}

	if err := a.config.Store.Profiles().Create(profile); err != nil {
		return nil, err
	}
	if err := a.config.Store.Settings().Set(store.SettingActiveProfile, profile.ID); err != nil {
		return nil, err
	}

	log.Printf("Saved calibration profile %q (hand size %.1f)", profile.Name, profile.BaseHandSize)
	return profile, nil
}

// notifyPlugins delivers an event payload to every subscribed plugin.
func (a *App) notifyPlugins(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s payload: %v", event, err)
		return
	}

	for _, p := range a.pluginMgr.Subscribers(event) {
		req := &plugin.Request{
			Event:   event,
			Payload: data,
		}
		if resp, err := a.pluginExec.Execute(p, req); err != nil {
			log.Printf("Plugin %s failed on %s: %v", p.Manifest.Name, event, err)
		} else if !resp.Success {
			log.Printf("Plugin %s rejected %s: %s", p.Manifest.Name, event, resp.Error)
		}
	}
}
