package app

import (
	"log"
	"time"

	"github.com/ayusman/hasta/internal/detector"
	"github.com/ayusman/hasta/internal/plugin"
	"github.com/ayusman/hasta/internal/track"
)

// runPipeline is the main tracking loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (idleFPS=5)
// 2. On motion detected, switch to active mode (activeFPS=15)
// 3. Run hand detection
// 4. Feed the primary hand into the tracking session (smoothing + stability)
// 5. Feed landmarks into the calibrator while a run is in progress
// 6. Fire hand.stable plugin events on stability transitions
// 7. After 2s no motion, switch back to idle mode
func (a *App) runPipeline() {
	// Track whether we're in active mode
	activeMode := false

	// Track the last motion detection time
	lastMotionTime := time.Now()

	// Frame interval based on current FPS
	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	width, height := a.camera.FrameSize()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			// Skip processing if tracking is disabled
			if !a.IsEnabled() {
				continue
			}

			// Read a frame from the camera
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				// Switch to active mode if not already
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				// Check if we should switch back to idle mode
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Skip further processing if not in active mode or no detector
			if !activeMode || a.detector == nil {
				frame.Close()
				continue
			}

			// Step 2: Hand detection
			hands, err := a.detector.Detect(frame)
			frame.Close() // Done with the frame

			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			a.Observe(hands, width, height)
		}
	}
}

// Observe feeds one frame's detection result into the tracking session and,
// while a run is in progress, the calibrator. The primary hand is the first
// one the detector reports.
func (a *App) Observe(hands []detector.Hand, width, height int) {
	a.mu.Lock()

	wasStable := a.wasStable

	if len(hands) == 0 {
		a.session.Observe(nil, width, height)
		a.wasStable = false
		if a.calibrator.Calibrating() {
			a.calibStatus = nil
		}
		a.mu.Unlock()
		return
	}

	landmarks := hands[0].Landmarks

	// Step 3: Smoothing and stability tracking
	a.session.Observe(landmarks, width, height)
	stable := a.session.StabilityScore() == 100
	a.wasStable = stable

	// Step 4: Calibration capture
	if a.calibrator.Calibrating() {
		a.calibStatus = a.calibrator.Process(landmarks)
	}

	score := a.session.StabilityScore()
	poi, hasPOI := a.session.PointOfInterest()
	a.mu.Unlock()

	// Step 5: Edge-triggered stability event
	if stable && !wasStable {
		payload := stablePayload{Stability: score}
		if hasPOI {
			payload.Pointer = &poi
		}
		a.notifyPlugins(plugin.EventHandStable, payload)
	}
}

// stablePayload is the hand.stable event payload.
type stablePayload struct {
	Stability int          `json:"stability"`
	Pointer   *track.Point `json:"pointer,omitempty"`
}
