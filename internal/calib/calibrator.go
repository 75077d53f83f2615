// Package calib implements the step-by-step gesture calibration protocol
// that turns raw hand measurements into per-user classifier thresholds.
package calib

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayusman/hasta/internal/detector"
)

// Calibration gesture names, in protocol order.
const (
	StepOpenHand = "open_hand"
	StepFist     = "fist"
	StepPinch    = "pinch"
	StepPointing = "pointing"
	StepVictory  = "victory"
)

// Steps lists the calibration gestures in the order the user performs them.
var Steps = []string{StepOpenHand, StepFist, StepPinch, StepPointing, StepVictory}

// Snapshot is the measurement captured for one calibration step, taken from
// the first valid frame seen while that step is active.
type Snapshot struct {
	HandSize     float64
	Landmarks    []detector.Landmark
	FingerStates map[string]bool
	Timestamp    time.Time
}

// Progress describes the step the protocol is currently waiting on.
// Step is 1-based for display.
type Progress struct {
	Step    int    `json:"step"`
	Total   int    `json:"total_steps"`
	Gesture string `json:"gesture"`
	Message string `json:"message"`
}

// Status is the live feedback reported for every processed frame while a
// step is active, whether or not a snapshot was stored.
type Status struct {
	Progress
	HandSize float64 `json:"hand_size"`
	Fraction float64 `json:"progress"`
}

// Result is produced by the terminal Advance call. Thresholds is nil when
// derivation failed; BaseHandSize still carries the open-hand measurement
// when one was captured.
type Result struct {
	Complete     bool          `json:"complete"`
	Message      string        `json:"message"`
	BaseHandSize float64       `json:"base_hand_size"`
	Thresholds   *ThresholdSet `json:"thresholds,omitempty"`
}

// Calibrator walks a hand through the five-gesture calibration protocol,
// capturing one Snapshot per step and deriving a ThresholdSet on
// completion. A Calibrator serves one hand; it is not safe for concurrent
// use and callers at goroutine boundaries must synchronize around it.
type Calibrator struct {
	currentStep int
	snapshots   map[string]Snapshot
	calibrating bool
	complete    bool

	// thresholds is nil until calibration completes successfully.
	thresholds *ThresholdSet
}

// New creates an idle Calibrator.
func New() *Calibrator {
	return &Calibrator{
		snapshots: make(map[string]Snapshot),
	}
}

// Start begins a calibration run, discarding any previous snapshots and
// derived thresholds.
func (c *Calibrator) Start() Progress {
	c.snapshots = make(map[string]Snapshot)
	c.currentStep = 0
	c.calibrating = true
	c.complete = false
	c.thresholds = nil

	return c.progress()
}

// Calibrating reports whether a run is in progress.
func (c *Calibrator) Calibrating() bool {
	return c.calibrating
}

// Complete reports whether the last run finished.
func (c *Calibrator) Complete() bool {
	return c.complete
}

// CurrentStep returns the 0-based index of the active step.
func (c *Calibrator) CurrentStep() int {
	return c.currentStep
}

// Thresholds returns the derived threshold set, or nil before a successful
// completion.
func (c *Calibrator) Thresholds() *ThresholdSet {
	return c.thresholds
}

// Process feeds one frame's landmarks into the active step. The first valid
// frame of each step is captured as that step's Snapshot; later frames in
// the same step never overwrite it but still report live hand size for UI
// feedback. Returns nil when no run is active or the landmarks are empty.
func (c *Calibrator) Process(lm []detector.Landmark) *Status {
	if !c.calibrating || len(lm) == 0 {
		return nil
	}

	step := Steps[c.currentStep]
	handSize := detector.HandSize(lm)

	if _, exists := c.snapshots[step]; !exists {
		snapshot := Snapshot{
			HandSize:     handSize,
			Landmarks:    make([]detector.Landmark, len(lm)),
			FingerStates: detector.FingerStates(lm),
			Timestamp:    time.Now(),
		}
		copy(snapshot.Landmarks, lm)
		c.snapshots[step] = snapshot
	}

	return &Status{
		Progress: c.progress(),
		HandSize: handSize,
		Fraction: float64(c.currentStep+1) / float64(len(Steps)),
	}
}

// Advance moves the protocol to the next gesture. On any step but the last
// it returns the next step's Progress and a nil Result. On the last step it
// ends the run, derives the thresholds and returns the Result; the returned
// Progress is zero in that case.
func (c *Calibrator) Advance() (Progress, *Result) {
	if c.currentStep < len(Steps)-1 {
		c.currentStep++
		return c.progress(), nil
	}

	c.calibrating = false
	c.complete = true

	baseHandSize := 0.0
	if base, ok := c.snapshots[StepOpenHand]; ok {
		baseHandSize = base.HandSize
	}

	thresholds, err := DeriveThresholds(c.snapshots)
	if err != nil {
		return Progress{}, &Result{
			Complete:     true,
			Message:      fmt.Sprintf("Calibration failed: %v", err),
			BaseHandSize: baseHandSize,
		}
	}

	c.thresholds = thresholds
	return Progress{}, &Result{
		Complete:     true,
		Message:      fmt.Sprintf("Calibration complete! Hand size: %.1f", thresholds.BaseHandSize),
		BaseHandSize: thresholds.BaseHandSize,
		Thresholds:   thresholds,
	}
}

// Snapshot returns the captured snapshot for a step name.
func (c *Calibrator) Snapshot(step string) (Snapshot, bool) {
	s, ok := c.snapshots[step]
	return s, ok
}

// Reset returns the Calibrator to idle from any state, discarding all
// snapshots and any derived threshold set.
func (c *Calibrator) Reset() {
	c.snapshots = make(map[string]Snapshot)
	c.currentStep = 0
	c.calibrating = false
	c.complete = false
	c.thresholds = nil
}

func (c *Calibrator) progress() Progress {
	gesture := Steps[c.currentStep]
	return Progress{
		Step:    c.currentStep + 1,
		Total:   len(Steps),
		Gesture: gesture,
		Message: fmt.Sprintf("Step %d/%d: Show %s", c.currentStep+1, len(Steps), displayName(gesture)),
	}
}

// displayName turns a step name into its prompt form, e.g. "open_hand"
// becomes "OPEN HAND".
func displayName(step string) string {
	return strings.ToUpper(strings.ReplaceAll(step, "_", " "))
}
