package calib

import (
	"errors"

	"github.com/ayusman/hasta/internal/detector"
)

// ErrMissingBaseline is returned when thresholds are derived without an
// open-hand snapshot, the mandatory baseline measurement.
var ErrMissingBaseline = errors.New("missing open hand data")

// Scaling factors relating raw measurements to classifier thresholds.
const (
	// FingerExtensionScale scales the baseline hand size into a
	// per-finger extension threshold.
	FingerExtensionScale = 0.12

	// PinchScale widens the measured pinch distance into a detection
	// threshold.
	PinchScale = 1.5
)

// ThresholdSet is the output of a completed calibration: per-finger
// extension thresholds and a pinch distance threshold, both scaled from the
// user's measured hand.
type ThresholdSet struct {
	// Fingers maps finger name to its extension threshold.
	Fingers map[string]float64 `json:"fingers"`

	// Pinch is the pinch detection threshold; meaningful only when
	// HasPinch is true.
	Pinch    float64 `json:"pinch"`
	HasPinch bool    `json:"has_pinch"`

	// BaseHandSize is the open-hand size the finger thresholds were
	// scaled from.
	BaseHandSize float64 `json:"base_hand_size"`
}

// DeriveThresholds computes a ThresholdSet from the snapshots of a
// completed calibration run. The open_hand snapshot is mandatory; the fist
// snapshot gates which fingers receive a threshold and the pinch snapshot
// contributes the pinch threshold when present.
//
// The fist snapshot's finger states only select fingers by key
// intersection with the open-hand states; how much a finger's state
// differs between the two snapshots is deliberately not consulted.
func DeriveThresholds(snapshots map[string]Snapshot) (*ThresholdSet, error) {
	openHand, ok := snapshots[StepOpenHand]
	if !ok {
		return nil, ErrMissingBaseline
	}

	ts := &ThresholdSet{
		Fingers:      make(map[string]float64),
		BaseHandSize: openHand.HandSize,
	}

	if fist, ok := snapshots[StepFist]; ok {
		for finger := range openHand.FingerStates {
			if _, shared := fist.FingerStates[finger]; shared {
				ts.Fingers[finger] = ts.BaseHandSize * FingerExtensionScale
			}
		}
	}

	if pinch, ok := snapshots[StepPinch]; ok {
		if dist, measurable := detector.PinchDistance(pinch.Landmarks); measurable {
			ts.Pinch = dist * PinchScale
			ts.HasPinch = true
		}
	}

	return ts, nil
}
