// Package detector provides hand detection interfaces and landmark types for hand tracking.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// FallbackHandSize is reported by HandSize when the landmark set is too short
// to measure, so callers that divide by hand size never see zero.
const FallbackHandSize = 100.0

// Finger names used in finger-state vectors and threshold sets.
const (
	Thumb  = "thumb"
	Index  = "index"
	Middle = "middle"
	Ring   = "ring"
	Pinky  = "pinky"
)

// FingerNames lists the five fingers in anatomical order.
var FingerNames = []string{Thumb, Index, Middle, Ring, Pinky}

// Landmark is one labeled point of a detected hand in pixel coordinates.
// Index identifies the anatomical landmark (0 = wrist, 4/8/12/16/20 = tips).
type Landmark struct {
	Index int `json:"index"`
	X     int `json:"x"`
	Y     int `json:"y"`
}

// Hand represents the landmarks detected for a single hand in one frame.
type Hand struct {
	Landmarks  []Landmark `json:"landmarks"`
	Handedness string     `json:"handedness"` // "Left" or "Right"
	Score      float64    `json:"score"`
}

// Distance calculates the Euclidean distance between two landmarks.
func Distance(a, b Landmark) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// HandSize measures the hand as the distance from the wrist to the middle
// finger MCP. Returns FallbackHandSize when fewer than 10 landmarks are
// present (malformed or partial detection).
func HandSize(lm []Landmark) float64 {
	if len(lm) < 10 {
		return FallbackHandSize
	}
	return Distance(lm[Wrist], lm[MiddleMCP])
}

// PinchDistance returns the distance between the thumb tip and the index
// finger tip. ok is false when the set is too short to measure.
func PinchDistance(lm []Landmark) (float64, bool) {
	if len(lm) < 9 {
		return 0, false
	}
	return Distance(lm[ThumbTip], lm[IndexTip]), true
}

// fingerJoints pairs each finger's tip landmark with its second joint
// (the IP for the thumb, the PIP for the others).
var fingerJoints = []struct {
	name  string
	tip   int
	joint int
}{
	{Thumb, ThumbTip, ThumbIP},
	{Index, IndexTip, IndexPIP},
	{Middle, MiddleTip, MiddlePIP},
	{Ring, RingTip, RingPIP},
	{Pinky, PinkyTip, PinkyPIP},
}

// FingerStates classifies each finger as extended (true) or flexed (false)
// by comparing the tip's vertical position against its second joint: a tip
// above the joint in image coordinates counts as extended.
//
// This is a cheap, orientation-dependent heuristic. It assumes a roughly
// upright hand facing the camera; a rotated or sideways hand will
// misclassify. Fingers whose landmarks are missing are left out of the map.
func FingerStates(lm []Landmark) map[string]bool {
	states := make(map[string]bool, len(fingerJoints))
	for _, f := range fingerJoints {
		if f.tip >= len(lm) || f.joint >= len(lm) {
			continue
		}
		states[f.name] = lm[f.tip].Y < lm[f.joint].Y
	}
	return states
}

// HandCenter returns the palm center, the midpoint between the wrist and the
// middle finger MCP. ok is false when either landmark is missing.
func HandCenter(lm []Landmark) (x, y int, ok bool) {
	if len(lm) < 10 {
		return 0, 0, false
	}
	return (lm[Wrist].X + lm[MiddleMCP].X) / 2, (lm[Wrist].Y + lm[MiddleMCP].Y) / 2, true
}
