package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []Hand
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Preset landmark sets for the five calibration gestures, laid out for a
// right hand in a 640x480 frame. The wrist sits at (320,400) and the middle
// finger MCP at (320,300), giving every preset a hand size of exactly 100.

// makeHand assembles a full 21-landmark set from per-index coordinates.
func makeHand(coords [NumLandmarks][2]int) []Landmark {
	lm := make([]Landmark, NumLandmarks)
	for i, c := range coords {
		lm[i] = Landmark{Index: i, X: c[0], Y: c[1]}
	}
	return lm
}

// OpenHandLandmarks returns a preset landmark set with all five fingers
// extended.
func OpenHandLandmarks() []Landmark {
	return makeHand([NumLandmarks][2]int{
		{320, 400}, // wrist
		{355, 385}, {380, 365}, {400, 345}, {415, 325}, // thumb
		{285, 300}, {280, 250}, {278, 215}, {275, 185}, // index
		{320, 300}, {320, 245}, {320, 205}, {320, 170}, // middle
		{350, 305}, {355, 255}, {357, 220}, {360, 190}, // ring
		{380, 315}, {390, 275}, {395, 245}, {400, 220}, // pinky
	})
}

// FistLandmarks returns a preset landmark set with all fingers curled into
// the palm, every tip below its second joint.
func FistLandmarks() []Landmark {
	return makeHand([NumLandmarks][2]int{
		{320, 400}, // wrist
		{350, 385}, {365, 360}, {360, 340}, {345, 350}, // thumb
		{285, 300}, {282, 270}, {285, 290}, {290, 310}, // index
		{320, 300}, {318, 265}, {318, 290}, {320, 312}, // middle
		{350, 305}, {352, 272}, {352, 295}, {350, 315}, // ring
		{380, 315}, {385, 285}, {383, 305}, {380, 322}, // pinky
	})
}

// PinchLandmarks returns a preset landmark set with the thumb and index
// tips exactly 10 pixels apart.
func PinchLandmarks() []Landmark {
	return makeHand([NumLandmarks][2]int{
		{320, 400}, // wrist
		{350, 380}, {360, 350}, {350, 320}, {332, 296}, // thumb
		{285, 300}, {300, 270}, {322, 290}, {338, 304}, // index
		{320, 300}, {320, 245}, {320, 205}, {320, 170}, // middle
		{350, 305}, {355, 255}, {357, 220}, {360, 190}, // ring
		{380, 315}, {390, 275}, {395, 245}, {400, 220}, // pinky
	})
}

// PointingLandmarks returns a preset landmark set with only the index
// finger extended.
func PointingLandmarks() []Landmark {
	return makeHand([NumLandmarks][2]int{
		{320, 400}, // wrist
		{350, 385}, {362, 365}, {365, 345}, {355, 355}, // thumb
		{285, 300}, {283, 248}, {281, 212}, {280, 180}, // index
		{320, 300}, {318, 262}, {318, 288}, {320, 310}, // middle
		{350, 305}, {352, 270}, {352, 294}, {350, 313}, // ring
		{380, 315}, {385, 283}, {383, 303}, {380, 320}, // pinky
	})
}

// VictoryLandmarks returns a preset landmark set with the index and middle
// fingers extended and the rest curled.
func VictoryLandmarks() []Landmark {
	return makeHand([NumLandmarks][2]int{
		{320, 400}, // wrist
		{350, 385}, {362, 365}, {365, 345}, {355, 355}, // thumb
		{285, 300}, {283, 248}, {281, 212}, {280, 180}, // index
		{320, 300}, {320, 245}, {320, 205}, {320, 170}, // middle
		{350, 305}, {352, 270}, {352, 294}, {350, 313}, // ring
		{380, 315}, {385, 283}, {383, 303}, {380, 320}, // pinky
	})
}
