package track

import "github.com/ayusman/hasta/internal/detector"

// maxStabilityFrames caps the stability counter when converting it to a
// 0-100 score.
const maxStabilityFrames = 10

// Session tracks a single hand across frames. It owns the landmark and
// position smoothing buffers, the stability counter and an optional
// hand-size reference, none of which are shared between hands.
type Session struct {
	landmarks *LandmarkBuffer
	positions *PositionBuffer

	stability int
	width     int
	height    int

	smoothed []detector.Landmark

	// handSizeRef is the calibrated reference hand size, 0 until set.
	handSizeRef float64
}

// NewSession creates a tracking session for one hand.
func NewSession() *Session {
	return &Session{
		landmarks: NewLandmarkBuffer(),
		positions: NewPositionBuffer(),
	}
}

// Calibrate records the hand size of the given full landmark set as the
// session's reference. Partial sets are ignored.
func (s *Session) Calibrate(lm []detector.Landmark) {
	if len(lm) >= detector.NumLandmarks {
		s.handSizeRef = detector.HandSize(lm)
	}
}

// SetHandSizeReference sets the reference hand size directly, for restoring
// a stored calibration. Non-positive values are ignored.
func (s *Session) SetHandSizeReference(size float64) {
	if size > 0 {
		s.handSizeRef = size
	}
}

// HandSizeReference returns the calibrated reference hand size, or 0 when
// no calibration has been recorded.
func (s *Session) HandSizeReference() float64 {
	return s.handSizeRef
}

// NormalizedHandSize returns the ratio of the current smoothed hand size to
// the calibrated reference. ok is false without a reference or without a
// tracked hand.
func (s *Session) NormalizedHandSize() (float64, bool) {
	if s.handSizeRef <= 0 || len(s.smoothed) < 10 {
		return 0, false
	}
	return detector.HandSize(s.smoothed) / s.handSizeRef, true
}

// Observe feeds one frame's raw landmarks into the session and returns the
// smoothed set. Passing an empty set marks a failed detection: the
// stability counter resets and no smoothing update happens.
//
// Each observation clamps the landmarks to the frame bounds, pushes them
// into the landmark window, refreshes the smoothed set, re-evaluates
// stability over the three most recent frames, and advances the tracked
// point of interest (the index fingertip of the smoothed set).
func (s *Session) Observe(lm []detector.Landmark, width, height int) []detector.Landmark {
	if len(lm) == 0 {
		s.stability = 0
		return nil
	}

	s.width = width
	s.height = height

	clamped := make([]detector.Landmark, len(lm))
	for i, l := range lm {
		clamped[i] = detector.Landmark{
			Index: l.Index,
			X:     clampCoord(l.X, width),
			Y:     clampCoord(l.Y, height),
		}
	}
	s.landmarks.Push(clamped)
	s.smoothed = s.landmarks.Smoothed(width, height)

	if s.landmarks.Len() >= stabilityWindow {
		if IsStable(s.landmarks.Recent(stabilityWindow), DefaultStabilityThreshold) {
			s.stability++
		} else if s.stability > 0 {
			s.stability--
		}
	}

	if len(s.smoothed) > detector.IndexTip {
		tip := s.smoothed[detector.IndexTip]
		s.positions.Push(Point{X: tip.X, Y: tip.Y})
	}

	return s.smoothed
}

// Smoothed returns the most recent smoothed landmark set, or nil before the
// first successful observation.
func (s *Session) Smoothed() []detector.Landmark {
	return s.smoothed
}

// PointOfInterest returns the smoothed index fingertip position. ok is
// false before any fingertip has been tracked.
func (s *Session) PointOfInterest() (Point, bool) {
	return s.positions.Smoothed()
}

// HandCenter returns the palm center of the smoothed landmark set.
func (s *Session) HandCenter() (Point, bool) {
	x, y, ok := detector.HandCenter(s.smoothed)
	if !ok {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}

// Stable reports whether the hand currently holds still, judged over the
// three most recent raw frames. Always false before three frames have been
// observed.
func (s *Session) Stable() bool {
	if s.landmarks.Len() < stabilityWindow {
		return false
	}
	return IsStable(s.landmarks.Recent(stabilityWindow), DefaultStabilityThreshold)
}

// IsHandStable reports whether the tracked point of interest holds still,
// judged by coordinate variance over the three most recent positions.
func (s *Session) IsHandStable(threshold float64) bool {
	return positionsStable(s.positions.Recent(stabilityWindow), threshold)
}

// StabilityScore converts the stability counter into a 0-100 score, capped
// at ten consecutive stable frames.
func (s *Session) StabilityScore() int {
	if s.stability == 0 {
		return 0
	}

	frames := s.stability
	if frames > maxStabilityFrames {
		frames = maxStabilityFrames
	}
	return frames * 100 / maxStabilityFrames
}

// Reset clears both smoothing buffers and the stability counter. The
// calibrated hand-size reference survives a reset.
func (s *Session) Reset() {
	s.landmarks.Clear()
	s.positions.Clear()
	s.stability = 0
	s.smoothed = nil
}
