// Package track provides temporal smoothing and stability scoring for
// per-frame hand landmark streams.
package track

import (
	"math"

	"github.com/ayusman/hasta/internal/detector"
)

// BufferSize is the capacity of the smoothing windows. Five frames is
// enough to damp detector jitter without adding visible lag at 15 FPS.
const BufferSize = 5

// Weight range for the moving average. The oldest frame in the window gets
// minWeight and the newest gets maxWeight, biasing the average toward
// recent frames.
const (
	minWeight = 0.3
	maxWeight = 1.0
)

// Point is a single 2D pixel position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// smoothingWeights returns n weights linearly spaced from minWeight to
// maxWeight, normalized to sum to 1 so the average stays well-defined at
// any occupancy.
func smoothingWeights(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}

	step := (maxWeight - minWeight) / float64(n-1)
	var sum float64
	for i := range w {
		w[i] = minWeight + float64(i)*step
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// clampCoord bounds a coordinate to 0..limit-1.
func clampCoord(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit-1 {
		return limit - 1
	}
	return v
}

// LandmarkBuffer is a bounded FIFO window over the most recent landmark
// sets of one hand. Pushing beyond capacity evicts the oldest set.
type LandmarkBuffer struct {
	frames [][]detector.Landmark
}

// NewLandmarkBuffer creates an empty landmark smoothing buffer.
func NewLandmarkBuffer() *LandmarkBuffer {
	return &LandmarkBuffer{
		frames: make([][]detector.Landmark, 0, BufferSize),
	}
}

// Push appends a landmark set to the window.
func (b *LandmarkBuffer) Push(lm []detector.Landmark) {
	if len(b.frames) >= BufferSize {
		copy(b.frames, b.frames[1:])
		b.frames = b.frames[:BufferSize-1]
	}
	b.frames = append(b.frames, lm)
}

// Len returns the current occupancy of the window.
func (b *LandmarkBuffer) Len() int {
	return len(b.frames)
}

// Recent returns the n most recent buffered sets, oldest first. Fewer are
// returned when the window holds fewer.
func (b *LandmarkBuffer) Recent(n int) [][]detector.Landmark {
	if n > len(b.frames) {
		n = len(b.frames)
	}
	return b.frames[len(b.frames)-n:]
}

// Clear empties the window.
func (b *LandmarkBuffer) Clear() {
	b.frames = b.frames[:0]
}

// Smoothed computes the weighted moving average of the buffered landmark
// sets, per landmark index, clamped to the given frame bounds. With a
// single buffered set it is returned unchanged; an empty buffer yields nil.
func (b *LandmarkBuffer) Smoothed(width, height int) []detector.Landmark {
	n := len(b.frames)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return b.frames[0]
	}

	w := smoothingWeights(n)
	smoothed := make([]detector.Landmark, 0, detector.NumLandmarks)

	for i := 0; i < detector.NumLandmarks; i++ {
		var avgX, avgY float64
		for j, frame := range b.frames {
			if i < len(frame) {
				avgX += float64(frame[i].X) * w[j]
				avgY += float64(frame[i].Y) * w[j]
			}
		}

		// Round rather than truncate: the normalized weights sum to
		// fractionally under 1, so truncation would nudge a motionless
		// hand by a pixel.
		smoothed = append(smoothed, detector.Landmark{
			Index: i,
			X:     clampCoord(int(math.Round(avgX)), width),
			Y:     clampCoord(int(math.Round(avgY)), height),
		})
	}

	return smoothed
}

// PositionBuffer is a bounded FIFO window over recent single positions,
// such as a fingertip tracked independently of the full landmark set.
type PositionBuffer struct {
	points []Point
}

// NewPositionBuffer creates an empty position smoothing buffer.
func NewPositionBuffer() *PositionBuffer {
	return &PositionBuffer{
		points: make([]Point, 0, BufferSize),
	}
}

// Push appends a position to the window.
func (b *PositionBuffer) Push(p Point) {
	if len(b.points) >= BufferSize {
		copy(b.points, b.points[1:])
		b.points = b.points[:BufferSize-1]
	}
	b.points = append(b.points, p)
}

// Len returns the current occupancy of the window.
func (b *PositionBuffer) Len() int {
	return len(b.points)
}

// Recent returns the n most recent buffered positions, oldest first.
func (b *PositionBuffer) Recent(n int) []Point {
	if n > len(b.points) {
		n = len(b.points)
	}
	return b.points[len(b.points)-n:]
}

// Clear empties the window.
func (b *PositionBuffer) Clear() {
	b.points = b.points[:0]
}

// Smoothed computes the weighted moving average of the buffered positions.
// ok is false when the window is empty.
func (b *PositionBuffer) Smoothed() (Point, bool) {
	n := len(b.points)
	if n == 0 {
		return Point{}, false
	}
	if n == 1 {
		return b.points[0], true
	}

	w := smoothingWeights(n)
	var avgX, avgY float64
	for i, p := range b.points {
		avgX += float64(p.X) * w[i]
		avgY += float64(p.Y) * w[i]
	}

	return Point{X: int(math.Round(avgX)), Y: int(math.Round(avgY))}, true
}
