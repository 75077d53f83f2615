package track

import (
	"math"
	"testing"

	"github.com/ayusman/hasta/internal/detector"
)

func TestIsStable(t *testing.T) {
	tests := []struct {
		name      string
		frames    [][]detector.Landmark
		threshold float64
		want      bool
	}{
		{
			name:      "identical frames are stable",
			frames:    [][]detector.Landmark{detector.OpenHandLandmarks(), detector.OpenHandLandmarks()},
			threshold: 0.001,
			want:      true,
		},
		{
			name:      "displacement beyond threshold is not stable",
			frames:    [][]detector.Landmark{shiftedHand(0, 0), shiftedHand(50, 0)},
			threshold: 10,
			want:      false,
		},
		{
			name:      "displacement within threshold is stable",
			frames:    [][]detector.Landmark{shiftedHand(0, 0), shiftedHand(3, 0)},
			threshold: 10,
			want:      true,
		},
		{
			name:      "fewer than two frames is never stable",
			frames:    [][]detector.Landmark{detector.OpenHandLandmarks()},
			threshold: 10,
			want:      false,
		},
		{
			name:      "no frames is never stable",
			frames:    nil,
			threshold: 10,
			want:      false,
		},
		{
			name: "mismatched set lengths are not comparable",
			frames: [][]detector.Landmark{
				detector.OpenHandLandmarks(),
				detector.OpenHandLandmarks()[:10],
			},
			threshold: 10,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStable(tt.frames, tt.threshold); got != tt.want {
				t.Errorf("IsStable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsStable_OnlyEndpointsCompared(t *testing.T) {
	// The middle frame may move arbitrarily; only the first and last
	// frames decide the verdict.
	frames := [][]detector.Landmark{
		shiftedHand(0, 0),
		shiftedHand(200, 0),
		shiftedHand(2, 0),
	}

	if !IsStable(frames, 10) {
		t.Error("expected stable verdict when endpoints are close")
	}
}

func TestVariance(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{name: "constant values", vals: []float64{5, 5, 5}, want: 0},
		{name: "known spread", vals: []float64{1, 2, 3}, want: 2.0 / 3.0},
		{name: "empty", vals: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := variance(tt.vals); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("variance(%v) = %f, want %f", tt.vals, got, tt.want)
			}
		})
	}
}

func TestPositionsStable(t *testing.T) {
	t.Run("still positions are stable", func(t *testing.T) {
		points := []Point{{X: 100, Y: 100}, {X: 101, Y: 100}, {X: 100, Y: 101}}
		if !positionsStable(points, DefaultPositionVariance) {
			t.Error("expected near-identical positions to be stable")
		}
	})

	t.Run("moving positions are not stable", func(t *testing.T) {
		points := []Point{{X: 0, Y: 0}, {X: 30, Y: 30}, {X: 60, Y: 60}}
		if positionsStable(points, DefaultPositionVariance) {
			t.Error("expected moving positions to be unstable")
		}
	})

	t.Run("fewer than three samples is never stable", func(t *testing.T) {
		points := []Point{{X: 5, Y: 5}, {X: 5, Y: 5}}
		if positionsStable(points, DefaultPositionVariance) {
			t.Error("two samples should not be judged stable")
		}
	})
}
