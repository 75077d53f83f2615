package track

import "github.com/ayusman/hasta/internal/detector"

// DefaultStabilityThreshold is the mean displacement in pixels below which
// a run of landmark sets counts as stable.
const DefaultStabilityThreshold = 10.0

// DefaultPositionVariance is the per-axis variance in pixels below which a
// run of positions counts as stable.
const DefaultPositionVariance = 10.0

// stabilityWindow is the number of recent frames compared per stability
// check.
const stabilityWindow = 3

// IsStable reports whether a run of landmark sets shows no meaningful
// motion. It compares the first and last set by matching landmark index and
// declares stability when the mean per-landmark displacement stays below
// the threshold. Fewer than two comparable sets is never stable.
func IsStable(frames [][]detector.Landmark, threshold float64) bool {
	if len(frames) < 2 {
		return false
	}

	first := frames[0]
	last := frames[len(frames)-1]
	if len(first) != len(last) {
		return false
	}

	var total float64
	count := 0
	for i := range first {
		if first[i].Index != last[i].Index {
			continue
		}
		total += detector.Distance(first[i], last[i])
		count++
	}

	if count == 0 {
		return false
	}
	return total/float64(count) < threshold
}

// positionsStable reports whether the positions hold still, judged by the
// population variance of each axis. Fewer than three samples is never
// stable.
func positionsStable(points []Point, threshold float64) bool {
	if len(points) < stabilityWindow {
		return false
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.X)
		ys[i] = float64(p.Y)
	}

	return variance(xs) < threshold && variance(ys) < threshold
}

// variance computes the population variance of the values.
func variance(vals []float64) float64 {
	n := float64(len(vals))
	if n == 0 {
		return 0
	}

	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= n

	var sum float64
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return sum / n
}
