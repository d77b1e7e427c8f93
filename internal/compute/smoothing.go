package compute

import "github.com/vesselperf/vesselperf/pkg/types"

// RunningAverage returns the expanding mean of the defined cells seen so far.
// Cells before the first defined value are undefined.
func RunningAverage(values []float64) []float64 {
	out := make([]float64, len(values))
	var sum float64
	var n int
	for i, v := range values {
		if !types.IsUndefined(v) {
			sum += v
			n++
		}
		if n == 0 {
			out[i] = types.Undefined()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RollingMean returns the trailing mean over window rows, counting only
// defined cells. A row is undefined when its window holds no defined cell.
func RollingMean(values []float64, window int) []float64 {
	out := types.UndefinedSlice(len(values))
	if window <= 0 {
		return out
	}
	var sum float64
	var n int
	for i, v := range values {
		if !types.IsUndefined(v) {
			sum += v
			n++
		}
		if j := i - window; j >= 0 && !types.IsUndefined(values[j]) {
			sum -= values[j]
			n--
		}
		if n > 0 {
			out[i] = sum / float64(n)
		}
	}
	return out
}
