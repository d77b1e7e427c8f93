package aggregate

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/vesselperf/vesselperf/internal/route"
	"github.com/vesselperf/vesselperf/pkg/types"
)

// defined returns the defined cells of y with their x and local index.
func defined(x, y []float64) (xs, ys []float64, idx []int) {
	for i, v := range y {
		if types.IsUndefined(v) {
			continue
		}
		if x != nil && types.IsUndefined(x[i]) {
			continue
		}
		ys = append(ys, v)
		idx = append(idx, i)
		if x != nil {
			xs = append(xs, x[i])
		}
	}
	return xs, ys, idx
}

// Mean returns the arithmetic mean of the defined cells.
func Mean(values []float64) float64 {
	_, ys, _ := defined(nil, values)
	if len(ys) == 0 {
		return types.Undefined()
	}
	return stat.Mean(ys, nil)
}

// Integral returns the trapezoidal integral of y over x using only rows where
// both are defined. A single defined row spans no time and integrates to 0.
func Integral(x, y []float64) float64 {
	if len(x) != len(y) {
		return types.Undefined()
	}
	xs, ys, _ := defined(x, y)
	switch len(ys) {
	case 0:
		return types.Undefined()
	case 1:
		return 0
	}
	return integrate.Trapezoidal(xs, ys)
}

// Min returns the smallest defined cell and its index, or (Undefined, -1).
func Min(values []float64) (float64, int) {
	_, ys, idx := defined(nil, values)
	if len(ys) == 0 {
		return types.Undefined(), -1
	}
	i := floats.MinIdx(ys)
	return ys[i], idx[i]
}

// Max returns the largest defined cell and its index, or (Undefined, -1).
func Max(values []float64) (float64, int) {
	_, ys, idx := defined(nil, values)
	if len(ys) == 0 {
		return types.Undefined(), -1
	}
	i := floats.MaxIdx(ys)
	return ys[i], idx[i]
}

// Endurance returns the hours budgetKg lasts at meanKgph. It is undefined
// when there is no budget or the mean flow is not positive.
func Endurance(budgetKg, meanKgph float64) float64 {
	if budgetKg <= 0 || types.IsUndefined(meanKgph) || meanKgph <= 0 {
		return types.Undefined()
	}
	return budgetKg / meanKgph
}

// Summarize reduces s over r. elapsed is the route-local axis from
// r.Elapsed. Extremum indices in the result are full-table rows.
func Summarize(r route.Route, elapsed []float64, s types.Series) types.Summary {
	vals := r.Slice(s.Values)
	out := types.Summary{
		Series:      s.Name,
		Unit:        s.Unit,
		Count:       len(vals),
		Mean:        Mean(vals),
		Integral:    Integral(elapsed, vals),
		MinIndex:    -1,
		MaxIndex:    -1,
		MinElapsedH: types.Undefined(),
		MaxElapsedH: types.Undefined(),
	}
	_, ys, _ := defined(nil, vals)
	out.Defined = len(ys)

	var i int
	out.Min, i = Min(vals)
	if i >= 0 {
		out.MinIndex, out.MinElapsedH = r.Start+i, elapsed[i]
	}
	out.Max, i = Max(vals)
	if i >= 0 {
		out.MaxIndex, out.MaxElapsedH = r.Start+i, elapsed[i]
	}
	return out
}
