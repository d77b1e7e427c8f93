package compute

import (
	"fmt"

	"github.com/vesselperf/vesselperf/pkg/types"
)

// Diesel densities seen across the source analyses, in kg/L. Neither is a
// default; the configuration must name one.
const (
	DensityLow  = 0.820
	DensityHigh = 0.832
)

// MassFlow converts a volumetric flow in L/h to kg/h.
func MassFlow(lph, densityKgPerL float64) float64 {
	if types.IsUndefined(lph) || types.IsUndefined(densityKgPerL) {
		return types.Undefined()
	}
	return lph * densityKgPerL
}

// MassFlowSeries applies MassFlow to every cell.
func MassFlowSeries(lph []float64, densityKgPerL float64) []float64 {
	out := make([]float64, len(lph))
	for i, v := range lph {
		out[i] = MassFlow(v, densityKgPerL)
	}
	return out
}

// SumSeries adds the columns row by row. A row is undefined when any column
// is undefined there; callers wanting "unmeasured is zero" pass columns
// through types.ZeroFill first.
func SumSeries(cols ...[]float64) ([]float64, error) {
	if len(cols) == 0 {
		return nil, nil
	}
	n := len(cols[0])
	for i, c := range cols[1:] {
		if len(c) != n {
			return nil, fmt.Errorf("compute: sum: column %d has %d rows, want %d", i+1, len(c), n)
		}
	}
	out := make([]float64, n)
	for r := 0; r < n; r++ {
		for _, c := range cols {
			if types.IsUndefined(c[r]) {
				out[r] = types.Undefined()
				break
			}
			out[r] += c[r]
		}
	}
	return out, nil
}

// Cumulative integrates a flow in units/h over elapsed hours:
// cum[i] = cum[i-1] + flow[i]·(t[i] - t[i-1]).
//
// Integration starts at zero on the first row with a defined flow; earlier
// rows are undefined. An undefined flow after that point leaves the rest of
// the series undefined, since the running total is no longer known.
func Cumulative(flow, elapsedH []float64) []float64 {
	out := types.UndefinedSlice(len(flow))
	if len(elapsedH) != len(flow) {
		return out
	}
	start := -1
	for i, v := range flow {
		if !types.IsUndefined(v) {
			start = i
			break
		}
	}
	if start < 0 {
		return out
	}
	out[start] = 0
	for i := start + 1; i < len(flow); i++ {
		if types.IsUndefined(flow[i]) || types.IsUndefined(out[i-1]) {
			break
		}
		out[i] = out[i-1] + flow[i]*(elapsedH[i]-elapsedH[i-1])
	}
	return out
}

// CO2 returns the CO2 mass emitted by burning fuelKg of fuel.
func CO2(fuelKg, kgPerKg float64) float64 {
	if types.IsUndefined(fuelKg) {
		return types.Undefined()
	}
	return fuelKg * kgPerKg
}
