package compute

import "github.com/vesselperf/vesselperf/pkg/types"

// Quadratic is the empirical efficiency curve η_e(x) = A·x² + B·x + C,
// with x the load in percent of rating and η_e in percent.
type Quadratic struct {
	A, B, C float64
}

// Eval returns the curve at x.
func (q Quadratic) Eval(x float64) float64 {
	if types.IsUndefined(x) {
		return types.Undefined()
	}
	return q.A*x*x + q.B*x + q.C
}

// NormalizedLoad returns 100·powerKW/ratedKW.
func NormalizedLoad(powerKW, ratedKW float64) float64 {
	return types.Div(100*powerKW, ratedKW)
}

// EngineEfficiency returns η_e for one engine at powerKW.
func EngineEfficiency(powerKW, ratedKW float64, q Quadratic) float64 {
	return q.Eval(NormalizedLoad(powerKW, ratedKW))
}

// CombinedEfficiency returns the power-weighted mean Σ(η_i·P_i)/Σ(P_i).
// The result is undefined when any input is undefined or total power is
// zero.
func CombinedEfficiency(effs, powers []float64) float64 {
	if len(effs) != len(powers) || len(powers) == 0 {
		return types.Undefined()
	}
	var num, den float64
	for i, p := range powers {
		if types.IsUndefined(p) {
			return types.Undefined()
		}
		if p == 0 {
			continue
		}
		if types.IsUndefined(effs[i]) {
			return types.Undefined()
		}
		num += effs[i] * p
		den += p
	}
	return types.Div(num, den)
}

// PooledEfficiency evaluates the curve once at the fleet load
// x = 100·ΣP/ΣP_rated, treating the running engines as one machine.
func PooledEfficiency(powers, ratedKW []float64, q Quadratic) float64 {
	if len(powers) != len(ratedKW) || len(powers) == 0 {
		return types.Undefined()
	}
	var p, rated float64
	for i := range powers {
		if types.IsUndefined(powers[i]) {
			return types.Undefined()
		}
		p += powers[i]
		rated += ratedKW[i]
	}
	return q.Eval(NormalizedLoad(p, rated))
}

// Chain holds the fixed conversion efficiencies between the engine shaft and
// the propeller, each a fraction.
type Chain struct {
	Generator   float64
	VSD         float64
	Switchboard float64
	Other       float64
}

// Factor returns the product of the chain efficiencies.
func (c Chain) Factor() float64 {
	return c.Generator * c.VSD * c.Switchboard * c.Other
}

// PowerChainEfficiency returns η_p in percent from the combined engine
// efficiency in percent.
func PowerChainEfficiency(combined float64, c Chain) float64 {
	if types.IsUndefined(combined) {
		return types.Undefined()
	}
	return combined * c.Factor()
}
