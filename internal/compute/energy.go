package compute

import "github.com/vesselperf/vesselperf/pkg/types"

const (
	secondsPerHour = 3600.0
	joulesPerMJ    = 1e6
	wattsPerKW     = 1e3
)

// EnergyBalanceEfficiency is the measured efficiency in percent: propulsion
// energy over the chemical energy of the fuel burned in the same interval.
// Power is in kW, fuel flow in kg/h and lhv in MJ/kg. Because both inputs are
// rates over the same interval, the integrated form ∫P dt / ∫F dt works too.
func EnergyBalanceEfficiency(powerKW, fuelKgph, lhvMJPerKg float64) float64 {
	out := powerKW * wattsPerKW * secondsPerHour
	in := fuelKgph * lhvMJPerKg * joulesPerMJ
	return types.Mul(types.Div(out, in), 100)
}

// ImpliedFuelFlow is the fuel flow in kg/h the efficiency model predicts for
// powerKW: M_f = P_W·3600 / (η_p/100 · LHV). etaP is in percent.
func ImpliedFuelFlow(powerKW, etaP, lhvMJPerKg float64) float64 {
	return types.Div(powerKW*wattsPerKW*secondsPerHour, etaP/100*lhvMJPerKg*joulesPerMJ)
}

// ThrusterPower converts a load feedback in percent of rating to kW.
func ThrusterPower(feedbackPct, ratedKW float64) float64 {
	return types.Mul(feedbackPct, ratedKW/100)
}

// ThermalEfficiency is one engine's brake efficiency in percent from its
// electrical load and measured fuel flow, using the heating value lhv.
func ThermalEfficiency(loadKW, fuelKgph, lhvMJPerKg float64) float64 {
	fuelW := types.Div(fuelKgph*lhvMJPerKg*joulesPerMJ, secondsPerHour)
	return types.Mul(types.Div(loadKW*wattsPerKW, fuelW), 100)
}

// SpecificFuelConsumption returns fuel burned per unit energy in g/kWh.
func SpecificFuelConsumption(loadKW, fuelKgph float64) float64 {
	return types.Div(fuelKgph*1000, loadKW)
}
