package types

// Scalar route figures, by the names alert conditions and the metrics
// exporter use.
const (
	FieldEnergyEfficiency = "energy_efficiency_pct"
	FieldFuelBurned       = "fuel_burned_kg"
	FieldCO2              = "co2_kg"
	FieldMeanFuelFlow     = "mean_fuel_flow_kgph"
	FieldMeanImpliedFlow  = "mean_implied_fuel_flow_kgph"
	FieldMeanCombinedEta  = "combined_eta_e"
	FieldMeanPooledEta    = "pooled_eta_e"
	FieldMeanChainEta     = "eta_p"
	FieldPropulsionEnergy = "propulsion_energy_kwh"
	FieldEndurance        = "endurance_h"
	FieldEnduranceDays    = "endurance_days"
	FieldDurationH        = "duration_h"
)

// ReportFields lists every route figure name in a stable order.
var ReportFields = []string{
	FieldEnergyEfficiency,
	FieldFuelBurned,
	FieldCO2,
	FieldMeanFuelFlow,
	FieldMeanImpliedFlow,
	FieldMeanCombinedEta,
	FieldMeanPooledEta,
	FieldMeanChainEta,
	FieldPropulsionEnergy,
	FieldEndurance,
	FieldEnduranceDays,
	FieldDurationH,
}

// IsReportField reports whether name is one of ReportFields.
func IsReportField(name string) bool {
	for _, f := range ReportFields {
		if f == name {
			return true
		}
	}
	return false
}
