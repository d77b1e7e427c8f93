// Package compute derives propulsion and fuel metrics from an aligned table.
//
// efficiency.go holds the engine efficiency model: the empirical quadratic
// η_e(x) = a·x² + b·x + c over normalised load x = 100·P/P_rated, the
// power-weighted combination across engines, the pooled-load variant
// x = 100·ΣP/ΣP_rated, and the conversion chain η_p = η_combined·Π(factors).
//
// fuel.go converts volumetric fuel flow to mass flow and integrates it over
// elapsed time. energy.go holds the two independent efficiency views: the
// energy balance (propulsion energy over fuel energy, from measurements) and
// the fuel flow implied by η_p (from the model). They are kept apart so one
// can cross-check the other.
//
// geometry.go and smoothing.go are small helpers for torque, BMEP and the
// running/rolling means used by reporting.
//
// derive.go wires every formula over a table and returns a Derived set of
// named series aligned 1:1 with the table's rows.
//
// Every formula returns types.Undefined() for an undefined input or a zero
// denominator. No function in this package panics on data.
package compute
