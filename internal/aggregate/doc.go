// Package aggregate reduces a route's derived series to scalar summaries.
//
// Summarize gives mean, trapezoidal integral over route-local elapsed hours,
// and min/max with the table row where each occurred. Undefined cells are
// dropped before any reduction, so a gap never counts as zero.
//
// Report adds the voyage figures on top: fuel burned, CO2, the route-level
// energy balance (∫P dt over ∫F dt), endurance against the fuel budget, and
// torque/BMEP at each engine's thermal efficiency extrema. ReportAll builds
// the reports for every route concurrently; routes share no mutable state.
package aggregate
