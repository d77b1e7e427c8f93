// Package alerts evaluates threshold rules against route reports.
//
// A rule condition is "field operator value", e.g.
//
//	energy_efficiency_pct < 20
//	fuel_burned_kg > 1500
//	endurance_h <= 72
//
// Fields are the names returned by aggregate.Report.Fields. Operators are
// > >= < <= == !=. An undefined field value never fires.
package alerts
