// Package types defines the shared Go types handed to external collaborators
// (plotting, reporting, exporters). These are the canonical in-memory
// representations of the vessel log and everything derived from it.
//
// Top-level types:
//   - Reading: one parsed log line (timestamp, sensor_id, value, unit)
//   - Series: a named numeric series aligned 1:1 with a time axis
//   - Summary: scalar reductions of one Series over one route
//   - Field* constants: names of the scalar route figures (ReportFields)
//
// Undefined cells are represented by Undefined() (a NaN) and tested with
// IsUndefined. Zero is never used as a stand-in for "no value"; ZeroFill is
// the one explicit, opt-in transform that substitutes zero.
package types
