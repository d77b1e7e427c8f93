// Package route partitions an aligned table into named voyage segments.
//
// A Spec bounds a route either by row index, half-open [Start, End), or by
// time, from the first row at or after StartTime through the last row at or
// before EndTime. End indices beyond the table are clamped to its length.
// Without any specs the table is split exactly in half (Halves), the
// documented fallback used for out-and-back trips.
//
// Each Route carries its own elapsed-time axis rebased to zero at its first
// row.
package route
