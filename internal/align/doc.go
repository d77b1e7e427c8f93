// Package align reshapes Readings into a Table: one row per distinct
// timestamp, one column per sensor of interest.
//
// Each cell starts from the reading observed at exactly that timestamp (the
// last one in log order wins when a sensor repeats a timestamp). Remaining
// cells are filled according to a FillPolicy:
//   - Forward carries the most recent earlier observation down the column
//   - Backward carries the next later observation up the column
//
// Cells with nothing to carry stay undefined. They are never zero.
//
// A sensor of interest with no observed value, either absent from the log or
// logged only with blank values, produces a MissingSensorError naming it. Align still returns the partial table alongside that error so
// callers can choose to proceed without the column.
package align
