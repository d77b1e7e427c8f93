// Package export writes pipeline results to files for external tools.
//
// parquet.go writes the aligned sensor columns and every derived series as
// one long-format Parquet table (row, timestamp, elapsed, series, value,
// defined). Undefined cells are written as NaN with defined=false.
//
// metrics.go renders route reports as Prometheus text exposition, suitable
// for the node_exporter textfile collector. Undefined figures are omitted.
package export
