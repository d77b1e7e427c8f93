// Package reader parses the vessel's `;`-delimited event log into Readings.
//
// Each line is `timestamp;sensor_id;value;unit`. Lines are recovered locally:
// a bad timestamp, an unparseable value or a wrong field count drops that
// line and bumps a counter in Stats. Nothing in a single line is fatal; only
// an I/O failure of the underlying reader is returned as an error.
//
// Read streams the input and keeps only sensors accepted by the keep filter,
// so memory is bounded by the readings of interest rather than the log size.
package reader
