// Package pipeline runs one complete analysis from a Config.
//
// Run reads the log once, aligns the configured sensors, derives every
// series, segments the table into routes, reduces each route (in parallel)
// and evaluates alert rules, then writes the optional exports. Each call is
// independent; nothing is cached between runs.
//
// A sensor missing from the log is reported in Result.Missing and the run
// continues on the partial table, with the missing column undefined
// throughout. Configuration problems fail before the log is opened.
package pipeline
