// Package config loads and watches the analysis configuration file (config.yaml).
//
// Top-level types:
//   - Config{Log, Engines, Thrusters, Efficiency, Chain, Fuel, Geometry,
//     Smoothing, Routes, Alerts, Export}: full config tree parsed from YAML
//   - Engine: id, load_sensor (kW), fuel_sensor (L/h), rated_kw
//   - Thruster: id, load_sensor (% of rating), rated_kw
//   - Route: name plus either an index range or a time range
//   - Error: a configuration error naming the offending parameter
//
// Load(path) reads the YAML file, applies the source calibration defaults
// (quadratic a/b/c, conversion chain, LHV, CO2 factor, engine geometry),
// then validates required fields and enums. Fuel density and engine ratings
// have no default: two densities (0.820, 0.832 kg/L) occur in practice and the
// caller must pick one explicitly.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It re-adds the watch after each
// event to survive the rename→create pattern used by atomic-save editors.
package config
