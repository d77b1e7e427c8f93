package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vesselperf/vesselperf/pkg/types"
)

// Default values applied when fields are absent from the config file.
// They are the calibration used in the Gunnerus propulsion study.
const (
	DefaultQuadA = -0.0024
	DefaultQuadB = 0.402
	DefaultQuadC = 27.4382

	DefaultGenerator   = 0.96
	DefaultVSD         = 0.97
	DefaultSwitchboard = 0.99
	DefaultOther       = 0.97

	DefaultLHVMJPerKg        = 42.0
	DefaultThermalLHVMJPerKg = 45.4
	DefaultCO2KgPerKg        = 3.1

	DefaultBoreM     = 0.127
	DefaultStrokeM   = 0.154
	DefaultCylinders = 8
	DefaultRPM       = 1800.0

	DefaultSmoothingWindow = 25
	DefaultFill            = "forward"
	DefaultPowerSource     = PowerSourceEngines
)

// Power sources accepted by chain.power_source.
const (
	PowerSourceEngines   = "engines"
	PowerSourceThrusters = "thrusters"
)

// Config is the top-level analysis configuration.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Engines    []Engine         `yaml:"engines"`
	Thrusters  []Thruster       `yaml:"thrusters"`
	Efficiency EfficiencyConfig `yaml:"efficiency"`
	Chain      ChainConfig      `yaml:"chain"`
	Fuel       FuelConfig       `yaml:"fuel"`
	Geometry   GeometryConfig   `yaml:"geometry"`
	Smoothing  SmoothingConfig  `yaml:"smoothing"`
	Routes     []Route          `yaml:"routes"`
	Alerts     []AlertRule      `yaml:"alerts"`
	Export     ExportConfig     `yaml:"export"`
}

// LogConfig describes the input event log.
type LogConfig struct {
	// Path is the `;`-delimited log file. Relative paths are resolved
	// against the working directory.
	Path string `yaml:"path"`

	// Fill is the gap-filling policy: forward | backward.
	Fill string `yaml:"fill"`

	// ExtraSensors are aligned alongside the engine and thruster sensors and
	// passed through as plain series (e.g. exhaust temperatures).
	ExtraSensors []string `yaml:"extra_sensors"`
}

// Engine describes one diesel generator set.
type Engine struct {
	ID string `yaml:"id"`

	// LoadSensor reports the engine's electrical load in kW.
	LoadSensor string `yaml:"load_sensor"`

	// FuelSensor reports volumetric fuel flow in L/h.
	FuelSensor string `yaml:"fuel_sensor"`

	// RatedKW is the engine's rated power, the denominator of the
	// normalised load x = 100·P/P_rated.
	RatedKW float64 `yaml:"rated_kw"`
}

// Thruster describes one propulsion motor whose load feedback is reported
// as a percentage of its rating.
type Thruster struct {
	ID         string  `yaml:"id"`
	LoadSensor string  `yaml:"load_sensor"`
	RatedKW    float64 `yaml:"rated_kw"`
}

// EfficiencyConfig holds the coefficients of η_e(x) = a·x² + b·x + c.
type EfficiencyConfig struct {
	A *float64 `yaml:"a"`
	B *float64 `yaml:"b"`
	C *float64 `yaml:"c"`
}

// ChainConfig holds the fixed conversion efficiencies downstream of the
// engines, each as a fraction in (0, 1].
type ChainConfig struct {
	Generator   float64 `yaml:"generator"`
	VSD         float64 `yaml:"vsd"`
	Switchboard float64 `yaml:"switchboard"`
	Other       float64 `yaml:"other"`

	// PowerSource selects the power series used to back-compute the implied
	// fuel flow: engines (sum of engine loads) | thrusters (sum of propulsion).
	PowerSource string `yaml:"power_source"`
}

// FuelConfig holds fuel properties.
type FuelConfig struct {
	// DensityKgPerL converts L/h to kg/h. Required.
	DensityKgPerL float64 `yaml:"density_kg_per_l"`

	// LHVMJPerKg is the lower heating value used by the energy balance and
	// the power-chain fuel flow.
	LHVMJPerKg float64 `yaml:"lhv_mj_per_kg"`

	// ThermalLHVMJPerKg is the heating value used for per-engine thermal
	// efficiency from measured fuel flow.
	ThermalLHVMJPerKg float64 `yaml:"thermal_lhv_mj_per_kg"`

	// CO2KgPerKg is the mass of CO2 emitted per kg of fuel burned.
	CO2KgPerKg float64 `yaml:"co2_kg_per_kg"`

	// BudgetKg is the fuel on board used for endurance projections.
	// Zero disables the projection.
	BudgetKg float64 `yaml:"budget_kg"`

	// MissingFlowAsZero treats an engine whose fuel flow is unmeasured as
	// burning nothing when summing across engines. When false, the total is
	// undefined wherever any engine's flow is undefined.
	MissingFlowAsZero bool `yaml:"missing_flow_as_zero"`
}

// GeometryConfig describes the engine cylinders for torque and BMEP.
type GeometryConfig struct {
	BoreM     float64 `yaml:"bore_m"`
	StrokeM   float64 `yaml:"stroke_m"`
	Cylinders int     `yaml:"cylinders"`
	RPM       float64 `yaml:"rpm"`
}

// SmoothingConfig controls the rolling mean applied to noisy series.
type SmoothingConfig struct {
	Window int `yaml:"window"`
}

// Route names a contiguous sub-range of the aligned table. Either the index
// pair or the time pair is used; a route may not mix the two.
// Index ranges are half-open: [start_index, end_index).
type Route struct {
	Name       string     `yaml:"name"`
	StartIndex *int       `yaml:"start_index"`
	EndIndex   *int       `yaml:"end_index"`
	StartTime  *time.Time `yaml:"start_time"`
	EndTime    *time.Time `yaml:"end_time"`
}

// AlertRule defines a threshold condition evaluated against each route.
type AlertRule struct {
	// Name is the human-readable alert identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "energy_efficiency_pct < 20".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`
}

// ExportConfig names optional output files. Empty paths disable an export.
type ExportConfig struct {
	Parquet string `yaml:"parquet"`
	Metrics string `yaml:"metrics"`
}

// Error is a configuration error. Param names the offending parameter
// using its YAML path.
type Error struct {
	Param  string
	Reason string
}

func (e *Error) Error() string {
	return e.Param + ": " + e.Reason
}

func errorf(param, format string, args ...any) *Error {
	return &Error{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// Sensors returns every sensor id the pipeline aligns, in configuration
// order, without duplicates.
func (c *Config) Sensors() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, e := range c.Engines {
		add(e.LoadSensor)
		add(e.FuelSensor)
	}
	for _, t := range c.Thrusters {
		add(t.LoadSensor)
	}
	for _, s := range c.Log.ExtraSensors {
		add(s)
	}
	return out
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with the calibration defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML config document.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	applyCoefficientDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Log: LogConfig{Fill: DefaultFill},
		Chain: ChainConfig{
			Generator:   DefaultGenerator,
			VSD:         DefaultVSD,
			Switchboard: DefaultSwitchboard,
			Other:       DefaultOther,
			PowerSource: DefaultPowerSource,
		},
		Fuel: FuelConfig{
			LHVMJPerKg:        DefaultLHVMJPerKg,
			ThermalLHVMJPerKg: DefaultThermalLHVMJPerKg,
			CO2KgPerKg:        DefaultCO2KgPerKg,
		},
		Geometry: GeometryConfig{
			BoreM:     DefaultBoreM,
			StrokeM:   DefaultStrokeM,
			Cylinders: DefaultCylinders,
			RPM:       DefaultRPM,
		},
		Smoothing: SmoothingConfig{Window: DefaultSmoothingWindow},
	}
}

// applyCoefficientDefaults fills the quadratic coefficients left unset.
// They are pointers because zero is a legitimate coefficient.
func applyCoefficientDefaults(cfg *Config) {
	if cfg.Efficiency.A == nil {
		cfg.Efficiency.A = floatPtr(DefaultQuadA)
	}
	if cfg.Efficiency.B == nil {
		cfg.Efficiency.B = floatPtr(DefaultQuadB)
	}
	if cfg.Efficiency.C == nil {
		cfg.Efficiency.C = floatPtr(DefaultQuadC)
	}
}

// Validate checks required fields and structural constraints. Route
// boundaries that depend on the table length are checked later by the
// segmenter.
func Validate(cfg *Config) error {
	switch strings.ToLower(cfg.Log.Fill) {
	case "forward", "ffill", "backward", "bfill":
	default:
		return errorf("log.fill", "unknown fill policy %q (expected forward|backward)", cfg.Log.Fill)
	}
	if len(cfg.Engines) == 0 {
		return errorf("engines", "at least one engine is required")
	}

	ids := make(map[string]string)
	checkID := func(param, id string) error {
		if id == "" {
			return errorf(param, "id is required")
		}
		if prev, ok := ids[id]; ok {
			return errorf(param, "duplicate id %q (also %s)", id, prev)
		}
		ids[id] = param
		return nil
	}

	for i, e := range cfg.Engines {
		param := fmt.Sprintf("engines[%d]", i)
		if err := checkID(param+".id", e.ID); err != nil {
			return err
		}
		if err := checkSensor(param+".load_sensor", e.LoadSensor); err != nil {
			return err
		}
		if err := checkSensor(param+".fuel_sensor", e.FuelSensor); err != nil {
			return err
		}
		if e.RatedKW <= 0 {
			return errorf(param+".rated_kw", "engine %q: rated power must be positive", e.ID)
		}
	}
	for i, t := range cfg.Thrusters {
		param := fmt.Sprintf("thrusters[%d]", i)
		if err := checkID(param+".id", t.ID); err != nil {
			return err
		}
		if err := checkSensor(param+".load_sensor", t.LoadSensor); err != nil {
			return err
		}
		if t.RatedKW <= 0 {
			return errorf(param+".rated_kw", "thruster %q: rated power must be positive", t.ID)
		}
	}
	for i, s := range cfg.Log.ExtraSensors {
		if err := checkSensor(fmt.Sprintf("log.extra_sensors[%d]", i), s); err != nil {
			return err
		}
	}

	chain := []struct {
		param string
		v     float64
	}{
		{"chain.generator", cfg.Chain.Generator},
		{"chain.vsd", cfg.Chain.VSD},
		{"chain.switchboard", cfg.Chain.Switchboard},
		{"chain.other", cfg.Chain.Other},
	}
	for _, f := range chain {
		if f.v <= 0 || f.v > 1 {
			return errorf(f.param, "efficiency %v outside (0, 1]", f.v)
		}
	}
	switch cfg.Chain.PowerSource {
	case PowerSourceEngines:
	case PowerSourceThrusters:
		if len(cfg.Thrusters) == 0 {
			return errorf("chain.power_source", "thrusters selected but none configured")
		}
	default:
		return errorf("chain.power_source", "unknown power source %q (expected engines|thrusters)", cfg.Chain.PowerSource)
	}

	if cfg.Fuel.DensityKgPerL <= 0 {
		return errorf("fuel.density_kg_per_l", "fuel density is required (e.g. 0.820 or 0.832)")
	}
	if cfg.Fuel.LHVMJPerKg <= 0 {
		return errorf("fuel.lhv_mj_per_kg", "must be positive")
	}
	if cfg.Fuel.ThermalLHVMJPerKg <= 0 {
		return errorf("fuel.thermal_lhv_mj_per_kg", "must be positive")
	}
	if cfg.Fuel.CO2KgPerKg < 0 {
		return errorf("fuel.co2_kg_per_kg", "must not be negative")
	}
	if cfg.Fuel.BudgetKg < 0 {
		return errorf("fuel.budget_kg", "must not be negative")
	}

	if cfg.Geometry.BoreM <= 0 || cfg.Geometry.StrokeM <= 0 {
		return errorf("geometry", "bore_m and stroke_m must be positive")
	}
	if cfg.Geometry.Cylinders <= 0 {
		return errorf("geometry.cylinders", "must be positive")
	}
	if cfg.Geometry.RPM <= 0 {
		return errorf("geometry.rpm", "must be positive")
	}
	if cfg.Smoothing.Window <= 0 {
		return errorf("smoothing.window", "must be positive")
	}

	names := make(map[string]struct{})
	for i, r := range cfg.Routes {
		param := fmt.Sprintf("routes[%d]", i)
		if r.Name == "" {
			return errorf(param+".name", "name is required")
		}
		if _, ok := names[r.Name]; ok {
			return errorf(param+".name", "duplicate route %q", r.Name)
		}
		names[r.Name] = struct{}{}
		if err := validateRoute(param, r); err != nil {
			return err
		}
	}

	for i, a := range cfg.Alerts {
		param := fmt.Sprintf("alerts[%d]", i)
		if a.Name == "" {
			return errorf(param+".name", "name is required")
		}
		if err := checkCondition(param+".condition", a.Name, a.Condition); err != nil {
			return err
		}
		switch a.Severity {
		case "critical", "warning", "info", "":
		default:
			return errorf(param+".severity", "alert %q: unknown severity %q", a.Name, a.Severity)
		}
	}
	return nil
}

func validateRoute(param string, r Route) error {
	byIndex := r.StartIndex != nil || r.EndIndex != nil
	byTime := r.StartTime != nil || r.EndTime != nil
	switch {
	case byIndex && byTime:
		return errorf(param, "route %q: use either start_index/end_index or start_time/end_time, not both", r.Name)
	case byIndex:
		if r.StartIndex == nil || r.EndIndex == nil {
			return errorf(param, "route %q: start_index and end_index are both required", r.Name)
		}
		if *r.StartIndex < 0 {
			return errorf(param+".start_index", "route %q: negative start_index %d", r.Name, *r.StartIndex)
		}
		if *r.EndIndex <= *r.StartIndex {
			return errorf(param+".end_index", "route %q: end_index %d not after start_index %d", r.Name, *r.EndIndex, *r.StartIndex)
		}
	case byTime:
		if r.StartTime == nil || r.EndTime == nil {
			return errorf(param, "route %q: start_time and end_time are both required", r.Name)
		}
		if !r.EndTime.After(*r.StartTime) {
			return errorf(param+".end_time", "route %q: end_time not after start_time", r.Name)
		}
	default:
		return errorf(param, "route %q: no boundaries given", r.Name)
	}
	return nil
}

// IsOperator reports whether op is a comparison alert conditions accept.
func IsOperator(op string) bool {
	switch op {
	case ">", ">=", "<", "<=", "==", "!=":
		return true
	}
	return false
}

// checkCondition validates a "field op value" alert condition against the
// route figures a report exposes.
func checkCondition(param, name, cond string) error {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return errorf(param, "alert %q: expected \"field op value\", got %q", name, cond)
	}
	field, op, rhs := parts[0], parts[1], parts[2]
	if !types.IsReportField(field) {
		return errorf(param, "alert %q: unknown field %q (expected one of %s)", name, field, strings.Join(types.ReportFields, ", "))
	}
	if !IsOperator(op) {
		return errorf(param, "alert %q: unknown operator %q", name, op)
	}
	if _, err := strconv.ParseFloat(rhs, 64); err != nil {
		return errorf(param, "alert %q: threshold %q is not a number", name, rhs)
	}
	return nil
}

// checkSensor enforces the topic-style sensor id: non-empty, slash-delimited
// and without the log's field separator.
func checkSensor(param, id string) error {
	if id == "" {
		return errorf(param, "sensor id is required")
	}
	if !strings.Contains(id, "/") {
		return errorf(param, "sensor id %q is not a slash-delimited topic", id)
	}
	if strings.ContainsAny(id, "; \t") {
		return errorf(param, "sensor id %q contains a separator or whitespace", id)
	}
	return nil
}

func floatPtr(v float64) *float64 {
	return &v
}
