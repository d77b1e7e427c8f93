package compute

import (
	"fmt"
	"sort"

	"github.com/vesselperf/vesselperf/internal/align"
	"github.com/vesselperf/vesselperf/internal/config"
	"github.com/vesselperf/vesselperf/pkg/types"
)

// Names of the fleet-level derived series.
const (
	SeriesElapsed          = "elapsed_h"
	SeriesEnginePower      = "total_engine_power_kw"
	SeriesPropulsionPower  = "propulsion_power_kw"
	SeriesCombinedEta      = "combined_eta_e"
	SeriesPooledEta        = "pooled_eta_e"
	SeriesChainEta         = "eta_p"
	SeriesFuelFlow         = "total_fuel_flow_kgph"
	SeriesCumulativeFuel   = "cumulative_fuel_kg"
	SeriesCumulativeCO2    = "cumulative_co2_kg"
	SeriesEnergyEfficiency = "energy_efficiency_pct"
	SeriesImpliedFuelFlow  = "implied_fuel_flow_kgph"
	SeriesFuelFlowRolling  = "total_fuel_flow_kgph_rolling"
	SeriesEnergyRolling    = "energy_efficiency_pct_rolling"
	SeriesCombinedRunning  = "combined_eta_e_running"
)

// Per-engine series are named "<engine id>_<suffix>"; per-thruster series
// "<thruster id>_power_kw".
const (
	SuffixPower      = "_power_kw"
	SuffixLoadPct    = "_load_pct"
	SuffixEta        = "_eta_e"
	SuffixFuelFlow   = "_fuel_flow_kgph"
	SuffixThermalEta = "_eta_th"
	SuffixSFC        = "_sfc_gpkwh"
	SuffixTorque     = "_torque_nm"
	SuffixBMEP       = "_bmep_pa"
)

// EngineParams identifies one engine's sensors and rating.
type EngineParams struct {
	ID         string
	LoadSensor string
	FuelSensor string
	RatedKW    float64
}

// ThrusterParams identifies one thruster's load feedback sensor and rating.
type ThrusterParams struct {
	ID         string
	LoadSensor string
	RatedKW    float64
}

// Params carries every constant Derive needs.
type Params struct {
	Engines   []EngineParams
	Thrusters []ThrusterParams
	Curve     Quadratic
	Chain     Chain

	// PowerSource is config.PowerSourceEngines or config.PowerSourceThrusters.
	PowerSource string

	DensityKgPerL     float64
	LHVMJPerKg        float64
	ThermalLHVMJPerKg float64
	CO2KgPerKg        float64
	MissingFlowAsZero bool

	Geometry        Geometry
	SmoothingWindow int
}

// ParamsFromConfig builds Params from a validated Config.
func ParamsFromConfig(cfg *config.Config) Params {
	p := Params{
		Curve: Quadratic{
			A: coef(cfg.Efficiency.A, config.DefaultQuadA),
			B: coef(cfg.Efficiency.B, config.DefaultQuadB),
			C: coef(cfg.Efficiency.C, config.DefaultQuadC),
		},
		Chain: Chain{
			Generator:   cfg.Chain.Generator,
			VSD:         cfg.Chain.VSD,
			Switchboard: cfg.Chain.Switchboard,
			Other:       cfg.Chain.Other,
		},
		PowerSource:       cfg.Chain.PowerSource,
		DensityKgPerL:     cfg.Fuel.DensityKgPerL,
		LHVMJPerKg:        cfg.Fuel.LHVMJPerKg,
		ThermalLHVMJPerKg: cfg.Fuel.ThermalLHVMJPerKg,
		CO2KgPerKg:        cfg.Fuel.CO2KgPerKg,
		MissingFlowAsZero: cfg.Fuel.MissingFlowAsZero,
		Geometry: Geometry{
			BoreM:     cfg.Geometry.BoreM,
			StrokeM:   cfg.Geometry.StrokeM,
			Cylinders: cfg.Geometry.Cylinders,
			RPM:       cfg.Geometry.RPM,
		},
		SmoothingWindow: cfg.Smoothing.Window,
	}
	for _, e := range cfg.Engines {
		p.Engines = append(p.Engines, EngineParams{ID: e.ID, LoadSensor: e.LoadSensor, FuelSensor: e.FuelSensor, RatedKW: e.RatedKW})
	}
	for _, t := range cfg.Thrusters {
		p.Thrusters = append(p.Thrusters, ThrusterParams{ID: t.ID, LoadSensor: t.LoadSensor, RatedKW: t.RatedKW})
	}
	return p
}

func coef(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Derived is the set of series computed from one table. Every series has
// one cell per table row.
type Derived struct {
	rows   int
	series []types.Series
	index  map[string]int
}

func newDerived(rows int) *Derived {
	return &Derived{rows: rows, index: make(map[string]int)}
}

func (d *Derived) add(s types.Series) {
	if i, ok := d.index[s.Name]; ok {
		d.series[i] = s
		return
	}
	d.index[s.Name] = len(d.series)
	d.series = append(d.series, s)
}

// Get returns the series called name.
func (d *Derived) Get(name string) (types.Series, bool) {
	i, ok := d.index[name]
	if !ok {
		return types.Series{}, false
	}
	return d.series[i], true
}

// Values returns the cells of name, or an all-undefined column when the
// series does not exist.
func (d *Derived) Values(name string) []float64 {
	if s, ok := d.Get(name); ok {
		return s.Values
	}
	return types.UndefinedSlice(d.rows)
}

// Series returns every derived series in computation order.
func (d *Derived) Series() []types.Series {
	return append([]types.Series(nil), d.series...)
}

// Names returns the series names sorted alphabetically.
func (d *Derived) Names() []string {
	out := make([]string, 0, len(d.series))
	for _, s := range d.series {
		out = append(out, s.Name)
	}
	sort.Strings(out)
	return out
}

// Rows returns the number of cells per series.
func (d *Derived) Rows() int { return d.rows }

// Derive computes every derived series over t.
func Derive(t *align.Table, p Params) (*Derived, error) {
	if len(p.Engines) == 0 {
		return nil, fmt.Errorf("compute: no engines")
	}
	n := t.Len()
	d := newDerived(n)
	elapsed := t.ElapsedHours()
	d.add(types.Series{Name: SeriesElapsed, Unit: "h", Values: elapsed})

	var (
		loads      = make([][]float64, len(p.Engines))
		flows      = make([][]float64, len(p.Engines))
		etas       = make([][]float64, len(p.Engines))
		rated      = make([]float64, len(p.Engines))
		loadIDs    []string
		fuelIDs    []string
		engineSrcs []string
	)
	for i, e := range p.Engines {
		load, err := t.Column(e.LoadSensor)
		if err != nil {
			return nil, fmt.Errorf("compute: engine %q load: %w", e.ID, err)
		}
		lph, err := t.Column(e.FuelSensor)
		if err != nil {
			return nil, fmt.Errorf("compute: engine %q fuel: %w", e.ID, err)
		}
		loads[i], rated[i] = load, e.RatedKW
		flows[i] = MassFlowSeries(lph, p.DensityKgPerL)
		loadIDs = append(loadIDs, e.LoadSensor)
		fuelIDs = append(fuelIDs, e.FuelSensor)
		engineSrcs = append(engineSrcs, e.LoadSensor, e.FuelSensor)

		var (
			pct    = make([]float64, n)
			eta    = make([]float64, n)
			etaTh  = make([]float64, n)
			sfc    = make([]float64, n)
			torque = make([]float64, n)
			bmep   = make([]float64, n)
		)
		for r := 0; r < n; r++ {
			pct[r] = NormalizedLoad(load[r], e.RatedKW)
			eta[r] = p.Curve.Eval(pct[r])
			etaTh[r] = ThermalEfficiency(load[r], flows[i][r], p.ThermalLHVMJPerKg)
			sfc[r] = SpecificFuelConsumption(load[r], flows[i][r])
			torque[r] = Torque(load[r], p.Geometry.RPM)
			bmep[r] = BMEP(load[r], p.Geometry)
		}
		etas[i] = eta

		loadSrc := []string{e.LoadSensor}
		bothSrc := []string{e.LoadSensor, e.FuelSensor}
		d.add(types.Series{Name: e.ID + SuffixPower, Unit: "kW", Sources: loadSrc, Values: load})
		d.add(types.Series{Name: e.ID + SuffixLoadPct, Unit: "%", Sources: loadSrc, Values: pct})
		d.add(types.Series{Name: e.ID + SuffixEta, Unit: "%", Sources: loadSrc, Values: eta})
		d.add(types.Series{Name: e.ID + SuffixFuelFlow, Unit: "kg/h", Sources: []string{e.FuelSensor}, Values: flows[i]})
		d.add(types.Series{Name: e.ID + SuffixThermalEta, Unit: "%", Sources: bothSrc, Values: etaTh})
		d.add(types.Series{Name: e.ID + SuffixSFC, Unit: "g/kWh", Sources: bothSrc, Values: sfc})
		d.add(types.Series{Name: e.ID + SuffixTorque, Unit: "N·m", Sources: loadSrc, Values: torque})
		d.add(types.Series{Name: e.ID + SuffixBMEP, Unit: "Pa", Sources: loadSrc, Values: bmep})
	}

	enginePower, err := SumSeries(loads...)
	if err != nil {
		return nil, err
	}
	d.add(types.Series{Name: SeriesEnginePower, Unit: "kW", Sources: loadIDs, Values: enginePower})

	combined := make([]float64, n)
	pooled := make([]float64, n)
	etaP := make([]float64, n)
	rowEta := make([]float64, len(p.Engines))
	rowP := make([]float64, len(p.Engines))
	for r := 0; r < n; r++ {
		for i := range p.Engines {
			rowEta[i], rowP[i] = etas[i][r], loads[i][r]
		}
		combined[r] = CombinedEfficiency(rowEta, rowP)
		pooled[r] = PooledEfficiency(rowP, rated, p.Curve)
		etaP[r] = PowerChainEfficiency(combined[r], p.Chain)
	}
	d.add(types.Series{Name: SeriesCombinedEta, Unit: "%", Sources: loadIDs, Values: combined})
	d.add(types.Series{Name: SeriesPooledEta, Unit: "%", Sources: loadIDs, Values: pooled})
	d.add(types.Series{Name: SeriesChainEta, Unit: "%", Sources: loadIDs, Values: etaP})

	flowCols := flows
	if p.MissingFlowAsZero {
		flowCols = make([][]float64, len(flows))
		for i, f := range flows {
			flowCols[i] = types.ZeroFill(f)
		}
	}
	totalFlow, err := SumSeries(flowCols...)
	if err != nil {
		return nil, err
	}
	cumFuel := Cumulative(totalFlow, elapsed)
	cumCO2 := make([]float64, n)
	for r, v := range cumFuel {
		cumCO2[r] = CO2(v, p.CO2KgPerKg)
	}
	d.add(types.Series{Name: SeriesFuelFlow, Unit: "kg/h", Sources: fuelIDs, Values: totalFlow})
	d.add(types.Series{Name: SeriesCumulativeFuel, Unit: "kg", Sources: fuelIDs, Values: cumFuel})
	d.add(types.Series{Name: SeriesCumulativeCO2, Unit: "kg", Sources: fuelIDs, Values: cumCO2})

	// Propulsion power comes from the thrusters when they are configured,
	// otherwise the engines' electrical output stands in for it.
	propulsion, propSrcs := enginePower, loadIDs
	if len(p.Thrusters) > 0 {
		cols := make([][]float64, len(p.Thrusters))
		propSrcs = nil
		for i, th := range p.Thrusters {
			fb, err := t.Column(th.LoadSensor)
			if err != nil {
				return nil, fmt.Errorf("compute: thruster %q: %w", th.ID, err)
			}
			kw := make([]float64, n)
			for r, v := range fb {
				kw[r] = ThrusterPower(v, th.RatedKW)
			}
			cols[i] = kw
			propSrcs = append(propSrcs, th.LoadSensor)
			d.add(types.Series{Name: th.ID + SuffixPower, Unit: "kW", Sources: []string{th.LoadSensor}, Values: kw})
		}
		if propulsion, err = SumSeries(cols...); err != nil {
			return nil, err
		}
	}
	d.add(types.Series{Name: SeriesPropulsionPower, Unit: "kW", Sources: propSrcs, Values: propulsion})

	implySrc, implyIDs := enginePower, engineSrcs
	if p.PowerSource == config.PowerSourceThrusters {
		implySrc, implyIDs = propulsion, propSrcs
	}
	energyEff := make([]float64, n)
	implied := make([]float64, n)
	for r := 0; r < n; r++ {
		energyEff[r] = EnergyBalanceEfficiency(propulsion[r], totalFlow[r], p.LHVMJPerKg)
		implied[r] = ImpliedFuelFlow(implySrc[r], etaP[r], p.LHVMJPerKg)
	}
	d.add(types.Series{Name: SeriesEnergyEfficiency, Unit: "%", Sources: append(append([]string(nil), propSrcs...), fuelIDs...), Values: energyEff})
	d.add(types.Series{Name: SeriesImpliedFuelFlow, Unit: "kg/h", Sources: implyIDs, Values: implied})

	d.add(types.Series{Name: SeriesFuelFlowRolling, Unit: "kg/h", Sources: fuelIDs, Values: RollingMean(totalFlow, p.SmoothingWindow)})
	d.add(types.Series{Name: SeriesEnergyRolling, Unit: "%", Sources: propSrcs, Values: RollingMean(energyEff, p.SmoothingWindow)})
	d.add(types.Series{Name: SeriesCombinedRunning, Unit: "%", Sources: loadIDs, Values: RunningAverage(combined)})

	return d, nil
}
