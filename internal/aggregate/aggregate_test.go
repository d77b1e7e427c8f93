package aggregate

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/vesselperf/vesselperf/internal/align"
	"github.com/vesselperf/vesselperf/internal/compute"
	"github.com/vesselperf/vesselperf/internal/config"
	"github.com/vesselperf/vesselperf/internal/route"
	"github.com/vesselperf/vesselperf/pkg/types"
)

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

var u = types.Undefined()

func TestMean_IgnoresUndefined(t *testing.T) {
	if got := Mean([]float64{2, u, 4}); got != 3 {
		t.Errorf("Mean = %v, want 3", got)
	}
	if !types.IsUndefined(Mean([]float64{u, u})) {
		t.Error("Mean of no defined cells should be undefined")
	}
	if !types.IsUndefined(Mean(nil)) {
		t.Error("Mean(nil) should be undefined")
	}
}

func TestIntegral(t *testing.T) {
	tests := []struct {
		name      string
		x, y      []float64
		want      float64
		undefined bool
	}{
		{"constant", []float64{0, 1, 2}, []float64{5, 5, 5}, 10, false},
		{"ramp", []float64{0, 1, 2}, []float64{0, 1, 2}, 2, false},
		{"irregular", []float64{0, 0.5, 2}, []float64{4, 4, 4}, 8, false},
		{"bridges a gap", []float64{0, 1, 2}, []float64{5, u, 5}, 10, false},
		{"single point", []float64{3}, []float64{7}, 0, false},
		{"nothing defined", []float64{0, 1}, []float64{u, u}, 0, true},
		{"length mismatch", []float64{0, 1}, []float64{1}, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Integral(tc.x, tc.y)
			if types.IsUndefined(got) != tc.undefined {
				t.Fatalf("Integral = %v, undefined=%v", got, tc.undefined)
			}
			if !tc.undefined && !almostEqual(got, tc.want, 1e-12) {
				t.Errorf("Integral = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMinMax(t *testing.T) {
	vals := []float64{u, 3, -1, u, 8, 8}
	if v, i := Min(vals); v != -1 || i != 2 {
		t.Errorf("Min = (%v, %d), want (-1, 2)", v, i)
	}
	if v, i := Max(vals); v != 8 || i != 4 {
		t.Errorf("Max = (%v, %d), want (8, 4) (first occurrence)", v, i)
	}
	if v, i := Min([]float64{u}); !types.IsUndefined(v) || i != -1 {
		t.Errorf("Min(undefined) = (%v, %d), want (undefined, -1)", v, i)
	}
}

func TestEndurance(t *testing.T) {
	if got := Endurance(49000, 98); got != 500 {
		t.Errorf("Endurance = %v, want 500", got)
	}
	for _, mean := range []float64{0, -1, u} {
		if !types.IsUndefined(Endurance(49000, mean)) {
			t.Errorf("Endurance(49000, %v) should be undefined", mean)
		}
	}
	if !types.IsUndefined(Endurance(0, 98)) {
		t.Error("Endurance without budget should be undefined")
	}
}

func TestSummarize_FullTableIndices(t *testing.T) {
	r := route.Route{Name: "r", Start: 2, End: 6, OffsetH: 2}
	s := types.Series{Name: "x", Unit: "kW", Values: []float64{100, 100, 5, u, 1, 9, 100}}
	elapsed := []float64{0, 1, 2, 3}

	sum := Summarize(r, elapsed, s)
	if sum.Count != 4 || sum.Defined != 3 {
		t.Errorf("Count/Defined = %d/%d, want 4/3", sum.Count, sum.Defined)
	}
	if sum.Mean != 5 {
		t.Errorf("Mean = %v, want 5", sum.Mean)
	}
	if sum.Min != 1 || sum.MinIndex != 4 || sum.MinElapsedH != 2 {
		t.Errorf("Min = %v @ row %d (%vh), want 1 @ row 4 (2h)", sum.Min, sum.MinIndex, sum.MinElapsedH)
	}
	if sum.Max != 9 || sum.MaxIndex != 5 || sum.MaxElapsedH != 3 {
		t.Errorf("Max = %v @ row %d (%vh), want 9 @ row 5 (3h)", sum.Max, sum.MaxIndex, sum.MaxElapsedH)
	}
	// Trapezoid over (0,5) (2,1) (3,9): 6 + 5 = 11.
	if !almostEqual(sum.Integral, 11, 1e-12) {
		t.Errorf("Integral = %v, want 11", sum.Integral)
	}
}

func TestSummarize_AllUndefined(t *testing.T) {
	r := route.Route{Name: "r", Start: 0, End: 2}
	sum := Summarize(r, []float64{0, 1}, types.Series{Name: "x", Values: []float64{u, u}})
	if !types.IsUndefined(sum.Mean) || !types.IsUndefined(sum.Min) || sum.MinIndex != -1 {
		t.Errorf("summary of undefined series = %+v", sum)
	}
}

const (
	e1Load = "gunnerus/RVG_mqtt/Engine1/engine_load"
	e1Fuel = "gunnerus/RVG_mqtt/Engine1/fuel_consumption"
)

// derivedFixture builds 21 rows one minute apart: engine load ramps
// 100..300 kW, fuel flow is a constant 60 L/h.
func derivedFixture(t *testing.T) (*align.Table, *compute.Derived) {
	t.Helper()
	t0 := time.Date(2021, 9, 14, 10, 0, 0, 0, time.UTC)
	var readings []types.Reading
	for r := 0; r <= 20; r++ {
		ts := t0.Add(time.Duration(r) * time.Minute)
		readings = append(readings,
			types.Reading{Timestamp: ts, SensorID: e1Load, Value: 100 + 10*float64(r), Seq: 2 * r},
			types.Reading{Timestamp: ts, SensorID: e1Fuel, Value: 60, Seq: 2*r + 1},
		)
	}
	tbl, err := align.Align(readings, []string{e1Load, e1Fuel}, align.Forward)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	d, err := compute.Derive(tbl, compute.Params{
		Engines:           []compute.EngineParams{{ID: "engine1", LoadSensor: e1Load, FuelSensor: e1Fuel, RatedKW: 450}},
		Curve:             compute.Quadratic{A: -0.0024, B: 0.402, C: 27.4382},
		Chain:             compute.Chain{Generator: 0.96, VSD: 0.97, Switchboard: 0.99, Other: 0.97},
		PowerSource:       config.PowerSourceEngines,
		DensityKgPerL:     compute.DensityLow,
		LHVMJPerKg:        42,
		ThermalLHVMJPerKg: 45.4,
		CO2KgPerKg:        3.1,
		Geometry:          compute.Geometry{BoreM: 0.127, StrokeM: 0.154, Cylinders: 8, RPM: 1800},
		SmoothingWindow:   5,
	})
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	return tbl, d
}

func TestBuild_VoyageFigures(t *testing.T) {
	tbl, d := derivedFixture(t)
	r := route.Route{Name: "all", Start: 0, End: tbl.Len()}

	rep := Build(r, tbl, d, Params{Engines: []string{"engine1"}, BudgetKg: 49000, LHVMJPerKg: 42})

	flow := 60 * compute.DensityLow
	if !almostEqual(rep.MeanFuelFlowKgph, flow, 1e-9) {
		t.Errorf("MeanFuelFlowKgph = %v, want %v", rep.MeanFuelFlowKgph, flow)
	}
	// 20 minutes at constant flow.
	if want := flow * 20 / 60; !almostEqual(rep.FuelBurnedKg, want, 1e-9) {
		t.Errorf("FuelBurnedKg = %v, want %v", rep.FuelBurnedKg, want)
	}
	if !almostEqual(rep.CO2Kg, rep.FuelBurnedKg*3.1, 1e-9) {
		t.Errorf("CO2Kg = %v, want %v", rep.CO2Kg, rep.FuelBurnedKg*3.1)
	}
	if want := 49000 / flow; !almostEqual(rep.EnduranceH, want, 1e-6) {
		t.Errorf("EnduranceH = %v, want %v", rep.EnduranceH, want)
	}
	// Linear ramp: mean power 200 kW over 1/3 h.
	if want := 200.0 / 3; !almostEqual(rep.PropulsionEnergyKWh, want, 1e-9) {
		t.Errorf("PropulsionEnergyKWh = %v, want %v", rep.PropulsionEnergyKWh, want)
	}
	if want := compute.EnergyBalanceEfficiency(200, flow, 42); !almostEqual(rep.EnergyEfficiencyPct, want, 1e-9) {
		t.Errorf("EnergyEfficiencyPct = %v, want %v", rep.EnergyEfficiencyPct, want)
	}
	if !almostEqual(rep.DurationH, 20.0/60, 1e-12) {
		t.Errorf("DurationH = %v, want 1/3", rep.DurationH)
	}

	f := rep.Fields()
	if f[FieldFuelBurned] != rep.FuelBurnedKg || f[FieldEnduranceDays] != rep.EnduranceH/24 {
		t.Errorf("Fields() = %v", f)
	}
	if _, ok := rep.Summary(compute.SeriesElapsed); ok {
		t.Error("elapsed axis should not be summarised")
	}
}

func TestBuild_PartitionTotalsMatchWholeTable(t *testing.T) {
	tbl, d := derivedFixture(t)
	p := Params{LHVMJPerKg: 42, Series: []string{compute.SeriesEnginePower}}
	whole := Build(route.Route{Name: "all", Start: 0, End: tbl.Len()}, tbl, d, p)
	elapsed := tbl.ElapsedHours()

	partitions := map[string][]route.Route{
		"halves": route.Halves(tbl),
		"thirds": {
			{Name: "a", Start: 0, End: 7},
			{Name: "b", Start: 7, End: 14, OffsetH: elapsed[7]},
			{Name: "c", Start: 14, End: 21, OffsetH: elapsed[14]},
		},
	}
	for name, routes := range partitions {
		t.Run(name, func(t *testing.T) {
			var fuel, co2, energy, hours, integral float64
			for _, r := range routes {
				rep := Build(r, tbl, d, p)
				fuel += rep.FuelBurnedKg
				co2 += rep.CO2Kg
				energy += rep.PropulsionEnergyKWh
				hours += rep.DurationH
				s, _ := rep.Summary(compute.SeriesEnginePower)
				integral += s.Integral
			}
			wholeSum, _ := whole.Summary(compute.SeriesEnginePower)
			checks := []struct {
				field     string
				got, want float64
			}{
				{"fuel burned", fuel, whole.FuelBurnedKg},
				{"co2", co2, whole.CO2Kg},
				{"propulsion energy", energy, whole.PropulsionEnergyKWh},
				{"duration", hours, whole.DurationH},
				{"power integral", integral, wholeSum.Integral},
			}
			for _, c := range checks {
				if !almostEqual(c.got, c.want, 1e-9) {
					t.Errorf("%s: sum over routes = %v, whole table = %v", c.field, c.got, c.want)
				}
			}
		})
	}
}

func TestBuild_MeanFlowUsesOwnRows(t *testing.T) {
	tbl, d := derivedFixture(t)
	r := route.Route{Name: "head", Start: 0, End: 5}
	rep := Build(r, tbl, d, Params{LHVMJPerKg: 42})
	// Five rows, but the fuel span reaches row 5: five one-minute intervals.
	flow := 60 * compute.DensityLow
	if want := flow * 5 / 60; !almostEqual(rep.FuelBurnedKg, want, 1e-9) {
		t.Errorf("FuelBurnedKg = %v, want %v", rep.FuelBurnedKg, want)
	}
	if !almostEqual(rep.MeanFuelFlowKgph, flow, 1e-9) {
		t.Errorf("MeanFuelFlowKgph = %v, want %v", rep.MeanFuelFlowKgph, flow)
	}
	s, _ := rep.Summary(compute.SeriesEnginePower)
	if s.Count != 5 || s.MaxIndex != 4 {
		t.Errorf("power summary Count/MaxIndex = %d/%d, want 5/4", s.Count, s.MaxIndex)
	}
}

func TestReport_FieldsMatchReportFields(t *testing.T) {
	var rep Report
	f := rep.Fields()
	if len(f) != len(types.ReportFields) {
		t.Fatalf("Fields() has %d names, ReportFields %d", len(f), len(types.ReportFields))
	}
	for _, name := range types.ReportFields {
		if _, ok := f[name]; !ok {
			t.Errorf("Fields() lacks %q", name)
		}
	}
}

func TestBuild_ExtremaAtThermalEfficiency(t *testing.T) {
	tbl, d := derivedFixture(t)
	r := route.Route{Name: "all", Start: 0, End: tbl.Len()}
	rep := Build(r, tbl, d, Params{Engines: []string{"engine1"}, LHVMJPerKg: 42})

	if len(rep.Extrema) != 2 {
		t.Fatalf("Extrema = %+v, want min and max", rep.Extrema)
	}
	// Constant fuel with rising load: η_th is lowest at the first row.
	lo, hi := rep.Extrema[0], rep.Extrema[1]
	if lo.Kind != "min" || lo.Row != 0 || lo.PowerKW != 100 {
		t.Errorf("min extremum = %+v", lo)
	}
	if hi.Kind != "max" || hi.Row != 20 || hi.PowerKW != 300 {
		t.Errorf("max extremum = %+v", hi)
	}
	if want := compute.Torque(300, 1800); !almostEqual(hi.TorqueNm, want, 1e-9) {
		t.Errorf("torque at max = %v, want %v", hi.TorqueNm, want)
	}
}

func TestReportAll_PreservesOrder(t *testing.T) {
	tbl, d := derivedFixture(t)
	routes := route.Halves(tbl)
	routes = append(routes, route.Route{Name: "tail", Start: 15, End: 21, OffsetH: 0.25})

	reps, err := ReportAll(context.Background(), routes, tbl, d, Params{LHVMJPerKg: 42, Series: []string{compute.SeriesEnginePower}})
	if err != nil {
		t.Fatalf("ReportAll() error = %v", err)
	}
	if len(reps) != len(routes) {
		t.Fatalf("got %d reports, want %d", len(reps), len(routes))
	}
	for i, rep := range reps {
		if rep.Route.Name != routes[i].Name {
			t.Errorf("report %d is %q, want %q", i, rep.Route.Name, routes[i].Name)
		}
		if len(rep.Summaries) != 1 {
			t.Errorf("%s: %d summaries, want 1", rep.Route.Name, len(rep.Summaries))
		}
	}
	// Each half is rebased: the second half's power minimum is at its start.
	s, _ := reps[1].Summary(compute.SeriesEnginePower)
	if s.MinIndex != 10 || s.MinElapsedH != 0 {
		t.Errorf("route-2 min at row %d (%vh), want row 10 (0h)", s.MinIndex, s.MinElapsedH)
	}
}

func TestReportAll_Cancelled(t *testing.T) {
	tbl, d := derivedFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ReportAll(ctx, route.Halves(tbl), tbl, d, Params{}); err == nil {
		t.Error("ReportAll() on a cancelled context should fail")
	}
}
