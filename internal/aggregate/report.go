package aggregate

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vesselperf/vesselperf/internal/compute"
	"github.com/vesselperf/vesselperf/internal/route"
	"github.com/vesselperf/vesselperf/pkg/types"
)

// Field names exposed by Report.Fields, usable in alert conditions.
const (
	FieldEnergyEfficiency = types.FieldEnergyEfficiency
	FieldFuelBurned       = types.FieldFuelBurned
	FieldCO2              = types.FieldCO2
	FieldMeanFuelFlow     = types.FieldMeanFuelFlow
	FieldMeanImpliedFlow  = types.FieldMeanImpliedFlow
	FieldMeanCombinedEta  = types.FieldMeanCombinedEta
	FieldMeanPooledEta    = types.FieldMeanPooledEta
	FieldMeanChainEta     = types.FieldMeanChainEta
	FieldPropulsionEnergy = types.FieldPropulsionEnergy
	FieldEndurance        = types.FieldEndurance
	FieldEnduranceDays    = types.FieldEnduranceDays
	FieldDurationH        = types.FieldDurationH
)

// Params configures Report.
type Params struct {
	// Engines are the engine ids whose thermal efficiency extrema are
	// reported.
	Engines []string

	BudgetKg   float64
	LHVMJPerKg float64

	// Series limits the summarised series. Empty means all of them.
	Series []string
}

// Extremum is an engine's operating point at a thermal efficiency extremum.
type Extremum struct {
	Engine   string
	Kind     string // "min" | "max"
	Row      int
	ElapsedH float64
	EtaTh    float64
	PowerKW  float64
	TorqueNm float64
	BMEPPa   float64
}

// Report is the per-route result.
type Report struct {
	Route route.Route
	// Summaries' integrals, like the route totals below, run to the first
	// row of the following route.
	Summaries []types.Summary
	Extrema   []Extremum

	DurationH           float64
	FuelBurnedKg        float64
	CO2Kg               float64
	MeanFuelFlowKgph    float64
	PropulsionEnergyKWh float64
	EnergyEfficiencyPct float64
	EnduranceH          float64
}

// Summary returns the summary for series name.
func (r *Report) Summary(name string) (types.Summary, bool) {
	for _, s := range r.Summaries {
		if s.Series == name {
			return s, true
		}
	}
	return types.Summary{}, false
}

// Fields returns the route's scalar figures by name.
func (r *Report) Fields() map[string]float64 {
	mean := func(name string) float64 {
		if s, ok := r.Summary(name); ok {
			return s.Mean
		}
		return types.Undefined()
	}
	return map[string]float64{
		FieldEnergyEfficiency: r.EnergyEfficiencyPct,
		FieldFuelBurned:       r.FuelBurnedKg,
		FieldCO2:              r.CO2Kg,
		FieldMeanFuelFlow:     r.MeanFuelFlowKgph,
		FieldMeanImpliedFlow:  mean(compute.SeriesImpliedFuelFlow),
		FieldMeanCombinedEta:  mean(compute.SeriesCombinedEta),
		FieldMeanPooledEta:    mean(compute.SeriesPooledEta),
		FieldMeanChainEta:     mean(compute.SeriesChainEta),
		FieldPropulsionEnergy: r.PropulsionEnergyKWh,
		FieldEndurance:        r.EnduranceH,
		FieldEnduranceDays:    types.Div(r.EnduranceH, 24),
		FieldDurationH:        r.DurationH,
	}
}

// Build reduces the derived series of one route.
func Build(r route.Route, t route.Table, d *compute.Derived, p Params) Report {
	elapsed := r.Elapsed(t)
	// Totals run to the next route's first row.
	through := r.Through(t.Len())
	closed := through.Elapsed(t)
	rep := Report{Route: r, DurationH: types.Undefined()}
	if n := len(closed); n > 0 {
		rep.DurationH = closed[n-1]
	}

	names := p.Series
	if len(names) == 0 {
		names = d.Names()
	}
	for _, name := range names {
		s, ok := d.Get(name)
		if !ok || name == compute.SeriesElapsed {
			continue
		}
		sum := Summarize(r, elapsed, s)
		sum.Integral = Integral(closed, through.Slice(s.Values))
		rep.Summaries = append(rep.Summaries, sum)
	}

	rep.FuelBurnedKg = span(through.Slice(d.Values(compute.SeriesCumulativeFuel)))
	rep.CO2Kg = span(through.Slice(d.Values(compute.SeriesCumulativeCO2)))

	rep.MeanFuelFlowKgph = Mean(r.Slice(d.Values(compute.SeriesFuelFlow)))
	rep.EnduranceH = Endurance(p.BudgetKg, rep.MeanFuelFlowKgph)

	flow := through.Slice(d.Values(compute.SeriesFuelFlow))
	power := through.Slice(d.Values(compute.SeriesPropulsionPower))
	rep.PropulsionEnergyKWh = Integral(closed, power)
	rep.EnergyEfficiencyPct = energyBalance(closed, power, flow, p.LHVMJPerKg)

	for _, id := range p.Engines {
		rep.Extrema = append(rep.Extrema, engineExtrema(r, elapsed, d, id)...)
	}
	return rep
}

// ReportAll builds one report per route concurrently, preserving order.
func ReportAll(ctx context.Context, routes []route.Route, t route.Table, d *compute.Derived, p Params) ([]Report, error) {
	out := make([]Report, len(routes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range routes {
		i, r := i, r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = Build(r, t, d, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// span returns last minus first defined cell. Cumulative series are only
// undefined in a leading or trailing run, so the defined cells are
// contiguous.
func span(cum []float64) float64 {
	_, ys, _ := defined(nil, cum)
	if len(ys) == 0 {
		return types.Undefined()
	}
	return ys[len(ys)-1] - ys[0]
}

// energyBalance is the route-level form of the energy balance: integrated
// propulsion energy over integrated fuel energy, on rows where both power
// and fuel flow are known.
func energyBalance(elapsed, powerKW, fuelKgph []float64, lhv float64) float64 {
	var xs, ps, fs []float64
	for i := range elapsed {
		if types.IsUndefined(powerKW[i]) || types.IsUndefined(fuelKgph[i]) {
			continue
		}
		xs = append(xs, elapsed[i])
		ps = append(ps, powerKW[i])
		fs = append(fs, fuelKgph[i])
	}
	if len(xs) < 2 {
		return types.Undefined()
	}
	return compute.EnergyBalanceEfficiency(Integral(xs, ps), Integral(xs, fs), lhv)
}

func engineExtrema(r route.Route, elapsed []float64, d *compute.Derived, id string) []Extremum {
	eta := r.Slice(d.Values(id + compute.SuffixThermalEta))
	power := r.Slice(d.Values(id + compute.SuffixPower))
	torque := r.Slice(d.Values(id + compute.SuffixTorque))
	bmep := r.Slice(d.Values(id + compute.SuffixBMEP))

	var out []Extremum
	at := func(kind string, v float64, i int) {
		if i < 0 {
			return
		}
		out = append(out, Extremum{
			Engine:   id,
			Kind:     kind,
			Row:      r.Start + i,
			ElapsedH: elapsed[i],
			EtaTh:    v,
			PowerKW:  power[i],
			TorqueNm: torque[i],
			BMEPPa:   bmep[i],
		})
	}
	v, i := Min(eta)
	at("min", v, i)
	v, i = Max(eta)
	at("max", v, i)
	return out
}
