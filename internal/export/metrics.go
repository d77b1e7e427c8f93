package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/vesselperf/vesselperf/internal/aggregate"
	"github.com/vesselperf/vesselperf/pkg/types"
)

const metricPrefix = "vesselperf_"

// fieldHelp documents the per-route gauges.
var fieldHelp = map[string]string{
	aggregate.FieldEnergyEfficiency: "Route energy balance efficiency, integrated propulsion energy over fuel energy (percent).",
	aggregate.FieldFuelBurned:       "Fuel burned over the route (kg).",
	aggregate.FieldCO2:              "CO2 emitted over the route (kg).",
	aggregate.FieldMeanFuelFlow:     "Mean total fuel mass flow (kg/h).",
	aggregate.FieldMeanImpliedFlow:  "Mean fuel flow implied by the power-chain efficiency model (kg/h).",
	aggregate.FieldMeanCombinedEta:  "Mean power-weighted engine efficiency (percent).",
	aggregate.FieldMeanPooledEta:    "Mean pooled-load engine efficiency (percent).",
	aggregate.FieldMeanChainEta:     "Mean propulsion chain efficiency (percent).",
	aggregate.FieldPropulsionEnergy: "Propulsion energy delivered over the route (kWh).",
	aggregate.FieldEndurance:        "Hours until the fuel budget is exhausted at the route's mean consumption.",
	aggregate.FieldEnduranceDays:    "Days until the fuel budget is exhausted at the route's mean consumption.",
	aggregate.FieldDurationH:        "Route duration (hours).",
}

// MetricFamilies converts reports to gauge families: one family per route
// figure labelled by route, plus series means labelled by route and series.
// Families are sorted by name.
func MetricFamilies(reports []aggregate.Report) []*dto.MetricFamily {
	fams := make(map[string]*dto.MetricFamily)
	gauge := func(name, help string, v float64, labels ...string) {
		if types.IsUndefined(v) {
			return
		}
		mf, ok := fams[name]
		if !ok {
			mf = &dto.MetricFamily{
				Name: proto.String(name),
				Help: proto.String(help),
				Type: dto.MetricType_GAUGE.Enum(),
			}
			fams[name] = mf
		}
		m := &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(v)}}
		for i := 0; i+1 < len(labels); i += 2 {
			m.Label = append(m.Label, &dto.LabelPair{Name: proto.String(labels[i]), Value: proto.String(labels[i+1])})
		}
		mf.Metric = append(mf.Metric, m)
	}

	for i := range reports {
		rep := &reports[i]
		name := rep.Route.Name
		for field, v := range rep.Fields() {
			gauge(metricPrefix+"route_"+field, fieldHelp[field], v, "route", name)
		}
		gauge(metricPrefix+"route_rows", "Rows in the route.", float64(rep.Route.Len()), "route", name)
		for _, s := range rep.Summaries {
			gauge(metricPrefix+"series_mean", "Mean of a derived series over the route.", s.Mean, "route", name, "series", s.Series)
			gauge(metricPrefix+"series_max", "Maximum of a derived series over the route.", s.Max, "route", name, "series", s.Series)
			gauge(metricPrefix+"series_min", "Minimum of a derived series over the route.", s.Min, "route", name, "series", s.Series)
		}
	}

	names := make([]string, 0, len(fams))
	for n := range fams {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*dto.MetricFamily, 0, len(names))
	for _, n := range names {
		out = append(out, fams[n])
	}
	return out
}

// WriteMetrics writes reports to w in the Prometheus text format.
func WriteMetrics(w io.Writer, reports []aggregate.Report) error {
	for _, mf := range MetricFamilies(reports) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("export: metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteMetricsFile writes reports to path atomically, so a textfile
// collector never reads a partial file.
func WriteMetricsFile(path string, reports []aggregate.Report) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".vesselperf-*.prom")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("export: %w", err)
	}

	if err := WriteMetrics(tmp, reports); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
