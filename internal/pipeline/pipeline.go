package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/vesselperf/vesselperf/internal/aggregate"
	"github.com/vesselperf/vesselperf/internal/align"
	"github.com/vesselperf/vesselperf/internal/alerts"
	"github.com/vesselperf/vesselperf/internal/compute"
	"github.com/vesselperf/vesselperf/internal/config"
	"github.com/vesselperf/vesselperf/internal/export"
	"github.com/vesselperf/vesselperf/internal/reader"
	"github.com/vesselperf/vesselperf/internal/route"
)

// Result is everything one run produced.
type Result struct {
	Stats   reader.Stats
	Table   *align.Table
	Derived *compute.Derived
	Routes  []route.Route
	Reports []aggregate.Report
	Alerts  []alerts.Alert

	// Missing lists sensors of interest with no readings in the log.
	Missing []string
}

// Run executes the pipeline for cfg, reading the log from cfg.Log.Path.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	if cfg.Log.Path == "" {
		return nil, &config.Error{Param: "log.path", Reason: "log path is required"}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	f, err := os.Open(cfg.Log.Path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: open log: %w", err)
	}
	defer f.Close()
	return RunReader(ctx, cfg, f)
}

// RunReader executes the pipeline for cfg over the log in r.
func RunReader(ctx context.Context, cfg *config.Config, r io.Reader) (*Result, error) {
	start := time.Now()
	policy, err := align.ParseFillPolicy(cfg.Log.Fill)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	sensors := cfg.Sensors()
	interest := make(map[string]struct{}, len(sensors))
	for _, id := range sensors {
		interest[id] = struct{}{}
	}
	read, err := reader.Read(r, func(id string) bool {
		_, ok := interest[id]
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	res := &Result{Stats: read.Stats}

	tbl, err := align.Align(read.Readings, sensors, policy)
	var missing *align.MissingSensorError
	switch {
	case errors.As(err, &missing):
		res.Missing = missing.Sensors
		slog.Warn("pipeline: sensors missing from log, continuing with undefined columns", "sensors", missing.Sensors)
	case err != nil:
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	res.Table = tbl
	if tbl.Len() == 0 {
		return nil, fmt.Errorf("pipeline: no readings for any configured sensor")
	}

	if res.Routes, err = route.Segment(tbl, route.SpecsFromConfig(cfg.Routes)); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if len(cfg.Routes) == 0 {
		slog.Info("pipeline: no routes configured, splitting voyage in half", "rows", tbl.Len())
	}

	params := compute.ParamsFromConfig(cfg)
	if res.Derived, err = compute.Derive(tbl, params); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	engines := make([]string, 0, len(cfg.Engines))
	for _, e := range cfg.Engines {
		engines = append(engines, e.ID)
	}
	res.Reports, err = aggregate.ReportAll(ctx, res.Routes, tbl, res.Derived, aggregate.Params{
		Engines:    engines,
		BudgetKg:   cfg.Fuel.BudgetKg,
		LHVMJPerKg: cfg.Fuel.LHVMJPerKg,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	res.Alerts = alerts.Evaluate(cfg.Alerts, res.Reports)

	if err := writeExports(cfg.Export, res); err != nil {
		return nil, err
	}

	slog.Info("pipeline: run complete",
		"rows", tbl.Len(),
		"series", len(res.Derived.Series()),
		"routes", len(res.Routes),
		"alerts", len(res.Alerts),
		"dropped_lines", res.Stats.Dropped(),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

func writeExports(cfg config.ExportConfig, res *Result) error {
	if cfg.Parquet != "" {
		n, err := export.WriteParquet(cfg.Parquet, res.Table, res.Derived)
		if err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
		slog.Info("pipeline: parquet written", "path", cfg.Parquet, "rows", n)
	}
	if cfg.Metrics != "" {
		if err := export.WriteMetricsFile(cfg.Metrics, res.Reports); err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
		slog.Info("pipeline: metrics written", "path", cfg.Metrics)
	}
	return nil
}
