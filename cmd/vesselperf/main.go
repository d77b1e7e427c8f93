package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/vesselperf/vesselperf/internal/config"
	"github.com/vesselperf/vesselperf/internal/pipeline"
	"github.com/vesselperf/vesselperf/pkg/types"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	logPath := flag.String("log", "", "override log.path from the config file")
	logLevel := flag.String("log-level", "info", "debug | info | warn | error")
	watch := flag.Bool("watch", false, "re-run the analysis whenever the config file changes")
	flag.Parse()

	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("vesselperf starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if *logPath != "" {
		cfg.Log.Path = *logPath
	}
	slog.Info("config loaded",
		"log", cfg.Log.Path,
		"engines", len(cfg.Engines),
		"thrusters", len(cfg.Thrusters),
		"routes", len(cfg.Routes),
		"density_kg_per_l", cfg.Fuel.DensityKgPerL,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil && !*watch {
		os.Exit(1)
	}
	if !*watch {
		return
	}

	if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
		next := *updated
		if *logPath != "" {
			next.Log.Path = *logPath
		}
		_ = run(ctx, &next)
	}); err != nil {
		slog.Error("config watcher stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("vesselperf shutting down")
}

// run executes one analysis and logs its reports and alerts.
func run(ctx context.Context, cfg *config.Config) error {
	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		slog.Error("analysis failed", "err", err)
		return err
	}

	if res.Stats.Dropped() > 0 {
		slog.Warn("log lines dropped",
			"bad_timestamp", res.Stats.BadTimestamp,
			"bad_value", res.Stats.BadValue,
			"malformed", res.Stats.Malformed)
	}
	for _, rep := range res.Reports {
		slog.Info("route summary",
			"route", rep.Route.Name,
			"rows", rep.Route.Len(),
			"duration_h", num(rep.DurationH),
			"fuel_burned_kg", num(rep.FuelBurnedKg),
			"co2_kg", num(rep.CO2Kg),
			"mean_fuel_flow_kgph", num(rep.MeanFuelFlowKgph),
			"propulsion_energy_kwh", num(rep.PropulsionEnergyKWh),
			"energy_efficiency_pct", num(rep.EnergyEfficiencyPct),
			"endurance_h", num(rep.EnduranceH),
		)
		for _, x := range rep.Extrema {
			slog.Debug("engine efficiency extremum",
				"route", rep.Route.Name,
				"engine", x.Engine,
				"kind", x.Kind,
				"elapsed_h", num(x.ElapsedH),
				"eta_th", num(x.EtaTh),
				"power_kw", num(x.PowerKW),
				"torque_nm", num(x.TorqueNm),
				"bmep_bar", num(x.BMEPPa/1e5),
			)
		}
	}
	for _, a := range res.Alerts {
		logAlert(a.Severity, a.Message, "rule", a.Rule, "route", a.Route, "value", num(a.Value))
	}
	return nil
}

func logAlert(severity, msg string, args ...any) {
	switch severity {
	case "critical":
		slog.Error("alert: "+msg, args...)
	case "info":
		slog.Info("alert: "+msg, args...)
	default:
		slog.Warn("alert: "+msg, args...)
	}
}

// num renders a figure for the JSON log; the JSON handler cannot encode NaN.
func num(v float64) string {
	if types.IsUndefined(v) {
		return "undefined"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
