package alerts

import (
	"fmt"
	"log/slog"

	"github.com/vesselperf/vesselperf/internal/aggregate"
	"github.com/vesselperf/vesselperf/internal/config"
)

const defaultSeverity = "warning"

// Alert is one rule firing on one route.
type Alert struct {
	Rule      string
	Route     string
	Severity  string
	Condition string
	Value     float64
	Message   string
}

// Evaluate tests every rule against every report, in rule then route order.
// Rules whose condition does not parse are logged and skipped.
func Evaluate(rules []config.AlertRule, reports []aggregate.Report) []Alert {
	var out []Alert
	for _, rule := range rules {
		cond, err := ParseCondition(rule.Condition)
		if err != nil {
			slog.Warn("alerts: skipping rule", "rule", rule.Name, "err", err)
			continue
		}
		severity := rule.Severity
		if severity == "" {
			severity = defaultSeverity
		}
		for i := range reports {
			fires, v := cond.Eval(reports[i].Fields())
			if !fires {
				continue
			}
			route := reports[i].Route.Name
			out = append(out, Alert{
				Rule:      rule.Name,
				Route:     route,
				Severity:  severity,
				Condition: rule.Condition,
				Value:     v,
				Message:   fmt.Sprintf("%s on %s: %s = %.4g (%s %g)", rule.Name, route, cond.Field, v, cond.Op, cond.Threshold),
			})
		}
	}
	return out
}
