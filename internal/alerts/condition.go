package alerts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vesselperf/vesselperf/internal/config"
	"github.com/vesselperf/vesselperf/pkg/types"
)

// Condition is a parsed rule condition.
type Condition struct {
	Field     string
	Op        string
	Threshold float64
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %g", c.Field, c.Op, c.Threshold)
}

// ParseCondition parses a "field op value" expression over a report field.
func ParseCondition(cond string) (Condition, error) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return Condition{}, fmt.Errorf("alerts: condition %q: want \"field op value\"", cond)
	}
	field, op, rhs := parts[0], parts[1], parts[2]
	if !types.IsReportField(field) {
		return Condition{}, fmt.Errorf("alerts: condition %q: unknown field %q", cond, field)
	}
	if !config.IsOperator(op) {
		return Condition{}, fmt.Errorf("alerts: condition %q: unknown operator %q", cond, op)
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return Condition{}, fmt.Errorf("alerts: condition %q: threshold: %w", cond, err)
	}
	return Condition{Field: field, Op: op, Threshold: threshold}, nil
}

// Eval tests the condition against fields. It returns whether it fires and
// the value it compared. Unknown fields and undefined values never fire.
func (c Condition) Eval(fields map[string]float64) (bool, float64) {
	v, ok := fields[c.Field]
	if !ok || types.IsUndefined(v) {
		return false, types.Undefined()
	}
	return compareFloat(v, c.Op, c.Threshold), v
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	default:
		return false
	}
}
