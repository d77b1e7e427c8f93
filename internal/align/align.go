package align

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vesselperf/vesselperf/internal/config"
	"github.com/vesselperf/vesselperf/pkg/types"
)

// FillPolicy selects the gap-filling direction.
type FillPolicy int

const (
	Forward FillPolicy = iota
	Backward
)

func (p FillPolicy) String() string {
	switch p {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	}
	return fmt.Sprintf("FillPolicy(%d)", int(p))
}

// ParseFillPolicy maps a configuration name to a FillPolicy.
func ParseFillPolicy(s string) (FillPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "ffill", "":
		return Forward, nil
	case "backward", "bfill":
		return Backward, nil
	}
	return 0, &config.Error{Param: "log.fill", Reason: fmt.Sprintf("unknown fill policy %q (expected forward|backward)", s)}
}

// ErrUnknownSensor is returned by Table.Column for a sensor that was not
// requested when the table was built.
var ErrUnknownSensor = errors.New("sensor not aligned")

// MissingSensorError reports sensors of interest with zero readings.
type MissingSensorError struct {
	Sensors []string
}

func (e *MissingSensorError) Error() string {
	return "align: no readings for sensor(s): " + strings.Join(e.Sensors, ", ")
}

// Table is an aligned, immutable view of the log. Timestamps are strictly
// increasing; every column has one cell per timestamp.
type Table struct {
	times   []time.Time
	sensors []string
	columns map[string][]float64
	units   map[string]string
	policy  FillPolicy
}

// Align builds a Table over sensors from readings. The timestamp axis is the
// sorted set of distinct timestamps at which any sensor of interest reported,
// including readings with a blank value.
//
// A sensor id that is empty, duplicated or not slash-delimited is a
// configuration error and nothing is built. Sensors with no readings produce
// a *MissingSensorError; the returned table is still usable and holds an
// all-undefined column for each of them.
func Align(readings []types.Reading, sensors []string, policy FillPolicy) (*Table, error) {
	if policy != Forward && policy != Backward {
		return nil, &config.Error{Param: "log.fill", Reason: fmt.Sprintf("unsupported fill policy %v", policy)}
	}
	index := make(map[string]int, len(sensors))
	for i, id := range sensors {
		if id == "" || !strings.Contains(id, "/") {
			return nil, &config.Error{Param: "sensors", Reason: fmt.Sprintf("%v: %q", ErrUnknownSensor, id)}
		}
		if _, dup := index[id]; dup {
			return nil, &config.Error{Param: "sensors", Reason: fmt.Sprintf("sensor %q requested twice", id)}
		}
		index[id] = i
	}

	var rows []types.Reading
	for _, r := range readings {
		if _, ok := index[r.SensorID]; ok {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.Before(rows[j].Timestamp)
		}
		return rows[i].Seq < rows[j].Seq
	})

	t := &Table{
		sensors: append([]string(nil), sensors...),
		columns: make(map[string][]float64, len(sensors)),
		units:   make(map[string]string, len(sensors)),
		policy:  policy,
	}
	for i, r := range rows {
		if i == 0 || !r.Timestamp.Equal(t.times[len(t.times)-1]) {
			t.times = append(t.times, r.Timestamp)
		}
	}
	n := len(t.times)
	for _, id := range sensors {
		t.columns[id] = types.UndefinedSlice(n)
	}

	// Exact matches. Rows are in (time, seq) order so a later line for the
	// same sensor and timestamp overwrites an earlier one. Blank values
	// mark the timestamp but are not observations.
	seen := make(map[string]bool, len(sensors))
	row := -1
	for i, r := range rows {
		if i == 0 || !r.Timestamp.Equal(rows[i-1].Timestamp) {
			row++
		}
		if r.Unit != "" {
			t.units[r.SensorID] = r.Unit
		}
		if r.HasValue() {
			t.columns[r.SensorID][row] = r.Value
			seen[r.SensorID] = true
		}
	}

	for _, id := range sensors {
		fill(t.columns[id], policy)
	}

	var missing []string
	for _, id := range sensors {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return t, &MissingSensorError{Sensors: missing}
	}
	return t, nil
}

// fill carries observed values into undefined cells in place.
func fill(col []float64, policy FillPolicy) {
	last := types.Undefined()
	if policy == Forward {
		for i, v := range col {
			if types.IsUndefined(v) {
				col[i] = last
				continue
			}
			last = v
		}
		return
	}
	for i := len(col) - 1; i >= 0; i-- {
		if types.IsUndefined(col[i]) {
			col[i] = last
			continue
		}
		last = col[i]
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.times) }

// Sensors returns the aligned sensor ids in request order.
func (t *Table) Sensors() []string { return append([]string(nil), t.sensors...) }

// Policy returns the fill policy the table was built with.
func (t *Table) Policy() FillPolicy { return t.policy }

// Times returns a copy of the timestamp axis.
func (t *Table) Times() []time.Time { return append([]time.Time(nil), t.times...) }

// Time returns the timestamp of row i.
func (t *Table) Time(i int) time.Time { return t.times[i] }

// Unit returns the last non-empty unit reported for a sensor.
func (t *Table) Unit(id string) string { return t.units[id] }

// Column returns a copy of the cells for sensor id.
func (t *Table) Column(id string) ([]float64, error) {
	col, ok := t.columns[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSensor, id)
	}
	return append([]float64(nil), col...), nil
}

// Series returns the column for id as a named Series.
func (t *Table) Series(id string) (types.Series, error) {
	col, err := t.Column(id)
	if err != nil {
		return types.Series{}, err
	}
	return types.Series{Name: id, Unit: t.units[id], Sources: []string{id}, Values: col}, nil
}

// ElapsedHours returns hours since the first row for every row.
func (t *Table) ElapsedHours() []float64 {
	out := make([]float64, len(t.times))
	for i, ts := range t.times {
		out[i] = ts.Sub(t.times[0]).Hours()
	}
	return out
}

// Index returns the first row whose timestamp is at or after ts, or Len()
// when every row is earlier.
func (t *Table) Index(ts time.Time) int {
	return sort.Search(len(t.times), func(i int) bool { return !t.times[i].Before(ts) })
}
