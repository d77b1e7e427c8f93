package route

import (
	"fmt"
	"time"

	"github.com/vesselperf/vesselperf/internal/config"
)

// Table is the slice of an aligned table the segmenter needs.
type Table interface {
	Len() int
	Index(ts time.Time) int
	ElapsedHours() []float64
}

// Spec bounds one route. Exactly one of the index pair or the time pair is
// set.
type Spec struct {
	Name      string
	Start     *int
	End       *int
	StartTime *time.Time
	EndTime   *time.Time
}

// IndexSpec returns a Spec bounded by rows [start, end).
func IndexSpec(name string, start, end int) Spec {
	return Spec{Name: name, Start: &start, End: &end}
}

// TimeSpec returns a Spec bounded by [from, to].
func TimeSpec(name string, from, to time.Time) Spec {
	return Spec{Name: name, StartTime: &from, EndTime: &to}
}

// SpecsFromConfig converts configured routes to Specs.
func SpecsFromConfig(routes []config.Route) []Spec {
	out := make([]Spec, 0, len(routes))
	for _, r := range routes {
		out = append(out, Spec{
			Name:      r.Name,
			Start:     r.StartIndex,
			End:       r.EndIndex,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
		})
	}
	return out
}

// Route is a contiguous half-open row range [Start, End) of the table.
type Route struct {
	Name  string
	Start int
	End   int

	// OffsetH is the table's elapsed hours at Start. Route-local elapsed
	// time is the table's minus OffsetH.
	OffsetH float64
}

// Len returns the number of rows in the route.
func (r Route) Len() int { return r.End - r.Start }

// Slice returns the route's cells of a column aligned with the table.
// The result aliases values.
func (r Route) Slice(values []float64) []float64 {
	return values[r.Start:r.End]
}

// Through returns r extended to the first row that follows it, clamped to a
// table of n rows. Adjacent routes then share their boundary row, so interval
// totals over a contiguous partition add up to the whole table's.
func (r Route) Through(n int) Route {
	if r.Len() > 0 && r.End < n {
		r.End++
	}
	return r
}

// Elapsed returns the route-local elapsed hours, starting at zero.
func (r Route) Elapsed(t Table) []float64 {
	full := t.ElapsedHours()
	out := make([]float64, r.Len())
	for i := range out {
		out[i] = full[r.Start+i] - r.OffsetH
	}
	return out
}

// BoundaryError reports a route boundary that does not fit the table. It
// unwraps to a *config.Error naming the configured parameter.
type BoundaryError struct {
	Index  int // position in the slice passed to Segment
	Route  string
	Param  string
	Reason string
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("route %q: %s: %s", e.Route, e.Param, e.Reason)
}

func (e *BoundaryError) Unwrap() error {
	return &config.Error{
		Param:  fmt.Sprintf("routes[%d].%s", e.Index, e.Param),
		Reason: fmt.Sprintf("route %q: %s", e.Route, e.Reason),
	}
}

// Segment resolves specs against t. With no specs it falls back to Halves.
func Segment(t Table, specs []Spec) ([]Route, error) {
	n := t.Len()
	if len(specs) == 0 {
		return Halves(t), nil
	}
	elapsed := t.ElapsedHours()
	out := make([]Route, 0, len(specs))
	for i, s := range specs {
		start, end, err := resolve(t, n, s)
		if err != nil {
			err.Index = i
			return nil, err
		}
		r := Route{Name: s.Name, Start: start, End: end}
		if r.Len() > 0 {
			r.OffsetH = elapsed[start]
		}
		out = append(out, r)
	}
	return out, nil
}

func resolve(t Table, n int, s Spec) (int, int, *BoundaryError) {
	bad := func(param, format string, args ...any) *BoundaryError {
		return &BoundaryError{Route: s.Name, Param: param, Reason: fmt.Sprintf(format, args...)}
	}
	switch {
	case s.Start != nil && s.End != nil:
		start, end := *s.Start, *s.End
		if start < 0 {
			return 0, 0, bad("start_index", "negative start %d", start)
		}
		if end < start {
			return 0, 0, bad("end_index", "end %d before start %d", end, start)
		}
		if start >= n {
			return 0, 0, bad("start_index", "start %d beyond last row %d", start, n-1)
		}
		if end > n {
			end = n
		}
		return start, end, nil

	case s.StartTime != nil && s.EndTime != nil:
		if s.EndTime.Before(*s.StartTime) {
			return 0, 0, bad("end_time", "end before start")
		}
		start := t.Index(*s.StartTime)
		end := t.Index(s.EndTime.Add(time.Nanosecond))
		if start >= n {
			return 0, 0, bad("start_time", "after the last row")
		}
		if end == start {
			return 0, 0, bad("end_time", "no rows between %s and %s", s.StartTime.Format(time.RFC3339), s.EndTime.Format(time.RFC3339))
		}
		return start, end, nil
	}
	return 0, 0, bad("boundaries", "need start/end index or start/end time")
}

// Halves splits the table exactly in half into "route-1" and "route-2". For
// an odd row count the second route is one row longer.
func Halves(t Table) []Route {
	n := t.Len()
	mid := n / 2
	elapsed := t.ElapsedHours()
	first := Route{Name: "route-1", Start: 0, End: mid}
	second := Route{Name: "route-2", Start: mid, End: n}
	if first.Len() > 0 {
		first.OffsetH = elapsed[0]
	}
	if second.Len() > 0 {
		second.OffsetH = elapsed[mid]
	}
	return []Route{first, second}
}
