package types

import (
	"math"
	"time"
)

// Reading is one event from the vessel log. Readings are immutable once
// parsed. Seq is the zero-based line number in the source log and is used to
// break ties between readings that share a sensor and timestamp.
type Reading struct {
	Timestamp time.Time
	SensorID  string
	Value     float64 // Undefined() when the log left the value blank
	Unit      string
	Seq       int
}

// HasValue reports whether the reading carries an observed value.
func (r Reading) HasValue() bool {
	return !IsUndefined(r.Value)
}

// Series is a named numeric series aligned with a table's timestamp axis.
type Series struct {
	Name    string
	Unit    string
	Sources []string // sensor ids the series was derived from
	Values  []float64
}

// Len returns the number of cells in the series.
func (s Series) Len() int { return len(s.Values) }

// Defined returns the number of cells that carry a value.
func (s Series) Defined() int {
	n := 0
	for _, v := range s.Values {
		if !IsUndefined(v) {
			n++
		}
	}
	return n
}

// Summary holds scalar reductions of one series over one route.
// Extremum indices are row indices into the full aligned table; the
// matching *ElapsedH fields are route-local elapsed hours. Every float
// field is Undefined() when the route has no defined cell for the series.
type Summary struct {
	Series      string
	Unit        string
	Count       int
	Defined     int
	Mean        float64
	Integral    float64 // trapezoidal, value·hours
	Min         float64
	MinIndex    int
	MinElapsedH float64
	Max         float64
	MaxIndex    int
	MaxElapsedH float64
}

// Undefined returns the marker used for cells without a value.
func Undefined() float64 {
	return math.NaN()
}

// IsUndefined reports whether v is the undefined marker. Infinities are
// treated as undefined too: they only arise from a zero denominator.
func IsUndefined(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Div returns num/den, or Undefined() when either operand is undefined or
// den is zero.
func Div(num, den float64) float64 {
	if IsUndefined(num) || IsUndefined(den) || den == 0 {
		return Undefined()
	}
	return num / den
}

// Mul returns a·b, or Undefined() when either operand is undefined.
func Mul(a, b float64) float64 {
	if IsUndefined(a) || IsUndefined(b) {
		return Undefined()
	}
	return a * b
}

// ZeroFill returns a copy of values with every undefined cell replaced by 0.
// Use it only where "unmeasured means zero" is the intended semantics, e.g.
// summing fuel flow across engines when one of them does not report.
func ZeroFill(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if IsUndefined(v) {
			continue
		}
		out[i] = v
	}
	return out
}

// UndefinedSlice returns n undefined cells.
func UndefinedSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = Undefined()
	}
	return out
}
