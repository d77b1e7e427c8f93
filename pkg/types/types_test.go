package types

import (
	"math"
	"testing"
)

func TestDiv(t *testing.T) {
	tests := []struct {
		name      string
		num, den  float64
		want      float64
		undefined bool
	}{
		{"plain", 10, 4, 2.5, false},
		{"zero denominator", 10, 0, 0, true},
		{"undefined numerator", math.NaN(), 4, 0, true},
		{"undefined denominator", 1, math.NaN(), 0, true},
		{"zero numerator is a value", 0, 4, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Div(tc.num, tc.den)
			if IsUndefined(got) != tc.undefined {
				t.Fatalf("Div(%v, %v) = %v, undefined=%v", tc.num, tc.den, got, tc.undefined)
			}
			if !tc.undefined && got != tc.want {
				t.Errorf("Div(%v, %v) = %v, want %v", tc.num, tc.den, got, tc.want)
			}
		})
	}
}

func TestIsUndefined_Infinity(t *testing.T) {
	if !IsUndefined(math.Inf(1)) || !IsUndefined(math.Inf(-1)) {
		t.Error("infinities should be undefined")
	}
	if IsUndefined(0) {
		t.Error("zero must not be undefined")
	}
}

func TestZeroFill_OnlyReplacesUndefined(t *testing.T) {
	in := []float64{1, Undefined(), 3}
	out := ZeroFill(in)
	if out[0] != 1 || out[1] != 0 || out[2] != 3 {
		t.Errorf("ZeroFill = %v", out)
	}
	if !IsUndefined(in[1]) {
		t.Error("ZeroFill must not modify its input")
	}
}

func TestSeries_Defined(t *testing.T) {
	s := Series{Name: "x", Values: []float64{Undefined(), 0, 2, Undefined()}}
	if s.Len() != 4 {
		t.Errorf("Len = %d, want 4", s.Len())
	}
	if s.Defined() != 2 {
		t.Errorf("Defined = %d, want 2", s.Defined())
	}
}

func TestReading_HasValue(t *testing.T) {
	if (Reading{Value: Undefined()}).HasValue() {
		t.Error("blank reading reported a value")
	}
	if !(Reading{Value: 0}).HasValue() {
		t.Error("zero reading reported no value")
	}
}

func TestMul_PropagatesUndefined(t *testing.T) {
	if got := Mul(3, 4); got != 12 {
		t.Errorf("Mul(3, 4) = %v, want 12", got)
	}
	if !IsUndefined(Mul(Undefined(), 0)) {
		t.Error("Mul(undefined, 0) should stay undefined, not collapse to zero")
	}
}
