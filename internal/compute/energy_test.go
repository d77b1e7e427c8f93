package compute

import (
	"math"
	"testing"

	"github.com/vesselperf/vesselperf/pkg/types"
)

func TestEnergyBalanceEfficiency(t *testing.T) {
	// 420 kW out of 100 kg/h at 42 MJ/kg: 420·3.6e6 / (100·42e6) = 36%.
	if got := EnergyBalanceEfficiency(420, 100, 42); !almostEqual(got, 36, 1e-9) {
		t.Errorf("EnergyBalanceEfficiency = %v, want 36", got)
	}
	if !types.IsUndefined(EnergyBalanceEfficiency(420, 0, 42)) {
		t.Error("zero fuel flow should give undefined efficiency")
	}
	if !types.IsUndefined(EnergyBalanceEfficiency(types.Undefined(), 100, 42)) {
		t.Error("undefined power should give undefined efficiency")
	}
}

func TestImpliedFuelFlow(t *testing.T) {
	// 420 kW at η_p 36% and 42 MJ/kg burns 100 kg/h.
	if got := ImpliedFuelFlow(420, 36, 42); !almostEqual(got, 100, 1e-9) {
		t.Errorf("ImpliedFuelFlow = %v, want 100", got)
	}
	if !types.IsUndefined(ImpliedFuelFlow(420, 0, 42)) {
		t.Error("zero η_p should give undefined flow")
	}
	if !types.IsUndefined(ImpliedFuelFlow(420, types.Undefined(), 42)) {
		t.Error("undefined η_p should give undefined flow")
	}
}

func TestEnergyBalanceAndPowerChainConverge(t *testing.T) {
	const (
		powerKW = 300.0
		lph     = 95.0
		lhv     = 42.0
	)
	fuel := MassFlow(lph, DensityLow)
	measured := EnergyBalanceEfficiency(powerKW, fuel, lhv)

	// Tune the chain so η_p equals the measured efficiency.
	combined := 40.0
	c := Chain{Generator: measured / combined, VSD: 1, Switchboard: 1, Other: 1}
	etaP := PowerChainEfficiency(combined, c)
	if !almostEqual(etaP, measured, 1e-9) {
		t.Fatalf("η_p = %v, want %v", etaP, measured)
	}
	if implied := ImpliedFuelFlow(powerKW, etaP, lhv); !almostEqual(implied, fuel, 1e-9) {
		t.Errorf("implied flow %v, measured %v: tuned views should agree", implied, fuel)
	}

	// With the stock chain the two views disagree by the chain residual.
	stock := Chain{Generator: 0.96, VSD: 0.97, Switchboard: 0.99, Other: 0.97}
	if implied := ImpliedFuelFlow(powerKW, PowerChainEfficiency(combined, stock), lhv); almostEqual(implied, fuel, 1e-3) {
		t.Errorf("stock chain should not reproduce measured flow exactly")
	}
}

func TestThrusterPower(t *testing.T) {
	if got := ThrusterPower(40, 500); got != 200 {
		t.Errorf("ThrusterPower(40%%, 500) = %v, want 200", got)
	}
	if !types.IsUndefined(ThrusterPower(types.Undefined(), 500)) {
		t.Error("undefined feedback must stay undefined")
	}
}

func TestThermalEfficiency(t *testing.T) {
	// 225 kW from 50 kg/h at 45.4 MJ/kg.
	want := 225e3 / (50.0 / 3600 * 45.4e6) * 100
	if got := ThermalEfficiency(225, 50, 45.4); !almostEqual(got, want, 1e-9) {
		t.Errorf("ThermalEfficiency = %v, want %v", got, want)
	}
	if !types.IsUndefined(ThermalEfficiency(225, 0, 45.4)) {
		t.Error("zero fuel flow should give undefined thermal efficiency")
	}
}

func TestSpecificFuelConsumption(t *testing.T) {
	if got := SpecificFuelConsumption(200, 50); got != 250 {
		t.Errorf("SFC = %v, want 250 g/kWh", got)
	}
	if !types.IsUndefined(SpecificFuelConsumption(0, 50)) {
		t.Error("idle engine should give undefined SFC")
	}
}

func TestTorqueAndBMEP(t *testing.T) {
	g := Geometry{BoreM: 0.127, StrokeM: 0.154, Cylinders: 8, RPM: 1800}

	vd := Displacement(g.BoreM, g.StrokeM)
	if want := math.Pi * 0.0635 * 0.0635 * 0.154; !almostEqual(vd, want, 1e-15) {
		t.Errorf("Displacement = %v, want %v", vd, want)
	}

	wantT := 225e3 / (2 * math.Pi * 30)
	if got := Torque(225, g.RPM); !almostEqual(got, wantT, 1e-9) {
		t.Errorf("Torque = %v, want %v", got, wantT)
	}

	wantB := 2 * 225e3 / (vd * 8 * 30)
	if got := BMEP(225, g); !almostEqual(got, wantB, 1e-6) {
		t.Errorf("BMEP = %v, want %v", got, wantB)
	}
	if !types.IsUndefined(Torque(225, 0)) {
		t.Error("zero rpm should give undefined torque")
	}
}

func TestSmoothing(t *testing.T) {
	u := types.Undefined()
	in := []float64{u, 2, 4, u, 6}

	run := RunningAverage(in)
	if !types.IsUndefined(run[0]) || run[1] != 2 || run[2] != 3 || run[3] != 3 || run[4] != 4 {
		t.Errorf("RunningAverage = %v", run)
	}

	roll := RollingMean(in, 2)
	want := []float64{u, 2, 3, 4, 6}
	for i := range want {
		if types.IsUndefined(want[i]) != types.IsUndefined(roll[i]) ||
			(!types.IsUndefined(want[i]) && !almostEqual(roll[i], want[i], 1e-12)) {
			t.Errorf("RollingMean[%d] = %v, want %v", i, roll[i], want[i])
		}
	}

	gap := RollingMean([]float64{1, u, u, 5}, 2)
	if !types.IsUndefined(gap[2]) {
		t.Errorf("window without defined cells = %v, want undefined", gap[2])
	}
}
