package compute

import (
	"math"

	"github.com/vesselperf/vesselperf/pkg/types"
)

// Geometry describes a four-stroke engine running at a fixed speed.
type Geometry struct {
	BoreM     float64
	StrokeM   float64
	Cylinders int
	RPM       float64
}

// Displacement returns the swept volume of one cylinder in m³.
func Displacement(boreM, strokeM float64) float64 {
	r := boreM / 2
	return math.Pi * r * r * strokeM
}

// Torque returns shaft torque in N·m at powerKW and rpm.
func Torque(powerKW, rpm float64) float64 {
	return types.Div(powerKW*wattsPerKW, 2*math.Pi*rpm/60)
}

// BMEP returns the brake mean effective pressure in Pa of a four-stroke
// engine: 2·P_W / (V_d·cylinders·rpm/60).
func BMEP(powerKW float64, g Geometry) float64 {
	vd := Displacement(g.BoreM, g.StrokeM)
	return types.Div(2*powerKW*wattsPerKW, vd*float64(g.Cylinders)*g.RPM/60)
}
