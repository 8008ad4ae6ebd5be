package engine

import (
	"math"

	"github.com/pthm-cable/aerosol/config"
	"github.com/pthm-cable/aerosol/renderer"
	"github.com/pthm-cable/aerosol/telemetry"
)

// Params is the user-tunable parameter surface. Owned exclusively by the
// Engine and mutated only through the clamping setters below, so out-of-range
// input can never reach the simulation.
type Params struct {
	Color    renderer.RGB
	Material renderer.Material

	NozzleSize float64 // px, [2,120]
	Softness   float64 // [0.70,0.95]
	Opacity    float64 // [0.80,1.00]
	Flow       float64 // [0.80,1.20]

	ScatterRadius float64 // multiplier
	ScatterAmount float64 // multiplier
	ScatterSize   float64 // multiplier
	Overspray     float64 // [0,1]

	Distance float64 // simulated px, [2,400]
	Pressure float64 // [0,1]

	DripsEnabled    bool
	DripThreshold   float64 // [0.05,1.5]
	DripGravity     float64 // px/s^2, [50,600]
	DripViscosity   float64 // 1/s, [0.2,6]
	DripEvaporation float64 // 1/s, [0.005,0.5]

	LineDynamics     bool
	LineDynRange     float64 // [0,1], spread of the speed->thickness response
	LineDynCurve     float64 // [0.5,4], ease-in exponent
	LineDynFastSpeed float64 // px/s, [100,3000]
}

// defaultParams builds the initial parameter set from config defaults.
func defaultParams(cfg *config.Config) Params {
	sp := &cfg.Spray
	dp := &cfg.Drip

	color, ok := renderer.ParseHex(sp.ColorHex)
	if !ok {
		color = renderer.RGB{R: 28, G: 28, B: 30}
	}
	material := renderer.MaterialMatte
	if metallic, ok := renderer.ParseHex(sp.MetallicHex); ok && color == metallic {
		material = renderer.MaterialMetallic
	}

	return Params{
		Color:    color,
		Material: material,

		NozzleSize: sp.NozzleSize,
		Softness:   sp.Softness,
		Opacity:    sp.Opacity,
		Flow:       sp.Flow,

		ScatterRadius: sp.ScatterRadius,
		ScatterAmount: sp.ScatterAmount,
		ScatterSize:   sp.ScatterSize,
		Overspray:     sp.Overspray,

		Distance: sp.Distance,
		Pressure: sp.Pressure,

		DripsEnabled:    dp.Enabled,
		DripThreshold:   dp.Threshold,
		DripGravity:     dp.Gravity,
		DripViscosity:   dp.Viscosity,
		DripEvaporation: dp.Evaporation,

		LineDynamics:     true,
		LineDynRange:     1.0,
		LineDynCurve:     cfg.Grain.ThicknessEase,
		LineDynFastSpeed: cfg.Grain.FastSpeed,
	}
}

// clamp forces v into [lo,hi], reporting a diagnostic when it corrects.
// NaN maps to lo.
func (e *Engine) clamp(name string, v, lo, hi float64) float64 {
	fixed := v
	if math.IsNaN(v) {
		fixed = lo
	} else if v < lo {
		fixed = lo
	} else if v > hi {
		fixed = hi
	}
	if fixed != v || math.IsNaN(v) {
		e.diag.Report(telemetry.DiagEvent{
			Kind:      telemetry.DiagClampedParam,
			Name:      name,
			Original:  v,
			Corrected: fixed,
		})
	}
	return fixed
}

// SetColorHex sets the paint color from "#rrggbb". Malformed input is a
// no-op. The color's material class is decided here, once, never re-derived
// in render paths.
func (e *Engine) SetColorHex(hex string) {
	color, ok := renderer.ParseHex(hex)
	if !ok {
		return
	}
	e.params.Color = color
	if color == e.metallic {
		e.params.Material = renderer.MaterialMetallic
	} else {
		e.params.Material = renderer.MaterialMatte
	}
}

// SetNozzleSize sets the nozzle diameter in px, clamped to [2,120].
func (e *Engine) SetNozzleSize(px float64) {
	e.params.NozzleSize = e.clamp("nozzle_size", px, 2, 120)
}

// SetSoftness sets brush edge softness as a percentage, clamped to [70,95].
func (e *Engine) SetSoftness(pct float64) {
	e.params.Softness = e.clamp("softness", pct, 70, 95) / 100
}

// SetOpacity sets paint opacity as a percentage, clamped to [80,100].
func (e *Engine) SetOpacity(pct float64) {
	e.params.Opacity = e.clamp("opacity", pct, 80, 100) / 100
}

// SetFlow sets paint flow as a percentage, clamped to [80,120].
func (e *Engine) SetFlow(pct float64) {
	e.params.Flow = e.clamp("flow", pct, 80, 120) / 100
}

// SetScatterRadius sets the scatter radius multiplier as a percentage,
// clamped to [10,400].
func (e *Engine) SetScatterRadius(pct float64) {
	e.params.ScatterRadius = e.clamp("scatter_radius", pct, 10, 400) / 100
}

// SetScatterAmount sets the grain density multiplier as a percentage,
// clamped to [10,400].
func (e *Engine) SetScatterAmount(pct float64) {
	e.params.ScatterAmount = e.clamp("scatter_amount", pct, 10, 400) / 100
}

// SetScatterSize sets the grain size multiplier as a percentage, clamped to
// [10,400].
func (e *Engine) SetScatterSize(pct float64) {
	e.params.ScatterSize = e.clamp("scatter_size", pct, 10, 400) / 100
}

// SetOverspray sets the overspray halo amount as a percentage, clamped to
// [0,100].
func (e *Engine) SetOverspray(pct float64) {
	e.params.Overspray = e.clamp("overspray", pct, 0, 100) / 100
}

// SetDistance sets the simulated nozzle-to-canvas distance in px, clamped to
// [2,400].
func (e *Engine) SetDistance(px float64) {
	e.params.Distance = e.clamp("distance", px, 2, 400)
}

// SetPressure sets the trigger pressure, clamped to [0,1].
func (e *Engine) SetPressure(v float64) {
	e.params.Pressure = e.clamp("pressure", v, 0, 1)
}

// SetDripThreshold sets the wetness needed to seed drips, clamped to [0.05,1.5].
func (e *Engine) SetDripThreshold(v float64) {
	e.params.DripThreshold = e.clamp("drip_threshold", v, 0.05, 1.5)
}

// SetDripGravity sets drip gravity in px/s^2, clamped to [50,600].
func (e *Engine) SetDripGravity(v float64) {
	e.params.DripGravity = e.clamp("drip_gravity", v, 50, 600)
}

// SetDripViscosity sets drip damping in 1/s, clamped to [0.2,6].
func (e *Engine) SetDripViscosity(v float64) {
	e.params.DripViscosity = e.clamp("drip_viscosity", v, 0.2, 6)
}

// SetDripEvaporation sets the wetness decay rate in 1/s, clamped to [0.005,0.5].
func (e *Engine) SetDripEvaporation(v float64) {
	e.params.DripEvaporation = e.clamp("drip_evaporation", v, 0.005, 0.5)
}

// SetLineDynamicsEnabled toggles the speed->thickness response.
func (e *Engine) SetLineDynamicsEnabled(on bool) {
	e.params.LineDynamics = on
}

// SetLineDynamicsRange sets the thickness response spread as a percentage,
// clamped to [0,100].
func (e *Engine) SetLineDynamicsRange(pct float64) {
	e.params.LineDynRange = e.clamp("line_dynamics_range", pct, 0, 100) / 100
}

// SetLineDynamicsCurve sets the thickness ease exponent, clamped to [0.5,4].
func (e *Engine) SetLineDynamicsCurve(v float64) {
	e.params.LineDynCurve = e.clamp("line_dynamics_curve", v, 0.5, 4)
}

// SetLineDynamicsFastSpeed sets the speed at which strokes reach their
// thinnest, clamped to [100,3000] px/s.
func (e *Engine) SetLineDynamicsFastSpeed(v float64) {
	e.params.LineDynFastSpeed = e.clamp("line_dynamics_fast_speed", v, 100, 3000)
}

// ToggleDrips flips drip simulation and returns the new enabled state.
func (e *Engine) ToggleDrips() bool {
	e.params.DripsEnabled = !e.params.DripsEnabled
	return e.params.DripsEnabled
}

// Params returns a copy of the current parameter values.
func (e *Engine) Params() Params {
	return e.params
}
