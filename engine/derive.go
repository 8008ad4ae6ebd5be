package engine

import (
	"math"

	"github.com/pthm-cable/aerosol/config"
)

// derived holds the per-stamp physical quantities computed from the current
// parameters. A pure function of Params at call time; recomputed for every
// stamp and never cached across parameter changes.
type derived struct {
	coneAngle       float64 // spray cone half-angle, rad
	projectedRadius float64 // px, cone footprint at the simulated distance
	grainSigma      float64 // px, base grain size
	alphaScale      float64 // per-dot opacity scale
	scatterRadius   float64 // px, grain placement radius
}

// deriveParams maps nozzle, distance and pressure to spray geometry. The
// cone half-angle grows logarithmically with nozzle size relative to the
// reference diameter and mildly with pressure; everything else follows from
// it. Inputs are pre-clamped by the setters, so the function is total.
func deriveParams(p *Params, g *config.GrainConfig) derived {
	cone := g.ConeBase*math.Log1p(p.NozzleSize/g.ReferenceNozzle) + g.ConePressure*p.Pressure

	projected := p.Distance * math.Tan(cone)

	sigma := g.SigmaScale * (p.Distance / g.ReferenceDist) * math.Sqrt(p.NozzleSize/g.ReferenceNozzle)
	if sigma < g.SigmaFloor {
		sigma = g.SigmaFloor
	}

	// Paint density falls off with the square of distance; pressure and
	// opacity push it back up.
	dr := g.ReferenceDist / p.Distance
	alpha := p.Opacity * p.Pressure * dr * dr
	if alpha > g.AlphaScaleMax {
		alpha = g.AlphaScaleMax
	}

	return derived{
		coneAngle:       cone,
		projectedRadius: projected,
		grainSigma:      sigma,
		alphaScale:      alpha,
		scatterRadius:   projected * p.ScatterRadius,
	}
}
