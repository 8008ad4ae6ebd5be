package engine

import (
	"math"

	"github.com/pthm-cable/aerosol/renderer"
)

// goldenAngle spaces successive grains so the cloud shows no ring or spoke
// artifacts.
const goldenAngle = 2.399963229728653

// thicknessScale maps instantaneous speed to a stroke-width multiplier:
// dwelling thickens the line, sweeping thins it, like a real airbrush.
func (e *Engine) thicknessScale(speed float32) float64 {
	p := &e.params
	if !p.LineDynamics {
		return 1
	}
	g := &e.cfg.Grain

	slow := g.SlowSpeed
	fast := p.LineDynFastSpeed
	norm := (float64(speed) - slow) / (fast - slow)
	if norm < 0 {
		norm = 0
	} else if norm > 1 {
		norm = 1
	}
	eased := math.Pow(norm, p.LineDynCurve)

	thickMax := 1 + p.LineDynRange*(g.ThickMax-1)
	thinMin := 1 - p.LineDynRange*(1-g.ThinMin)
	return thickMax + (thinMin-thickMax)*eased
}

// renderGrains draws the stochastic dot cloud for one stamp and feeds the
// wetness field. Returns the number of grains drawn.
func (e *Engine) renderGrains(x, y, speed float32) int {
	p := &e.params
	g := &e.cfg.Grain
	d := deriveParams(p, g)

	thick := e.thicknessScale(speed)

	nozzleRatio := p.NozzleSize / g.ReferenceNozzle
	tighten := 0.55 + 0.45*math.Min(1, nozzleRatio)
	displayR := d.scatterRadius * thick * tighten
	if displayR < 1 {
		displayR = 1
	}

	// Denser when thin, for perceived coverage; hard-capped per stamp.
	dots := int(nozzleRatio * nozzleRatio * p.Flow * displayR * p.ScatterAmount * g.DotDensity / thick)
	if dots <= 0 {
		return 0
	}
	if dots > g.MaxDots {
		dots = g.MaxDots
	}

	baseGrain := d.grainSigma * p.ScatterSize
	pressureThin := 1 / math.Sqrt(p.Pressure+0.1)
	jitterScale := 0.5 * math.Min(1, nozzleRatio)
	nozzleArea := p.NozzleSize * p.NozzleSize / 4

	for i := 0; i < dots; i++ {
		// Low-discrepancy spiral: golden-angle increment, stratified
		// radius for uniform disk coverage, bounded jitter on both.
		frac := (float64(i) + e.rng.Float64()) / float64(dots)
		r := math.Sqrt(frac) * displayR * (1 + (e.rng.Float64()-0.5)*0.18*jitterScale)
		ang := float64(i)*goldenAngle + (e.rng.Float64()-0.5)*0.35*jitterScale
		px := x + float32(r*math.Cos(ang))
		py := y + float32(r*math.Sin(ang))

		mult := e.grainDraw.Rand()
		if e.rng.Float64() < g.OutlierChance {
			mult *= g.OutlierScale
		}
		gr := baseGrain * mult * pressureThin
		if gr > baseGrain*g.MaxGrainRatio {
			gr = baseGrain * g.MaxGrainRatio
		}
		if gr < 0.3 {
			gr = 0.3
		}

		// Bigger grains carry more paint; correlate opacity with size.
		sizeBoost := gr / baseGrain
		if sizeBoost < 0.6 {
			sizeBoost = 0.6
		} else if sizeBoost > 1.5 {
			sizeBoost = 1.5
		}
		alpha := d.alphaScale * (0.55 + 0.25*sizeBoost) * (0.85 + 0.3*e.rng.Float64())
		if alpha < 0.05 {
			alpha = 0.05
		} else if alpha > 1 {
			alpha = 1
		}

		brush := e.brushes.Get(float32(gr), 1, p.Color, p.Softness, renderer.VariantSpray, p.Material)
		e.surf.StampBrush(brush, px, py, float32(gr), float32(alpha), renderer.BlendSourceOver)

		if g.DepositEvery > 0 && i%g.DepositEvery == 0 {
			// Each deposit stands in for DepositEvery grains, keeping the
			// pooled total linear in grain count.
			amount := g.DepositScale * alpha * (gr * gr / nozzleArea) * float64(g.DepositEvery)
			gain := p.Flow * (0.5 + 0.5*p.Pressure)
			e.field.Accumulate(px, py, float32(amount), speed, float32(gain), false)
			if e.drips.TrySpawn(e.field, px, py, speed, e.now, e.dripKnobs()) {
				e.collector.RecordDripSpawn()
			}
		}
	}

	e.collector.RecordGrains(dots)
	return dots
}

// addOverspray draws the sparse halo of airborne mist around a stamp: a wide
// elliptical cloud of small blobby clusters, biased toward the path both in
// density and size. dirX/dirY orient the ellipse along the motion; both zero
// means a dwell ring.
func (e *Engine) addOverspray(x, y, dirX, dirY float32, speed float32) {
	p := &e.params
	if p.Overspray <= 0 {
		return
	}
	o := &e.cfg.Overspray
	d := deriveParams(p, &e.cfg.Grain)

	haloR := d.scatterRadius * o.RadiusScale
	if haloR < 2 {
		haloR = 2
	}

	moving := dirX != 0 || dirY != 0
	var cosH, sinH float64
	if moving {
		h := math.Atan2(float64(dirY), float64(dirX))
		cosH, sinH = math.Cos(h), math.Sin(h)
	}

	blobs := 1 + e.rng.Intn(o.MaxBlobs)
	for b := 0; b < blobs; b++ {
		// Radial center bias: most mist lands near the path.
		u := math.Pow(e.rng.Float64(), o.CenterBias)
		ang := e.rng.Float64() * 2 * math.Pi

		ex := u * haloR * math.Cos(ang)
		ey := u * haloR * math.Sin(ang)
		if moving {
			ex *= 1 + o.Elongation
			ex, ey = ex*cosH-ey*sinH, ex*sinH+ey*cosH
		}
		bx := x + float32(ex)
		by := y + float32(ey)

		centerFactor := 1 - u
		blobR := d.grainSigma * (0.6 + 1.4*centerFactor) * p.ScatterSize
		alpha := d.alphaScale * p.Overspray * (0.3 + 0.7*centerFactor) * 0.35
		if alpha < 0.03 {
			alpha = 0.03
		} else if alpha > 0.5 {
			alpha = 0.5
		}

		// 1-4 overlapping sub-dots make the blob read as a splatter
		// rather than a clean circle.
		subs := 1 + e.rng.Intn(4)
		for sd := 0; sd < subs; sd++ {
			ox := float32((e.rng.Float64() - 0.5) * blobR)
			oy := float32((e.rng.Float64() - 0.5) * blobR)
			sr := blobR * (0.7 + 0.6*e.rng.Float64())
			brush := e.brushes.Get(float32(sr), 1, p.Color, p.Softness, renderer.VariantSpray, p.Material)
			e.surf.StampBrush(brush, bx+ox, by+oy, float32(sr), float32(alpha), renderer.BlendSourceOver)
		}

		deposit := o.DepositScale * centerFactor * p.Overspray
		e.field.Accumulate(bx, by, float32(deposit), speed, float32(p.Flow), false)
	}

	e.collector.RecordOverspray(blobs)
}
