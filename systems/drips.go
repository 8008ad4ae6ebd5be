package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/aerosol/components"
	"github.com/pthm-cable/aerosol/config"
	"github.com/pthm-cable/aerosol/renderer"
	"github.com/pthm-cable/aerosol/telemetry"
)

// Knobs carries the per-call context a drip operation needs from the engine:
// the runtime-settable physics values plus the current spray state.
type Knobs struct {
	Enabled   bool
	Threshold float32 // center wetness needed for a spawn
	Gravity   float32 // px/s^2
	Viscosity float32 // 1/s damping

	NozzleSize float32
	Flow       float32
	Pressure   float32
	Color      renderer.RGB
	Material   renderer.Material
}

// DripSystem owns the live drip particles. Drips are ECS entities; the
// ordered collection is the world's archetype storage, capped at
// config.Drip.MaxDrips.
type DripSystem struct {
	world  *ecs.World
	mapper *ecs.Map4[components.Position, components.Motion, components.Volume, components.Profile]
	filter *ecs.Filter4[components.Position, components.Motion, components.Volume, components.Profile]

	count int
	rng   *rand.Rand
	noise opensimplex.Noise
	diag  telemetry.Diag
	cfg   *config.Config
}

// NewDripSystem creates the drip world.
func NewDripSystem(cfg *config.Config, rng *rand.Rand, diag telemetry.Diag) *DripSystem {
	if diag == nil {
		diag = telemetry.Discard()
	}
	world := ecs.NewWorld()
	return &DripSystem{
		world:  world,
		mapper: ecs.NewMap4[components.Position, components.Motion, components.Volume, components.Profile](world),
		filter: ecs.NewFilter4[components.Position, components.Motion, components.Volume, components.Profile](world),
		count:  0,
		rng:    rng,
		noise:  opensimplex.NewNormalized(rng.Int63()),
		diag:   diag,
		cfg:    cfg,
	}
}

// Count returns the number of live drips.
func (s *DripSystem) Count() int {
	return s.count
}

// Clear removes all live drips without rendering tapers.
func (s *DripSystem) Clear() {
	var dead []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		dead = append(dead, query.Entity())
	}
	for _, e := range dead {
		s.world.RemoveEntity(e)
	}
	s.count = 0
}

// Advance integrates every live drip by dt, renders its trail and head, and
// retires exhausted drips with a tapered tip. Returns the number retired.
func (s *DripSystem) Advance(dt float32, f *Field, surf renderer.Surface, brushes *renderer.Cache, k Knobs) int {
	if dt <= 0 || s.count == 0 {
		return 0
	}

	dcfg := &s.cfg.Drip
	_, canvasH := surf.Size()
	bottom := float32(canvasH)

	type retire struct {
		entity ecs.Entity
		x, y   float32
		radius float32
		taper  float32
		bead   bool
	}
	var dead []retire

	query := s.filter.Query()
	for query.Next() {
		pos, mot, vol, prof := query.Get()

		mot.PrevX, mot.PrevY = pos.X, pos.Y

		// Gravity scaled by the drip's own factor and its remaining mass;
		// heavier drips run faster.
		massGain := 0.6 + 0.4*minf(vol.V, 1)
		g := k.Gravity * prof.GravityScale * massGain
		damp := float32(math.Exp(float64(-k.Viscosity * dt)))
		mot.VelY = mot.VelY*damp + g*dt

		dy := mot.VelY * dt
		newY := pos.Y + dy
		mot.Travel += dy

		// Lateral motion: eased wobble plus a signed hook, clamped to a
		// fraction of total travel so drips never walk sideways.
		tnorm := minf(mot.Travel/float32(dcfg.MaxTravel), 1)
		ease := tnorm * tnorm * (3 - 2*tnorm)
		wobble := float32(math.Sin(float64(mot.Travel*prof.WobbleFreq+prof.WobblePhase))) * prof.WobbleAmp * ease
		hook := prof.HookDir * prof.HookStrength * mot.Travel * mot.Travel / float32(dcfg.MaxTravel) * ease
		lat := wobble + hook
		latMax := float32(dcfg.LateralClamp) * mot.Travel
		if lat > latMax {
			lat = latMax
		} else if lat < -latMax {
			lat = -latMax
		}
		newX := mot.OriginX + lat

		capR := s.radiusCap(vol, brushes)

		s.renderTrail(surf, brushes, mot, prof, vol, f, newX, newY, capR, k)
		s.renderHead(surf, brushes, vol, newX, newY, capR, k)

		pos.X, pos.Y = newX, newY

		// Volume only ever decreases: paint laid down per pixel of travel
		// plus an evaporation-like loss per second.
		loss := dy*float32(dcfg.DepositPerPixel) + dt*float32(dcfg.EvapLossPerSec)
		if loss > 0 {
			vol.V -= loss
		}

		if vol.V < float32(dcfg.VolumeFloor) || mot.Travel > float32(dcfg.MaxTravel) || pos.Y > bottom {
			headR := minf(vol.BaseRadius*(1.1+0.3*maxf(vol.V, 0)), capR)
			dead = append(dead, retire{
				entity: query.Entity(),
				x:      pos.X,
				y:      pos.Y,
				radius: headR,
				taper:  prof.TaperFrac,
				bead:   prof.Bead,
			})
		}
	}

	// Removal happens outside the query; rendering the taper is each drip's
	// final act.
	for _, d := range dead {
		s.renderTaper(surf, brushes, d.x, d.y, d.radius, d.taper, d.bead, k)
		s.world.RemoveEntity(d.entity)
		s.count--
	}

	return len(dead)
}

// radiusCap returns the trail radius ceiling for a drip: volume-dependent,
// bounded by the global hard cap.
func (s *DripSystem) radiusCap(vol *components.Volume, brushes *renderer.Cache) float32 {
	capR := vol.BaseRadius * (1.8 + 0.8*maxf(vol.V, 0))
	hard := float32(s.cfg.Drip.RadiusHardCap)
	if capR > hard {
		capR = hard
	}
	return brushes.SanitizeRadius(capR)
}

// renderTrail draws sub-steps between the previous and new position. Radius
// widens with travel, wanders with smooth noise, and is held under capR with
// an opacity fade as it approaches the ceiling.
func (s *DripSystem) renderTrail(surf renderer.Surface, brushes *renderer.Cache, mot *components.Motion, prof *components.Profile, vol *components.Volume, f *Field, newX, newY, capR float32, k Knobs) {
	dcfg := &s.cfg.Drip

	dy := newY - mot.PrevY
	if dy <= 0 {
		return
	}
	steps := int(dy/float32(dcfg.TrailStep)) + 1

	mode := renderer.BlendMultiply
	if k.Material == renderer.MaterialMetallic {
		mode = renderer.BlendSourceOver
	}

	for i := 0; i < steps; i++ {
		t := (float32(i) + 0.5) / float32(steps)
		px := mot.PrevX + (newX-mot.PrevX)*t
		py := mot.PrevY + dy*t

		travel := mot.Travel - dy*(1-t)
		r := vol.BaseRadius * (1 + prof.WidenRate*travel)
		n := float32(s.noise.Eval2(float64(prof.NoiseSeed), float64(py)*dcfg.TrailNoiseScale))
		r *= 0.85 + 0.3*n

		alpha := 0.55 * k.Pressure
		if r > capR {
			s.diag.Report(telemetry.DiagEvent{
				Kind:      telemetry.DiagTrailRadiusCapped,
				Name:      "trail_radius",
				Original:  float64(r),
				Corrected: float64(capR),
			})
			r = capR
		}
		// Fade as the radius closes on its ceiling so the cap never shows
		// as a hard visual edge.
		if frac := r / capR; frac > 0.85 {
			alpha *= 1 - 0.5*(frac-0.85)/0.15
		}

		brush := brushes.Get(r, 1, k.Color, dripSoftness, renderer.VariantDrip, k.Material)
		surf.StampBrush(brush, px, py, r, alpha, mode)

		// Transient pooling near the trail start.
		if prof.PoolStamp && travel < vol.BaseRadius*3 && s.rng.Float64() < dcfg.PoolStampChance {
			wide := minf(r*1.8, capR)
			surf.StampBrush(brush, px, py, wide, alpha*0.4, mode)
		}

		// Follow-on wetness keeps the trail able to re-seed drips.
		f.Accumulate(px, py, float32(dcfg.FollowOnDeposit), 0, 1, true)
	}
}

// renderHead draws the head blob at the drip's current position.
func (s *DripSystem) renderHead(surf renderer.Surface, brushes *renderer.Cache, vol *components.Volume, x, y, capR float32, k Knobs) {
	r := vol.BaseRadius + (capR-vol.BaseRadius)*(0.35+0.2*minf(vol.V, 1))
	r = brushes.SanitizeRadius(r)

	mode := renderer.BlendMultiply
	if k.Material == renderer.MaterialMetallic {
		mode = renderer.BlendSourceOver
	}

	brush := brushes.Get(r, 1, k.Color, dripSoftness, renderer.VariantDrip, k.Material)
	surf.StampBrush(brush, x, y, r, 0.7*k.Pressure, mode)

	// Metallic heads get a small specular glint above center.
	if k.Material == renderer.MaterialMetallic {
		gr := maxf(r*0.4, 1)
		surf.StampBrush(brush, x, y-r*0.3, gr, 0.25*k.Pressure, renderer.BlendScreen)
	}
}

// renderTaper draws the shrinking terminal stamps: radius eases quadratically
// from the head radius to the drip's taper target, optionally finished with a
// bead dot.
func (s *DripSystem) renderTaper(surf renderer.Surface, brushes *renderer.Cache, x, y, headR, taperFrac float32, bead bool, k Knobs) {
	dcfg := &s.cfg.Drip

	mode := renderer.BlendMultiply
	if k.Material == renderer.MaterialMetallic {
		mode = renderer.BlendSourceOver
	}

	target := headR * taperFrac
	const steps = 6
	py := y
	for i := 0; i < steps; i++ {
		t := float32(i) / float32(steps-1)
		r := headR - (headR-target)*t*t
		r = brushes.SanitizeRadius(r)
		brush := brushes.Get(r, 1, k.Color, dripSoftness, renderer.VariantDrip, k.Material)
		surf.StampBrush(brush, x, py, r, 0.6*k.Pressure*(1-0.4*t), mode)
		py += float32(dcfg.TrailStep) * 0.8
	}

	if bead {
		r := brushes.SanitizeRadius(target * 1.4)
		brush := brushes.Get(r, 1, k.Color, dripSoftness, renderer.VariantDrip, k.Material)
		surf.StampBrush(brush, x, py+r*0.5, r, 0.75*k.Pressure, mode)
	}
}

// dripSoftness is the fixed edge softness of the drip brush recipe.
const dripSoftness = 0.8

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
