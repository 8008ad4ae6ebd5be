package systems

import (
	"math"

	"github.com/pthm-cable/aerosol/components"
)

// TrySpawn runs the drip spawn check at a canvas position. It is called
// opportunistically from grain deposits and dwell handling, so it must stay
// cheap on the rejection paths. Returns true if a drip was created.
//
// The check is probabilistic above a trigger knee rather than a hard
// threshold: borderline wetness yields a soft onset instead of a burst of
// simultaneous spawns.
func (s *DripSystem) TrySpawn(f *Field, x, y, speed float32, now float64, k Knobs) bool {
	if !k.Enabled {
		return false
	}

	dcfg := &s.cfg.Drip
	slow := s.cfg.Derived.SlowSpeed

	// No drips while sweeping fast. The pooled paint still thins a little.
	if speed > float32(dcfg.FastCutoffFactor)*slow {
		f.Scale(x, y, float32(dcfg.PassiveDecay))
		return false
	}

	if s.count >= dcfg.MaxDrips {
		return false
	}

	i, ok := f.Index(x, y)
	if !ok {
		return false
	}

	// Slower motion and smaller nozzles lower the wetness bar.
	speedFactor := speed / slow
	if speedFactor > 1 {
		speedFactor = 1
	}
	nozzleFactor := k.NozzleSize / s.cfg.Derived.ReferenceNozzle
	if nozzleFactor < 0.3 {
		nozzleFactor = 0.3
	} else if nozzleFactor > 2 {
		nozzleFactor = 2
	}

	centerNeed := k.Threshold * (0.75 + 0.5*speedFactor) * (0.8 + 0.4*nozzleFactor)
	poolNeed := centerNeed * float32(dcfg.PoolFactor)

	sum, center := f.Neighborhood(i)

	tmax := float32(dcfg.TriggerMax)
	cw := float32(dcfg.CenterWeight)
	trigger := cw*minf(center/centerNeed, tmax) + (1-cw)*minf(sum/poolNeed, tmax)

	knee := float32(dcfg.TriggerKnee)
	if trigger <= knee {
		return false
	}

	p := math.Pow(float64((trigger-knee)/(tmax-knee)), dcfg.ProbPower)
	if s.rng.Float64() >= p {
		return false
	}

	site, ok := s.findSite(f, i, k.NozzleSize, now)
	if !ok {
		return false
	}

	s.spawnAt(f, site, now, k)
	return true
}

// findSite searches the cells under the nozzle footprint for the best spawn
// origin: wetness weighted by exponential distance falloff and a downward
// bias, since paint runs from the lower edge of a pool. Cells under cooldown
// or inside the minimum spawn interval are skipped.
func (s *DripSystem) findSite(f *Field, i int, nozzle float32, now float64) (int, bool) {
	rad := int(nozzle/(2*f.CellSize())) + 1
	if rad > 4 {
		rad = 4
	}

	bias := float32(s.cfg.Drip.SearchBias)
	minInterval := s.cfg.Drip.MinSpawnInterval

	best := -1
	var bestScore float32

	for dy := -rad; dy <= rad; dy++ {
		for dx := -rad; dx <= rad; dx++ {
			j, ok := f.CellTo(i, dx, dy)
			if !ok {
				continue
			}
			w := f.WetAtIndex(j)
			if w <= 0 {
				continue
			}
			if !f.SpawnAllowed(j, now, minInterval) {
				continue
			}

			d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			score := w * float32(math.Exp(float64(-d/float32(rad))))
			if dy > 0 {
				score *= 1 + bias*float32(dy)/float32(rad)
			}
			if score > bestScore {
				bestScore = score
				best = j
			}
		}
	}

	if best < 0 {
		return 0, false
	}
	return best, true
}

// spawnAt creates the drip at cell site, drains the local pool, and stamps
// cooldown markers across the neighborhood.
func (s *DripSystem) spawnAt(f *Field, site int, now float64, k Knobs) {
	dcfg := &s.cfg.Drip

	sum, _ := f.Neighborhood(site)
	poolNeed := k.Threshold * float32(dcfg.PoolFactor)
	excess := sum - poolNeed
	if excess < 0 {
		excess = 0
	}

	vol := float32(dcfg.VolumeMin) + excess*float32(dcfg.VolumeScale)
	if vol > float32(dcfg.VolumeMax) {
		vol = float32(dcfg.VolumeMax)
	}

	baseR := k.NozzleSize * 0.09 * (0.8 + 0.4*s.randF())
	if baseR < 1.2 {
		baseR = 1.2
	}
	if ceil := float32(dcfg.RadiusHardCap) * 0.45; baseR > ceil {
		baseR = ceil
	}

	x, y := f.CellCenter(site)

	pos := components.Position{X: x, Y: y}
	mot := components.Motion{PrevX: x, PrevY: y, OriginX: x}
	volume := components.Volume{V: vol, BaseRadius: baseR}
	prof := s.randomProfile()

	s.mapper.NewEntity(&pos, &mot, &volume, &prof)
	s.count++

	rad := int(k.NozzleSize/(2*f.CellSize())) + 1
	f.Drain(site, rad, float32(dcfg.DrainFraction))
	f.MarkSpawn(site, dcfg.CooldownFrames, now)
}

// randomProfile fixes a fresh drip's character.
func (s *DripSystem) randomProfile() components.Profile {
	dcfg := &s.cfg.Drip

	hookDir := float32(1)
	if s.rng.Float64() < 0.5 {
		hookDir = -1
	}

	return components.Profile{
		WobbleFreq:   float32(dcfg.WobbleFreqMin) + s.randF()*float32(dcfg.WobbleFreqMax-dcfg.WobbleFreqMin),
		WobbleAmp:    s.randF() * float32(dcfg.WobbleAmpMax),
		WobblePhase:  s.randF() * 2 * math.Pi,
		HookDir:      hookDir,
		HookStrength: s.randF() * float32(dcfg.HookMax),
		WidenRate:    float32(dcfg.WidenRate) * (0.5 + s.randF()),
		NoiseSeed:    s.randF() * 1000,
		TaperFrac:    float32(dcfg.TaperMin) + s.randF()*float32(dcfg.TaperMax-dcfg.TaperMin),
		GravityScale: 0.85 + 0.3*s.randF(),
		Bead:         s.rng.Float64() < dcfg.BeadChance,
		PoolStamp:    s.rng.Float64() < 0.5,
	}
}

func (s *DripSystem) randF() float32 {
	return s.rng.Float32()
}
