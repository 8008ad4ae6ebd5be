package engine

import (
	"math"
)

// strokeState tracks the stroke in flight. Cleared on StopDrawing.
type strokeState struct {
	drawing bool

	x, y         float32 // latest pointer position
	lastX, lastY float32 // last stamped position
	dirX, dirY   float32 // unit motion direction

	speed          float32 // EMA of instantaneous speed, px/s
	lastSampleTime float64 // sim-time of the last speed observation
	pendingDist    float32 // displacement not yet folded into the EMA
	movedSinceTick bool    // a pointer sample arrived since the last tick

	holdAccum     float64 // accumulated time toward the next hold sample
	lastDwellEmit float64 // sim-time of the last dwell overspray emission
	distSinceHalo float32 // px travelled since the last moving halo
}

// StartDrawing begins a stroke. Idempotent while already drawing. The hold
// sampler arms here: Tick keeps stamping the held position at the sampling
// cadence even without pointer movement.
func (e *Engine) StartDrawing(x, y, pressure float64) {
	if e.stroke.drawing {
		return
	}
	fx, fy := float32(x), float32(y)
	e.stroke = strokeState{
		drawing:        true,
		x:              fx,
		y:              fy,
		lastX:          fx,
		lastY:          fy,
		lastSampleTime: e.now,
		lastDwellEmit:  e.now,
	}
	e.SetPressure(pressure)
	e.stampAt(fx, fy)
}

// Draw extends the stroke to a new pointer sample. No-op while idle.
// Pressure is smoothed toward the sample; the segment is filled with stamps
// spaced at a fraction of the nozzle size so coverage stays continuous at
// any speed.
func (e *Engine) Draw(x, y, pressure float64) {
	if !e.stroke.drawing {
		return
	}
	st := &e.stroke
	scfg := &e.cfg.Stroke

	p := pressure
	if math.IsNaN(p) {
		p = 0
	} else if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	e.params.Pressure += (p - e.params.Pressure) * scfg.PressureSmoothing

	fx, fy := float32(x), float32(y)
	dx := fx - st.x
	dy := fy - st.y
	dist := float32(math.Hypot(float64(dx), float64(dy)))
	if dist > 0 {
		st.dirX, st.dirY = dx/dist, dy/dist
	}

	e.observeSpeed(dist)
	st.movedSinceTick = true

	spacing := float32(e.params.NozzleSize * scfg.SpacingFraction)
	if spacing < 1.5 {
		spacing = 1.5
	}
	jitter := float32(e.params.NozzleSize * scfg.JitterFraction)

	steps := int(dist / spacing)
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		t := float32(i) / float32(steps)
		px := st.x + dx*t + (e.rng.Float32()-0.5)*jitter
		py := st.y + dy*t + (e.rng.Float32()-0.5)*jitter
		e.stampAt(px, py)
	}

	// Distance-paced halo while moving; the dwell branch in stampAt covers
	// the stationary case.
	st.distSinceHalo += dist
	if st.speed >= float32(scfg.StationarySpeed) && st.distSinceHalo >= float32(e.cfg.Overspray.Spacing) {
		e.addOverspray(fx, fy, st.dirX, st.dirY, st.speed)
		st.distSinceHalo = 0
	}

	st.x, st.y = fx, fy
}

// StopDrawing ends the stroke and disarms the hold sampler. Idempotent: a
// second call leaves state untouched, and no stamp can occur after return
// until the next StartDrawing.
func (e *Engine) StopDrawing() {
	if !e.stroke.drawing {
		return
	}
	e.stroke = strokeState{}
}

// observeSpeed folds a displacement since the last observation into the
// speed EMA. Pointer samples can arrive faster than ticks, so displacement
// seen at zero elapsed time is held and folded in once time has advanced;
// no movement is ever discarded.
func (e *Engine) observeSpeed(dist float32) {
	st := &e.stroke
	st.pendingDist += dist
	dt := e.now - st.lastSampleTime
	if dt <= 0 {
		return
	}
	inst := float64(st.pendingDist) / dt
	a := 1 - math.Exp(-dt/e.cfg.Stroke.SpeedTau)
	v := float64(st.speed) + (inst-float64(st.speed))*a
	if v < 0 {
		v = 0
	}
	st.speed = float32(v)
	st.lastSampleTime = e.now
	st.pendingDist = 0
}

// stampAt renders one stamp: dwell handling, then the grain cloud.
func (e *Engine) stampAt(x, y float32) {
	st := &e.stroke
	scfg := &e.cfg.Stroke

	speed := st.speed
	if speed < float32(scfg.StationarySpeed) {
		// Dwell: time-paced pooling and overspray instead of the
		// distance-paced moving path.
		if e.now-st.lastDwellEmit >= e.cfg.Overspray.DwellInterval {
			st.lastDwellEmit = e.now
			e.addOverspray(x, y, 0, 0, speed)
			gain := float32(e.params.Flow * (0.5 + 0.5*e.params.Pressure))
			e.field.Accumulate(x, y, float32(scfg.DwellDeposit), speed, gain, true)
			if e.drips.TrySpawn(e.field, x, y, speed, e.now, e.dripKnobs()) {
				e.collector.RecordDripSpawn()
			}
		}
	} else {
		st.lastDwellEmit = e.now
	}

	e.renderGrains(x, y, speed)
	st.lastX, st.lastY = x, y
	e.collector.RecordStamp()
}
