package engine

// Tick advances the simulation by dt seconds. The host must call it every
// render frame, stroke or no stroke: wetness keeps evaporating and drips keep
// running after the pointer lifts.
//
// Order inside a tick is fixed: decay and cooldown countdown first, then the
// hold sampler, then drip physics, so drips always see post-decay wetness.
// Tick(0) is a no-op.
func (e *Engine) Tick(dt float64) {
	if dt <= 0 {
		return
	}
	e.now += dt

	e.field.DecayTick(float32(dt), float32(e.params.DripEvaporation))

	// Hold sampler: while drawing, stamp the held position at the sampling
	// cadence even without pointer events, so dwelling keeps painting.
	// Ticks with pointer movement skip it; the stroke already stamped.
	if e.stroke.drawing {
		if e.stroke.movedSinceTick {
			e.stroke.movedSinceTick = false
			e.stroke.holdAccum = 0
		} else {
			e.stroke.holdAccum += dt
			period := e.cfg.Derived.SamplePeriod
			for e.stroke.holdAccum >= period {
				e.stroke.holdAccum -= period
				e.observeSpeed(0)
				e.stampAt(e.stroke.x, e.stroke.y)
			}
		}
	}

	retired := e.drips.Advance(float32(dt), e.field, e.surf, e.brushes, e.dripKnobs())
	if retired > 0 {
		e.collector.RecordDripRetired(retired)
	}

	e.collector.ObserveWetPeak(float64(e.field.Peak()))
	if e.collector.ShouldFlush(e.now) {
		stats := e.collector.Flush(e.now, e.drips.Count())
		if e.onStats != nil {
			e.onStats(stats)
		}
	}
}
