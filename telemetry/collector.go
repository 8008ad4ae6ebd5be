package telemetry

// Collector accumulates engine events within time windows and produces WindowStats.
// Time is the engine's simulated clock, not wall time.
type Collector struct {
	windowSec   float64
	windowStart float64

	stamps         int
	grains         int
	oversprayBlobs int
	dripSpawns     int
	dripRetired    int
	clampEvents    int
	wetPeak        float64
}

// NewCollector creates a new stats collector.
// windowSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowSec float64) *Collector {
	if windowSec <= 0 {
		windowSec = 1
	}
	return &Collector{windowSec: windowSec}
}

// RecordStamp records one spray stamp.
func (c *Collector) RecordStamp() {
	c.stamps++
}

// RecordGrains records n grains drawn.
func (c *Collector) RecordGrains(n int) {
	c.grains += n
}

// RecordOverspray records n overspray blobs drawn.
func (c *Collector) RecordOverspray(n int) {
	c.oversprayBlobs += n
}

// RecordDripSpawn records a drip spawn.
func (c *Collector) RecordDripSpawn() {
	c.dripSpawns++
}

// RecordDripRetired records n drips removed this tick.
func (c *Collector) RecordDripRetired(n int) {
	c.dripRetired += n
}

// RecordClamp records a setter or render-path correction.
func (c *Collector) RecordClamp() {
	c.clampEvents++
}

// ObserveWetPeak tracks the highest cell wetness seen this window.
func (c *Collector) ObserveWetPeak(v float64) {
	if v > c.wetPeak {
		c.wetPeak = v
	}
}

// ShouldFlush returns true if the current window has elapsed at time now.
func (c *Collector) ShouldFlush(now float64) bool {
	return now-c.windowStart >= c.windowSec
}

// Flush returns stats for the closing window and starts a new one.
// liveDrips is sampled at flush time.
func (c *Collector) Flush(now float64, liveDrips int) WindowStats {
	stats := WindowStats{
		WindowStart:    c.windowStart,
		WindowEnd:      now,
		Stamps:         c.stamps,
		Grains:         c.grains,
		OversprayBlobs: c.oversprayBlobs,
		DripSpawns:     c.dripSpawns,
		DripRetired:    c.dripRetired,
		ClampEvents:    c.clampEvents,
		WetPeak:        c.wetPeak,
		LiveDrips:      liveDrips,
	}

	c.windowStart = now
	c.stamps = 0
	c.grains = 0
	c.oversprayBlobs = 0
	c.dripSpawns = 0
	c.dripRetired = 0
	c.clampEvents = 0
	c.wetPeak = 0

	return stats
}
