// Package engine implements the airbrush simulation: stochastic grain
// deposition along strokes, a wetness field tracking pooled paint, and
// gravity-driven drips seeded from it. The host supplies pointer samples and
// a per-frame tick; the engine draws through an injected render surface.
package engine

import (
	"math/rand"
	randv2 "math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/aerosol/config"
	"github.com/pthm-cable/aerosol/renderer"
	"github.com/pthm-cable/aerosol/systems"
	"github.com/pthm-cable/aerosol/telemetry"
)

// Options configures a new Engine.
type Options struct {
	Seed    int64                       // RNG seed; 0 means 1
	Surface renderer.Surface            // render sink; nil gets a recording surface
	Diag    telemetry.Diag              // correction sink; nil discards
	Config  *config.Config              // nil uses the global config
	OnStats func(telemetry.WindowStats) // called when a stats window closes
}

// Engine owns all paint state: parameters, the wetness field, the drip
// collection, and the brush cache. One instance per canvas; no process-wide
// state. All methods must be called from a single logical thread.
type Engine struct {
	cfg      *config.Config
	params   Params
	metallic renderer.RGB // color that selects the metallic material

	rng       *rand.Rand
	grainDraw distuv.LogNormal

	surf    renderer.Surface
	brushes *renderer.Cache
	field   *systems.Field
	drips   *systems.DripSystem

	diag      telemetry.Diag
	collector *telemetry.Collector
	onStats   func(telemetry.WindowStats)

	w, h int
	now  float64 // simulated seconds, advanced only by Tick

	stroke strokeState
}

// Snapshot is a cheap view of live engine state for HUDs and tests.
type Snapshot struct {
	LiveDrips     int
	WetPeak       float64
	CachedBrushes int
	SimTime       float64
}

// countingDiag forwards to the configured sink and counts clamp events for
// the stats window.
type countingDiag struct {
	inner telemetry.Diag
	coll  *telemetry.Collector
}

func (d countingDiag) Report(ev telemetry.DiagEvent) {
	d.coll.RecordClamp()
	d.inner.Report(ev)
}

// New creates an engine for a canvas of the given pixel dimensions.
func New(width, height int, opts Options) *Engine {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}

	inner := opts.Diag
	if inner == nil {
		inner = telemetry.Discard()
	}
	collector := telemetry.NewCollector(cfg.Telemetry.StatsWindow)
	diag := countingDiag{inner: inner, coll: collector}

	surf := opts.Surface
	if surf == nil {
		surf = renderer.NewRecordingSurface(width, height)
	}

	rng := rand.New(rand.NewSource(seed))

	e := &Engine{
		cfg:    cfg,
		params: defaultParams(cfg),
		rng:    rng,
		grainDraw: distuv.LogNormal{
			Mu:    0,
			Sigma: cfg.Grain.LogNormalSigma,
			Src:   randv2.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15),
		},
		surf:      surf,
		diag:      diag,
		collector: collector,
		onStats:   opts.OnStats,
		w:         width,
		h:         height,
	}

	if metallic, ok := renderer.ParseHex(cfg.Spray.MetallicHex); ok {
		e.metallic = metallic
	}

	e.brushes = renderer.NewCache(
		cfg.Brush.CacheMax,
		cfg.Brush.RadiusMax,
		cfg.Brush.RadiusBucket,
		cfg.Brush.NoiseAmount,
		rng,
		diag,
	)
	e.field = systems.NewField(width, height,
		cfg.Wetness.Downsample, cfg.Wetness.Cap,
		cfg.Wetness.NeighborShare, cfg.Wetness.NormalSpeed)
	e.drips = systems.NewDripSystem(cfg, rng, diag)

	return e
}

// Resize recreates the wetness field for new canvas dimensions. Painted
// pixels belong to the surface; pooled paint and live drips are dropped.
func (e *Engine) Resize(width, height int) {
	e.w, e.h = width, height
	e.field = systems.NewField(width, height,
		e.cfg.Wetness.Downsample, e.cfg.Wetness.Cap,
		e.cfg.Wetness.NeighborShare, e.cfg.Wetness.NormalSpeed)
	e.drips.Clear()
}

// Reset clears pooled paint, live drips, and any stroke in flight.
func (e *Engine) Reset() {
	e.StopDrawing()
	e.field = systems.NewField(e.w, e.h,
		e.cfg.Wetness.Downsample, e.cfg.Wetness.Cap,
		e.cfg.Wetness.NeighborShare, e.cfg.Wetness.NormalSpeed)
	e.drips.Clear()
}

// Stamp draws one spray stamp at a point, outside any stroke lifecycle.
func (e *Engine) Stamp(x, y float64) {
	e.stampAt(float32(x), float32(y))
}

// Snapshot returns live counts for display.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		LiveDrips:     e.drips.Count(),
		WetPeak:       float64(e.field.Peak()),
		CachedBrushes: e.brushes.Len(),
		SimTime:       e.now,
	}
}

// Wetness returns the pooled paint under a canvas position. Exposed for
// tests and debug overlays.
func (e *Engine) Wetness(x, y float64) float64 {
	return float64(e.field.At(float32(x), float32(y)))
}

// DripCount returns the number of live drips.
func (e *Engine) DripCount() int {
	return e.drips.Count()
}

// dripKnobs assembles the per-call context the drip system needs.
func (e *Engine) dripKnobs() systems.Knobs {
	p := &e.params
	return systems.Knobs{
		Enabled:    p.DripsEnabled,
		Threshold:  float32(p.DripThreshold),
		Gravity:    float32(p.DripGravity),
		Viscosity:  float32(p.DripViscosity),
		NozzleSize: float32(p.NozzleSize),
		Flow:       float32(p.Flow),
		Pressure:   float32(p.Pressure),
		Color:      p.Color,
		Material:   p.Material,
	}
}
