package renderer

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/aerosol/telemetry"
)

// Cache is a bounded memo table of brush sprites. Radius inputs are sanitized
// before use; corrections surface as diagnostics, never as errors.
type Cache struct {
	entries map[BrushKey]*Brush
	order   []BrushKey // creation order, oldest first

	max          int
	radiusMax    float64
	radiusBucket float64
	noiseAmount  float64

	rng  *rand.Rand
	diag telemetry.Diag
}

// NewCache creates a brush cache.
func NewCache(maxEntries int, radiusMax, radiusBucket, noiseAmount float64, rng *rand.Rand, diag telemetry.Diag) *Cache {
	if maxEntries < 2 {
		maxEntries = 2
	}
	if radiusMax <= 0 {
		radiusMax = 256
	}
	if radiusBucket < 1 {
		radiusBucket = 1
	}
	if diag == nil {
		diag = telemetry.Discard()
	}
	return &Cache{
		entries:      make(map[BrushKey]*Brush),
		max:          maxEntries,
		radiusMax:    radiusMax,
		radiusBucket: radiusBucket,
		noiseAmount:  noiseAmount,
		rng:          rng,
		diag:         diag,
	}
}

// Len returns the number of cached brushes.
func (c *Cache) Len() int {
	return len(c.entries)
}

// SanitizeRadius clamps a radius into [1, radiusMax]. Non-finite input maps
// to 1. Corrections are reported as diagnostics.
func (c *Cache) SanitizeRadius(r float32) float32 {
	v := float64(r)
	fixed := v
	if math.IsNaN(v) || math.IsInf(v, 0) {
		fixed = 1
	} else if v < 1 {
		fixed = 1
	} else if v > c.radiusMax {
		fixed = c.radiusMax
	}
	if fixed != v || math.IsNaN(v) {
		c.diag.Report(telemetry.DiagEvent{
			Kind:      telemetry.DiagSanitizedRadius,
			Name:      "brush_radius",
			Original:  v,
			Corrected: fixed,
		})
	}
	return float32(fixed)
}

// Get returns the brush for the given parameters, building and caching it on
// first use. The returned brush is shared and must not be mutated.
func (c *Cache) Get(radius float32, density uint8, color RGB, softness float64, variant Variant, material Material) *Brush {
	radius = c.SanitizeRadius(radius)
	if density < 1 {
		density = 1
	}

	bucket := int(math.Ceil(float64(radius)/c.radiusBucket) * c.radiusBucket)
	softPct := uint8(math.Round(softness * 100))

	key := BrushKey{
		Radius:   bucket,
		Density:  density,
		Color:    color,
		Softness: softPct,
		Variant:  variant,
		Material: material,
	}

	if b, ok := c.entries[key]; ok {
		return b
	}

	b := buildBrush(key, c.noiseAmount, c.rng)
	c.entries[key] = b
	c.order = append(c.order, key)

	if len(c.entries) > c.max {
		c.evict()
	}

	return b
}

// evict drops the oldest half of the cache, keeping the most recently created
// entries.
func (c *Cache) evict() {
	cut := len(c.order) / 2
	for _, key := range c.order[:cut] {
		delete(c.entries, key)
	}
	c.order = append(c.order[:0:0], c.order[cut:]...)
}
