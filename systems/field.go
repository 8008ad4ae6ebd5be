// Package systems holds the simulation state the engine ticks every frame:
// the wetness field that tracks pooled paint, and the drip particles it seeds.
package systems

import "math"

// Field is the coarse pooled-paint grid. Cells hold a scalar wetness in
// [0, Cap]; deposits are scaled by remaining headroom so no write can push a
// cell over the cap. A parallel cooldown grid gates drip spawning.
type Field struct {
	cols, rows int
	cell       float32 // canvas px per cell
	cap        float32

	wet       []float32
	cooldown  []int16   // frames until a cell may host a spawn again
	lastSpawn []float64 // sim-time of the last spawn touching the cell

	neighborShare float32 // deposit fraction bled to orthogonal neighbors
	normalSpeed   float32 // px/s at which neighbor bleed vanishes
}

// NewField creates a field covering pxW x pxH canvas pixels at the given
// downsample factor.
func NewField(pxW, pxH, downsample int, cap, neighborShare, normalSpeed float64) *Field {
	if downsample < 1 {
		downsample = 1
	}
	cols := (pxW + downsample - 1) / downsample
	rows := (pxH + downsample - 1) / downsample
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	f := &Field{
		cols:          cols,
		rows:          rows,
		cell:          float32(downsample),
		cap:           float32(cap),
		wet:           make([]float32, cols*rows),
		cooldown:      make([]int16, cols*rows),
		lastSpawn:     make([]float64, cols*rows),
		neighborShare: float32(neighborShare),
		normalSpeed:   float32(normalSpeed),
	}
	for i := range f.lastSpawn {
		f.lastSpawn[i] = math.Inf(-1)
	}
	return f
}

// GridSize returns the field dimensions in cells.
func (f *Field) GridSize() (int, int) {
	return f.cols, f.rows
}

// Cap returns the per-cell ceiling.
func (f *Field) Cap() float32 {
	return f.cap
}

// CellSize returns the canvas pixels covered by one cell edge.
func (f *Field) CellSize() float32 {
	return f.cell
}

// Index maps a canvas position to its cell index. ok is false off-canvas.
func (f *Field) Index(x, y float32) (int, bool) {
	cx := int(x / f.cell)
	cy := int(y / f.cell)
	if cx < 0 || cx >= f.cols || cy < 0 || cy >= f.rows {
		return 0, false
	}
	return cy*f.cols + cx, true
}

// At returns the wetness of the cell covering (x, y), 0 off-canvas.
func (f *Field) At(x, y float32) float32 {
	i, ok := f.Index(x, y)
	if !ok {
		return 0
	}
	return f.wet[i]
}

// Peak returns the highest cell wetness.
func (f *Field) Peak() float32 {
	var peak float32
	for _, w := range f.wet {
		if w > peak {
			peak = w
		}
	}
	return peak
}

// add deposits into one cell, clipped to the cap.
func (f *Field) add(i int, a float32) {
	w := f.wet[i] + a
	if w > f.cap {
		w = f.cap
	}
	f.wet[i] = w
}

// Accumulate deposits paint at a canvas position. gain carries the caller's
// flow/pressure scaling. The deposit is scaled by the hit cell's remaining
// headroom. With centerBias the whole deposit lands in the hit cell (dwell
// pooling); otherwise a share bleeds into the four orthogonal neighbors,
// shrinking as speed approaches the normal stroke speed.
func (f *Field) Accumulate(x, y, amount, speed, gain float32, centerBias bool) {
	i, ok := f.Index(x, y)
	if !ok || amount <= 0 {
		return
	}

	a := amount * gain
	head := 1 - f.wet[i]/f.cap
	if head <= 0 {
		return
	}
	a *= head

	if centerBias {
		f.add(i, a)
		return
	}

	share := f.neighborShare
	if f.normalSpeed > 0 {
		s := speed / f.normalSpeed
		if s > 1 {
			s = 1
		}
		share *= 1 - s
	}

	f.add(i, a*(1-share))

	per := a * share / 4
	if per <= 0 {
		return
	}
	cx := i % f.cols
	cy := i / f.cols
	if cx > 0 {
		f.add(i-1, per)
	}
	if cx < f.cols-1 {
		f.add(i+1, per)
	}
	if cy > 0 {
		f.add(i-f.cols, per)
	}
	if cy < f.rows-1 {
		f.add(i+f.cols, per)
	}
}

// DecayTick applies exponential evaporation to every cell and counts down
// active spawn cooldowns. A dt of zero changes nothing.
func (f *Field) DecayTick(dt, evaporation float32) {
	if dt <= 0 {
		return
	}
	k := float32(math.Exp(float64(-evaporation * dt)))
	for i, w := range f.wet {
		if w == 0 {
			continue
		}
		w *= k
		if w < 1e-5 {
			w = 0
		}
		f.wet[i] = w
	}
	for i, c := range f.cooldown {
		if c > 0 {
			f.cooldown[i] = c - 1
		}
	}
}

// Neighborhood returns the weighted 3x3 wetness sum around cell i, with the
// center counted at double weight, and the center value itself.
func (f *Field) Neighborhood(i int) (sum, center float32) {
	cx := i % f.cols
	cy := i / f.cols
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := cx+dx, cy+dy
			if nx < 0 || nx >= f.cols || ny < 0 || ny >= f.rows {
				continue
			}
			w := f.wet[ny*f.cols+nx]
			if dx == 0 && dy == 0 {
				sum += 2 * w
			} else {
				sum += w
			}
		}
	}
	return sum, f.wet[i]
}

// SpawnAllowed reports whether a spawn at cell i respects the cooldown gate:
// no cell in the 3x3 neighborhood may have an active frame cooldown or a
// last-spawn time within minInterval of now.
func (f *Field) SpawnAllowed(i int, now, minInterval float64) bool {
	cx := i % f.cols
	cy := i / f.cols
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := cx+dx, cy+dy
			if nx < 0 || nx >= f.cols || ny < 0 || ny >= f.rows {
				continue
			}
			j := ny*f.cols + nx
			if f.cooldown[j] > 0 {
				return false
			}
			if now-f.lastSpawn[j] < minInterval {
				return false
			}
		}
	}
	return true
}

// MarkSpawn stamps cooldown frames and the spawn time across the 3x3
// neighborhood of cell i.
func (f *Field) MarkSpawn(i int, frames int, now float64) {
	cx := i % f.cols
	cy := i / f.cols
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := cx+dx, cy+dy
			if nx < 0 || nx >= f.cols || ny < 0 || ny >= f.rows {
				continue
			}
			j := ny*f.cols + nx
			f.cooldown[j] = int16(frames)
			f.lastSpawn[j] = now
		}
	}
}

// Drain removes wetness around cell i with a radial falloff: the center loses
// fraction frac, cells at radius lose exponentially less.
func (f *Field) Drain(i int, radius int, frac float32) {
	if radius < 1 {
		radius = 1
	}
	cx := i % f.cols
	cy := i / f.cols
	r2 := float32(radius * radius)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			nx, ny := cx+dx, cy+dy
			if nx < 0 || nx >= f.cols || ny < 0 || ny >= f.rows {
				continue
			}
			d2 := float32(dx*dx + dy*dy)
			if d2 > r2 {
				continue
			}
			k := frac * float32(math.Exp(float64(-2*d2/r2)))
			j := ny*f.cols + nx
			f.wet[j] *= 1 - k
		}
	}
}

// Scale multiplies the cell covering (x, y) by k. Used as passive local decay
// when fast motion suppresses spawning.
func (f *Field) Scale(x, y, k float32) {
	i, ok := f.Index(x, y)
	if !ok {
		return
	}
	f.wet[i] *= k
}

// CellCenter returns the canvas position at the center of cell i.
func (f *Field) CellCenter(i int) (float32, float32) {
	cx := i % f.cols
	cy := i / f.cols
	return (float32(cx) + 0.5) * f.cell, (float32(cy) + 0.5) * f.cell
}

// CellTo returns the index of the cell at grid offset (dx, dy) from cell i,
// or false if it falls off the grid.
func (f *Field) CellTo(i, dx, dy int) (int, bool) {
	cx := i%f.cols + dx
	cy := i/f.cols + dy
	if cx < 0 || cx >= f.cols || cy < 0 || cy >= f.rows {
		return 0, false
	}
	return cy*f.cols + cx, true
}

// WetAtIndex returns cell i's wetness.
func (f *Field) WetAtIndex(i int) float32 {
	return f.wet[i]
}
