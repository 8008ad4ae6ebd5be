package systems

import (
	"testing"

	"github.com/pthm-cable/aerosol/config"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

func newTestField() *Field {
	return NewField(256, 256, 4, 1.0, 0.22, 220)
}

func TestFieldCreation(t *testing.T) {
	f := newTestField()

	cols, rows := f.GridSize()
	if cols != 64 || rows != 64 {
		t.Errorf("expected grid 64x64, got %dx%d", cols, rows)
	}
	if f.Cap() != 1.0 {
		t.Errorf("expected cap 1.0, got %f", f.Cap())
	}
	if f.CellSize() != 4 {
		t.Errorf("expected cell size 4, got %f", f.CellSize())
	}
	if f.Peak() != 0 {
		t.Errorf("expected empty field, peak %f", f.Peak())
	}
}

func TestFieldIndexBounds(t *testing.T) {
	f := newTestField()

	if _, ok := f.Index(100, 100); !ok {
		t.Error("expected in-bounds index at (100,100)")
	}
	if _, ok := f.Index(-1, 100); ok {
		t.Error("expected out-of-bounds for negative x")
	}
	if _, ok := f.Index(100, 300); ok {
		t.Error("expected out-of-bounds past the bottom edge")
	}
	if f.At(-1, -1) != 0 {
		t.Error("expected zero wetness off-canvas")
	}
}

func TestAccumulateCenterBias(t *testing.T) {
	f := newTestField()

	f.Accumulate(100, 100, 0.5, 0, 1, true)

	if got := f.At(100, 100); got < 0.49 || got > 0.51 {
		t.Errorf("expected full deposit in hit cell, got %f", got)
	}
	if got := f.At(104, 100); got != 0 {
		t.Errorf("expected no bleed with center bias, neighbor has %f", got)
	}
}

func TestAccumulateNeighborBleed(t *testing.T) {
	f := newTestField()

	// Slow deposit bleeds the full share to orthogonal neighbors.
	f.Accumulate(100, 100, 0.5, 0, 1, false)

	center := f.At(100, 100)
	right := f.At(104, 100)
	if center <= 0 || right <= 0 {
		t.Fatalf("expected deposit in center and neighbor, got %f, %f", center, right)
	}
	want := float32(0.5 * 0.22 / 4)
	if right < want*0.99 || right > want*1.01 {
		t.Errorf("expected neighbor share %f, got %f", want, right)
	}

	// At the normal stroke speed the bleed vanishes.
	f2 := newTestField()
	f2.Accumulate(100, 100, 0.5, 220, 1, false)
	if got := f2.At(104, 100); got != 0 {
		t.Errorf("expected no bleed at normal speed, got %f", got)
	}
	if got := f2.At(100, 100); got < 0.49 {
		t.Errorf("expected whole deposit in center at normal speed, got %f", got)
	}
}

func TestAccumulateCapInvariant(t *testing.T) {
	f := newTestField()

	// Deposit storm: no cell may ever exceed the cap.
	for i := 0; i < 2000; i++ {
		x := float32((i * 37) % 64)
		y := float32((i * 53) % 64)
		f.Accumulate(96+x, 96+y, 5.0, 0, 2.0, i%2 == 0)
	}

	for i := range f.wet {
		if f.wet[i] > f.cap+1e-6 {
			t.Fatalf("cell %d exceeds cap: %f > %f", i, f.wet[i], f.cap)
		}
	}
	if f.Peak() > f.Cap() {
		t.Errorf("peak %f exceeds cap %f", f.Peak(), f.Cap())
	}
}

func TestAccumulateHeadroomScaling(t *testing.T) {
	f := newTestField()

	f.Accumulate(100, 100, 0.8, 0, 1, true)
	first := f.At(100, 100)
	f.Accumulate(100, 100, 0.8, 0, 1, true)
	second := f.At(100, 100) - first

	// The second deposit lands in a nearly full cell and must shrink.
	if second >= first*0.5 {
		t.Errorf("expected headroom to shrink the second deposit, got %f then %f", first, second)
	}
}

func TestDecayTick(t *testing.T) {
	f := newTestField()
	f.Accumulate(100, 100, 0.8, 0, 1, true)
	before := f.At(100, 100)

	f.DecayTick(1.0, 0.5)
	after := f.At(100, 100)
	if after >= before {
		t.Errorf("expected decay, %f -> %f", before, after)
	}
	want := before * 0.6065 // e^-0.5
	if after < want*0.99 || after > want*1.01 {
		t.Errorf("expected exponential decay to %f, got %f", want, after)
	}

	// Tiny residue flushes to exactly zero.
	f2 := newTestField()
	i, _ := f2.Index(100, 100)
	f2.wet[i] = 1e-6
	f2.DecayTick(1.0/60, 0.06)
	if f2.wet[i] != 0 {
		t.Errorf("expected tiny residue flushed to zero, got %g", f2.wet[i])
	}
}

func TestDecayTickZeroDTNoOp(t *testing.T) {
	f := newTestField()
	f.Accumulate(100, 100, 0.8, 0, 1, true)
	i, _ := f.Index(100, 100)
	f.MarkSpawn(i, 5, 1.0)

	before := f.At(100, 100)
	f.DecayTick(0, 0.5)

	if f.At(100, 100) != before {
		t.Errorf("expected wetness unchanged at dt=0, %f -> %f", before, f.At(100, 100))
	}
	if f.cooldown[i] != 5 {
		t.Errorf("expected cooldown unchanged at dt=0, got %d", f.cooldown[i])
	}
}

func TestNeighborhood(t *testing.T) {
	f := newTestField()
	i, _ := f.Index(100, 100)
	f.wet[i] = 0.5
	j, _ := f.CellTo(i, 1, 0)
	f.wet[j] = 0.25

	sum, center := f.Neighborhood(i)
	if center != 0.5 {
		t.Errorf("expected center 0.5, got %f", center)
	}
	// Center counts double.
	if sum < 1.24 || sum > 1.26 {
		t.Errorf("expected weighted sum 1.25, got %f", sum)
	}
}

func TestSpawnCooldownGate(t *testing.T) {
	f := newTestField()
	i, _ := f.Index(128, 128)

	if !f.SpawnAllowed(i, 0, 0.25) {
		t.Fatal("expected fresh cell to allow spawning")
	}

	f.MarkSpawn(i, 3, 1.0)

	if f.SpawnAllowed(i, 1.1, 0.25) {
		t.Error("expected cooldown frames to block spawning")
	}
	// Neighbors of the marked 3x3 are blocked too.
	j, _ := f.CellTo(i, 2, 0)
	if f.SpawnAllowed(j, 1.1, 0.25) {
		t.Error("expected neighborhood overlap to block spawning")
	}
	// Three cells away there is no overlap.
	k, _ := f.CellTo(i, 3, 0)
	if !f.SpawnAllowed(k, 10, 0.25) {
		t.Error("expected non-overlapping cell to allow spawning")
	}

	// Count the frames down; the time gate still holds.
	for n := 0; n < 3; n++ {
		f.DecayTick(1.0/60, 0.06)
	}
	if f.cooldown[i] != 0 {
		t.Fatalf("expected cooldown expired, got %d", f.cooldown[i])
	}
	if f.SpawnAllowed(i, 1.2, 0.25) {
		t.Error("expected min spawn interval to block at t=1.2")
	}
	if !f.SpawnAllowed(i, 1.3, 0.25) {
		t.Error("expected spawn allowed once the interval passed")
	}
}

func TestDrainRadialFalloff(t *testing.T) {
	f := newTestField()
	i, _ := f.Index(128, 128)
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			j, _ := f.CellTo(i, dx, dy)
			f.wet[j] = 0.8
		}
	}

	f.Drain(i, 2, 0.8)

	center := f.wet[i]
	j, _ := f.CellTo(i, 2, 0)
	rim := f.wet[j]
	if center >= rim {
		t.Errorf("expected center drained more than rim, center %f rim %f", center, rim)
	}
	if center >= 0.8 || rim >= 0.8 {
		t.Errorf("expected both cells drained, center %f rim %f", center, rim)
	}
}

func TestScale(t *testing.T) {
	f := newTestField()
	f.Accumulate(100, 100, 0.5, 0, 1, true)
	before := f.At(100, 100)

	f.Scale(100, 100, 0.5)
	if got := f.At(100, 100); got < before*0.49 || got > before*0.51 {
		t.Errorf("expected cell halved, %f -> %f", before, got)
	}

	// Off-canvas is a no-op.
	f.Scale(-10, -10, 0.5)
}
